package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minhtt159/sheet-ingest/internal/ingest"
	"github.com/minhtt159/sheet-ingest/internal/sheet"
)

type pushFlags struct {
	index       string
	docType     string
	template    string
	headerRange string
	dataRange   string
	idRange     string
}

func newPushCmd(a *app) *cobra.Command {
	var f pushFlags
	cmd := &cobra.Command{
		Use:   "push FILE.csv",
		Short: "Send a range of a CSV sheet to the stored cluster",
		Long: "Reads FILE.csv as a sheet and sends --data as documents. Without --header\n" +
			"the first row of --data holds the field names. Ranges use A1 notation.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(args[0])
			if err != nil {
				return err
			}
			res, err := a.service().Push(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sent %d documents in %d batches (%d empty rows skipped", res.Documents, res.Batches, res.Skipped)
			if res.Rejected > 0 {
				fmt.Fprintf(out, ", %d rejected by the cluster", res.Rejected)
			}
			fmt.Fprintf(out, ")\nSearch: %s\n", res.SearchURL)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.index, "index", "i", "", "target index")
	fl.StringVarP(&f.docType, "type", "t", "", "document type (defaults to ingest.default_type)")
	fl.StringVar(&f.template, "template", "", "index template to create when missing")
	fl.StringVar(&f.headerRange, "header", "", "A1 range of the header row")
	fl.StringVar(&f.dataRange, "data", "", "A1 range of the data rows, e.g. A2:D")
	fl.StringVar(&f.idRange, "ids", "", "A1 range of the document id column")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func (f pushFlags) request(path string) (ingest.Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return ingest.Request{}, err
	}
	defer file.Close()

	grid, err := sheet.ReadCSV(file)
	if err != nil {
		return ingest.Request{}, err
	}

	req := ingest.Request{Index: f.index, Type: f.docType, Template: f.template}
	if req.Rows, err = grid.Resolve(f.dataRange); err != nil {
		return ingest.Request{}, err
	}
	if f.headerRange != "" {
		header, err := grid.Resolve(f.headerRange)
		if err != nil {
			return ingest.Request{}, err
		}
		if len(header) == 0 {
			return ingest.Request{}, sheet.ErrEmptyHeader
		}
		req.Header = header[0]
	}
	if f.idRange != "" {
		ids, err := grid.Resolve(f.idRange)
		if err != nil {
			return ingest.Request{}, err
		}
		req.IDs = sheet.Column(ids)
	}
	return req, nil
}
