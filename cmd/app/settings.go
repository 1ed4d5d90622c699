package main

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/minhtt159/sheet-ingest/internal/indexer"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage the stored cluster connection",
	}
	cmd.AddCommand(newSettingsSetCmd(a), newSettingsShowCmd(a))
	return cmd
}

func newSettingsSetCmd(a *app) *cobra.Command {
	var conn indexer.Connection
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the cluster connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.service().SaveSettings(conn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved connection to %s\n", conn.BaseURL())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&conn.Host, "host", "", "cluster host name")
	f.IntVar(&conn.Port, "port", 9200, "cluster port")
	f.BoolVar(&conn.UseSSL, "ssl", false, "connect over https")
	f.StringVar(&conn.Username, "username", "", "basic auth user")
	f.StringVar(&conn.Password, "password", "", "basic auth password")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

type settingsView struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	UseSSL     bool   `json:"use_ssl"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	WasChecked bool   `json:"was_checked"`
}

func newSettingsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored connection with the password redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.service().Settings()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(settingsView{
				Host:       st.Connection.Host,
				Port:       st.Connection.Port,
				UseSSL:     st.Connection.UseSSL,
				Username:   st.Connection.Username,
				Password:   st.Connection.Password,
				WasChecked: st.WasChecked,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Test connectivity to the stored cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.service().Check(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Connection OK")
			return nil
		},
	}
}
