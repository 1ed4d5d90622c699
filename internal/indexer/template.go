package indexer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"
)

const rawFieldLimit = 256

// Template is a legacy index template body.
type Template struct {
	Order    int            `json:"order"`
	Template string         `json:"template"`
	Settings map[string]any `json:"settings"`
	Mappings map[string]any `json:"mappings"`
	Aliases  map[string]any `json:"aliases"`
}

// DefaultTemplate returns a fresh template matching exactly the given index.
// Mappings are typeless so 7.x and 8.x clusters accept them. Every dynamic
// string field is indexed as text with a keyword "raw"
// sub-field cut at 256 characters.
func DefaultTemplate(index string) Template {
	return Template{
		Order:    0,
		Template: index,
		Settings: map[string]any{
			"index": map[string]any{
				"refresh_interval":   "5s",
				"number_of_shards":   1,
				"number_of_replicas": 1,
				"analysis": map[string]any{
					"analyzer": map[string]any{
						"default": map[string]any{
							"type":      "standard",
							"stopwords": "_none_",
						},
					},
				},
			},
		},
		Mappings: map[string]any{
			"dynamic_templates": []any{
				map[string]any{
					"string_fields": map[string]any{
						"match":              "*",
						"match_mapping_type": "string",
						"mapping": map[string]any{
							"type":  "text",
							"norms": false,
							"fields": map[string]any{
								"raw": map[string]any{
									"type":         "keyword",
									"ignore_above": rawFieldLimit,
								},
							},
						},
					},
				},
			},
		},
		Aliases: map[string]any{},
	}
}

// EnsureTemplate creates the named template for index unless the cluster
// already has one under that name. Existing templates are never touched.
func (c *Client) EnsureTemplate(ctx context.Context, index, name string) error {
	logger := c.logger.With(zap.String("template", name), zap.String("index", index))

	res, err := esapi.IndicesGetTemplateRequest{Name: []string{name}}.Do(ctx, c.es)
	if err != nil {
		logger.Warn("Template lookup failed", zap.Error(err))
		return ErrTemplate
	}
	body, err := readBody(res)
	if err != nil {
		logger.Warn("Failed to read template response", zap.Error(err))
		return ErrTemplate
	}

	switch res.StatusCode {
	case http.StatusOK:
		logger.Info("Template already exists, leaving it untouched")
		return nil
	case http.StatusNotFound:
		return c.createTemplate(ctx, logger, index, name)
	default:
		return templateError(body)
	}
}

func (c *Client) createTemplate(ctx context.Context, logger *zap.Logger, index, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/_template/"+url.PathEscape(name), esutil.NewJSONReader(DefaultTemplate(index)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.es.Perform(req)
	if err != nil {
		logger.Warn("Template creation failed", zap.Error(err))
		return ErrTemplate
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		logger.Warn("Failed to read template response", zap.Error(err))
		return ErrTemplate
	}
	if res.StatusCode != http.StatusOK {
		return templateError(body)
	}

	logger.Info("Created index template")
	return nil
}

func templateError(body []byte) error {
	reply, err := decodeReply(body)
	if err != nil || reply.text() == "" {
		return ErrTemplate
	}
	return fmt.Errorf("%w: %s", ErrTemplate, reply.text())
}
