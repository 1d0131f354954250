// Package elastic implements index.Index on Elasticsearch.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KruASe76/look/internal/search/config"
	"github.com/KruASe76/look/internal/search/index"
	"github.com/KruASe76/look/internal/search/query"
	"github.com/KruASe76/look/pkg/model"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var _ index.Index = (*Client)(nil)

// Client runs compiled descriptors against one Elasticsearch index.
type Client struct {
	es        *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*elasticsearch.Config)

// WithTransport replaces the HTTP transport (used by tests).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *elasticsearch.Config) { c.Transport = rt }
}

// New creates a client for the product index described by cfg.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	}
	for _, opt := range opts {
		opt(&esCfg)
	}
	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elastic: create client: %w", err)
	}
	return &Client{
		es:        es,
		indexName: cfg.IndexName,
		logger:    slog.Default().With("component", "elastic", "index", cfg.IndexName),
	}, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Score  *float64        `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search executes d and returns its hits in rank order.
func (c *Client) Search(ctx context.Context, d query.Descriptor) ([]index.Hit, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("elastic: encode query: %w: %v", model.ErrInvariantViolation, err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indexName),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, transportError("search", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, c.responseError("search", res, body)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("elastic: decode search response: %w: %v", model.ErrUnavailable, err)
	}

	hits := make([]index.Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hit := index.Hit{ID: h.ID, Source: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Upsert indexes doc under its id, replacing any previous version.
func (c *Client) Upsert(ctx context.Context, doc index.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elastic: encode document %s: %w", doc.ID, err)
	}

	res, err := c.es.Index(
		c.indexName,
		bytes.NewReader(body),
		c.es.Index.WithDocumentID(doc.ID),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return transportError("index", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return c.responseError("index", res, nil)
	}
	return nil
}

// EnsureIndex creates the index with index.Settings if it does not exist.
func (c *Client) EnsureIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.indexName}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return transportError("index exists", err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return c.responseError("index exists", res, nil)
	}

	body, err := json.Marshal(index.Settings())
	if err != nil {
		return fmt.Errorf("elastic: encode settings: %w", err)
	}
	res, err = c.es.Indices.Create(
		c.indexName,
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return transportError("create index", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		// Another instance created it first.
		if strings.Contains(string(raw), "resource_already_exists_exception") {
			return nil
		}
		return c.classify("create index", res.StatusCode, raw, nil)
	}
	c.logger.Info("Created index")
	return nil
}

func transportError(op string, err error) error {
	if model.IsCanceled(err) {
		return fmt.Errorf("elastic: %s: %w: %v", op, model.ErrCanceled, err)
	}
	return fmt.Errorf("elastic: %s: %w: %v", op, model.ErrUnavailable, err)
}

func (c *Client) responseError(op string, res *esapi.Response, request []byte) error {
	raw, _ := io.ReadAll(res.Body)
	return c.classify(op, res.StatusCode, raw, request)
}

// classify maps an error status onto the model taxonomy. A 400 means the
// compiled request itself is wrong, which is a defect rather than an outage.
func (c *Client) classify(op string, status int, raw, request []byte) error {
	reason := errorReason(raw)
	if status == http.StatusBadRequest {
		c.logger.Error("Index rejected request", "op", op, "reason", reason, "request", string(request))
		return fmt.Errorf("elastic: %s: %w: %s", op, model.ErrInvariantViolation, reason)
	}
	return fmt.Errorf("elastic: %s [%d]: %w: %s", op, status, model.ErrUnavailable, reason)
}

func errorReason(raw []byte) string {
	var e struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &e); err != nil || e.Error.Type == "" {
		return strings.TrimSpace(string(raw))
	}
	return e.Error.Type + ": " + e.Error.Reason
}
