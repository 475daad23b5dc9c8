// Package airtable is the remote record client for the Airtable REST API.
package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/infrastructure/resilience"
)

const DefaultAPIURL = "https://api.airtable.com/v0"

// CallObserver receives one observation per store call, after retries.
type CallObserver interface {
	ObserveStoreCall(table, operation, outcome string, duration time.Duration)
}

type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	// RateLimit caps outbound requests per second. Zero disables limiting.
	RateLimit          float64
	ResilienceExecutor *resilience.Executor
	Observer           CallObserver
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	observer   CallObserver
}

func New(apiURL, baseID, apiKey string) *Client {
	return NewWithOptions(apiURL, baseID, apiKey, Options{})
}

func NewWithOptions(apiURL, baseID, apiKey string, options Options) *Client {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if options.RateLimit > 0 {
		burst := int(options.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(options.RateLimit), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(apiURL, "/") + "/" + url.PathEscape(baseID),
		apiKey:     apiKey,
		httpClient: httpClient,
		limiter:    limiter,
		executor:   options.ResilienceExecutor,
		observer:   options.Observer,
	}
}

type listPage struct {
	Records []domain.Record `json:"records"`
	Offset  string          `json:"offset"`
}

// List returns every record matching opts, following continuation tokens
// until the store stops sending one or MaxRecords is reached.
func (c *Client) List(ctx context.Context, table string, opts domain.ListOptions) ([]domain.Record, error) {
	records := make([]domain.Record, 0)
	offset := ""
	for {
		query := listQuery(opts, offset)
		var page listPage
		if err := c.do(ctx, call{
			operation: "list",
			method:    http.MethodGet,
			table:     table,
			query:     query,
		}, &page); err != nil {
			return nil, err
		}

		for i := range page.Records {
			normalizeRecord(&page.Records[i])
		}
		records = append(records, page.Records...)
		if opts.MaxRecords > 0 && len(records) >= opts.MaxRecords {
			return records[:opts.MaxRecords], nil
		}
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

func (c *Client) Get(ctx context.Context, table, id string) (*domain.Record, error) {
	var rec domain.Record
	if err := c.do(ctx, call{
		operation: "get",
		method:    http.MethodGet,
		table:     table,
		recordID:  id,
	}, &rec); err != nil {
		return nil, err
	}
	return normalizeRecord(&rec), nil
}

func (c *Client) Create(ctx context.Context, table string, fields domain.Fields) (*domain.Record, error) {
	var rec domain.Record
	if err := c.do(ctx, call{
		operation: "create",
		method:    http.MethodPost,
		table:     table,
		payload:   map[string]any{"fields": fields},
	}, &rec); err != nil {
		return nil, err
	}
	return normalizeRecord(&rec), nil
}

func (c *Client) Update(ctx context.Context, table, id string, fields domain.Fields) (*domain.Record, error) {
	var rec domain.Record
	if err := c.do(ctx, call{
		operation: "update",
		method:    http.MethodPatch,
		table:     table,
		recordID:  id,
		payload:   map[string]any{"fields": fields},
	}, &rec); err != nil {
		return nil, err
	}
	return normalizeRecord(&rec), nil
}

func (c *Client) Delete(ctx context.Context, table, id string) error {
	var resp struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	}
	if err := c.do(ctx, call{
		operation: "delete",
		method:    http.MethodDelete,
		table:     table,
		recordID:  id,
	}, &resp); err != nil {
		return err
	}
	if !resp.Deleted {
		return domain.NewError(domain.ErrRemoteStore, "airtable.delete", fmt.Sprintf("record %s was not deleted", id))
	}
	return nil
}

func listQuery(opts domain.ListOptions, offset string) url.Values {
	query := url.Values{}
	if opts.Filter != "" {
		query.Set("filterByFormula", opts.Filter)
	}
	if opts.MaxRecords > 0 {
		query.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
	}
	if opts.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	for i, s := range opts.Sort {
		query.Set(fmt.Sprintf("sort[%d][field]", i), s.Field)
		direction := s.Direction
		if direction == "" {
			direction = domain.SortAsc
		}
		query.Set(fmt.Sprintf("sort[%d][direction]", i), string(direction))
	}
	if opts.View != "" {
		query.Set("view", opts.View)
	}
	if offset != "" {
		query.Set("offset", offset)
	}
	return query
}

func normalizeRecord(rec *domain.Record) *domain.Record {
	if rec.Fields == nil {
		rec.Fields = domain.Fields{}
	}
	return rec
}
