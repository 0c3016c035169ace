package datadog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/constants"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
)

var ErrUnexpectedStatus = errors.New("datadog: unexpected response status")

// StatusError carries a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %d %s", ErrUnexpectedStatus, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

type Options struct {
	APIKey string
	AppKey string
	Site   string
	// BaseURL and AppURL override the site-derived hosts.
	BaseURL    string
	AppURL     string
	PageSize   int
	HTTPClient *http.Client
}

// Client reads monitors from the monitor API. It never retries.
type Client struct {
	apiKey   string
	appKey   string
	baseURL  string
	appURL   string
	pageSize int
	http     *http.Client
}

func NewClient(opts Options) *Client {
	site := opts.Site
	if site == "" {
		site = constants.DefaultDatadogSite
	}

	c := &Client{
		apiKey:   opts.APIKey,
		appKey:   opts.AppKey,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		appURL:   strings.TrimRight(opts.AppURL, "/"),
		pageSize: opts.PageSize,
		http:     opts.HTTPClient,
	}

	if c.baseURL == "" {
		c.baseURL = "https://api." + site
	}
	if c.appURL == "" {
		c.appURL = "https://app." + site
	}
	if c.pageSize <= 0 {
		c.pageSize = constants.DatadogPageSize
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: constants.HTTPRequestTimeout}
	}

	return c
}

// FetchMonitors lists every monitor with its group states.
func (c *Client) FetchMonitors(ctx context.Context) ([]mstypes.MonitorRecord, error) {
	var records []mstypes.MonitorRecord

	for page := 0; ; page++ {
		params := url.Values{}
		params.Set("group_states", "all")
		params.Set("with_downtimes", "true")
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(c.pageSize))

		var batch []Monitor
		if err := c.get(ctx, "/api/v1/monitor", params, &batch); err != nil {
			return nil, fmt.Errorf("list monitors page %d: %w", page, err)
		}

		for _, m := range batch {
			records = append(records, m.toRecord(c.appURL))
		}

		if len(batch) < c.pageSize {
			return records, nil
		}
	}
}

// SearchMonitors runs a monitor search query across every result page.
func (c *Client) SearchMonitors(ctx context.Context, query string) ([]mstypes.MonitorRecord, error) {
	var records []mstypes.MonitorRecord

	for page := 0; ; page++ {
		params := url.Values{}
		params.Set("query", query)
		params.Set("page", strconv.Itoa(page))

		var resp SearchResponse
		if err := c.get(ctx, "/api/v1/monitor/search", params, &resp); err != nil {
			return nil, fmt.Errorf("search monitors page %d: %w", page, err)
		}

		for _, m := range resp.Monitors {
			records = append(records, m.toRecord(c.appURL))
		}

		if len(resp.Monitors) == 0 || page+1 >= resp.Metadata.PageCount {
			return records, nil
		}
	}
}

// GetMonitor fetches one monitor with all of its group states.
func (c *Client) GetMonitor(ctx context.Context, id string) (mstypes.MonitorRecord, error) {
	params := url.Values{}
	params.Set("group_states", "all")

	var m Monitor
	if err := c.get(ctx, "/api/v1/monitor/"+url.PathEscape(id), params, &m); err != nil {
		return mstypes.MonitorRecord{}, fmt.Errorf("get monitor %s: %w", id, err)
	}
	return m.toRecord(c.appURL), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("DD-API-KEY", c.apiKey)
	req.Header.Set("DD-APPLICATION-KEY", c.appKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
