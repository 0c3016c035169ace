package betterstack

import (
	"bytes"
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

var ErrUnexpectedStatus = errors.New("betterstack: unexpected response status")

// StatusError carries a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %d %s", ErrUnexpectedStatus, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

const dashboardBase = "https://uptime.betterstack.com/team/"

type Options struct {
	APIToken string
	BaseURL  string
	TeamID   string
	PageSize int

	HTTPClient *http.Client
}

// Client talks to the uptime monitor API. It never retries.
type Client struct {
	token    string
	baseURL  string
	teamURL  string
	pageSize int
	http     *http.Client
}

func NewClient(opts Options) *Client {
	c := &Client{
		token:    opts.APIToken,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		pageSize: opts.PageSize,
		http:     opts.HTTPClient,
	}

	if c.baseURL == "" {
		c.baseURL = constants.DefaultBetterStackURL
	}
	team := opts.TeamID
	if team == "" {
		team = constants.DefaultBetterStackTeam
	}
	c.teamURL = dashboardBase + team
	if c.pageSize <= 0 {
		c.pageSize = constants.BetterStackPageSize
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: constants.HTTPRequestTimeout}
	}

	return c
}

// FetchMonitors walks every page until a page is empty or has no next link.
func (c *Client) FetchMonitors(ctx context.Context) ([]mstypes.MonitorRecord, error) {
	var records []mstypes.MonitorRecord

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(c.pageSize))

		var resp ListResponse
		if err := c.do(ctx, http.MethodGet, "/monitors?"+params.Encode(), nil, &resp); err != nil {
			return nil, fmt.Errorf("list monitors page %d: %w", page, err)
		}

		for _, m := range resp.Data {
			records = append(records, m.toRecord(c.teamURL))
		}

		if len(resp.Data) == 0 || resp.Pagination.Next == "" {
			return records, nil
		}
	}
}

// UpdateMonitorCall sets the phone-call escalation flag of one monitor.
func (c *Client) UpdateMonitorCall(ctx context.Context, id string, call bool) error {
	body, err := json.Marshal(callUpdate{Call: call})
	if err != nil {
		return err
	}

	if err := c.do(ctx, http.MethodPatch, "/monitors/"+url.PathEscape(id), body, nil); err != nil {
		return fmt.Errorf("update monitor %s: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
