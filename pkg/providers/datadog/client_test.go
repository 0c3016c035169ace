package datadog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const monitorJSON = `{
  "id": %d,
  "name": "{{#is_alert}}High memory: {{value}}%%{{/is_alert}}",
  "query": "avg(last_5m):avg:system.mem.pct_usable{env:prod} by {host} > 90",
  "tags": ["env:prod", "service:redis"],
  "overall_state": "%s",
  "options": {
    "silenced": %s,
    "thresholds": {"critical": 90, "warning": 80}
  },
  "state": {
    "groups": {
      "host:redis-1": {"name": "host:redis-1", "status": "Alert", "last_value": 95.5, "last_triggered_ts": 1700000000},
      "host:redis-2": {"name": "host:redis-2", "status": "No Data", "last_value": 1.0, "last_nodata_ts": 1700000100},
      "host:redis-3": {"name": "host:redis-3", "status": "Warn", "last_value": "n/a"},
      "host:redis-4": {"name": "host:redis-4", "status": "OK", "last_value": null}
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, pageSize int) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Options{
		APIKey:     "api-key",
		AppKey:     "app-key",
		BaseURL:    server.URL,
		PageSize:   pageSize,
		HTTPClient: server.Client(),
	})
}

func TestFetchMonitorsPaginates(t *testing.T) {
	var pages []string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/monitor", r.URL.Path)
		assert.Equal(t, "api-key", r.Header.Get("DD-API-KEY"))
		assert.Equal(t, "app-key", r.Header.Get("DD-APPLICATION-KEY"))
		assert.Equal(t, "all", r.URL.Query().Get("group_states"))
		assert.Equal(t, "2", r.URL.Query().Get("page_size"))

		page := r.URL.Query().Get("page")
		pages = append(pages, page)

		switch page {
		case "0":
			fmt.Fprintf(w, "[%s,%s]", fmt.Sprintf(monitorJSON, 1, "Alert", "{}"), fmt.Sprintf(monitorJSON, 2, "OK", "{}"))
		default:
			fmt.Fprintf(w, "[%s]", fmt.Sprintf(monitorJSON, 3, "Warn", `{"*": null}`))
		}
	}, 2)

	records, err := client.FetchMonitors(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, pages)
	require.Len(t, records, 3)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, mstypes.StatusAlerting, records[0].Status)
	assert.Equal(t, mstypes.StatusHealthy, records[1].Status)
	assert.False(t, records[1].Paused)
	assert.True(t, records[2].Paused)
}

func TestMonitorConversion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/monitor/7", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("group_states"))
		fmt.Fprintf(w, monitorJSON, 7, "No Data", "{}")
	}, 0)

	record, err := client.GetMonitor(context.Background(), "7")
	require.NoError(t, err)

	assert.Equal(t, mstypes.StatusNoData, record.Status)
	assert.Equal(t, "https://app.datadoghq.eu/monitors/7", record.Link)
	assert.Equal(t, []string{"env:prod", "service:redis"}, record.Tags)
	require.Len(t, record.Groups, 4)

	alert := record.Groups["host:redis-1"]
	assert.Equal(t, mstypes.StatusAlerting, alert.Status)
	require.NotNil(t, alert.CurrentValue)
	assert.Equal(t, 95.5, *alert.CurrentValue)
	require.NotNil(t, alert.Threshold)
	assert.Equal(t, 90.0, *alert.Threshold)

	noData := record.Groups["host:redis-2"]
	assert.Equal(t, mstypes.StatusNoData, noData.Status)
	assert.Nil(t, noData.CurrentValue)
	assert.Nil(t, noData.Threshold)

	warn := record.Groups["host:redis-3"]
	assert.Nil(t, warn.CurrentValue, "non-numeric values are dropped")
	require.NotNil(t, warn.Threshold)
	assert.Equal(t, 80.0, *warn.Threshold)

	assert.Len(t, record.ActiveGroups(), 3)
}

func TestMonitorWithoutGroups(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 9, "name": "Redis memory", "overall_state": "Alert"}`)
	}, 0)

	record, err := client.GetMonitor(context.Background(), "9")
	require.NoError(t, err)
	assert.Nil(t, record.Groups)
	assert.False(t, record.Paused)
}

func TestSearchMonitorsFollowsPageCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/monitor/search", r.URL.Path)
		assert.Equal(t, `status:Alert`, r.URL.Query().Get("query"))

		switch r.URL.Query().Get("page") {
		case "0":
			fmt.Fprint(w, `{"monitors": [{"id": 1, "name": "a", "status": "Alert", "metrics": ["redis.mem.used"]}], "metadata": {"page": 0, "page_count": 2, "per_page": 1, "total_count": 2}}`)
		case "1":
			fmt.Fprint(w, `{"monitors": [{"id": 2, "name": "b", "status": "No Data"}], "metadata": {"page": 1, "page_count": 2, "per_page": 1, "total_count": 2}}`)
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	}, 0)

	records, err := client.SearchMonitors(context.Background(), "status:Alert")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, []string{"redis.mem.used"}, records[0].Metrics)
	assert.Equal(t, mstypes.StatusNoData, records[1].Status)
}

func TestUnexpectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"errors": ["Forbidden"]}`)
	}, 0)

	_, err := client.FetchMonitors(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "Forbidden")
}

func TestParseState(t *testing.T) {
	assert.Equal(t, mstypes.StatusHealthy, ParseState("OK"))
	assert.Equal(t, mstypes.StatusAlerting, ParseState("Alert"))
	assert.Equal(t, mstypes.StatusWarning, ParseState("Warn"))
	assert.Equal(t, mstypes.StatusNoData, ParseState("No Data"))
	assert.Equal(t, mstypes.StatusUnknown, ParseState("Ignored"))
	assert.Equal(t, mstypes.StatusUnknown, ParseState(""))
}
