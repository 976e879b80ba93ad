package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/server"
	"github.com/fkhayef/splitledger/internal/settlement"
	"github.com/fkhayef/splitledger/internal/storage/memory"
	"github.com/fkhayef/splitledger/internal/validation"
	"github.com/fkhayef/splitledger/pkg/middleware"
)

func newServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	v := validation.New()

	groups := group.NewService(store, v, logger)
	expenses := expense.NewService(store, v, split.NewSplitStrategyFactory(), logger)
	settlements := settlement.NewService(store, expenses, v, logger)

	router := server.New(
		server.Options{AllowedOrigins: []string{"*"}, JWTSecret: secret},
		group.NewHandler(groups, logger),
		expense.NewHandler(expenses, logger),
		settlement.NewHandler(settlements, logger),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t      *testing.T
	base   string
	header http.Header
}

func (c *client) do(method, path, body string) (int, json.RawMessage) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	require.NoError(c.t, err)
	req.Header = c.header.Clone()
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(c.t, json.Unmarshal(raw, &envelope))
	}
	return resp.StatusCode, envelope.Data
}

func TestRouter_Health(t *testing.T) {
	srv := newServer(t, "")
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_EndToEnd(t *testing.T) {
	srv := newServer(t, "")
	c := &client{t: t, base: srv.URL + "/api/v1", header: http.Header{middleware.DevUserHeader: {"u1"}}}

	status, data := c.do(http.MethodPost, "/groups", `{"name":"Ski trip","type":"trip","members":[
		{"name":"Alice","email":"alice@example.com"},
		{"name":"Bob","email":"bob@example.com"},
		{"name":"Carol","email":"carol@example.com"}]}`)
	require.Equal(t, http.StatusCreated, status)

	var g group.GroupResponse
	require.NoError(t, json.Unmarshal(data, &g))
	require.Len(t, g.Members, 3)
	alice, bob, carol := g.Members[0].ID, g.Members[1].ID, g.Members[2].ID

	status, _ = c.do(http.MethodPost, "/expenses", `{"group_id":"`+g.ID+`","description":"Cabin","amount":"90","split_type":"EQUAL"}`)
	require.Equal(t, http.StatusCreated, status)

	status, data = c.do(http.MethodGet, "/groups/"+g.ID+"/settlement", "")
	require.Equal(t, http.StatusOK, status)
	var plan settlement.SuggestionResponse
	require.NoError(t, json.Unmarshal(data, &plan))
	require.Len(t, plan.Transfers, 2)
	assert.Equal(t, bob, plan.Transfers[0].From)
	assert.Equal(t, alice, plan.Transfers[0].To)
	assert.Equal(t, "30.00", plan.Transfers[0].Amount)

	for _, from := range []string{bob, carol} {
		status, _ = c.do(http.MethodPost, "/groups/"+g.ID+"/settlements", `{"from":"`+from+`","to":"`+alice+`","amount":"30"}`)
		require.Equal(t, http.StatusCreated, status)
	}

	status, data = c.do(http.MethodGet, "/groups/"+g.ID+"/balances", "")
	require.Equal(t, http.StatusOK, status)
	var report group.BalanceReportResponse
	require.NoError(t, json.Unmarshal(data, &report))
	for _, b := range report.Balances {
		assert.Equal(t, "0.00", b.Net, b.MemberName)
	}
	assert.Equal(t, 3, report.Summary.Count)
}

func TestRouter_RequiresJSON(t *testing.T) {
	srv := newServer(t, "")
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/groups", strings.NewReader(`name=x`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestRouter_JWT(t *testing.T) {
	srv := newServer(t, "s3cret")

	anonymous := &client{t: t, base: srv.URL + "/api/v1", header: http.Header{}}
	status, _ := anonymous.do(http.MethodGet, "/groups", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := middleware.NewAuthenticator("s3cret").Issue("u7", time.Hour)
	require.NoError(t, err)

	authed := &client{t: t, base: srv.URL + "/api/v1", header: http.Header{"Authorization": {"Bearer " + token}}}
	status, data := authed.do(http.MethodPost, "/groups", `{"name":"Flat","members":[{"name":"Gus","email":"gus@example.com"}]}`)
	require.Equal(t, http.StatusCreated, status)

	var g group.GroupResponse
	require.NoError(t, json.Unmarshal(data, &g))
	assert.Equal(t, "u7", g.CreatedBy)
	assert.Equal(t, "u7", g.Members[0].UserID)
}
