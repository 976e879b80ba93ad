package expense_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/pkg/middleware"
)

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Use(middleware.DevUserMiddleware)
	r.Mount("/expenses", expense.NewHandler(newService(seeded(t)), discard()).Routes())
	return r
}

func call(t *testing.T, h http.Handler, method, target, body string) (int, apiResponse) {
	t.Helper()
	return callAs(t, h, "u1", method, target, body)
}

func callAs(t *testing.T, h http.Handler, userID, method, target, body string) (int, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(middleware.DevUserHeader, userID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestHandler_CreateAndFetch(t *testing.T) {
	r := newRouter(t)

	status, resp := call(t, r, http.MethodPost, "/expenses",
		`{"group_id":"g1","description":"Dinner","amount":"100","split_type":"EQUAL"}`)
	require.Equal(t, http.StatusCreated, status)

	var created expense.ExpenseResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "100.00", created.Amount)
	assert.Equal(t, "A", created.PaidBy)
	require.Len(t, created.Splits, 3)
	assert.Equal(t, "33.34", created.Splits[0].Amount)
	require.NotNil(t, created.Splits[0].Percentage)
	assert.Equal(t, "33.34", *created.Splits[0].Percentage)
	require.Len(t, created.Balances, 3)
	assert.Equal(t, "66.66", created.Balances[0].Net)

	status, resp = call(t, r, http.MethodGet, "/expenses/"+created.ID, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, r, http.MethodPost, "/expenses/"+created.ID+"/splits/B/settle", "")
	assert.Equal(t, http.StatusOK, status)

	status, resp = call(t, r, http.MethodGet, "/expenses/group/g1", "")
	require.Equal(t, http.StatusOK, status)
	var list []expense.ExpenseResponse
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].Splits[1].Settled)

	status, _ = call(t, r, http.MethodDelete, "/expenses/"+created.ID, "")
	assert.Equal(t, http.StatusOK, status)

	status, resp = call(t, r, http.MethodGet, "/expenses/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "malformed body",
			body:   `{"amount":`,
			status: http.StatusBadRequest,
			code:   "BAD_REQUEST",
		},
		{
			name:   "validation",
			body:   `{"group_id":"g1","description":"","amount":"-1","split_type":"EQUAL"}`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_FAILED",
		},
		{
			name:   "unknown member",
			body:   `{"group_id":"g1","description":"Taxi","amount":"10","paid_by":"Q","split_type":"EQUAL"}`,
			status: http.StatusUnprocessableEntity,
			code:   "UNKNOWN_MEMBER",
		},
		{
			name: "mismatch",
			body: `{"group_id":"g1","description":"Hotel","amount":"100","split_type":"EXACT",
				"shares":[{"member_id":"A","amount":"50"},{"member_id":"B","amount":"45"}]}`,
			status: http.StatusBadRequest,
			code:   "SPLIT_AMOUNT_MISMATCH",
		},
		{
			name: "unassigned item",
			body: `{"group_id":"g1","description":"Lunch","amount":"10","split_type":"ITEM_WISE",
				"items":[{"name":"Soup","price":"10","assigned_to":[]}]}`,
			status: http.StatusBadRequest,
			code:   "UNASSIGNED_ITEM",
		},
		{
			name:   "missing group",
			body:   `{"group_id":"nope","description":"Taxi","amount":"10","split_type":"EQUAL"}`,
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := call(t, newRouter(t), http.MethodPost, "/expenses", tt.body)
			assert.Equal(t, tt.status, status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandler_Preview(t *testing.T) {
	status, resp := call(t, newRouter(t), http.MethodPost, "/expenses/preview",
		`{"group_id":"g1","description":"Fuel","amount":"10","paid_by":"B","split_type":"PERCENTAGE",
		  "shares":[{"member_id":"A","percentage":"33.33"},{"member_id":"B","percentage":"33.33"},{"member_id":"C","percentage":"33.34"}]}`)
	require.Equal(t, http.StatusOK, status)

	var preview expense.ExpenseResponse
	require.NoError(t, json.Unmarshal(resp.Data, &preview))
	assert.Empty(t, preview.ID)
	require.Len(t, preview.Splits, 3)
	assert.Equal(t, "3.34", preview.Splits[2].Amount)
}

func TestHandler_Forbidden(t *testing.T) {
	r := newRouter(t)

	status, resp := call(t, r, http.MethodPost, "/expenses",
		`{"group_id":"g1","description":"Dinner","amount":"30","split_type":"EQUAL"}`)
	require.Equal(t, http.StatusCreated, status)
	var created expense.ExpenseResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	tests := []struct {
		name   string
		user   string
		method string
		target string
		body   string
	}{
		{name: "create outside the group", user: "stranger", method: http.MethodPost, target: "/expenses",
			body: `{"group_id":"g1","description":"Taxi","amount":"10","paid_by":"A","split_type":"EQUAL"}`},
		{name: "preview outside the group", user: "stranger", method: http.MethodPost, target: "/expenses/preview",
			body: `{"group_id":"g1","description":"Taxi","amount":"10","paid_by":"A","split_type":"EQUAL"}`},
		{name: "fetch outside the group", user: "stranger", method: http.MethodGet, target: "/expenses/" + created.ID},
		{name: "list outside the group", user: "stranger", method: http.MethodGet, target: "/expenses/group/g1"},
		{name: "delete by a member who did not pay", user: "u2", method: http.MethodDelete, target: "/expenses/" + created.ID},
		{name: "settle someone else's split", user: "u3", method: http.MethodPost, target: "/expenses/" + created.ID + "/splits/B/settle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := callAs(t, r, tt.user, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusForbidden, status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "FORBIDDEN", resp.Error.Code)
		})
	}

	status, _ = callAs(t, r, "u2", http.MethodPost, "/expenses/"+created.ID+"/splits/B/settle", "")
	assert.Equal(t, http.StatusOK, status, "members may flag their own split")
}

func TestHandler_ListFilters(t *testing.T) {
	r := newRouter(t)

	status, _ := call(t, r, http.MethodPost, "/expenses",
		`{"group_id":"g1","description":"Dinner","amount":"30","split_type":"EQUAL"}`)
	require.Equal(t, http.StatusCreated, status)

	today := time.Now().UTC().Format(time.DateOnly)
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)

	count := func(user, target string) int {
		t.Helper()
		status, resp := callAs(t, r, user, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, status, target)
		var list []expense.ExpenseResponse
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		return len(list)
	}

	assert.Equal(t, 1, count("u1", "/expenses/group/g1?start_date="+today+"&end_date="+today), "end date is inclusive")
	assert.Equal(t, 0, count("u1", "/expenses/group/g1?end_date="+yesterday))
	assert.Equal(t, 1, count("u1", "/expenses/group/g1?start_date="+yesterday))
	assert.Equal(t, 1, count("u3", "/expenses/user"))
	assert.Equal(t, 1, count("u3", "/expenses/user?start_date="+today))
	assert.Equal(t, 0, count("stranger", "/expenses/user"))

	for _, target := range []string{
		"/expenses/group/g1?start_date=yesterday",
		"/expenses/group/g1?end_date=2026-13-01",
		"/expenses/user?start_date=" + today + "&end_date=" + yesterday,
	} {
		status, resp := call(t, r, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, status, target)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	}
}

func TestParsePeriod(t *testing.T) {
	period, err := expense.ParsePeriod("2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), period.Since)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), period.Until)

	period, err = expense.ParsePeriod("", "")
	require.NoError(t, err)
	assert.True(t, period.Since.IsZero())
	assert.True(t, period.Until.IsZero())

	_, err = expense.ParsePeriod("2026-03-02", "2026-03-01")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
