package group_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/validation"
	"github.com/fkhayef/splitledger/pkg/middleware"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func serve(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	return serveAs(t, h, "u1", method, target, body)
}

func serveAs(t *testing.T, h http.Handler, userID, method, target, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(middleware.DevUserHeader, userID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := group.NewService(seeded(t), validation.New(), discard())
	r := chi.NewRouter()
	r.Use(middleware.DevUserMiddleware)
	r.Mount("/groups", group.NewHandler(svc, discard()).Routes())
	return r
}

func TestHandler_Create(t *testing.T) {
	r := newRouter(t)

	rec, resp := serve(t, r, http.MethodPost, "/groups",
		`{"name":"Dinner","type":"meal","members":[{"name":"Alice","email":"alice@example.com"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var g group.GroupResponse
	require.NoError(t, json.Unmarshal(resp.Data, &g))
	assert.Equal(t, "Dinner", g.Name)
	require.Len(t, g.Members, 1)
	assert.Equal(t, "u1", g.Members[0].UserID)
	assert.Equal(t, "0.00", g.Members[0].Balance)

	rec, resp = serve(t, r, http.MethodPost, "/groups", `{"name":"","members":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)

	rec, _ = serve(t, r, http.MethodPost, "/groups", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Members(t *testing.T) {
	r := newRouter(t)

	rec, _ := serve(t, r, http.MethodPost, "/groups/g1/members", `{"name":"Dan","email":"dan@example.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := serve(t, r, http.MethodGet, "/groups/g1/members", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var members []group.MemberResponse
	require.NoError(t, json.Unmarshal(resp.Data, &members))
	assert.Len(t, members, 4)

	rec, _ = serve(t, r, http.MethodDelete, "/groups/g1/members/C", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = serve(t, r, http.MethodDelete, "/groups/g1/members/C", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	rec, _ = serve(t, r, http.MethodGet, "/groups/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Balances(t *testing.T) {
	r := newRouter(t)

	rec, resp := serve(t, r, http.MethodGet, "/groups/g1/balances", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report group.BalanceReportResponse
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.Len(t, report.Balances, 3)
	assert.Equal(t, 0, report.Summary.Count)
	assert.Equal(t, "0.00", report.Summary.Total)
}

func TestHandler_List(t *testing.T) {
	r := newRouter(t)

	rec, resp := serve(t, r, http.MethodGet, "/groups?page=1&per_page=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var groups []group.GroupResponse
	require.NoError(t, json.Unmarshal(resp.Data, &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "g1", groups[0].ID)
}

func TestHandler_Forbidden(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name   string
		user   string
		method string
		target string
		body   string
	}{
		{name: "outsider reads the group", user: "stranger", method: http.MethodGet, target: "/groups/g1"},
		{name: "outsider lists members", user: "stranger", method: http.MethodGet, target: "/groups/g1/members"},
		{name: "outsider reads balances", user: "stranger", method: http.MethodGet, target: "/groups/g1/balances"},
		{name: "member adds someone", user: "u2", method: http.MethodPost, target: "/groups/g1/members", body: `{"name":"Eve","email":"eve@example.com"}`},
		{name: "member removes someone", user: "u2", method: http.MethodDelete, target: "/groups/g1/members/C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := serveAs(t, r, tt.user, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "FORBIDDEN", resp.Error.Code)
		})
	}

	rec, _ := serveAs(t, r, "u2", http.MethodGet, "/groups/g1", "")
	assert.Equal(t, http.StatusOK, rec.Code, "linked members can read the group")
}
