package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hongminglow/ledgerdash/internal/apiclient"
	"github.com/hongminglow/ledgerdash/internal/http/respond"
	"github.com/hongminglow/ledgerdash/internal/session"
	"github.com/hongminglow/ledgerdash/internal/storage/memory"
	"github.com/hongminglow/ledgerdash/internal/store"
)

// backend fakes the dashboard API for a staff user with two branches.
func backend(t *testing.T, expired *atomic.Bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		write(w, `{"success":true,"data":{"token":"tok","_id":"u1","name":"Asha","phone":"9876543210","role":"staff","branches":["b1","b2"]}}`)
	})
	mux.HandleFunc("GET /staff/branches", func(w http.ResponseWriter, r *http.Request) {
		write(w, `{"success":true,"data":[
			{"_id":"b1","name":"North","code":"NR1","clientId":{"_id":"c1","name":"Acme"}},
			{"_id":"b2","name":"South","code":"ST2","clientId":{"_id":"c2","name":"Blue"}}]}`)
	})
	mux.HandleFunc("GET /staff/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if expired.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			write(w, `{"success":false,"message":"Token expired"}`)
			return
		}
		write(w, `{"success":true,"data":{"totalCredits":1000,"totalDebits":0,"commission":30,"transactionCount":1}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestMux(t *testing.T, expired *atomic.Bool) *http.ServeMux {
	t.Helper()
	logger := zaptest.NewLogger(t)
	client := apiclient.New(apiclient.Config{BaseURL: backend(t, expired).URL}, logger)
	sessions := session.NewManager(client, memory.New(), logger)
	sessions.Bind(client)
	st := store.New(client, decimal.NewFromInt(3), logger)
	sessions.SetNavigator(session.NavigatorFunc(st.Reset))

	mux := http.NewServeMux()
	NewAuthHandler(sessions, st, logger).Register(mux)
	NewAdminHandler(sessions, st).Register(mux)
	NewDashboardHandler(sessions, st).Register(mux)
	NewTransactionHandler(sessions, st).Register(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) respond.Envelope {
	t.Helper()
	var env struct {
		respond.Envelope
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.Envelope
}

func login(t *testing.T, h http.Handler) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/login", map[string]string{"phone": "9876543210", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	mux := newTestMux(t, &atomic.Bool{})

	for _, path := range []string{"/admin/clients", "/staff/dashboard", "/client/transactions"} {
		rec := do(t, mux, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}

	rec := do(t, mux, http.MethodGet, "/", nil)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLoginValidation(t *testing.T) {
	mux := newTestMux(t, &atomic.Bool{})

	rec := do(t, mux, http.MethodPost, "/login", map[string]string{"phone": "12", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "Please enter a valid 10-digit phone number", env.Message)

	rec = do(t, mux, http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaffFlow(t *testing.T) {
	mux := newTestMux(t, &atomic.Bool{})
	login(t, mux)

	rec := do(t, mux, http.MethodGet, "/", nil)
	assert.Equal(t, "/staff/dashboard", rec.Header().Get("Location"))

	rec = do(t, mux, http.MethodGet, "/admin/clients", nil)
	assert.Equal(t, http.StatusFound, rec.Code, "staff cannot open admin screens")

	var draft struct {
		BranchID string `json:"branchId"`
		ClientID string `json:"clientId"`
	}
	rec = do(t, mux, http.MethodGet, "/staff/transactions/draft", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &draft)
	assert.Equal(t, "b1", draft.BranchID)
	assert.Equal(t, "c1", draft.ClientID)

	var dash struct {
		BranchID string `json:"branchId"`
	}
	rec = do(t, mux, http.MethodGet, "/staff/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &dash)
	assert.Equal(t, "b1", dash.BranchID)

	rec = do(t, mux, http.MethodGet, "/staff/dashboard?branchId=b9", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, mux, http.MethodPost, "/session/branch", map[string]string{"branchId": "b9"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, mux, http.MethodPost, "/session/branch", map[string]string{"branchId": "b2"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currentBranch":"b2"`)
}

func TestPreviewUsesDefaultRate(t *testing.T) {
	mux := newTestMux(t, &atomic.Bool{})
	login(t, mux)

	var preview struct {
		DisplayText string `json:"displayText"`
	}
	rec := do(t, mux, http.MethodPost, "/transactions/preview", map[string]any{"amount": 1000, "type": "credit"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &preview)
	assert.Equal(t, "You will receive: ₹970.00 (₹1000.00 - ₹30.00 fee)", preview.DisplayText)

	rec = do(t, mux, http.MethodPost, "/transactions/preview", map[string]any{"amount": 1000, "type": "refund"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnauthorizedMidSessionRedirects(t *testing.T) {
	expired := &atomic.Bool{}
	mux := newTestMux(t, expired)
	login(t, mux)

	rec := do(t, mux, http.MethodGet, "/staff/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The request that receives the 401 is itself redirected, even though
	// the expiry also reset the cached dashboard mid-fetch.
	expired.Store(true)
	rec = do(t, mux, http.MethodGet, "/staff/dashboard", nil)
	assert.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = do(t, mux, http.MethodGet, "/session", nil)
	assert.True(t, strings.Contains(rec.Body.String(), `"state":"unauthenticated"`))

	rec = do(t, mux, http.MethodGet, "/staff/transactions/draft", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}
