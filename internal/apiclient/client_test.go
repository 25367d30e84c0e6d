package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/"}, zaptest.NewLogger(t))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestDoAttachesBearerTokenWhenPresent(t *testing.T) {
	var gotAuth, gotRequestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
	})
	client.SetTokenSource(staticToken("abc"))

	_, err := client.Clients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestDoOmitsAuthorizationWithoutToken(t *testing.T) {
	var hasAuth bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
	})
	client.SetTokenSource(staticToken(""))

	_, err := client.Branches(context.Background())
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestDoUnauthorizedFiresHookOnlyWithToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"Token expired"}`)
	})
	var calls atomic.Int32
	client.OnUnauthorized(func() { calls.Add(1) })

	_, err := client.Staff(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, int32(0), calls.Load(), "no token was sent")

	client.SetTokenSource(staticToken("expired"))
	_, err = client.Staff(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Token expired", Message(err, ""))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoSurfacesServerMessage(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   string
	}{
		"message field":   {http.StatusBadRequest, `{"success":false,"message":"Branch code exists"}`, "Branch code exists"},
		"error field":     {http.StatusInternalServerError, `{"error":"boom"}`, "boom"},
		"nested error":    {http.StatusConflict, `{"error":{"message":"duplicate"}}`, "duplicate"},
		"not json":        {http.StatusBadGateway, `<html>bad gateway</html>`, "Request failed"},
		"success false":   {http.StatusOK, `{"success":false,"message":"Insufficient balance"}`, "Insufficient balance"},
		"missing success": {http.StatusOK, `{"data":[]}`, "Request failed"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			err := client.DeleteClient(context.Background(), "c1")
			require.Error(t, err)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tc.status, reqErr.Status)
			assert.Equal(t, tc.want, reqErr.Message)
			assert.False(t, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestDoInvalidSuccessBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `not json`)
	})
	err := client.DeleteStaff(context.Background(), "s1")
	assert.EqualError(t, err, "Invalid response from server")
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(Config{BaseURL: url}, zaptest.NewLogger(t))
	_, err := client.Clients(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "Unable to reach the server. Please check your connection.", Message(err, "Failed"))
}

func TestLoginSplitsTokenFromUser(t *testing.T) {
	var body map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{
			"token":"jwt-token","_id":"u1","name":"Asha","phone":"9876543210","role":"staff",
			"branches":[{"_id":"b1","name":"North","code":"N1"},"b2"]}}`)
	})

	data, err := client.Login(context.Background(), dto.LoginRequest{Phone: "9876543210", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"phone": "9876543210", "password": "secret"}, body)
	assert.Equal(t, "jwt-token", data.Token)

	user := data.User()
	assert.Equal(t, models.RoleStaff, user.Role)
	assert.Equal(t, []string{"b1", "b2"}, user.BranchIDs)
	assert.Equal(t, "b1", user.CurrentBranchID)

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "jwt-token")
}

func TestTransactionsAcceptsPaginatedAndBareArrays(t *testing.T) {
	cases := map[string]string{
		"paginated": `{"success":true,"data":{"docs":[{"_id":"t1","type":"credit","amount":100,"commission":3,"finalAmount":97}],"totalDocs":1}}`,
		"bare":      `{"success":true,"data":[{"_id":"t1","type":"credit","amount":100,"commission":3,"finalAmount":97}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var query string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/staff/transactions", r.URL.Path)
				query = r.URL.RawQuery
				writeJSON(w, http.StatusOK, payload)
			})
			txs, err := client.Transactions(context.Background(), models.RoleStaff, dto.TransactionQuery{BranchID: "b1", Limit: 10})
			require.NoError(t, err)
			require.Len(t, txs, 1)
			assert.Equal(t, "t1", txs[0].ID)
			assert.True(t, txs[0].Consistent())
			assert.Equal(t, "branchId=b1&limit=10", query)
		})
	}
}

func TestDashboardIgnoresBranchForClients(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"totalCredits":500,"totalDebits":200,"commission":21,"transactionCount":4,"walletBalance":279}}`)
	})

	summary, err := client.Dashboard(context.Background(), models.RoleClient, "b1")
	require.NoError(t, err)
	require.NotNil(t, summary.WalletBalance)
	assert.True(t, summary.WalletBalance.Equal(decimal.NewFromInt(279)))

	_, err = client.Dashboard(context.Background(), models.RoleAdmin, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"/client/dashboard", "/admin/dashboard?branchId=b1"}, paths)

	_, err = client.Dashboard(context.Background(), models.Role("guest"), "")
	assert.Error(t, err)
}

func TestAssignStaffBranchesSendsEmptyList(t *testing.T) {
	var body map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/staff/s1/assign-branches", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})
	require.NoError(t, client.AssignStaffBranches(context.Background(), "s1", nil))
	assert.Equal(t, map[string][]string{"branchIds": {}}, body)
}

func TestDeleteTransactionEchoesBalance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"transactionId":"t1","newBalance":1200.5}}`)
	})
	res, err := client.DeleteTransaction(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, res.NewBalance)
	assert.Equal(t, "1200.5", res.NewBalance.String())
}
