package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/hongminglow/ledgerdash/internal/apiclient"
	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/session"
	"github.com/hongminglow/ledgerdash/internal/storage/memory"
	"github.com/hongminglow/ledgerdash/internal/store"
)

// TestAuthIntegration logs in through the local server against a live backend
// and loads the role's dashboard.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_API_INTEGRATION") != "true" {
		t.Skip("set RUN_API_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	baseURL := mustGetEnv(t, "API_BASE_URL")
	phone := mustGetEnv(t, "INTEGRATION_PHONE")
	password := mustGetEnv(t, "INTEGRATION_PASSWORD")

	logger := zaptest.NewLogger(t)
	client := apiclient.New(apiclient.Config{BaseURL: baseURL}, logger)
	sessions := session.NewManager(client, memory.New(), logger)
	sessions.Bind(client)
	st := store.New(client, decimal.NewFromInt(3), logger)

	mux := http.NewServeMux()
	NewAuthHandler(sessions, st, logger).Register(mux)
	NewDashboardHandler(sessions, st).Register(mux)

	ts := httptest.NewServer(mux)
	defer ts.Close()
	noRedirect := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	user := requestLogin(t, noRedirect, ts.URL, phone, password)
	if !user.Role.Valid() || strings.TrimSpace(user.ID) == "" {
		t.Fatalf("login returned unusable user: %+v", user)
	}

	resp, err := noRedirect.Get(ts.URL + user.Role.HomePath())
	if err != nil {
		t.Fatalf("dashboard request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}

	t.Logf("logged in as %s (%s) and loaded %s", user.Name, user.Role, user.Role.HomePath())
}

func requestLogin(t *testing.T, client *http.Client, baseURL, phone, password string) models.User {
	t.Helper()
	body, err := json.Marshal(map[string]string{"phone": phone, "password": password})
	if err != nil {
		t.Fatalf("marshal login payload: %v", err)
	}
	resp, err := client.Post(fmt.Sprintf("%s/login", baseURL), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var out struct {
		Data struct {
			User models.User `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return out.Data.User
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
