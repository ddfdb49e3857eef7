package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"evalportal/internal/app/server"
	"evalportal/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Field   string         `json:"field"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		Environment:        "test",
		RunMigrations:      true,
		RunSeed:            true,
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		SeedAdminName:      "Test Admin",
		SeedDepartmentName: "Administration",
		SeedPositionTitle:  "Administrator",
		MaxBodyBytes:       1048576,
		MaxImportBytes:     4194304,
		LeaderboardLimit:   5,
		RateLimitPerMinute: 1000,
		ShutdownTimeout:    time.Second,
		EmailFrom:          "no-reply@test.local",
	}
}

// startApp skips the test unless TEST_DATABASE_URL points at a database.
func startApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	ts := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})
	return app, ts, cfg
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	env := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &payload)
	if payload.Token == "" {
		t.Fatal("expected login token")
	}
	return payload.Token
}

func doRequest(t *testing.T, client *http.Client, method, url, token string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return resp, raw
}

func jsonStatus(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	resp, raw := doRequest(t, client, method, url, token, body, nil)
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	resp, raw := doRequest(t, client, http.MethodPost, url, token, body, nil)
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return jsonStatus(t, client, http.MethodGet, url, token, nil, http.StatusOK)
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode data %s: %v", string(env.Data), err)
	}
}

func createdID(t *testing.T, env envelope) string {
	t.Helper()
	var payload struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &payload)
	if payload.ID == "" {
		t.Fatalf("expected id in %s", string(env.Data))
	}
	return payload.ID
}

func uploadFile(t *testing.T, client *http.Client, url, token, filename string, content []byte, idempotencyKey string) (*http.Response, []byte) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return resp, raw
}

// closeActiveCycle closes whatever cycle is active so a test can open its own.
func closeActiveCycle(t *testing.T, client *http.Client, baseURL, token string) {
	t.Helper()
	resp, raw := doRequest(t, client, http.MethodGet, baseURL+"/api/v1/cycles/current", token, nil, nil)
	if resp.StatusCode != http.StatusOK {
		return
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode current cycle: %v", err)
	}
	var cycle struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &cycle)
	if cycle.ID != "" {
		postJSON(t, client, baseURL+"/api/v1/cycles/"+cycle.ID+"/deactivate", token, nil)
	}
}

type fixture struct {
	departmentID string
	positionID   string
	employeeID   string
	email        string
	password     string
	categoryID   string
	metricID     string
	metricName   string
	cycleID      string
}

// setupFixture creates a department, position, employee, category, metric and
// an active cycle covering today.
func setupFixture(t *testing.T, client *http.Client, baseURL, adminToken string) fixture {
	t.Helper()
	f := fixture{password: "Employee123!"}

	f.departmentID = createdID(t, postJSON(t, client, baseURL+"/api/v1/departments", adminToken, map[string]any{
		"name": uniqueName("dept"),
	}))
	f.positionID = createdID(t, postJSON(t, client, baseURL+"/api/v1/positions", adminToken, map[string]any{
		"title":        uniqueName("engineer"),
		"departmentId": f.departmentID,
	}))
	f.email = uniqueName("employee") + "@example.com"
	f.employeeID = createdID(t, postJSON(t, client, baseURL+"/api/v1/employees", adminToken, map[string]any{
		"fullName":     "Journey Employee",
		"email":        f.email,
		"role":         "employee",
		"departmentId": f.departmentID,
		"positionId":   f.positionID,
		"password":     f.password,
	}))
	f.categoryID = createdID(t, postJSON(t, client, baseURL+"/api/v1/metric-categories", adminToken, map[string]any{
		"name":   uniqueName("delivery"),
		"weight": 0.5,
	}))
	f.metricName = uniqueName("throughput")
	f.metricID = createdID(t, postJSON(t, client, baseURL+"/api/v1/metrics", adminToken, map[string]any{
		"name":       f.metricName,
		"categoryId": f.categoryID,
		"maxScore":   10,
	}))

	closeActiveCycle(t, client, baseURL, adminToken)
	now := time.Now().UTC()
	f.cycleID = createdID(t, postJSON(t, client, baseURL+"/api/v1/cycles", adminToken, map[string]any{
		"name":      uniqueName("cycle"),
		"startDate": now.AddDate(0, 0, -7).Format("2006-01-02"),
		"endDate":   now.AddDate(0, 1, 0).Format("2006-01-02"),
	}))
	postJSON(t, client, baseURL+"/api/v1/cycles/"+f.cycleID+"/activate", adminToken, nil)
	t.Cleanup(func() {
		doRequest(t, client, http.MethodPost, baseURL+"/api/v1/cycles/"+f.cycleID+"/deactivate", adminToken, nil, nil)
	})
	return f
}
