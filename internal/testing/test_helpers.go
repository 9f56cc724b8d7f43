// test_helpers.go - integration suite over a temporary sqlite store
package testing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"frontoffice/internal/api"
	"frontoffice/internal/data"
	"frontoffice/internal/finance"
	"frontoffice/internal/security"
	"frontoffice/internal/state"
)

// Credentials of the user every suite starts with.
const (
	AdminEmail    = "admin@frontoffice.test"
	AdminPassword = "correct horse battery staple"
)

// TestConfig holds configuration for test runs
type TestConfig struct {
	DBPath           string
	BackupDir        string
	TestDataDir      string
	PlayerSeasonYear int
}

// TestSuite runs the full HTTP stack against a temporary sqlite database.
type TestSuite struct {
	Config   TestConfig
	Server   *httptest.Server
	Client   *http.Client
	Store    *data.SQLStore
	State    *state.State
	Sessions *security.Sessions
	mu       sync.Mutex
	reqCount int
}

// NewTestSuite creates a new test suite with a fresh database
func NewTestSuite(t *testing.T) *TestSuite {
	t.Helper()

	testDir := t.TempDir()
	config := TestConfig{
		DBPath:           filepath.Join(testDir, fmt.Sprintf("test_%d.db", time.Now().UnixNano())),
		BackupDir:        filepath.Join(testDir, "backup"),
		TestDataDir:      testDir,
		PlayerSeasonYear: time.Now().Year(),
	}

	suite := &TestSuite{
		Config: config,
		Client: &http.Client{Timeout: 30 * time.Second},
	}

	if err := suite.InitDatabase(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	sessions := security.NewSessions(suite.State, time.Hour)
	suite.Sessions = sessions

	mux := http.NewServeMux()
	api.NewServer(suite.State, sessions, finance.NewAggregator(config.PlayerSeasonYear)).Routes(mux)
	suite.Server = httptest.NewServer(mux)

	t.Cleanup(func() {
		suite.Cleanup()
	})

	return suite
}

// InitDatabase opens the sqlite store, loads state and creates the admin user.
func (ts *TestSuite) InitDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := data.OpenSQL(ctx, data.DialectSQLite, ts.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open sqlite store: %w", err)
	}
	ts.Store = store

	st, err := state.New(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	ts.State = st

	hash, err := security.HashPassword(AdminPassword)
	if err != nil {
		return err
	}
	if _, err := st.AddUser(ctx, data.User{Name: "Admin", Email: AdminEmail, Password: hash, Role: "admin"}); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

// Cleanup stops the server and closes the database. t.TempDir removes the files.
func (ts *TestSuite) Cleanup() {
	if ts.Server != nil {
		ts.Server.Close()
	}
	if ts.Store != nil {
		if err := ts.Store.Close(); err != nil {
			fmt.Printf("Warning: failed to close test database: %v\n", err)
		}
	}
}

// clientAddress gives each request its own forwarded address, keeping the
// per-client login limit out of the way.
func (ts *TestSuite) clientAddress() string {
	ts.mu.Lock()
	ts.reqCount++
	n := ts.reqCount
	ts.mu.Unlock()
	return fmt.Sprintf("198.51.%d.%d", n/250, n%250)
}

// Login opens a session as the admin user and returns its token.
func (ts *TestSuite) Login(t *testing.T) string {
	t.Helper()
	resp, err := ts.MakeAPIRequest(http.MethodPost, "/api/login",
		map[string]string{"email": AdminEmail, "password": AdminPassword}, "")
	ts.AssertNoError(t, err)
	ts.AssertStatusCode(t, resp, http.StatusOK)

	var sess security.Session
	ts.AssertNoError(t, ts.ParseData(resp, &sess))
	if sess.Token == "" {
		t.Fatal("login returned no token")
	}
	return sess.Token
}

// MakeAPIRequest makes an authenticated API request
func (ts *TestSuite) MakeAPIRequest(method, path string, body interface{}, token string) (*http.Response, error) {
	var reqBody *bytes.Buffer

	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(bodyBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", ts.clientAddress())
	if token != "" {
		req.Header.Set(security.SessionHeader, token)
	}

	return ts.Client.Do(req)
}

// ParseJSONResponse parses a JSON response into the provided interface
func (ts *TestSuite) ParseJSONResponse(resp *http.Response, dest interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(dest)
}

// ParseData unwraps a success envelope into dest.
func (ts *TestSuite) ParseData(resp *http.Response, dest interface{}) error {
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := ts.ParseJSONResponse(resp, &env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("response was not a success envelope")
	}
	return json.Unmarshal(env.Data, dest)
}

// Do sends a request that must succeed with status and decodes its data into
// dest, which may be nil.
func (ts *TestSuite) Do(t *testing.T, method, path string, body interface{}, token string, status int, dest interface{}) {
	t.Helper()
	resp, err := ts.MakeAPIRequest(method, path, body, token)
	ts.AssertNoError(t, err)
	if resp.StatusCode != status {
		var apiErr map[string]interface{}
		ts.ParseJSONResponse(resp, &apiErr)
		t.Fatalf("%s %s: expected status %d, got %d: %v", method, path, status, resp.StatusCode, apiErr)
	}
	if dest == nil {
		resp.Body.Close()
		return
	}
	ts.AssertNoError(t, ts.ParseData(resp, dest))
}

// Reopen reads the snapshot straight from the database, to check what was
// persisted rather than what is in memory.
func (ts *TestSuite) Reopen(t *testing.T) *data.Snapshot {
	t.Helper()
	snap, err := ts.Store.Get(context.Background())
	ts.AssertNoError(t, err)
	return snap
}

// AssertStatusCode checks if response has expected status code
func (ts *TestSuite) AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// AssertNoError fails the test if error is not nil
func (ts *TestSuite) AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if error is nil
func (ts *TestSuite) AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// WriteDataFile writes a JSON data file in the test directory, in the format
// the file store and -import use.
func (ts *TestSuite) WriteDataFile(t *testing.T, name string, doc map[string]interface{}) string {
	t.Helper()
	path := filepath.Join(ts.Config.TestDataDir, name)
	body, err := json.MarshalIndent(doc, "", "  ")
	ts.AssertNoError(t, err)
	ts.AssertNoError(t, os.WriteFile(path, body, 0644))
	return path
}
