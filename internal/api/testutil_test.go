package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btafoya/callrecorder/internal/db"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
)

// testSetup contains the test dependencies the recordings handlers need.
type testSetup struct {
	DB *db.DB
}

// setupTestAPI creates a test environment with an in-memory, migrated
// recordings database.
func setupTestAPI(t *testing.T) *testSetup {
	t.Helper()

	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := database.Migrate(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return &testSetup{DB: database}
}

// withURLParams adds chi URL parameters to a request
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	ctx := chi.NewRouteContext()
	for key, value := range params {
		ctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, ctx))
}

// decodeResponse decodes a JSON response into the given interface
func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v (body: %s)", err, rr.Body.String())
	}
}

// assertStatus checks the HTTP status code
func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()

	if rr.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// assertErrorCode checks the error code in an error response
func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if errResp.Error.Code != expectedCode {
		t.Errorf("Expected error code %s, got %s", expectedCode, errResp.Error.Code)
	}
}
