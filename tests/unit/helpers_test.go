package unit

import (
	"encoding/json"
	"strings"
	"testing"

	"app/internal/usecase"
)

func mustDecodeJSON(t *testing.T, body []byte, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json.Unmarshal failed: %v body=%s", err, string(body))
	}
}

// usecaseのHTTPErrorをstatusとメッセージで検証する
func assertHTTPError(t *testing.T, err error, status int, contains string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %T: %v", err, err)
	}
	if he.Status != status {
		t.Fatalf("expected status %d, got %d (%s)", status, he.Status, he.Message)
	}
	if contains != "" && !strings.Contains(he.Message, contains) {
		t.Fatalf("expected message to contain %q, got %q", contains, he.Message)
	}
}

// usecaseに渡すロガー（テストでは捨てる）
type nopLogger struct{}

func (nopLogger) Warnf(format string, args ...interface{}) {}
