package log

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSetupProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, flush := Setup(Config{Output: &buf})
	defer flush()

	logger.WithComponent(ComponentLedger).Info("entry added", FieldUserID, "u1")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec[FieldComponent] != ComponentLedger || rec[FieldUserID] != "u1" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestSetupDevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, flush := Setup(Config{Development: true, Output: &buf})
	defer flush()

	logger.Debug("debug line")
	if !strings.Contains(buf.String(), "debug line") {
		t.Fatalf("debug output missing: %q", buf.String())
	}
}

func TestRequestMiddlewareLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger, flush := Setup(Config{Output: &buf})
	defer flush()

	h := RequestMiddleware(logger,
		func(*http.Request) string { return "req-1" },
		func(*http.Request) string { return "10.0.0.1" },
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()).Component() != ComponentHTTP {
			t.Errorf("request logger missing from context")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	out := buf.String()
	for _, want := range []string{`"status_code":418`, `"request_id":"req-1"`, `"client_ip":"10.0.0.1"`, `"level":"WARN"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %q", want, out)
		}
	}
}
