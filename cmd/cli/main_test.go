package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", srv.URL, "--actor", "controller"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1})

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestConsistencyCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ledger/consistency" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"consistent","consistent":true}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "ledger", "consistency")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "PASSED") {
		t.Fatalf("expected PASSED, got %q", out)
	}
}

func TestConsistencyCmdInconsistent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"status":"inconsistent","consistent":false}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "ledger", "consistency")
	if err == nil {
		t.Fatal("expected error for inconsistent ledger")
	}
	if !strings.Contains(out, "FAILED") {
		t.Fatalf("expected FAILED, got %q", out)
	}
}

func TestTrialBalanceCmdPassesDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("as_of"); got != "2024-03-31" {
			t.Errorf("expected as_of 2024-03-31, got %q", got)
		}
		_, _ = w.Write([]byte(`{"as_of":"2024-03-31","balanced":true}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "ledger", "trial-balance", "--as-of", "2024-03-31")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, `"balanced": true`) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEntryReverseCmd(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/journal-entries/je-1/reverse" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Actor-ID") != "controller" {
			t.Errorf("expected actor header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"je-2","number":"JE-1-R"}`))
	}))
	defer srv.Close()

	if _, err := runCLI(t, srv, "entry", "reverse", "je-1", "--reason", "duplicate"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if got["reason"] != "duplicate" || got["by"] != "controller" {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestEntryReverseCmdRequiresReason(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := runCLI(t, srv, "entry", "reverse", "je-1"); err == nil {
		t.Fatal("expected missing reason to fail")
	}
}

func TestPeriodCloseCmdByOverridesActor(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"period":{"id":"p-1","is_closed":true}}`))
	}))
	defer srv.Close()

	if _, err := runCLI(t, srv, "period", "close", "p-1", "--by", "cfo"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if got["by"] != "cfo" {
		t.Fatalf("expected by=cfo, got %v", got)
	}
}

func TestPeriodCloseCmdReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/periods/p-1/closing/run" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"closing validation failed"}`))
	}))
	defer srv.Close()

	_, err := runCLI(t, srv, "period", "close", "p-1")
	if err == nil || !strings.Contains(err.Error(), "409") {
		t.Fatalf("expected 409 error, got %v", err)
	}
}

func TestMigrateDownRejectsZeroSteps(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := runCLI(t, srv, "migrate", "down", "--steps", "0", "--database-url", "postgres://localhost/none")
	if err == nil || !strings.Contains(err.Error(), "steps must be positive") {
		t.Fatalf("expected steps error, got %v", err)
	}
}
