package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const testTenantID = "f3b4958c-52a1-11e7-802a-010203040506"

type requestLog struct {
	mu   sync.Mutex
	seen []string
}

func (l *requestLog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, entry)
}

func (l *requestLog) entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.seen...)
}

func newFakeCenter(t *testing.T) (*httptest.Server, *requestLog) {
	t.Helper()
	seen := &requestLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.add(r.Method + " " + r.URL.RequestURI())
		switch r.URL.Path {
		case "/api/fmc_platform/v1/auth/generatetoken":
			user, pass, ok := r.BasicAuth()
			if !ok || user != "api" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("X-Auth-Access-Token", "access-1")
			w.Header().Set("X-Auth-Refresh-Token", "refresh-1")
			w.Header().Set("DOMAIN_UUID", testTenantID)
			w.WriteHeader(http.StatusNoContent)
		case "/api/fmc_config/v1/domain/" + testTenantID + "/devices/devicerecords":
			if r.Header.Get("X-Auth-Access-Token") != "access-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"items":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, seen
}

func hostArgs(t *testing.T, server *httptest.Server) []string {
	t.Helper()
	parsed, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	return []string{"--host", parsed.Hostname(), "--port", parsed.Port(), "--scheme", "http"}
}

func fixedEnv(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	root := newRootCommand(out, fixedEnv(env))
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginPrintsSessionSummary(t *testing.T) {
	server, _ := newFakeCenter(t)
	args := append([]string{"login"}, hostArgs(t, server)...)

	out, err := run(t, map[string]string{"FMC_USERNAME": "api", "FMC_PASSWORD": "secret"}, args...)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	var summary sessionSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary %q: %v", out, err)
	}
	if summary.TenantID != testTenantID || summary.AuthMode != "token_held" || !summary.HasRefreshToken {
		t.Fatalf("unexpected summary %#v", summary)
	}
	if summary.ExpiresAt == "" || summary.RemainingSeconds <= 0 {
		t.Fatalf("expected a live token expiry, got %#v", summary)
	}
	if strings.Contains(out, "access-1") || strings.Contains(out, "refresh-1") {
		t.Fatalf("summary must not print tokens: %s", out)
	}
}

func TestLoginFlagsOverrideEnvironmentCredentials(t *testing.T) {
	server, _ := newFakeCenter(t)
	args := append([]string{"login", "--username", "api", "--password", "secret"}, hostArgs(t, server)...)
	if _, err := run(t, map[string]string{"FMC_USERNAME": "other", "FMC_PASSWORD": "wrong"}, args...); err != nil {
		t.Fatalf("login with flag credentials: %v", err)
	}
}

func TestLoginRejectedWithoutTokenHeaders(t *testing.T) {
	server, _ := newFakeCenter(t)
	args := append([]string{"login", "--username", "api", "--password", "nope"}, hostArgs(t, server)...)
	if _, err := run(t, nil, args...); err == nil {
		t.Fatalf("expected missing token headers to fail the login")
	}
}

func TestLoginRequiresUsername(t *testing.T) {
	server, seen := newFakeCenter(t)
	args := append([]string{"login"}, hostArgs(t, server)...)
	if _, err := run(t, nil, args...); err == nil {
		t.Fatalf("expected missing username to fail")
	}
	if entries := seen.entries(); len(entries) != 0 {
		t.Fatalf("expected no request without a username, got %v", entries)
	}
}

func TestGetIssuesBearerCallWithQuery(t *testing.T) {
	server, seen := newFakeCenter(t)
	args := append([]string{"get", "devices", "--query", "limit=5"}, hostArgs(t, server)...)

	out, err := run(t, map[string]string{"FMC_USERNAME": "api", "FMC_PASSWORD": "secret"}, args...)
	if err != nil {
		t.Fatalf("get devices: %v", err)
	}
	if out != `{"items":[]}` {
		t.Fatalf("unexpected body %q", out)
	}
	entries := seen.entries()
	if len(entries) != 2 {
		t.Fatalf("expected login plus one call, got %v", entries)
	}
	want := "GET /api/fmc_config/v1/domain/" + testTenantID + "/devices/devicerecords?limit=5"
	if entries[1] != want {
		t.Fatalf("expected %q, got %q", want, entries[1])
	}
}

func TestGetUnknownOperation(t *testing.T) {
	server, seen := newFakeCenter(t)
	args := append([]string{"get", "bogus"}, hostArgs(t, server)...)
	if _, err := run(t, map[string]string{"FMC_USERNAME": "api", "FMC_PASSWORD": "secret"}, args...); err == nil {
		t.Fatalf("expected unknown operation to fail")
	}
	if entries := seen.entries(); len(entries) != 1 {
		t.Fatalf("expected only the login call, got %v", entries)
	}
}

func TestOperationsListsTable(t *testing.T) {
	out, err := run(t, nil, "operations")
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	for _, want := range []string{"OPERATION", "auth.generate_token", "devices", "/api/fmc_platform/v1/info"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFileEnvLoaderReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fmc.yaml")
	content := "host: fmc.example\nport: 8443\ntransport:\n  timeout_seconds: 7\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	raw, err := newFileEnvLoader(path).LoadRaw(context.Background())
	if err != nil {
		t.Fatalf("load raw: %v", err)
	}
	if raw["host"] != "fmc.example" {
		t.Fatalf("expected host from file, got %#v", raw["host"])
	}
	transport, ok := raw["transport"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested transport block, got %#v", raw["transport"])
	}
	if _, ok := transport["timeout_seconds"]; !ok {
		t.Fatalf("expected timeout_seconds in transport block")
	}
}

func TestFileEnvLoaderMissingFile(t *testing.T) {
	if _, err := newFileEnvLoader(filepath.Join(t.TempDir(), "missing.yaml")).LoadRaw(context.Background()); err == nil {
		t.Fatalf("expected missing config file to fail")
	}
}

func TestEnvKeyMapping(t *testing.T) {
	cases := map[string]string{
		"FMC_HOST":                            "host",
		"FMC_SERVICE_NAME":                    "service_name",
		"FMC_TRANSPORT_TIMEOUT_SECONDS":       "transport.timeout_seconds",
		"FMC_FRESHNESS_EXPIRING_SOON_SECONDS": "freshness.expiring_soon_seconds",
	}
	for in, want := range cases {
		if got := envKey(in); got != want {
			t.Fatalf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
	if key, value := envValue("FMC_PORT", "8443"); key != "port" || value != int64(8443) {
		t.Fatalf("expected typed port, got %q=%#v", key, value)
	}
}

func TestEnvValueTypesOnlyKnownKeys(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  any
	}{
		{name: "FMC_SERVICE_NAME", value: "1", want: "1"},
		{name: "FMC_SCHEME", value: "t", want: "t"},
		{name: "FMC_HOST", value: "10", want: "10"},
		{name: "FMC_TRANSPORT_TIMEOUT_SECONDS", value: "7", want: int64(7)},
		{name: "FMC_TRANSPORT_INSECURE_SKIP_VERIFY", value: "true", want: true},
		{name: "FMC_TRANSPORT_INSECURE_SKIP_VERIFY", value: "maybe", want: "maybe"},
		{name: "FMC_FRESHNESS_EXPIRING_SOON_SECONDS", value: "60", want: int64(60)},
	}
	for _, tc := range cases {
		t.Run(tc.name+"="+tc.value, func(t *testing.T) {
			if _, got := envValue(tc.name, tc.value); got != tc.want {
				t.Fatalf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}
