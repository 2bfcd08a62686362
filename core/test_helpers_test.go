package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

const (
	testHost     = "ciscofmc.local"
	testTenantID = "f3b4958c-52a1-11e7-802a-010203040506"
	testDate     = "Mon, 01 Jan 2024 00:00:00 GMT"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
	err    error
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l.err != nil {
		return nil, l.err
	}
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

// tableResolver is a minimal resolver over the paths the tests exercise.
type tableResolver struct{}

var testTable = map[OperationID]Descriptor{
	OperationGenerateToken: {Operation: OperationGenerateToken, Template: "/api/fmc_platform/v1/auth/generatetoken", Exchange: true},
	OperationDevices:       {Operation: OperationDevices, Template: "/api/fmc_config/v1/domain/{domain}/devices/devicerecords", RequiresTenantScope: true},
	OperationObject:        {Operation: OperationObject, Template: "/api/fmc_config/v1/domain/{domain}/object", RequiresTenantScope: true},
	OperationInfo:          {Operation: OperationInfo, Template: "/api/fmc_platform/v1/info"},
}

func (tableResolver) Describe(op OperationID) (Descriptor, error) {
	descriptor, ok := testTable[op]
	if !ok {
		return Descriptor{}, NewUnknownOperationError(op)
	}
	return descriptor, nil
}

func (r tableResolver) Resolve(op OperationID, host string, tenantID *uuid.UUID) (string, error) {
	descriptor, err := r.Describe(op)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(host) == "" {
		return "", NewUnresolvedHostError(op)
	}
	path := descriptor.Template
	if descriptor.RequiresTenantScope {
		if tenantID == nil {
			return "", NewMissingTenantScopeError(op)
		}
		path = strings.ReplaceAll(path, "{domain}", tenantID.String())
	}
	return fmt.Sprintf("https://%s:443%s", host, path), nil
}

type fakeTransport struct {
	mu        sync.Mutex
	requests  []TransportRequest
	responses []TransportResponse
	err       error
}

func (f *fakeTransport) Kind() string { return "fake" }

func (f *fakeTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return TransportResponse{}, f.err
	}
	if len(f.responses) == 0 {
		return TransportResponse{StatusCode: 200, Headers: map[string]string{}}, nil
	}
	res := f.responses[0]
	f.responses = f.responses[1:]
	return res, nil
}

func (f *fakeTransport) sent() []TransportRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]TransportRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func exchangeHeaders() Headers {
	return Headers{
		"x-auth-access-token":  "A",
		"x-auth-refresh-token": "R",
		"domain_uuid":          testTenantID,
		"date":                 testDate,
	}
}

func testCredentials(t testing.TB) CredentialStore {
	t.Helper()
	creds, err := NewCredentialStore().WithBasicAuth("admin", "secret").RecordExchange(exchangeHeaders())
	if err != nil {
		t.Fatalf("record exchange: %v", err)
	}
	return creds
}

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func newTestDriver(transport TransportAdapter, opts ...Option) (*Driver, error) {
	base := []Option{
		WithTransport(transport),
		WithEndpointResolver(tableResolver{}),
		WithLogger(stubLogger{}),
		WithLoggerProvider(stubLoggerProvider{logger: stubLogger{}}),
	}
	return NewDriver(Config{Host: testHost}, append(base, opts...)...)
}
