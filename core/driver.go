package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// RawResponse is what the transport returned. Only headers are inspected
// here; the body is handed back to the caller for decoding.
type RawResponse struct {
	StatusCode int
	Headers    Headers
	Body       []byte
	Metadata   map[string]any
}

// Step is the outcome of one exchange: the response body paired with the
// builder for the next call.
type Step struct {
	StatusCode  int
	Headers     Headers
	Body        []byte
	Credentials CredentialStore
	Next        RequestBuilder
}

// Driver runs exchanges for any number of independent chains. It holds only
// collaborators that never change after construction, so a single Driver can
// be shared; per-session state lives in the values each step returns.
type Driver struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	transport       TransportAdapter
	resolver        EndpointResolver
	clock           Clock
}

type DriverDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	Transport       TransportAdapter
	Resolver        EndpointResolver
	Clock           Clock
}

func NewDriver(cfg Config, opts ...Option) (*Driver, error) {
	builder := defaultDriverBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("fmc", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("fmc"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.clock == nil {
		builder.clock = time.Now
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(err)
	}

	return &Driver{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		transport:       builder.transport,
		resolver:        builder.resolver,
		clock:           builder.clock,
	}, nil
}

func (d *Driver) Config() Config {
	if d == nil {
		return Config{}
	}
	return d.config
}

func (d *Driver) Dependencies() DriverDependencies {
	if d == nil {
		return DriverDependencies{}
	}
	return DriverDependencies{
		Logger:          d.logger,
		LoggerProvider:  d.loggerProvider,
		MetricsRecorder: d.metricsRecorder,
		ConfigProvider:  d.configProvider,
		OptionsResolver: d.optionsResolver,
		Transport:       d.transport,
		Resolver:        d.resolver,
		Clock:           d.clock,
	}
}

// Start opens a chain against the configured host with empty credentials.
func (d *Driver) Start() RequestBuilder {
	return d.Begin(d.Config().Host)
}

func (d *Driver) Begin(host string) RequestBuilder {
	var resolver EndpointResolver
	if d != nil {
		resolver = d.resolver
	}
	return NewRequestBuilder(resolver, host)
}

// Resume reopens a chain from a credential store kept by the caller.
func (d *Driver) Resume(host string, creds CredentialStore) RequestBuilder {
	return d.Begin(host).WithCredentials(creds)
}

func (d *Driver) Now() time.Time {
	if d == nil || d.clock == nil {
		return time.Now().UTC()
	}
	return d.clock().UTC()
}

// TokenState evaluates creds against the driver clock and the configured
// expiring-soon window.
func (d *Driver) TokenState(creds CredentialStore) TokenState {
	return ResolveTokenState(d.Now(), creds, d.Config().ExpiringSoonWindow())
}

// Dispatch hands a materialized request to the transport. Unclassified
// transport failures are wrapped with their source intact; nothing is retried.
func (d *Driver) Dispatch(ctx context.Context, req Request) (RawResponse, error) {
	if d == nil || d.transport == nil {
		return RawResponse{}, internalError("fmc: transport is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	startedAt := time.Now()
	fields := map[string]any{
		"operation": req.Operation().String(),
		"method":    string(req.Method()),
		"url":       req.URL(),
		"auth_mode": req.authMode(),
	}

	transportReq := req.transportRequest()
	transportReq.Timeout = d.config.TransportTimeout()
	transportReq.MaxResponseBodyBytes = d.config.Transport.MaxResponseBodyBytes
	fields["request_headers"] = RedactHeaders(transportReq.Headers)
	res, err := d.transport.Do(ctx, transportReq)
	if err != nil {
		if ClassOf(err) == ErrorClassNone {
			err = transportWrapError(err, "fmc: transport failed to deliver request", map[string]any{
				"operation": req.Operation().String(),
				"method":    string(req.Method()),
				"adapter":   d.transport.Kind(),
			})
		}
		d.observeOperation(ctx, startedAt, "dispatch", err, fields)
		return RawResponse{}, err
	}

	fields["status_code"] = res.StatusCode
	d.observeOperation(ctx, startedAt, "dispatch", nil, fields)
	return RawResponse{
		StatusCode: res.StatusCode,
		Headers:    Headers(res.Headers).Clone(),
		Body:       res.Body,
		Metadata:   cloneFields(res.Metadata),
	}, nil
}

// Advance folds the response of req into the next builder. An exchange mints
// a fresh credential store and seeds bearer auth; any other request passes
// its store through unchanged. On failure no step is produced.
func (d *Driver) Advance(req Request, raw RawResponse) (Step, error) {
	startedAt := time.Now()
	creds := req.Credentials()
	if req.IsExchange() {
		recorded, err := creds.RecordExchange(raw.Headers)
		if err != nil {
			d.observeOperation(context.Background(), startedAt, "advance", err, map[string]any{
				"operation":   req.Operation().String(),
				"status_code": raw.StatusCode,
			})
			return Step{}, err
		}
		creds = recorded
		fields := map[string]any{
			"operation":   req.Operation().String(),
			"status_code": raw.StatusCode,
			"auth_mode":   string(creds.Mode()),
		}
		if tenant, ok := creds.TenantID(); ok {
			fields["tenant_id"] = tenant.String()
		}
		if expiresAt, ok := creds.ExpiresAt(); ok {
			fields["expires_at"] = expiresAt.Format(time.RFC3339)
		}
		d.observeOperation(context.Background(), startedAt, "advance", nil, fields)
		d.recordTokenIssued(context.Background(), req)
	}

	return Step{
		StatusCode:  raw.StatusCode,
		Headers:     raw.Headers.Clone(),
		Body:        raw.Body,
		Credentials: creds,
		Next:        req.next(creds),
	}, nil
}

// Exchange dispatches req and advances the chain with its response.
func (d *Driver) Exchange(ctx context.Context, req Request) (Step, error) {
	raw, err := d.Dispatch(ctx, req)
	if err != nil {
		return Step{}, err
	}
	return d.Advance(req, raw)
}

// Login runs the basic-auth token exchange from builder and returns the step
// whose Next builder carries bearer auth and the tenant scope.
func (d *Driver) Login(ctx context.Context, builder RequestBuilder, username, password string) (Step, error) {
	target, err := builder.Post().ForOperation(OperationGenerateToken)
	if err != nil {
		return Step{}, err
	}
	req, err := target.WithBasicAuth(username, password).Materialize()
	if err != nil {
		return Step{}, err
	}
	return d.Exchange(ctx, req)
}
