package fmc

import (
	"github.com/goliatone/go-fmc/core"
	"github.com/goliatone/go-fmc/endpoints"
	"github.com/goliatone/go-fmc/transport"
)

type Config = core.Config

type TransportConfig = core.TransportConfig

type FreshnessConfig = core.FreshnessConfig

type Option = core.Option

type Driver = core.Driver

type DriverDependencies = core.DriverDependencies

type CredentialStore = core.CredentialStore
type RequestBuilder = core.RequestBuilder
type MethodBuilder = core.MethodBuilder
type TargetedRequest = core.TargetedRequest
type Request = core.Request
type Step = core.Step
type TokenState = core.TokenState
type OperationID = core.OperationID
type Descriptor = core.Descriptor

var (
	WithLogger           = core.WithLogger
	WithLoggerProvider   = core.WithLoggerProvider
	WithMetricsRecorder  = core.WithMetricsRecorder
	WithConfigProvider   = core.WithConfigProvider
	WithOptionsResolver  = core.WithOptionsResolver
	WithTransport        = core.WithTransport
	WithEndpointResolver = core.WithEndpointResolver
	WithClock            = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewDriver builds a driver with no transport or endpoint table. Use New for
// a ready-to-send driver.
func NewDriver(cfg Config, opts ...Option) (*Driver, error) {
	return core.NewDriver(cfg, opts...)
}

// New builds a driver wired with the default endpoint table and the transport
// named by the resolved config. Explicit WithTransport or WithEndpointResolver
// options win over the defaults.
func New(cfg Config, opts ...Option) (*Driver, error) {
	driver, err := core.NewDriver(cfg, opts...)
	if err != nil {
		return nil, err
	}
	deps := driver.Dependencies()
	if deps.Transport != nil && deps.Resolver != nil {
		return driver, nil
	}

	resolved := driver.Config()
	extra := make([]Option, 0, 2)
	if deps.Resolver == nil {
		extra = append(extra, core.WithEndpointResolver(endpoints.FromConfig(resolved)))
	}
	if deps.Transport == nil {
		adapter, err := transport.NewDefaultRegistry().Build(resolved.Transport)
		if err != nil {
			return nil, err
		}
		extra = append(extra, core.WithTransport(adapter))
	}
	return core.NewDriver(cfg, append(append([]Option{}, opts...), extra...)...)
}
