package fmc

import (
	"fmt"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/goliatone/go-fmc/adapters/gocommand"
	fmccommand "github.com/goliatone/go-fmc/command"
	"github.com/goliatone/go-fmc/core"
	fmcquery "github.com/goliatone/go-fmc/query"
)

type SessionService interface {
	fmccommand.SessionDriver
	fmcquery.FreshnessReader
}

type Commands struct {
	Login    *fmccommand.LoginCommand
	Exchange *fmccommand.ExchangeCommand
}

type Queries struct {
	TokenLifetime  *fmcquery.TokenLifetimeQuery
	ListOperations *fmcquery.ListOperationsQuery
}

type Facade struct {
	service  SessionService
	catalog  fmcquery.OperationCatalog
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	catalog fmcquery.OperationCatalog
}

func WithOperationCatalog(catalog fmcquery.OperationCatalog) FacadeOption {
	return func(options *facadeOptions) {
		options.catalog = catalog
	}
}

func NewFacade(service SessionService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("fmc: session service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	catalog := cfg.catalog
	if catalog == nil {
		catalog = resolveOperationCatalog(service)
	}

	facade := &Facade{service: service, catalog: catalog}
	facade.commands = Commands{
		Login:    fmccommand.NewLoginCommand(service),
		Exchange: fmccommand.NewExchangeCommand(service),
	}
	facade.queries = Queries{
		TokenLifetime:  fmcquery.NewTokenLifetimeQuery(service),
		ListOperations: fmcquery.NewListOperationsQuery(catalog),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() SessionService {
	if f == nil {
		return nil
	}
	return f.service
}

// Subscribe routes the session messages through the go-command dispatcher.
// Callers own the returned subscriptions and must release them.
func (f *Facade) Subscribe(adapter *gocommand.RegistryAdapter, runnerOpts ...runner.Option) ([]dispatcher.Subscription, error) {
	if f == nil {
		return nil, fmt.Errorf("fmc: facade is nil")
	}
	if adapter == nil {
		adapter = gocommand.NewRegistryAdapter(nil)
	}
	return gocommand.RegisterSession(adapter, f.service, f.catalog, runnerOpts...)
}

// resolveOperationCatalog falls back to the driver's endpoint table when it
// can list its operations.
func resolveOperationCatalog(service SessionService) fmcquery.OperationCatalog {
	if catalog, ok := service.(fmcquery.OperationCatalog); ok {
		return catalog
	}
	provider, ok := service.(interface {
		Dependencies() core.DriverDependencies
	})
	if !ok {
		return nil
	}
	catalog, ok := provider.Dependencies().Resolver.(fmcquery.OperationCatalog)
	if !ok {
		return nil
	}
	return catalog
}
