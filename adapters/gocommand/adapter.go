package gocommand

import (
	"context"
	"fmt"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	fmccommand "github.com/goliatone/go-fmc/command"
	"github.com/goliatone/go-fmc/core"
	"github.com/goliatone/go-fmc/query"
)

// RegistryAdapter keeps the go-command registry the session handlers are
// registered in.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

// Dispatch and Query send messages to the handlers RegisterSession subscribed.
func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// Session is the driver surface the session handlers run against.
type Session interface {
	fmccommand.SessionDriver
	query.FreshnessReader
}

// RegisterSession registers and subscribes the login and exchange commands and
// the token lifetime query. The operations query is added when catalog is
// set. On failure every subscription made so far is released.
func RegisterSession(
	adapter *RegistryAdapter,
	session Session,
	catalog query.OperationCatalog,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if session == nil {
		return nil, fmt.Errorf("gocommand: session driver is required")
	}
	subscriptions := []commanddispatcher.Subscription{}
	release := func() {
		for _, subscription := range subscriptions {
			if subscription != nil {
				subscription.Unsubscribe()
			}
		}
	}
	track := func(subscription commanddispatcher.Subscription, err error) error {
		if err != nil {
			release()
			return err
		}
		subscriptions = append(subscriptions, subscription)
		return nil
	}

	if err := track(RegisterAndSubscribe[fmccommand.LoginMessage](adapter, fmccommand.NewLoginCommand(session), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(RegisterAndSubscribe[fmccommand.ExchangeMessage](adapter, fmccommand.NewExchangeCommand(session), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(RegisterAndSubscribeQuery[query.TokenLifetimeMessage, core.TokenState](adapter, query.NewTokenLifetimeQuery(session), runnerOpts...)); err != nil {
		return nil, err
	}
	if catalog != nil {
		if err := track(RegisterAndSubscribeQuery[query.ListOperationsMessage, []core.Descriptor](adapter, query.NewListOperationsQuery(catalog), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	return subscriptions, nil
}
