package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-fmc/core"
)

// SessionDriver is the part of core.Driver the commands need.
type SessionDriver interface {
	Login(ctx context.Context, builder core.RequestBuilder, username, password string) (core.Step, error)
	Exchange(ctx context.Context, req core.Request) (core.Step, error)
}

type LoginCommand struct {
	driver SessionDriver
}

func NewLoginCommand(driver SessionDriver) *LoginCommand {
	return &LoginCommand{driver: driver}
}

func (c *LoginCommand) Execute(ctx context.Context, msg LoginMessage) error {
	if c == nil || c.driver == nil {
		return commandDependencyError("command: login driver is required")
	}
	out, err := c.driver.Login(ctx, msg.Builder, msg.Username, msg.Password)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ExchangeCommand struct {
	driver SessionDriver
}

func NewExchangeCommand(driver SessionDriver) *ExchangeCommand {
	return &ExchangeCommand{driver: driver}
}

func (c *ExchangeCommand) Execute(ctx context.Context, msg ExchangeMessage) error {
	if c == nil || c.driver == nil {
		return commandDependencyError("command: exchange driver is required")
	}
	out, err := c.driver.Exchange(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
