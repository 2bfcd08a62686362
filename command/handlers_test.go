package command

import (
	"context"
	"errors"
	"testing"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fmc/core"
)

type stubSessionDriver struct {
	loginFn    func(ctx context.Context, builder core.RequestBuilder, username, password string) (core.Step, error)
	exchangeFn func(ctx context.Context, req core.Request) (core.Step, error)
}

func (s stubSessionDriver) Login(ctx context.Context, builder core.RequestBuilder, username, password string) (core.Step, error) {
	if s.loginFn == nil {
		return core.Step{}, errors.New("login not stubbed")
	}
	return s.loginFn(ctx, builder, username, password)
}

func (s stubSessionDriver) Exchange(ctx context.Context, req core.Request) (core.Step, error) {
	if s.exchangeFn == nil {
		return core.Step{}, errors.New("exchange not stubbed")
	}
	return s.exchangeFn(ctx, req)
}

func TestLoginCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	called := false
	driver := stubSessionDriver{
		loginFn: func(_ context.Context, builder core.RequestBuilder, username, password string) (core.Step, error) {
			called = true
			if builder.Host() != "ciscofmc.local" {
				t.Fatalf("expected host ciscofmc.local, got %q", builder.Host())
			}
			if username != "admin" || password != "secret" {
				t.Fatalf("unexpected credentials %q/%q", username, password)
			}
			return core.Step{StatusCode: 204}, nil
		},
	}

	cmd := NewLoginCommand(driver)
	collector := gocmd.NewResult[core.Step]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, LoginMessage{
		Builder:  core.NewRequestBuilder(nil, "ciscofmc.local"),
		Username: "admin",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("execute login: %v", err)
	}
	if !called {
		t.Fatalf("expected login driver invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.StatusCode != 204 {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestExchangeCommand_PropagatesDriverError(t *testing.T) {
	failure := errors.New("boom")
	cmd := NewExchangeCommand(stubSessionDriver{
		exchangeFn: func(context.Context, core.Request) (core.Step, error) {
			return core.Step{}, failure
		},
	})
	collector := gocmd.NewResult[core.Step]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, ExchangeMessage{}); !errors.Is(err, failure) {
		t.Fatalf("expected driver error, got %v", err)
	}
	if _, ok := collector.Load(); ok {
		t.Fatalf("expected no result on failure")
	}
}

func TestExecuteWithoutCollectorStillRuns(t *testing.T) {
	cmd := NewLoginCommand(stubSessionDriver{
		loginFn: func(context.Context, core.RequestBuilder, string, string) (core.Step, error) {
			return core.Step{StatusCode: 204}, nil
		},
	})
	if err := cmd.Execute(context.Background(), LoginMessage{Username: "u"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestMessages_ValidateReturnsRichError(t *testing.T) {
	cases := []struct {
		name string
		msg  interface{ Validate() error }
	}{
		{name: "login_without_host", msg: LoginMessage{Username: "u"}},
		{name: "login_without_username", msg: LoginMessage{Builder: core.NewRequestBuilder(nil, "fmc.local")}},
		{name: "exchange_without_request", msg: ExchangeMessage{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			var rich *goerrors.Error
			if !goerrors.As(err, &rich) {
				t.Fatalf("expected go-errors envelope, got %T", err)
			}
			if rich.Category != goerrors.CategoryValidation {
				t.Fatalf("expected validation category, got %q", rich.Category)
			}
			if rich.TextCode != core.ErrorInvalidConfig {
				t.Fatalf("expected %q text code, got %q", core.ErrorInvalidConfig, rich.TextCode)
			}
		})
	}

	if err := (LoginMessage{Builder: core.NewRequestBuilder(nil, "fmc.local"), Username: "u"}).Validate(); err != nil {
		t.Fatalf("expected valid login message: %v", err)
	}
}

func TestLoginCommand_NilDriverReturnsRichError(t *testing.T) {
	var cmd *LoginCommand
	err := cmd.Execute(context.Background(), LoginMessage{})
	if !core.HasTextCode(err, core.ErrorInternal) {
		t.Fatalf("expected internal text code, got %v", err)
	}
	if err := NewExchangeCommand(nil).Execute(context.Background(), ExchangeMessage{}); !core.HasTextCode(err, core.ErrorInternal) {
		t.Fatalf("expected internal text code, got %v", err)
	}
}
