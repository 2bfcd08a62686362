package command

import (
	"strings"

	"github.com/goliatone/go-fmc/core"
)

const (
	TypeLogin    = "fmc.command.session.login"
	TypeExchange = "fmc.command.session.exchange"
)

type LoginMessage struct {
	Builder  core.RequestBuilder
	Username string
	Password string
}

func (LoginMessage) Type() string { return TypeLogin }

func (m LoginMessage) Validate() error {
	if strings.TrimSpace(m.Builder.Host()) == "" {
		return commandValidationError("builder.host", "host is required")
	}
	if strings.TrimSpace(m.Username) == "" {
		return commandValidationError("username", "username is required")
	}
	return nil
}

type ExchangeMessage struct {
	Request core.Request
}

func (ExchangeMessage) Type() string { return TypeExchange }

func (m ExchangeMessage) Validate() error {
	if strings.TrimSpace(m.Request.URL()) == "" {
		return commandValidationError("request", "materialized request is required")
	}
	return nil
}
