package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-fmc/core"
)

var (
	_ gocmd.Commander[LoginMessage]    = (*LoginCommand)(nil)
	_ gocmd.Commander[ExchangeMessage] = (*ExchangeCommand)(nil)

	_ SessionDriver = (*core.Driver)(nil)
)
