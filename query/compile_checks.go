package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-fmc/core"
)

var (
	_ gocmd.Querier[TokenLifetimeMessage, core.TokenState]    = (*TokenLifetimeQuery)(nil)
	_ gocmd.Querier[ListOperationsMessage, []core.Descriptor] = (*ListOperationsQuery)(nil)

	_ FreshnessReader = (*core.Driver)(nil)
)
