package query

import (
	"time"

	"github.com/goliatone/go-fmc/core"
)

const (
	TypeTokenLifetime  = "fmc.query.credentials.lifetime"
	TypeListOperations = "fmc.query.endpoints.list"
)

// TokenLifetimeMessage asks for the freshness of a credential store. A zero
// Now means the reader's clock.
type TokenLifetimeMessage struct {
	Credentials core.CredentialStore
	Now         time.Time
}

func (TokenLifetimeMessage) Type() string { return TypeTokenLifetime }

func (m TokenLifetimeMessage) Validate() error {
	if m.Credentials.Mode() != core.AuthModeTokenHeld {
		return queryValidationError("credentials", "credentials must hold a token")
	}
	return nil
}

type ListOperationsMessage struct{}

func (ListOperationsMessage) Type() string { return TypeListOperations }

func (ListOperationsMessage) Validate() error { return nil }
