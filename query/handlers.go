package query

import (
	"context"
	"time"

	"github.com/goliatone/go-fmc/core"
)

// FreshnessReader supplies the clock and freshness windows; *core.Driver
// satisfies it.
type FreshnessReader interface {
	Config() core.Config
	Now() time.Time
}

type OperationCatalog interface {
	Operations() []core.Descriptor
}

type TokenLifetimeQuery struct {
	reader FreshnessReader
}

func NewTokenLifetimeQuery(reader FreshnessReader) *TokenLifetimeQuery {
	return &TokenLifetimeQuery{reader: reader}
}

func (q *TokenLifetimeQuery) Query(ctx context.Context, msg TokenLifetimeMessage) (core.TokenState, error) {
	if q == nil || q.reader == nil {
		return core.TokenState{}, queryDependencyError("query: freshness reader is required")
	}
	now := msg.Now
	if now.IsZero() {
		now = q.reader.Now()
	}
	return core.ResolveTokenState(now, msg.Credentials, q.reader.Config().ExpiringSoonWindow()), nil
}

type ListOperationsQuery struct {
	catalog OperationCatalog
}

func NewListOperationsQuery(catalog OperationCatalog) *ListOperationsQuery {
	return &ListOperationsQuery{catalog: catalog}
}

func (q *ListOperationsQuery) Query(context.Context, ListOperationsMessage) ([]core.Descriptor, error) {
	if q == nil || q.catalog == nil {
		return nil, queryDependencyError("query: operation catalog is required")
	}
	return q.catalog.Operations(), nil
}
