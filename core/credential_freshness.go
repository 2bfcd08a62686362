package core

import (
	"time"
)

const (
	DefaultTokenExpiringSoonWindow  = 5 * time.Minute
	DefaultReauthenticateLeadWindow = 2 * time.Minute
)

// TokenState captures access/refresh lifecycle state derived from a credential store.
type TokenState struct {
	Mode            AuthMode
	ExpiresAt       *time.Time
	Remaining       time.Duration
	HasAccessToken  bool
	HasRefreshToken bool
	IsExpired       bool
	IsExpiringSoon  bool
}

// ResolveTokenState evaluates expiry flags for a credential store. It is
// advisory; nothing in this package acts on it automatically.
func ResolveTokenState(now time.Time, creds CredentialStore, expiringSoonWindow time.Duration) TokenState {
	if now.IsZero() {
		now = time.Now().UTC()
	} else {
		now = now.UTC()
	}
	if expiringSoonWindow <= 0 {
		expiringSoonWindow = DefaultTokenExpiringSoonWindow
	}

	_, hasAccess := creds.AccessToken()
	_, hasRefresh := creds.RefreshToken()
	state := TokenState{
		Mode:            creds.Mode(),
		HasAccessToken:  hasAccess,
		HasRefreshToken: hasRefresh,
	}
	expiresAt, ok := creds.ExpiresAt()
	if !ok {
		return state
	}
	expiresAt = expiresAt.UTC()
	state.ExpiresAt = &expiresAt
	state.Remaining = expiresAt.Sub(now)
	if !expiresAt.After(now) {
		state.IsExpired = true
		return state
	}
	state.IsExpiringSoon = !expiresAt.After(now.Add(expiringSoonWindow))
	return state
}

// TokenState is a convenience wrapper over ResolveTokenState.
func (c CredentialStore) TokenState(now time.Time, expiringSoonWindow time.Duration) TokenState {
	return ResolveTokenState(now, c, expiringSoonWindow)
}

// ShouldReauthenticate returns true when the caller should run a fresh basic
// exchange before issuing further calls.
func ShouldReauthenticate(now time.Time, state TokenState, leadWindow time.Duration) bool {
	if !state.HasAccessToken {
		return true
	}
	if state.ExpiresAt == nil {
		return false
	}
	if leadWindow <= 0 {
		leadWindow = DefaultReauthenticateLeadWindow
	}
	if now.IsZero() {
		now = time.Now().UTC()
	} else {
		now = now.UTC()
	}
	return !state.ExpiresAt.UTC().After(now.Add(leadWindow))
}

func (c CredentialStore) ShouldReauthenticate(now time.Time, leadWindow time.Duration) bool {
	return ShouldReauthenticate(now, ResolveTokenState(now, c, 0), leadWindow)
}
