package core

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenLifetime is how long the management center honours an access token
// after issuing it. The server does not advertise it, so it is fixed.
const TokenLifetime = 30 * time.Minute

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccessToken   = "X-Auth-Access-Token"
	HeaderRefreshToken  = "X-Auth-Refresh-Token"
	HeaderDomainUUID    = "DOMAIN_UUID"
	HeaderDate          = "Date"

	ContentTypeJSON = "application/json"
)

type AuthMode string

const (
	AuthModeUnauthenticated AuthMode = "unauthenticated"
	AuthModeBasicPending    AuthMode = "basic_pending"
	AuthModeTokenHeld       AuthMode = "token_held"
)

// CredentialStore is an immutable snapshot of session authentication state.
// Every transition returns a new value; the zero value is an unauthenticated
// store.
type CredentialStore struct {
	mode         AuthMode
	username     string
	basic        string
	accessToken  string
	refreshToken string
	tenantID     uuid.UUID
	hasTenant    bool
	issuedAt     time.Time
}

func NewCredentialStore() CredentialStore {
	return CredentialStore{mode: AuthModeUnauthenticated}
}

// WithBasicAuth stores encoded basic material for the next exchange. Any
// previously held tokens are dropped; a recorded tenant is kept.
func (c CredentialStore) WithBasicAuth(username, password string) CredentialStore {
	return c.withBasicMaterial(username, encodeBasic(username, password))
}

func (c CredentialStore) withBasicMaterial(username, encoded string) CredentialStore {
	return CredentialStore{
		mode:      AuthModeBasicPending,
		username:  username,
		basic:     encoded,
		tenantID:  c.tenantID,
		hasTenant: c.hasTenant,
	}
}

// RecordExchange derives a token-holding store from the headers of a
// successful authentication exchange. The receiver is never modified and no
// store is produced on failure.
func (c CredentialStore) RecordExchange(headers HeaderLookup) (CredentialStore, error) {
	if headers == nil {
		headers = Headers{}
	}

	values := map[string]string{}
	for _, name := range []string{HeaderAccessToken, HeaderRefreshToken, HeaderDomainUUID, HeaderDate} {
		value, ok := headers.Lookup(name)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return CredentialStore{}, protocolError(
				fmt.Sprintf("fmc: authentication response is missing the %s header", strings.ToLower(name)),
				ErrorMissingCredentialHeader,
				map[string]any{"header": strings.ToLower(name)},
			)
		}
		values[name] = value
	}

	tenantID, err := uuid.Parse(values[HeaderDomainUUID])
	if err != nil {
		return CredentialStore{}, protocolWrapError(
			err,
			"fmc: authentication response carries a malformed domain uuid",
			ErrorMalformedTenantID,
			map[string]any{"header": strings.ToLower(HeaderDomainUUID)},
		)
	}

	issuedAt, err := parseServerDate(values[HeaderDate])
	if err != nil {
		return CredentialStore{}, protocolWrapError(
			err,
			"fmc: authentication response carries a malformed date",
			ErrorMalformedTimestamp,
			map[string]any{"header": strings.ToLower(HeaderDate), "value": values[HeaderDate]},
		)
	}

	return CredentialStore{
		mode:         AuthModeTokenHeld,
		username:     c.username,
		accessToken:  values[HeaderAccessToken],
		refreshToken: values[HeaderRefreshToken],
		tenantID:     tenantID,
		hasTenant:    true,
		issuedAt:     issuedAt,
	}, nil
}

func (c CredentialStore) Mode() AuthMode {
	if c.mode == "" {
		return AuthModeUnauthenticated
	}
	return c.mode
}

func (c CredentialStore) Username() string { return c.username }

// BasicMaterial returns base64(user:pass) while an exchange is pending.
func (c CredentialStore) BasicMaterial() (string, bool) {
	if c.Mode() != AuthModeBasicPending {
		return "", false
	}
	return c.basic, true
}

func (c CredentialStore) AccessToken() (string, bool) {
	if c.Mode() != AuthModeTokenHeld {
		return "", false
	}
	return c.accessToken, true
}

func (c CredentialStore) RefreshToken() (string, bool) {
	if c.Mode() != AuthModeTokenHeld {
		return "", false
	}
	return c.refreshToken, true
}

func (c CredentialStore) TenantID() (uuid.UUID, bool) {
	return c.tenantID, c.hasTenant
}

func (c CredentialStore) IssuedAt() (time.Time, bool) {
	if c.Mode() != AuthModeTokenHeld {
		return time.Time{}, false
	}
	return c.issuedAt, true
}

func (c CredentialStore) ExpiresAt() (time.Time, bool) {
	issuedAt, ok := c.IssuedAt()
	if !ok {
		return time.Time{}, false
	}
	return issuedAt.Add(TokenLifetime), true
}

// RemainingLifetime is expiresAt - now. A negative value means the token has
// already expired; zero is returned when no token is held.
func (c CredentialStore) RemainingLifetime(now time.Time) time.Duration {
	expiresAt, ok := c.ExpiresAt()
	if !ok {
		return 0
	}
	return expiresAt.Sub(now)
}

func (c CredentialStore) String() string {
	tenant := "-"
	if c.hasTenant {
		tenant = c.tenantID.String()
	}
	expires := "-"
	if expiresAt, ok := c.ExpiresAt(); ok {
		expires = expiresAt.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("CredentialStore{mode=%s tenant=%s expires=%s}", c.Mode(), tenant, expires)
}

func (c CredentialStore) GoString() string { return c.String() }

func encodeBasic(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// parseServerDate accepts the HTTP-date forms first and falls back to the
// wider RFC 5322 grammar, which covers numeric zone offsets. A folded header
// carrying more than one date is rejected.
func parseServerDate(value string) (time.Time, error) {
	if strings.Count(value, ",") > 1 {
		return time.Time{}, fmt.Errorf("date header %q holds more than one value", value)
	}
	if parsed, err := http.ParseTime(value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := mail.ParseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
