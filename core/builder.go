package core

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

func (m Method) valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	default:
		return false
	}
}

// Stage is the position of a value in the builder chain. Each stage is a
// distinct type, so a chain can only move forward.
type Stage int

const (
	StageEmpty Stage = iota
	StageMethodSet
	StageTargetResolved
	StageAuthAttached
	StageMaterialized
)

func (s Stage) String() string {
	switch s {
	case StageEmpty:
		return "empty"
	case StageMethodSet:
		return "method_set"
	case StageTargetResolved:
		return "target_resolved"
	case StageAuthAttached:
		return "auth_attached"
	case StageMaterialized:
		return "materialized"
	default:
		return "unknown"
	}
}

type authKind int

const (
	authNone authKind = iota
	authBasic
	authBearer
)

func (k authKind) String() string {
	switch k {
	case authBasic:
		return "basic"
	case authBearer:
		return "bearer"
	default:
		return "none"
	}
}

type authChoice struct {
	kind     authKind
	username string
	value    string
}

func bearerChoice(creds CredentialStore) authChoice {
	token, ok := creds.AccessToken()
	if !ok {
		return authChoice{}
	}
	return authChoice{kind: authBearer, value: token}
}

// RequestBuilder is the head of a chain. It carries the host and the
// credentials produced by the previous exchange; after a login it is seeded
// with bearer auth so later steps need not attach it again.
type RequestBuilder struct {
	host     string
	resolver EndpointResolver
	creds    CredentialStore
	auth     authChoice
}

func NewRequestBuilder(resolver EndpointResolver, host string) RequestBuilder {
	return RequestBuilder{
		host:     strings.TrimSpace(host),
		resolver: resolver,
		creds:    NewCredentialStore(),
	}
}

func (b RequestBuilder) WithHost(host string) RequestBuilder {
	b.host = strings.TrimSpace(host)
	return b
}

// WithCredentials reseeds the builder from a credential store, for callers
// that restart a chain from a saved store.
func (b RequestBuilder) WithCredentials(creds CredentialStore) RequestBuilder {
	b.creds = creds
	b.auth = bearerChoice(creds)
	return b
}

func (b RequestBuilder) Host() string { return b.host }

func (b RequestBuilder) Credentials() CredentialStore { return b.creds }

func (b RequestBuilder) Stage() Stage { return StageEmpty }

func (b RequestBuilder) Get() MethodBuilder { return b.WithMethod(MethodGet) }

func (b RequestBuilder) Post() MethodBuilder { return b.WithMethod(MethodPost) }

func (b RequestBuilder) Put() MethodBuilder { return b.WithMethod(MethodPut) }

func (b RequestBuilder) Delete() MethodBuilder { return b.WithMethod(MethodDelete) }

func (b RequestBuilder) WithMethod(method Method) MethodBuilder {
	return MethodBuilder{
		base:   b,
		method: Method(strings.ToUpper(strings.TrimSpace(string(method)))),
	}
}

type MethodBuilder struct {
	base   RequestBuilder
	method Method
}

func (m MethodBuilder) Method() Method { return m.method }

func (m MethodBuilder) Stage() Stage { return StageMethodSet }

// ForOperation resolves the target URL for op against the builder host and
// the tenant recorded by the last exchange.
func (m MethodBuilder) ForOperation(op OperationID) (TargetedRequest, error) {
	if !m.method.valid() {
		return TargetedRequest{}, configurationError(
			"fmc: unsupported request method",
			ErrorUnsupportedMethod,
			map[string]any{"method": string(m.method), "operation": op.String()},
		)
	}
	if m.base.resolver == nil {
		return TargetedRequest{}, internalError("fmc: endpoint resolver is not configured")
	}
	if m.base.host == "" {
		return TargetedRequest{}, NewUnresolvedHostError(op)
	}

	descriptor, err := m.base.resolver.Describe(op)
	if err != nil {
		return TargetedRequest{}, err
	}

	var tenant *uuid.UUID
	if id, ok := m.base.creds.TenantID(); ok {
		tenant = &id
	}
	if descriptor.RequiresTenantScope && tenant == nil {
		return TargetedRequest{}, NewMissingTenantScopeError(op)
	}

	url, err := m.base.resolver.Resolve(op, m.base.host, tenant)
	if err != nil {
		return TargetedRequest{}, err
	}

	return TargetedRequest{
		base:       m.base,
		method:     m.method,
		descriptor: descriptor,
		url:        url,
		auth:       m.base.auth,
	}, nil
}

// TargetedRequest has a method and a resolved URL and accepts an auth choice.
type TargetedRequest struct {
	base       RequestBuilder
	method     Method
	descriptor Descriptor
	url        string
	auth       authChoice
	query      map[string]string
	body       []byte
}

func (t TargetedRequest) Stage() Stage {
	if t.auth.kind == authNone {
		return StageTargetResolved
	}
	return StageAuthAttached
}

func (t TargetedRequest) Method() Method { return t.method }

func (t TargetedRequest) URL() string { return t.url }

func (t TargetedRequest) Operation() OperationID { return t.descriptor.Operation }

// WithBasicAuth selects basic auth, replacing any bearer choice. Against an
// exchange operation the materialized request mints tokens.
func (t TargetedRequest) WithBasicAuth(username, password string) TargetedRequest {
	t.auth = authChoice{
		kind:     authBasic,
		username: username,
		value:    encodeBasic(username, password),
	}
	return t
}

func (t TargetedRequest) WithBearerToken(token string) TargetedRequest {
	t.auth = authChoice{kind: authBearer, value: token}
	return t
}

func (t TargetedRequest) WithQuery(key, value string) TargetedRequest {
	key = strings.TrimSpace(key)
	if key == "" {
		return t
	}
	query := make(map[string]string, len(t.query)+1)
	for k, v := range t.query {
		query[k] = v
	}
	query[key] = value
	t.query = query
	return t
}

func (t TargetedRequest) WithBody(body []byte) TargetedRequest {
	t.body = append([]byte(nil), body...)
	return t
}

// Materialize produces the transport-ready request. It fails closed when no
// authentication has been chosen; a blank bearer token or basic username
// counts as none.
func (t TargetedRequest) Materialize() (Request, error) {
	headers := map[string]string{HeaderContentType: ContentTypeJSON}
	creds := t.base.creds

	switch {
	case t.auth.kind == authBasic && strings.TrimSpace(t.auth.username) != "":
		headers[HeaderAuthorization] = "Basic " + t.auth.value
		creds = creds.withBasicMaterial(t.auth.username, t.auth.value)
	case t.auth.kind == authBearer && strings.TrimSpace(t.auth.value) != "":
		headers[HeaderAccessToken] = t.auth.value
	default:
		return Request{}, configurationError(
			"fmc: no authentication configured for request",
			ErrorNoAuthenticationConfigured,
			map[string]any{
				"method":    string(t.method),
				"operation": t.descriptor.Operation.String(),
				"auth":      t.auth.kind.String(),
			},
		)
	}

	return Request{
		method:    t.method,
		url:       t.url,
		operation: t.descriptor.Operation,
		headers:   headers,
		query:     cloneStrings(t.query),
		body:      append([]byte(nil), t.body...),
		exchange:  t.descriptor.Exchange && t.auth.kind == authBasic,
		basic:     t.auth.kind == authBasic,
		host:      t.base.host,
		resolver:  t.base.resolver,
		creds:     creds,
	}, nil
}

func cloneStrings(values map[string]string) map[string]string {
	if len(values) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
