package core

// Request is a materialized, immutable request descriptor. Accessors return
// copies so the descriptor cannot be altered after the fact.
type Request struct {
	method    Method
	url       string
	operation OperationID
	headers   map[string]string
	query     map[string]string
	body      []byte
	exchange  bool
	basic     bool
	host      string
	resolver  EndpointResolver
	creds     CredentialStore
}

func (r Request) Stage() Stage { return StageMaterialized }

func (r Request) Method() Method { return r.method }

func (r Request) URL() string { return r.url }

func (r Request) Operation() OperationID { return r.operation }

func (r Request) Host() string { return r.host }

func (r Request) Headers() map[string]string { return cloneStrings(r.headers) }

func (r Request) Header(name string) (string, bool) {
	return Headers(r.headers).Lookup(name)
}

func (r Request) Query() map[string]string { return cloneStrings(r.query) }

func (r Request) Body() []byte { return append([]byte(nil), r.body...) }

// IsExchange reports whether the request targets a token-minting operation
// with basic credentials; only then is its response folded into a new store.
func (r Request) IsExchange() bool { return r.exchange }

// Credentials is the store the request was built from; with basic auth it is
// the pending basic store.
func (r Request) Credentials() CredentialStore { return r.creds }

func (r Request) authMode() string {
	if r.basic {
		return "basic"
	}
	return "bearer"
}

func (r Request) transportRequest() TransportRequest {
	return TransportRequest{
		Method:  string(r.method),
		URL:     r.url,
		Headers: cloneStrings(r.headers),
		Query:   cloneStrings(r.query),
		Body:    append([]byte(nil), r.body...),
		Metadata: map[string]any{
			"operation": r.operation.String(),
		},
	}
}

// next seeds the builder that follows this request with creds.
func (r Request) next(creds CredentialStore) RequestBuilder {
	return RequestBuilder{
		host:     r.host,
		resolver: r.resolver,
		creds:    creds,
		auth:     bearerChoice(creds),
	}
}
