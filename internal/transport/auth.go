package transport

import "net/http"

// Authenticator applies credentials to requests sent to a mavroute server.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth sends requests without credentials.
type NoAuth struct{}

// Apply implements Authenticator.
func (NoAuth) Apply(*http.Request) {}

// BearerAuth sends the key as "Authorization: Bearer <key>".
type BearerAuth struct {
	Key string
}

// Apply implements Authenticator.
func (a BearerAuth) Apply(req *http.Request) {
	if a.Key != "" {
		req.Header.Set("Authorization", "Bearer "+a.Key)
	}
}

// HeaderAuth sends the key in a custom header, X-API-Key by default.
type HeaderAuth struct {
	Header string
	Key    string
}

// Apply implements Authenticator.
func (a HeaderAuth) Apply(req *http.Request) {
	if a.Key == "" {
		return
	}
	header := a.Header
	if header == "" {
		header = "X-API-Key"
	}
	req.Header.Set(header, a.Key)
}
