package httpx

import "net/http"

// Client abstracts the HTTP transport so callers can swap the default
// fasthttp-backed implementation for *http.Client or a test double.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
