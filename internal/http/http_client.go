package http

import "net/http"

// HTTPClient is the transport used by the gateway. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
