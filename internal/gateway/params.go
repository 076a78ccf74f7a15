package gateway

import (
	"fmt"
	"net/http"
)

// ParamKind tells the gateway where a parameter goes on the wire.
type ParamKind int

const (
	// QueryString params are appended to the request URL.
	QueryString ParamKind = iota
	// Cookie params are sent as HTTP cookies.
	Cookie
	// RequestBody marshals Value as the JSON request body. At most one per call.
	RequestBody
	// FormField params become form fields (multipart on Upload, urlencoded on Post).
	FormField
)

func (k ParamKind) String() string {
	switch k {
	case QueryString:
		return "query"
	case Cookie:
		return "cookie"
	case RequestBody:
		return "body"
	case FormField:
		return "form"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// Param is a single request parameter.
type Param struct {
	Key   string
	Value any
	Kind  ParamKind
}

// Query builds a query string parameter.
func Query(key string, value any) Param {
	return Param{Key: key, Value: value, Kind: QueryString}
}

// SessionCookie builds a cookie parameter.
func SessionCookie(key, value string) Param {
	return Param{Key: key, Value: value, Kind: Cookie}
}

// JSONBody builds the request body parameter.
func JSONBody(value any) Param {
	return Param{Key: "application/json", Value: value, Kind: RequestBody}
}

// Form builds a form field parameter.
func Form(key string, value any) Param {
	return Param{Key: key, Value: value, Kind: FormField}
}

// TransportStatus reports whether the HTTP exchange completed.
type TransportStatus int

const (
	Completed TransportStatus = iota
	Failed
	TimedOut
	Aborted
)

// Description is the human-readable text used when a call did not complete.
func (s TransportStatus) Description() string {
	switch s {
	case Completed:
		return "Completed"
	case TimedOut:
		return "Request timed out"
	case Aborted:
		return "Request aborted"
	default:
		return "Wrong response status"
	}
}

func (s TransportStatus) String() string { return s.Description() }

// RawResponse is the unclassified outcome of one call. It is never nil.
// Err is set when the exchange could not complete.
type RawResponse struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	Cookies    []*http.Cookie
	RequestID  string
	Transport  TransportStatus
	Err        error
}

// Cookie returns the value of the named response cookie.
func (r *RawResponse) Cookie(name string) (string, bool) {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
