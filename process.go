package steepshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvcrn/steepshot-go/internal/apierrors"
	"github.com/dvcrn/steepshot-go/internal/gateway"
)

// SessionCookieName is the cookie carrying the session token in both directions.
const SessionCookieName = "sessionid"

// ErrMissingSession is reported when login or register succeeds without a session cookie.
const ErrMissingSession = "SessionId field is missing."

// process classifies a raw response and decodes the body on success.
//
// Transport failures and 500s report a single message and ignore the body.
// Other non-2xx statuses report the messages extracted from the body, or the
// status description when the body has no recognisable error shape.
func process[T any](log zerolog.Logger, endpoint string, raw *gateway.RawResponse) *Result[T] {
	switch {
	case raw.Err != nil:
		log.Debug().Err(raw.Err).Str("endpoint", endpoint).Str("request_id", raw.RequestID).Msg("transport error")
		return failed[T](raw.Err.Error())
	case raw.Transport != gateway.Completed:
		return failed[T](raw.Transport.Description())
	case raw.StatusCode == http.StatusInternalServerError:
		return failed[T](statusDescription(raw.StatusCode))
	case raw.StatusCode != http.StatusOK && raw.StatusCode != http.StatusCreated:
		messages, matcher, ok := apierrors.Classify(raw.Body)
		if !ok {
			messages = []string{statusDescription(raw.StatusCode)}
			matcher = "status"
		}
		log.Debug().
			Str("endpoint", endpoint).
			Str("request_id", raw.RequestID).
			Int("status", raw.StatusCode).
			Str("matcher", matcher).
			Int("errors", len(messages)).
			Msg("request failed")
		return failed[T](messages...)
	}

	var v T
	if len(bytes.TrimSpace(raw.Body)) > 0 {
		if err := json.Unmarshal(raw.Body, &v); err != nil {
			log.Debug().Err(err).Str("endpoint", endpoint).Str("request_id", raw.RequestID).Msg("could not decode response")
			return failed[T](fmt.Sprintf("could not decode response: %v", err))
		}
	}
	return succeeded(&v)
}

type sessionHolder interface {
	setSessionID(id string)
}

// attachSession copies the session cookie into a successful result, or
// downgrades it to a failure when the cookie is absent.
func attachSession[T any, P interface {
	*T
	sessionHolder
}](res *Result[T], raw *gateway.RawResponse) *Result[T] {
	if !res.Success {
		return res
	}
	id, ok := raw.Cookie(SessionCookieName)
	if !ok || id == "" {
		return failed[T](ErrMissingSession)
	}
	P(res.Result).setSessionID(id)
	return res
}

func statusDescription(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", code)
}
