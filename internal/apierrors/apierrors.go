// Package apierrors turns the error bodies returned by the content API into
// human-readable messages.
//
// The server answers failures in several shapes: HTML pages from the proxy,
// {"non_field_errors": [...]}, {"error": "..."}, {"detail": "..."},
// {"status": "..."} and field validation maps such as
// {"username": ["This field may not be blank."]}. Classify tries an ordered
// list of matchers against the decoded body and returns the messages of the
// first one that applies.
package apierrors

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// EmptyContent is the message reported for a failed call with no body.
const EmptyContent = "Empty response content"

// Matcher recognises one error body shape.
type Matcher struct {
	Name  string
	Match func(doc *Document) ([]string, bool)
}

// Document is a failed response body, decoded once and shared by all matchers.
type Document struct {
	Raw    []byte
	Fields []Field // top-level members in wire order; nil when the body is not a JSON object
}

// Field is one top-level member of a JSON object body.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Lookup returns the first member with the given key.
func (d *Document) Lookup(key string) (json.RawMessage, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// defaultMatchers is the classification order used by Classify.
var defaultMatchers = []Matcher{
	{Name: "empty", Match: matchEmpty},
	{Name: "html", Match: matchHTML},
	{Name: "non_field_errors", Match: matchStringList("non_field_errors")},
	{Name: "error", Match: matchString("error")},
	{Name: "detail", Match: matchString("detail")},
	{Name: "status", Match: matchString("status")},
	{Name: "fields", Match: matchFieldErrors},
}

// Classify runs the default matchers. ok is false when no matcher recognised
// the body, in which case callers keep their own description of the failure.
func Classify(body []byte) (messages []string, matcher string, ok bool) {
	return ClassifyWith(defaultMatchers, body)
}

// DefaultMatchers returns a copy of the order used by Classify, for callers
// building their own list for ClassifyWith.
func DefaultMatchers() []Matcher {
	return append([]Matcher(nil), defaultMatchers...)
}

// ClassifyWith runs the given matchers in order and stops at the first match.
func ClassifyWith(matchers []Matcher, body []byte) ([]string, string, bool) {
	doc := &Document{Raw: body}
	if fields, err := decodeObject(body); err == nil {
		doc.Fields = fields
	}
	for _, m := range matchers {
		if messages, ok := m.Match(doc); ok && len(messages) > 0 {
			return messages, m.Name, true
		}
	}
	return nil, "", false
}

func matchEmpty(doc *Document) ([]string, bool) {
	if len(bytes.TrimSpace(doc.Raw)) == 0 {
		return []string{EmptyContent}, true
	}
	return nil, false
}

// matchHTML reports the whole page; proxies answer with HTML error pages.
func matchHTML(doc *Document) ([]string, bool) {
	lower := strings.ToLower(string(doc.Raw))
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<h1>") {
		return []string{string(doc.Raw)}, true
	}
	return nil, false
}

func matchString(key string) func(*Document) ([]string, bool) {
	return func(doc *Document) ([]string, bool) {
		raw, ok := doc.Lookup(key)
		if !ok {
			return nil, false
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
			return nil, false
		}
		return []string{s}, true
	}
}

func matchStringList(key string) func(*Document) ([]string, bool) {
	return func(doc *Document) ([]string, bool) {
		raw, ok := doc.Lookup(key)
		if !ok {
			return nil, false
		}
		messages, ok := stringsOf(raw)
		return messages, ok
	}
}

// matchFieldErrors handles {"field": ["msg", ...]} and emits "field msg".
func matchFieldErrors(doc *Document) ([]string, bool) {
	var messages []string
	for _, f := range doc.Fields {
		values, ok := stringsOf(f.Value)
		if !ok {
			continue
		}
		for _, v := range values {
			messages = append(messages, f.Key+" "+v)
		}
	}
	return messages, len(messages) > 0
}

// stringsOf accepts either a list of strings or a single string.
func stringsOf(raw json.RawMessage) ([]string, bool) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, len(list) > 0
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}, true
	}
	return nil, false
}

var errNotObject = errors.New("body is not a JSON object")

// decodeObject decodes the top level of a JSON object keeping member order,
// which encoding/json maps would lose.
func decodeObject(body []byte) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errNotObject
	}
	return fields, nil
}
