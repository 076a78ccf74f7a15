package apierrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		matcher  string
		expected []string
	}{
		{
			name:     "empty body",
			body:     "",
			matcher:  "empty",
			expected: []string{EmptyContent},
		},
		{
			name:     "whitespace body",
			body:     " \n ",
			matcher:  "empty",
			expected: []string{EmptyContent},
		},
		{
			name:     "html page",
			body:     "<html><body><h1>Bad Gateway</h1></body></html>",
			matcher:  "html",
			expected: []string{"<html><body><h1>Bad Gateway</h1></body></html>"},
		},
		{
			name:     "bare h1 fragment",
			body:     "<h1>Not Found</h1><p>The requested URL was not found.</p>",
			matcher:  "html",
			expected: []string{"<h1>Not Found</h1><p>The requested URL was not found.</p>"},
		},
		{
			name:     "non field errors keep order",
			body:     `{"non_field_errors": ["A", "B"]}`,
			matcher:  "non_field_errors",
			expected: []string{"A", "B"},
		},
		{
			name:     "non field errors win over other keys",
			body:     `{"detail": "ignored", "non_field_errors": ["Unable to login with provided credentials."]}`,
			matcher:  "non_field_errors",
			expected: []string{"Unable to login with provided credentials."},
		},
		{
			name:     "error key",
			body:     `{"error": "X"}`,
			matcher:  "error",
			expected: []string{"X"},
		},
		{
			name:     "error key with extra whitespace",
			body:     "{\n  \"error\" :   \"You have either used the maximum number of vote changes on this comment or performed the same action twice.\"\n}",
			matcher:  "error",
			expected: []string{"You have either used the maximum number of vote changes on this comment or performed the same action twice."},
		},
		{
			name:     "detail key",
			body:     `{"detail": "Method \"POST\" not allowed."}`,
			matcher:  "detail",
			expected: []string{`Method "POST" not allowed.`},
		},
		{
			name:     "status key",
			body:     `{"status": "Wrong identifier."}`,
			matcher:  "status",
			expected: []string{"Wrong identifier."},
		},
		{
			name:     "field errors",
			body:     `{"username": ["required"]}`,
			matcher:  "fields",
			expected: []string{"username required"},
		},
		{
			name:    "field errors keep wire order",
			body:    `{"posting_key": ["This field may not be blank."], "password": ["This password is too short.", "This password is entirely numeric."]}`,
			matcher: "fields",
			expected: []string{
				"posting_key This field may not be blank.",
				"password This password is too short.",
				"password This password is entirely numeric.",
			},
		},
		{
			name:     "status as a validation list falls back to fields",
			body:     `{"status": ["invalid choice"]}`,
			matcher:  "fields",
			expected: []string{"status invalid choice"},
		},
		{
			name:     "single string field value",
			body:     `{"identifier": "Invalid identifier"}`,
			matcher:  "fields",
			expected: []string{"identifier Invalid identifier"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			messages, matcher, ok := Classify([]byte(tc.body))
			require.True(t, ok)
			assert.Equal(t, tc.matcher, matcher)
			assert.Equal(t, tc.expected, messages)
		})
	}
}

func TestClassifyUnrecognised(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "plain text", body: "Service Unavailable"},
		{name: "json array", body: `["a"]`},
		{name: "object with no string values", body: `{"count": 3, "results": []}`},
		{name: "truncated object", body: `{"error": "x"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, ok := Classify([]byte(tc.body))
			assert.False(t, ok)
		})
	}
}

func TestClassifyWithCustomOrder(t *testing.T) {
	matchers := []Matcher{
		{Name: "detail", Match: matchString("detail")},
		{Name: "error", Match: matchString("error")},
	}
	messages, matcher, ok := ClassifyWith(matchers, []byte(`{"error": "e", "detail": "d"}`))
	require.True(t, ok)
	assert.Equal(t, "detail", matcher)
	assert.Equal(t, []string{"d"}, messages)
}

func TestDefaultMatchersIsACopy(t *testing.T) {
	matchers := DefaultMatchers()
	require.Len(t, matchers, len(defaultMatchers))
	assert.Equal(t, "empty", matchers[0].Name)

	matchers[0] = Matcher{Name: "never", Match: func(*Document) ([]string, bool) { return nil, false }}
	messages, matcher, ok := Classify(nil)
	require.True(t, ok)
	assert.Equal(t, "empty", matcher)
	assert.Equal(t, []string{EmptyContent}, messages)
}
