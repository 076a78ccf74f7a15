package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	serverhttp "github.com/dvcrn/steepshot-go/internal/http"
)

// Gateway performs the raw HTTP calls for the API client.
type Gateway interface {
	Get(ctx context.Context, endpoint string, params []Param) *RawResponse
	Post(ctx context.Context, endpoint string, params []Param) *RawResponse
	Upload(ctx context.Context, endpoint, filename string, file []byte, params []Param, tags []string) *RawResponse
}

// HTTPGateway is the net/http implementation of Gateway.
type HTTPGateway struct {
	baseURL   *url.URL
	client    serverhttp.HTTPClient
	limiter   *rate.Limiter
	userAgent string
	log       zerolog.Logger
	newID     func() string
}

// Option configures an HTTPGateway.
type Option func(*HTTPGateway)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c serverhttp.HTTPClient) Option {
	return func(g *HTTPGateway) {
		if c != nil {
			g.client = c
		}
	}
}

// WithRateLimit delays calls so that at most rps are sent per second.
// rps <= 0 disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *HTTPGateway) {
		if rps <= 0 {
			g.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(g *HTTPGateway) {
		if strings.TrimSpace(ua) != "" {
			g.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for per-call debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(g *HTTPGateway) { g.log = l }
}

// WithRequestIDs overrides the X-Request-ID generator.
func WithRequestIDs(fn func() string) Option {
	return func(g *HTTPGateway) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// New creates a gateway rooted at baseURL. Endpoints are resolved relative to it.
func New(baseURL string, opts ...Option) (*HTTPGateway, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("base url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http/https url: %s", baseURL)
	}

	g := &HTTPGateway{
		baseURL:   u,
		client:    serverhttp.NewHTTPClient(),
		userAgent: "steepshot-go",
		log:       zerolog.Nop(),
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Get issues a GET request.
func (g *HTTPGateway) Get(ctx context.Context, endpoint string, params []Param) *RawResponse {
	return g.execute(ctx, http.MethodGet, endpoint, params, nil)
}

// Post issues a POST request with either a JSON body or urlencoded form fields.
func (g *HTTPGateway) Post(ctx context.Context, endpoint string, params []Param) *RawResponse {
	return g.execute(ctx, http.MethodPost, endpoint, params, nil)
}

// Upload issues a multipart POST carrying the file as the "photo" part, the
// filename as the "title" field and one "tags" field per tag.
func (g *HTTPGateway) Upload(ctx context.Context, endpoint, filename string, file []byte, params []Param, tags []string) *RawResponse {
	fields := make([]Param, 0, len(tags)+1)
	fields = append(fields, Form("title", filename))
	for _, tag := range tags {
		fields = append(fields, Form("tags", tag))
	}
	return g.execute(ctx, http.MethodPost, endpoint, params, &filePart{
		field:    "photo",
		filename: filename,
		data:     file,
		extra:    fields,
	})
}

type filePart struct {
	field    string
	filename string
	data     []byte
	extra    []Param
}

func (g *HTTPGateway) execute(ctx context.Context, method, endpoint string, params []Param, file *filePart) *RawResponse {
	requestID := g.newID()
	raw := &RawResponse{RequestID: requestID}
	start := time.Now()

	req, err := g.buildRequest(ctx, method, endpoint, params, file)
	if err != nil {
		return raw.fail(Failed, err)
	}
	req.Header.Set("X-Request-ID", requestID)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return raw.fail(statusFor(ctx, err), err)
		}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn().Err(err).Str("method", method).Str("endpoint", endpoint).Str("request_id", requestID).Msg("request failed")
		return raw.fail(statusFor(ctx, err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		g.log.Warn().Err(err).Str("endpoint", endpoint).Str("request_id", requestID).Msg("could not read response body")
		return raw.fail(statusFor(ctx, err), fmt.Errorf("read response body: %w", err))
	}

	raw.StatusCode = resp.StatusCode
	raw.Body = body
	raw.Header = resp.Header
	raw.Cookies = resp.Cookies()
	raw.Transport = Completed

	g.log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("request finished")

	return raw
}

func (r *RawResponse) fail(status TransportStatus, err error) *RawResponse {
	r.Transport = status
	r.Err = err
	return r
}

func (g *HTTPGateway) buildRequest(ctx context.Context, method, endpoint string, params []Param, file *filePart) (*http.Request, error) {
	u := *g.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(endpoint, "/")
	u.RawPath = ""

	query := u.Query()
	var (
		cookies []*http.Cookie
		form    []Param
		body    *Param
	)
	for i := range params {
		p := params[i]
		switch p.Kind {
		case QueryString:
			query.Add(p.Key, stringify(p.Value))
		case Cookie:
			cookies = append(cookies, &http.Cookie{Name: p.Key, Value: stringify(p.Value)})
		case RequestBody:
			if body != nil {
				return nil, errors.New("only one request body parameter is allowed")
			}
			body = &p
		case FormField:
			form = append(form, p)
		default:
			return nil, fmt.Errorf("unsupported parameter kind %s for %q", p.Kind, p.Key)
		}
	}
	u.RawQuery = query.Encode()

	var (
		reader      io.Reader
		contentType string
	)
	switch {
	case file != nil:
		if body != nil {
			return nil, errors.New("a request body cannot be combined with a file upload")
		}
		buf, ct, err := encodeMultipart(file, append(form, file.extra...))
		if err != nil {
			return nil, err
		}
		reader, contentType = buf, ct
	case body != nil:
		if len(form) > 0 {
			return nil, errors.New("a request body cannot be combined with form fields")
		}
		data, err := json.Marshal(body.Value)
		if err != nil {
			return nil, fmt.Errorf("could not marshal request body: %w", err)
		}
		reader, contentType = bytes.NewReader(data), "application/json"
	case len(form) > 0:
		values := url.Values{}
		for _, f := range form {
			values.Add(f.Key, stringify(f.Value))
		}
		reader, contentType = strings.NewReader(values.Encode()), "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req, nil
}

func encodeMultipart(file *filePart, fields []Param) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range fields {
		if err := w.WriteField(f.Key, stringify(f.Value)); err != nil {
			return nil, "", fmt.Errorf("write form field %q: %w", f.Key, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
	h.Set("Content-Type", http.DetectContentType(file.data))
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func statusFor(ctx context.Context, err error) TransportStatus {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return Aborted
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TimedOut
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimedOut
	}
	return Failed
}
