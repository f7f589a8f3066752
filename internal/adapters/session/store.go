package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harilal/tradetoggle/internal/domain"
)

const (
	validationProbePath = "/api/pricing/user-taxes"
	dashboardPath       = "/user/dashboard"

	maxResponseBytes = 1 << 20
)

// Store turns an opaque cookie blob into a validated Session. A Session
// only leaves Create after the validation probe returned 200; there is
// no partially valid state.
type Store struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Session is an HTTP client context bound to the wallet's auth cookies
// plus the anti-forgery token extracted from them. One Session belongs
// to one invocation and is never shared.
type Session struct {
	baseURL    *url.URL
	httpClient *http.Client
	xsrfToken  string
	timeout    time.Duration
}

func (s Store) Create(ctx context.Context, blob string) (*Session, error) {
	if strings.TrimSpace(blob) == "" {
		return nil, domain.ErrCookieBlobMissing
	}

	cookies, err := domain.DecodeCookies(blob)
	if err != nil {
		return nil, fmt.Errorf("decode session cookies: %w", err)
	}

	base, err := parseBaseURL(s.BaseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	xsrfToken := installCookies(jar, base, cookies)

	client := &http.Client{Jar: jar}
	if s.HTTPClient != nil {
		copied := *s.HTTPClient
		copied.Jar = jar
		client = &copied
	}

	sess := &Session{
		baseURL:    base,
		httpClient: client,
		xsrfToken:  xsrfToken,
		timeout:    s.RequestTimeout,
	}

	resp, err := sess.GetJSON(ctx, validationProbePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionRejected, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: probe status %d", domain.ErrSessionRejected, resp.StatusCode)
	}

	log.Debug().Int("cookies", len(cookies)).Bool("xsrf", xsrfToken != "").Msg("session validated")
	return sess, nil
}

// installCookies scopes each record under its own domain, falling back
// to the base host, and reports the anti-forgery token when one of the
// recognized cookie names carries it.
func installCookies(jar http.CookieJar, base *url.URL, cookies []domain.Cookie) string {
	xsrfToken := ""
	for _, c := range cookies {
		scope := *base
		if c.Domain != "" {
			scope.Host = strings.TrimPrefix(c.Domain, ".")
		}
		jar.SetCookies(&scope, []*http.Cookie{{Name: c.Name, Value: c.Value, Domain: c.Domain}})

		if xsrfToken == "" && (c.Name == "XSRF-TOKEN" || c.Name == "X-XSRF-TOKEN") {
			xsrfToken = c.Value
		}
	}
	return xsrfToken
}

// GetJSON issues an authenticated GET with the JSON header discipline
// the upstream API expects on XHR endpoints.
func (s *Session) GetJSON(ctx context.Context, path string) (*http.Response, error) {
	return s.do(ctx, http.MethodGet, path, "", nil)
}

// PostJSON issues an authenticated POST carrying a JSON body.
func (s *Session) PostJSON(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	return s.do(ctx, http.MethodPost, path, "application/json", body)
}

// GetHTML fetches a document endpoint, for the markup fallbacks.
func (s *Session) GetHTML(ctx context.Context, path string) (*http.Response, error) {
	endpoint, err := s.baseURL.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse document path: %w", err)
	}

	reqCtx, cancel := s.requestContext(ctx)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create document request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Referer", s.DashboardURL())
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	attachCancel(resp, cancel)
	return resp, nil
}

func (s *Session) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	endpoint, err := s.baseURL.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse api path: %w", err)
	}

	reqCtx, cancel := s.requestContext(ctx)
	req, err := http.NewRequestWithContext(reqCtx, method, endpoint.String(), body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create api request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", s.DashboardURL())
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.xsrfToken != "" {
		// The server checks either header depending on the endpoint, so
		// both carry the same token.
		req.Header.Set("X-XSRF-TOKEN", s.xsrfToken)
		req.Header.Set("X-CSRF-TOKEN", s.xsrfToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	attachCancel(resp, cancel)
	return resp, nil
}

func (s *Session) DashboardURL() string {
	u, err := s.baseURL.Parse(dashboardPath)
	if err != nil {
		return s.baseURL.String()
	}
	return u.String()
}

func (s *Session) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// attachCancel ties the request context's cancel to body close so
// callers keep the plain defer-Close pattern.
func attachCancel(resp *http.Response, cancel context.CancelFunc) {
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.New("base url is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("base url host is required")
	}

	return parsed, nil
}
