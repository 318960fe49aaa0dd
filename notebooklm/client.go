// Package notebooklm is a small client for asking questions of a NotebookLM
// notebook through the session bridge. A Session is opened from a stored
// browser session and is safe for concurrent use until closed.
package notebooklm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

const defaultTimeout = 120 * time.Second

var ErrClosed = errors.New("notebooklm: session closed")

// APIError is returned when the bridge answers with a non-2xx status.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("notebooklm api error: %s (status=%d)", e.Message, e.Status)
	}
	return fmt.Sprintf("notebooklm api error (status=%d)", e.Status)
}

type options struct {
	http    *http.Client
	timeout time.Duration
	now     func() time.Time
}

// Option configures Connect.
type Option func(*options)

// WithHTTPClient sets the HTTP client. Its cookie jar is replaced by one holding
// the session cookies.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Session is an authenticated connection to a notebook service.
type Session struct {
	baseURL *url.URL
	http    *http.Client
	closed  atomic.Bool
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Connect loads the storage state at storagePath, attaches its cookies and
// checks that the bridge at baseURL accepts the session.
func Connect(ctx context.Context, baseURL, storagePath string, opts ...Option) (*Session, error) {
	o := options{timeout: defaultTimeout, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	state, err := LoadStorageState(storagePath)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	jar.SetCookies(u, state.HTTPCookies(o.now()))

	hc := o.http
	if hc == nil {
		hc = &http.Client{Timeout: o.timeout}
	} else {
		clone := *hc
		hc = &clone
	}
	hc.Jar = jar

	s := &Session{baseURL: u, http: hc}
	if err := s.ping(ctx); err != nil {
		hc.CloseIdleConnections()
		return nil, err
	}
	return s, nil
}

func (s *Session) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("health"), nil)
	if err != nil {
		return err
	}
	res, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeAPIError(res)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// Ask sends question to the notebook and returns the answer text verbatim.
func (s *Session) Ask(ctx context.Context, notebookID, question string) (string, error) {
	if s.closed.Load() {
		return "", ErrClosed
	}

	body, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint("notebooks", notebookID, "ask"), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", decodeAPIError(res)
	}

	var out askResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 8<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode answer: %w", err)
	}
	return out.Answer, nil
}

// Close ends the session. Calling it more than once is fine.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.http.CloseIdleConnections()
	return nil
}

func (s *Session) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return s.baseURL.String() + "/" + strings.Join(escaped, "/")
}

func decodeAPIError(res *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	apiErr := &APIError{Status: res.StatusCode}
	if err := json.Unmarshal(b, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(b))
	}
	return apiErr
}
