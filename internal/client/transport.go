package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultConcurrency = 4
	loginPath          = "/api/auth/login"
	refreshPath        = "/api/auth/refresh"
)

type Client struct {
	baseURL     string
	http        *http.Client
	session     *Session
	concurrency int
	log         logrus.FieldLogger

	// refreshMu serializes refreshes. refreshGen counts completed attempts so
	// requests that failed on an already rotated cookie skip their own.
	refreshMu  sync.Mutex
	refreshGen uint64
	refreshErr error
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession()
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: 10 * time.Second},
		session:     session,
		concurrency: defaultConcurrency,
		log:         logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	c.http.Jar = session
	return c
}

func (c *Client) Session() *Session { return c.session }

// doJSON sends one request and decodes the response into out. A 401 triggers
// one token refresh and one retry; a 429 with Retry-After is retried once
// after the wait.
func (c *Client) doJSON(ctx context.Context, method, path string, q url.Values, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	gen := c.refreshGeneration()
	res, err := c.send(ctx, method, path, q, body)
	if err != nil {
		return err
	}

	if res.StatusCode == http.StatusTooManyRequests {
		wait, ok := retryAfter(res.Header.Get("Retry-After"))
		if ok {
			drain(res)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
			if res, err = c.send(ctx, method, path, q, body); err != nil {
				return err
			}
		}
	}

	if res.StatusCode == http.StatusUnauthorized && path != refreshPath && path != loginPath {
		drain(res)
		if err := c.refresh(ctx, gen); err != nil {
			return err
		}
		if res, err = c.send(ctx, method, path, q, body); err != nil {
			return err
		}
		if res.StatusCode == http.StatusUnauthorized {
			drain(res)
			c.session.Clear()
			return ErrUnauthorized
		}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case res.StatusCode < 200 || res.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body []byte) (*http.Response, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal http: %w", err)
	}
	return res, nil
}

func (c *Client) refreshGeneration() uint64 {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refreshGen
}

// refresh rotates the cookie pair once per generation. Callers that saw an
// older generation share the outcome of the attempt that already ran.
func (c *Client) refresh(ctx context.Context, seen uint64) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if c.refreshGen != seen {
		return c.refreshErr
	}
	c.refreshErr = c.rotate(ctx)
	c.refreshGen++
	return c.refreshErr
}

// rotate asks the portal for a new cookie pair. Any failure ends the session.
func (c *Client) rotate(ctx context.Context) error {
	res, err := c.send(ctx, http.MethodPost, refreshPath, nil, nil)
	if err != nil {
		c.session.Clear()
		return err
	}
	drain(res)
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusNoContent {
		c.log.WithField("status", res.StatusCode).Debug("session refresh rejected")
		c.session.Clear()
		return ErrUnauthorized
	}
	return nil
}

func retryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if sec, err := strconv.Atoi(v); err == nil && sec >= 0 {
		return time.Duration(sec) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(time.Until(at), 0), true
	}
	return 0, false
}

func drain(res *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
	_ = res.Body.Close()
}
