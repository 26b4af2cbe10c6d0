package client

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

type Option func(*Client)

// WithHTTPClient replaces the transport. Its cookie jar is overridden by the
// session.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		cp := *h
		c.http = &cp
	}
}

// WithConcurrency bounds the number of requests a batched lookup keeps in
// flight.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}
