package net

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/oauth2"
)

const (
	maxIdleConns    = 10
	idleTimeout     = 60 * time.Second
	headerTimeout   = 60 * time.Second
	defaultTimeout  = 30 * time.Second
	clientAgent     = "cloutcheck/1.0 (+https://github.com/mchmarny/cloutcheck)"
	tokenTypeBearer = "Bearer"
)

var (
	reqTransport = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       idleTimeout,
		DisableCompression:    true,
		ResponseHeaderTimeout: headerTimeout,
	}
)

// GetHTTPClient returns a client using the shared transport. A
// non-positive timeout selects the default.
func GetHTTPClient(timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &http.Client{
		Jar:       jar,
		Timeout:   timeout,
		Transport: reqTransport,
	}, nil
}

// GetOAuthClient returns a client that sends token as a bearer token.
func GetOAuthClient(ctx context.Context, token string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{
			TokenType:   tokenTypeBearer,
			AccessToken: token,
		},
	)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: reqTransport})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = timeout

	return tc
}
