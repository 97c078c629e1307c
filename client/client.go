// Package client is the public surface of the Peerberry investor API:
// account state, loan browsing and purchase, investment and transaction
// history including the bulk spreadsheet exports. A Client owns exactly one
// authenticated session; construction runs the full login handshake and
// fails unless it ends with a valid bearer token.
package client

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/peerberrygo/peerberry/auth"
	"github.com/peerberrygo/peerberry/requester"
)

const dateLayout = "2006-01-02"

// Client is an authenticated Peerberry investor API client. It is not safe
// for concurrent use; each logical user needs its own instance.
type Client struct {
	session *requester.Session
	auth    *auth.Authenticator

	// Lazily fetched from /v1/globals and cached for the client lifetime.
	countries   map[string]Country
	originators map[string]Originator
}

type settings struct {
	sessionOptions []requester.Option
	authOptions    []auth.Option
}

// Option configures a Client.
type Option func(*settings)

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.sessionOptions = append(s.sessionOptions, requester.WithBaseURL(baseURL))
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.sessionOptions = append(s.sessionOptions, requester.WithHTTPClient(c))
	}
}

// WithNowTime sets the clock used for TOTP generation (primarily for
// testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *settings) {
		s.authOptions = append(s.authOptions, auth.WithNowTime(nowFunc))
	}
}

// New builds a session, runs the login handshake for the supplied
// credentials, and returns an authenticated client. Any authentication
// failure aborts construction; there is no partially authenticated state.
func New(creds auth.Credentials, options ...Option) (*Client, error) {
	var cfg settings
	for _, opt := range options {
		opt(&cfg)
	}

	session := requester.New(cfg.sessionOptions...)
	authenticator, err := auth.New(creds, session, cfg.authOptions...)
	if err != nil {
		return nil, err
	}
	if _, err := authenticator.Login(); err != nil {
		return nil, errors.Wrap(err, "[client.New] login")
	}

	return &Client{session: session, auth: authenticator}, nil
}

// Token returns the bearer token the session currently holds, or nil after
// logout.
func (c *Client) Token() *oauth2.Token {
	return c.auth.Token()
}

// TokenExpiry reports when the held bearer token expires, read from its
// JWT claims.
func (c *Client) TokenExpiry() (time.Time, error) {
	return c.auth.TokenExpiry()
}

// Logout revokes the token remotely and clears the session's Authorization
// header. The client is unusable for authenticated calls afterwards.
func (c *Client) Logout() error {
	return c.auth.Logout()
}
