// Package auth performs the Peerberry login handshake: password exchange,
// the optional TOTP second factor, bearer-token installation on the
// session, and logout/revocation. It is a small one-shot state machine;
// every path either leaves the session with a valid Authorization header
// or with none.
package auth

import (
	"net/http"
	"net/url"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/pquerna/otp/totp"
	"golang.org/x/oauth2"

	"github.com/peerberrygo/peerberry/endpoints"
	"github.com/peerberrygo/peerberry/requester"
)

// totpStep is the RFC 6238 time step the API uses (SHA-1, 6 digits).
const totpStep = 30 * time.Second

type state int

const (
	stateUnauthenticated state = iota
	stateAwaitingSecondFactor
	stateAuthenticated
)

// Credentials identifies how the account holder proves identity. Exactly
// one form is active: either Email+Password (plus the base32 TFASecret when
// the account has two-factor enabled), or a pre-issued AccessToken.
type Credentials struct {
	Email       string
	Password    string
	TFASecret   string
	AccessToken string
}

// Authenticator drives the login handshake over a requester session. It is
// the only component that mutates the session's Authorization header.
type Authenticator struct {
	creds   Credentials
	session *requester.Session
	token   *oauth2.Token
	state   state
	nowTime func() time.Time // injectable for testing
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithNowTime sets the clock used for TOTP code generation (primarily for
// testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(a *Authenticator) {
		a.nowTime = nowFunc
	}
}

// New validates the credential shape and returns an unauthenticated
// Authenticator. No network traffic happens until Login.
func New(creds Credentials, session *requester.Session, options ...Option) (*Authenticator, error) {
	if session == nil {
		return nil, errors.New("[auth.New] session is required")
	}
	if creds.AccessToken == "" {
		if creds.Email == "" {
			return nil, errors.New("[auth.New] email is required when no access token is supplied")
		}
		if creds.Password == "" {
			return nil, errors.New("[auth.New] password is required when no access token is supplied")
		}
	}

	a := &Authenticator{
		creds:   creds,
		session: session,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// Token returns the bearer token held after a successful Login, or nil.
func (a *Authenticator) Token() *oauth2.Token {
	return a.token
}

// Authenticated reports whether the session currently carries a valid
// Authorization header.
func (a *Authenticator) Authenticated() bool {
	return a.state == stateAuthenticated
}

// Login runs the handshake appropriate for the configured credentials:
//
//   - pre-issued token: install it, then validate with one authenticated
//     overview read; a rejected probe fails with ErrInvalidAccessToken.
//   - email+password, no TFA secret: one login call yields the token.
//   - email+password with TFA secret: the login call yields an intermediate
//     tfa_token, and a second call with the current TOTP code yields the
//     real token.
//
// Nothing is retried except a single fresh-code resubmission when the TOTP
// step rolled over between computing the code and the server rejecting it.
func (a *Authenticator) Login() (*oauth2.Token, error) {
	if a.creds.AccessToken != "" {
		return a.adoptSuppliedToken()
	}

	form := url.Values{}
	form.Set("email", a.creds.Email)
	form.Set("password", a.creds.Password)

	var loginResp struct {
		AccessToken string `json:"access_token"`
		TFAToken    string `json:"tfa_token"`
	}
	err := a.session.DoJSON(requester.Request{
		Path:      endpoints.Login,
		Method:    http.MethodPost,
		Form:      form,
		OnFailure: ErrInvalidCredentials,
	}, &loginResp)
	if err != nil {
		a.reset()
		return nil, errors.Wrap(err, "[Authenticator.Login] password step")
	}

	if a.creds.TFASecret == "" {
		return a.installToken(loginResp.AccessToken)
	}

	a.state = stateAwaitingSecondFactor
	token, err := a.secondFactor(loginResp.TFAToken)
	if err != nil {
		a.reset()
		return nil, err
	}
	return token, nil
}

// secondFactor exchanges the intermediate tfa_token plus the current TOTP
// code for the real access token.
func (a *Authenticator) secondFactor(tfaToken string) (*oauth2.Token, error) {
	codedAt := a.nowTime()
	code, err := totp.GenerateCode(a.creds.TFASecret, codedAt)
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticator.secondFactor] generating TOTP code")
	}

	raw, err := a.submitCode(code, tfaToken)
	if err != nil && a.stepRolledOver(codedAt) && isRejection(err) {
		// The code may have expired in flight. One fresh code, one retry;
		// a rejection inside the same step is a genuinely wrong secret.
		code, genErr := totp.GenerateCode(a.creds.TFASecret, a.nowTime())
		if genErr != nil {
			return nil, errors.Wrap(genErr, "[Authenticator.secondFactor] regenerating TOTP code")
		}
		raw, err = a.submitCode(code, tfaToken)
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticator.secondFactor] code step")
	}
	return a.installToken(raw)
}

func (a *Authenticator) submitCode(code, tfaToken string) (string, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("tfa_token", tfaToken)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	err := a.session.DoJSON(requester.Request{
		Path:   endpoints.TFA,
		Method: http.MethodPost,
		Form:   form,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// adoptSuppliedToken installs a caller-provided token and validates it with
// one lightweight authenticated read. Failing fast here beats deferring a
// bad token to an arbitrary later call.
func (a *Authenticator) adoptSuppliedToken() (*oauth2.Token, error) {
	token, err := a.installToken(a.creds.AccessToken)
	if err != nil {
		return nil, err
	}

	probeErr := a.session.DoJSON(requester.Request{Path: endpoints.Overview}, nil)
	if probeErr == nil {
		return token, nil
	}

	var apiErr *requester.APIError
	if errors.As(probeErr, &apiErr) {
		a.reset()
		return nil, errors.Wrapf(ErrInvalidAccessToken, "probe rejected: %v", apiErr)
	}
	// Transport failure: the token was never judged, so don't condemn it,
	// but construction still fails.
	a.reset()
	return nil, errors.Wrap(probeErr, "[Authenticator.adoptSuppliedToken] validation probe")
}

// installToken records the bearer token and sets the Authorization header.
func (a *Authenticator) installToken(raw string) (*oauth2.Token, error) {
	if raw == "" {
		a.reset()
		return nil, errors.New("[Authenticator.installToken] response carried no access token")
	}
	a.token = &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	a.session.AddHeader("Authorization", "Bearer "+raw)
	a.state = stateAuthenticated
	return a.token, nil
}

// Logout revokes the token remotely, then removes the Authorization header
// and clears the held token. After Logout the authenticator is back in the
// unauthenticated state; calling Logout again simply repeats the remote
// call.
func (a *Authenticator) Logout() error {
	if err := a.session.DoJSON(requester.Request{Path: endpoints.Logout}, nil); err != nil {
		return errors.Wrap(err, "[Authenticator.Logout]")
	}
	a.reset()
	return nil
}

// TokenExpiry reads the exp claim out of the held bearer token without
// verifying the signature; the client has no key material to verify
// against, and only needs to know when to expect a 401.
func (a *Authenticator) TokenExpiry() (time.Time, error) {
	if a.token == nil {
		return time.Time{}, ErrNotAuthenticated
	}
	unverified, _, err := jwtlib.NewParser().ParseUnverified(a.token.AccessToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, errors.Wrap(err, "[Authenticator.TokenExpiry] parsing token")
	}
	claims, ok := unverified.Claims.(jwtlib.MapClaims)
	if !ok {
		return time.Time{}, errors.New("[Authenticator.TokenExpiry] error extracting claims")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.New("[Authenticator.TokenExpiry] token carries no exp claim")
	}
	return exp.Time, nil
}

func (a *Authenticator) reset() {
	a.session.RemoveHeader("Authorization")
	a.token = nil
	a.state = stateUnauthenticated
}

func (a *Authenticator) stepRolledOver(codedAt time.Time) bool {
	return a.nowTime().Unix()/int64(totpStep.Seconds()) != codedAt.Unix()/int64(totpStep.Seconds())
}

// isRejection reports whether the error is a definite application-level
// rejection, as opposed to a transport failure that retrying could mask.
func isRejection(err error) bool {
	var apiErr *requester.APIError
	return errors.As(err, &apiErr)
}
