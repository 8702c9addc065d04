package riot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"golang.org/x/net/publicsuffix"

	"boombot/pkg/generator"
)

// ErrTransport marks any failure to complete or understand the
// provider exchange: network errors, non-2xx replies without a
// parseable body, unknown response discriminants. It is deliberately
// distinct from an invalid-credential outcome so that "provider
// unreachable" is never reported to the user as "wrong password".
var ErrTransport = errors.New("identity provider exchange failed")

type Status int

const (
	StatusSuccess Status = iota
	StatusInvalidCredentials
	StatusMfaRequired
)

// Result is the classified outcome of one verification exchange.
// Token and cookie fields are populated only on StatusSuccess;
// MfaEmail only on StatusMfaRequired.
type Result struct {
	Status Status

	AccessToken  string
	IDToken      string
	SecretHandle string // the provider's re-auth cookie (ssid)
	Subject      string
	ExpiresAt    time.Time

	MfaEmail string // masked email hint for the MFA prompt
}

const (
	clientID     = "play-valorant-web-prod"
	redirectURI  = "https://playvalorant.com/opt_in"
	responseType = "token id_token"
	userAgent    = "boombot/1.0"
	nonceLength  = 16

	errAuthFailure        = "auth_failure"
	errInvalidCredentials = "invalid_credentials"
)

// Client performs the two-step credential exchange with the Riot
// authorization endpoint. A fresh cookie jar is created per Verify
// call, so provider session cookies never leak across enrollments.
// The client never retries; retry policy lives in the caller.
type Client struct {
	authURL   string
	timeout   time.Duration
	transport http.RoundTripper
}

func NewClient(authURL string) *Client {
	return &Client{
		authURL: authURL,
		timeout: 30 * time.Second,
	}
}

// Verify runs the authorization handshake and the credential
// submission and classifies the provider's answer. A non-nil error
// always wraps ErrTransport; credential and MFA outcomes are carried
// in Result.Status.
func (c *Client) Verify(ctx context.Context, username, password, mfaToken string) (*Result, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("%w: cookie jar: %v", ErrTransport, err)
	}

	httpClient := &http.Client{
		Jar:       jar,
		Timeout:   c.timeout,
		Transport: c.transport,
	}

	if err := c.handshake(ctx, httpClient); err != nil {
		return nil, err
	}

	return c.submit(ctx, httpClient, jar, username, password, mfaToken)
}

type handshakeRequest struct {
	ClientID     string `json:"client_id"`
	Nonce        string `json:"nonce"`
	RedirectURI  string `json:"redirect_uri"`
	ResponseType string `json:"response_type"`
}

type credentialRequest struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
	Code     string `json:"code,omitempty"`
}

type providerResponse struct {
	Type     string `json:"type"`
	Error    string `json:"error"`
	Response struct {
		Parameters struct {
			URI string `json:"uri"`
		} `json:"parameters"`
	} `json:"response"`
	Multifactor struct {
		Email string `json:"email"`
	} `json:"multifactor"`
}

// handshake obtains the session-affinity cookies the provider expects
// on the credential submission. It carries no user credentials and is
// idempotent on the provider side.
func (c *Client) handshake(ctx context.Context, httpClient *http.Client) error {
	nonce, err := generator.GenerateNonce(nonceLength)
	if err != nil {
		return fmt.Errorf("%w: nonce: %v", ErrTransport, err)
	}

	body := handshakeRequest{
		ClientID:     clientID,
		Nonce:        nonce,
		RedirectURI:  redirectURI,
		ResponseType: responseType,
	}

	resp, err := c.do(ctx, httpClient, http.MethodPost, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: handshake status %d", ErrTransport, resp.StatusCode)
	}
	return nil
}

func (c *Client) submit(ctx context.Context, httpClient *http.Client, jar http.CookieJar, username, password, mfaToken string) (*Result, error) {
	body := credentialRequest{
		Type:     "auth",
		Username: username,
		Password: password,
		Remember: true,
		Code:     mfaToken,
	}

	resp, err := c.do(ctx, httpClient, http.MethodPut, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: status %d, unparseable body: %v", ErrTransport, resp.StatusCode, err)
	}

	return c.classify(&parsed, jar)
}

func (c *Client) do(ctx context.Context, httpClient *http.Client, method string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.authURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

func (c *Client) classify(parsed *providerResponse, jar http.CookieJar) (*Result, error) {
	switch parsed.Type {
	case "response":
		return c.success(parsed.Response.Parameters.URI, jar)
	case "auth":
		if parsed.Error == errAuthFailure || parsed.Error == errInvalidCredentials {
			return &Result{Status: StatusInvalidCredentials}, nil
		}
		return nil, fmt.Errorf("%w: auth error %q", ErrTransport, parsed.Error)
	case "multifactor":
		return &Result{Status: StatusMfaRequired, MfaEmail: parsed.Multifactor.Email}, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized response type %q", ErrTransport, parsed.Type)
	}
}

// success extracts the tokens from the redirect fragment and the
// re-auth cookie from the jar. A "response" body without both tokens
// is treated as a transport failure, never as bad credentials.
func (c *Client) success(redirect string, jar http.CookieJar) (*Result, error) {
	parsed, err := url.Parse(redirect)
	if err != nil {
		return nil, fmt.Errorf("%w: bad redirect uri: %v", ErrTransport, err)
	}

	params, err := url.ParseQuery(parsed.Fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: bad redirect fragment: %v", ErrTransport, err)
	}

	accessToken := params.Get("access_token")
	idToken := params.Get("id_token")
	if accessToken == "" || idToken == "" {
		return nil, fmt.Errorf("%w: redirect uri is missing tokens", ErrTransport)
	}

	subject, expiresAt, err := tokenClaims(accessToken)
	if err != nil {
		return nil, err
	}

	return &Result{
		Status:       StatusSuccess,
		AccessToken:  accessToken,
		IDToken:      idToken,
		SecretHandle: reauthCookie(jar, c.authURL),
		Subject:      subject,
		ExpiresAt:    expiresAt,
	}, nil
}

// tokenClaims reads sub and exp from the access token without
// verifying the signature; the token just arrived over TLS from the
// party that signed it.
func tokenClaims(accessToken string) (string, time.Time, error) {
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: access token parse: %v", ErrTransport, err)
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("%w: access token has no subject", ErrTransport)
	}

	var expiresAt time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return subject, expiresAt, nil
}

func reauthCookie(jar http.CookieJar, authURL string) string {
	u, err := url.Parse(authURL)
	if err != nil {
		return ""
	}
	for _, cookie := range jar.Cookies(u) {
		if cookie.Name == "ssid" {
			return cookie.Value
		}
	}
	return ""
}
