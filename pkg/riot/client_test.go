package riot_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"

	"boombot/pkg/riot"
)

// provider is a scripted stand-in for the Riot authorization endpoint.
// POST is the handshake, PUT the credential submission.
type provider struct {
	t *testing.T

	handshakeStatus int
	submitBody      string
	submitStatus    int
	setSSID         bool

	handshakes  int
	submissions int
	lastSubmit  map[string]any
	sawASID     bool
}

func (p *provider) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			p.handshakes++
			var body map[string]any
			assert.NoError(p.t, json.NewDecoder(r.Body).Decode(&body))
			// the handshake never carries user credentials
			assert.NotContains(p.t, body, "username")
			assert.NotContains(p.t, body, "password")
			assert.Equal(p.t, "play-valorant-web-prod", body["client_id"])
			assert.NotEmpty(p.t, body["nonce"])

			http.SetCookie(w, &http.Cookie{Name: "asid", Value: "affinity", Path: "/"})
			w.Header().Set("Content-Type", "application/json")
			if p.handshakeStatus != 0 {
				w.WriteHeader(p.handshakeStatus)
				return
			}
			fmt.Fprint(w, `{"type":"auth"}`)

		case http.MethodPut:
			p.submissions++
			if c, err := r.Cookie("asid"); err == nil && c.Value == "affinity" {
				p.sawASID = true
			}
			assert.NoError(p.t, json.NewDecoder(r.Body).Decode(&p.lastSubmit))

			if p.setSSID {
				http.SetCookie(w, &http.Cookie{Name: "ssid", Value: "reauth-secret", Path: "/"})
			}
			w.Header().Set("Content-Type", "application/json")
			if p.submitStatus != 0 {
				w.WriteHeader(p.submitStatus)
			}
			fmt.Fprint(w, p.submitBody)

		default:
			p.t.Errorf("unexpected method %s", r.Method)
		}
	}
}

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	assert.NoError(t, err)
	return signed
}

func successBody(t *testing.T, sub string, exp time.Time) string {
	uri := fmt.Sprintf("https://playvalorant.com/opt_in#access_token=%s&id_token=%s&token_type=Bearer",
		signedToken(t, sub, exp), signedToken(t, sub, exp))
	return fmt.Sprintf(`{"type":"response","response":{"parameters":{"uri":%q}}}`, uri)
}

func TestVerify_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	p := &provider{t: t, submitBody: successBody(t, "riot-sub-1", exp), setSSID: true}
	srv := httptest.NewServer(p.handler())
	defer srv.Close()

	client := riot.NewClient(srv.URL)
	res, err := client.Verify(context.Background(), "alice", "hunter2", "")

	assert.NoError(t, err)
	assert.Equal(t, riot.StatusSuccess, res.Status)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.IDToken)
	assert.Equal(t, "riot-sub-1", res.Subject)
	assert.Equal(t, "reauth-secret", res.SecretHandle)
	assert.Equal(t, exp.Unix(), res.ExpiresAt.Unix())

	// handshake cookies were replayed on the submission
	assert.True(t, p.sawASID)
	assert.Equal(t, 1, p.handshakes)
	assert.Equal(t, 1, p.submissions)
	assert.Equal(t, "auth", p.lastSubmit["type"])
	assert.Equal(t, "alice", p.lastSubmit["username"])
	assert.NotContains(t, p.lastSubmit, "code")
}

func TestVerify_MfaTokenIncluded(t *testing.T) {
	p := &provider{t: t, submitBody: successBody(t, "riot-sub-2", time.Now().Add(time.Hour))}
	srv := httptest.NewServer(p.handler())
	defer srv.Close()

	client := riot.NewClient(srv.URL)
	res, err := client.Verify(context.Background(), "alice", "hunter2", "123456")

	assert.NoError(t, err)
	assert.Equal(t, riot.StatusSuccess, res.Status)
	assert.Equal(t, "123456", p.lastSubmit["code"])
}

func TestVerify_InvalidCredentials(t *testing.T) {
	p := &provider{t: t, submitBody: `{"type":"auth","error":"auth_failure"}`}
	srv := httptest.NewServer(p.handler())
	defer srv.Close()

	client := riot.NewClient(srv.URL)
	res, err := client.Verify(context.Background(), "alice", "wrong", "")

	assert.NoError(t, err)
	assert.Equal(t, riot.StatusInvalidCredentials, res.Status)
}

func TestVerify_MfaRequired(t *testing.T) {
	p := &provider{t: t, submitBody: `{"type":"multifactor","multifactor":{"email":"a***@b.com"}}`}
	srv := httptest.NewServer(p.handler())
	defer srv.Close()

	client := riot.NewClient(srv.URL)
	res, err := client.Verify(context.Background(), "alice", "hunter2", "")

	assert.NoError(t, err)
	assert.Equal(t, riot.StatusMfaRequired, res.Status)
	assert.Equal(t, "a***@b.com", res.MfaEmail)
}

func TestVerify_TransportFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider *provider
	}{
		{
			name:     "handshake 5xx",
			provider: &provider{handshakeStatus: http.StatusInternalServerError},
		},
		{
			name:     "unrecognized discriminant",
			provider: &provider{submitBody: `{"type":"mystery"}`},
		},
		{
			name:     "unknown auth error is not invalid credentials",
			provider: &provider{submitBody: `{"type":"auth","error":"rate_limited"}`},
		},
		{
			name:     "non-2xx without parseable body",
			provider: &provider{submitStatus: http.StatusBadGateway, submitBody: "bad gateway"},
		},
		{
			name:     "response without tokens",
			provider: &provider{submitBody: `{"type":"response","response":{"parameters":{"uri":"https://playvalorant.com/opt_in#token_type=Bearer"}}}`},
		},
		{
			name:     "response with garbage token",
			provider: &provider{submitBody: `{"type":"response","response":{"parameters":{"uri":"https://playvalorant.com/opt_in#access_token=not-a-jwt&id_token=nope"}}}`},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			test.provider.t = t
			srv := httptest.NewServer(test.provider.handler())
			defer srv.Close()

			client := riot.NewClient(srv.URL)
			res, err := client.Verify(context.Background(), "alice", "hunter2", "")

			assert.Nil(t, res)
			assert.ErrorIs(t, err, riot.ErrTransport)
		})
	}
}

func TestVerify_HandshakeFailureSkipsSubmission(t *testing.T) {
	p := &provider{t: t, handshakeStatus: http.StatusBadGateway}
	srv := httptest.NewServer(p.handler())
	defer srv.Close()

	client := riot.NewClient(srv.URL)
	_, err := client.Verify(context.Background(), "alice", "hunter2", "")

	assert.ErrorIs(t, err, riot.ErrTransport)
	assert.Equal(t, 0, p.submissions)
}

func TestVerify_ProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listening anymore

	client := riot.NewClient(srv.URL)
	res, err := client.Verify(context.Background(), "alice", "hunter2", "")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, riot.ErrTransport)
}
