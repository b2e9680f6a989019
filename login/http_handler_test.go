package login

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customerDirStub struct {
	emails []string
	err    error
}

func (c *customerDirStub) CustomerEmails(context.Context) ([]string, error) {
	return c.emails, c.err
}

func newLoginServer(t *testing.T, customers CustomerDirectory) *httptest.Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	NewHTTPHandler(customers, testSecret, log).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postLogin(t *testing.T, srv *httptest.Server, email, password string) *http.Response {
	t.Helper()

	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	client := &http.Client{
		// Keep the redirect response observable.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Post(srv.URL+"/api/users/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoginForm(t *testing.T) {
	srv := newLoginServer(t, &customerDirStub{})

	resp, err := http.Get(srv.URL + "/api/users/login")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `name="email"`)
}

func TestLoginKnownEmail(t *testing.T) {
	srv := newLoginServer(t, &customerDirStub{emails: []string{"a@example.com", "b@example.com"}})

	resp := postLogin(t, srv, "a@example.com", "whatever")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/api/users/dashboard", resp.Header.Get("Location"))

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			token = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, token)

	claims, err := VerifyToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestLoginUnknownEmail(t *testing.T) {
	srv := newLoginServer(t, &customerDirStub{emails: []string{"a@example.com"}})

	resp := postLogin(t, srv, "nobody@example.com", "whatever")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoginNoCustomers(t *testing.T) {
	srv := newLoginServer(t, &customerDirStub{})

	resp := postLogin(t, srv, "a@example.com", "whatever")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginMissingFields(t *testing.T) {
	srv := newLoginServer(t, &customerDirStub{emails: []string{"a@example.com"}})

	resp := postLogin(t, srv, "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboardRequiresAuth(t *testing.T) {
	srv := newLoginServer(t, &customerDirStub{emails: []string{"a@example.com"}})

	resp, err := http.Get(srv.URL + "/api/users/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
