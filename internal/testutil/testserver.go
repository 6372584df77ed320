// Package testutil starts the full HTTP stack for end-to-end tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"microblog/internal/app"
	"microblog/internal/config"
	"microblog/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server *httptest.Server
	Config *config.Config
	Repos  *repositories.Repositories
}

// NewTestServer serves the application over a fresh store. driver is
// config.DriverMemory or config.DriverSQLite; the sqlite database and the
// upload directory live in t.TempDir().
func NewTestServer(t *testing.T, driver string) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.Storage.BasePath = filepath.Join(dir, "uploads")
	cfg.Database.Driver = driver
	if driver == config.DriverSQLite {
		cfg.Database.DSN = "file:" + filepath.Join(dir, "app.db") + "?_pragma=foreign_keys(1)"
	}
	require.NoError(t, cfg.Validate())

	repos, closeRepos, err := app.OpenRepositories(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	router, err := app.SetupRouter(ctx, cfg, repos)
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		cancel()
		_ = closeRepos()
	})

	return &TestServer{Server: server, Config: cfg, Repos: repos}
}

// SendRequest sends body as JSON and returns the response with its body read.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	contentType := ""
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(jsonBody)
		contentType = "application/json"
	}
	return ts.do(t, method, path, token, contentType, reqBody)
}

// SendForm posts URL-encoded form values.
func (ts *TestServer) SendForm(t *testing.T, path string, values url.Values) (*http.Response, string) {
	t.Helper()
	return ts.do(t, http.MethodPost, path, "", "application/x-www-form-urlencoded", strings.NewReader(values.Encode()))
}

// SendFile posts content as the multipart field "file".
func (ts *TestServer) SendFile(t *testing.T, path, token, filename string, content []byte) (*http.Response, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return ts.do(t, http.MethodPost, path, token, w.FormDataContentType(), &buf)
}

func (ts *TestServer) do(t *testing.T, method, path, token, contentType string, body io.Reader) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, ts.Server.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(resBody)
}

// Decode unmarshals a response body into out.
func Decode(t *testing.T, body string, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), out), body)
}

// CreateAndLogin registers a user named login (password "pw-"+login) and
// returns its token and id.
func (ts *TestServer) CreateAndLogin(t *testing.T, login string) (token, userID string) {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/users", "", map[string]string{
		"email":    login + "@example.com",
		"login":    login,
		"password": "pw-" + login,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var user struct {
		ID string `json:"id"`
	}
	Decode(t, body, &user)

	res, body = ts.SendForm(t, "/auth/token", url.Values{"username": {login}, "password": {"pw-" + login}})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	Decode(t, body, &tok)
	require.NotEmpty(t, tok.AccessToken)

	return tok.AccessToken, user.ID
}
