package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio/config"
	"portfolio/db"
	"portfolio/models"
	"portfolio/templates"
)

// memStore is an in-memory db.Store that counts calls.
type memStore struct {
	mu      sync.Mutex
	nextID  int
	rows    []models.Project
	calls   map[string]int
	listErr error
	// lose makes Update and Delete report ErrNotFound, as if the row
	// vanished between load and mutation.
	lose bool
}

func newMemStore(seed ...models.ProjectFields) *memStore {
	s := &memStore{nextID: 1, calls: map[string]int{}}
	for _, f := range seed {
		_, _ = s.Create(context.Background(), f)
	}
	s.calls = map[string]int{}
	return s
}

func (s *memStore) List(context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["list"]++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]models.Project(nil), s.rows...), nil
}

func (s *memStore) Get(_ context.Context, id int) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["get"]++
	for _, p := range s.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Project{}, db.ErrNotFound
}

func (s *memStore) Create(_ context.Context, f models.ProjectFields) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["create"]++
	p := models.Project{ID: s.nextID, Title: f.Title, Subtitle: f.Subtitle, ImgURL: f.ImgURL, GitHubURL: f.GitHubURL}
	s.nextID++
	s.rows = append(s.rows, p)
	return p, nil
}

func (s *memStore) Update(_ context.Context, id int, f models.ProjectFields) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["update"]++
	if s.lose {
		return models.Project{}, db.ErrNotFound
	}
	for i, p := range s.rows {
		if p.ID == id {
			s.rows[i] = models.Project{ID: id, Title: f.Title, Subtitle: f.Subtitle, ImgURL: f.ImgURL, GitHubURL: f.GitHubURL}
			return s.rows[i], nil
		}
	}
	return models.Project{}, db.ErrNotFound
}

func (s *memStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["delete"]++
	if s.lose {
		return db.ErrNotFound
	}
	for i, p := range s.rows {
		if p.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (s *memStore) Close() error { return nil }

func (s *memStore) snapshot() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Project(nil), s.rows...)
}

func (s *memStore) mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls["create"] + s.calls["update"] + s.calls["delete"]
}

var testNow = time.Date(2031, 5, 1, 12, 0, 0, 0, time.UTC)

func testDeps(t *testing.T, store db.Store) Deps {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	guard, err := NewGuard(string(hash))
	require.NoError(t, err)
	views, err := NewRenderer(templates.FS)
	require.NoError(t, err)
	return Deps{
		Store:    store,
		Guard:    guard,
		Tokens:   NewFormTokens("test-secret", time.Hour, func() time.Time { return testNow }),
		Sessions: NewSessionStore("test-secret", false),
		Views:    views,
		Log:      zerolog.Nop(),
		Now:      func() time.Time { return testNow },
	}
}

// client talks to a test server, keeps cookies and does not follow
// redirects.
type client struct {
	t   *testing.T
	srv *httptest.Server
	c   *http.Client
}

func newTestClient(t *testing.T, d Deps) *client {
	t.Helper()
	router, err := NewRouter(d)
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{
		t:   t,
		srv: srv,
		c: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	Status   int
	Location string
	Header   http.Header
	Body     string
}

func (c *client) do(req *http.Request) response {
	c.t.Helper()
	resp, err := c.c.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return response{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Header:   resp.Header,
		Body:     string(body),
	}
}

func (c *client) get(path string) response {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.srv.URL+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

func (c *client) post(path string, form url.Values) response {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

var tokenRe = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// token loads the form at path and returns its csrf_token.
func (c *client) token(path string) string {
	c.t.Helper()
	resp := c.get(path)
	require.Equal(c.t, http.StatusOK, resp.Status, resp.Body)
	m := tokenRe.FindStringSubmatch(resp.Body)
	require.Len(c.t, m, 2, "no csrf_token in %s", path)
	return m[1]
}

// submit loads the form at path and posts values with its token.
func (c *client) submit(path string, values url.Values) response {
	c.t.Helper()
	values.Set("csrf_token", c.token(path))
	return c.post(path, values)
}

func projectValues(password string) url.Values {
	return url.Values{
		"title":      {"X"},
		"subtitle":   {"Y"},
		"img_url":    {"https://a.com"},
		"github_url": {"https://github.com/a"},
		"password":   {password},
	}
}

var errBoom = errors.New("boom")

func TestNewRequiresDeps(t *testing.T) {
	d := testDeps(t, newMemStore())
	d.Store = nil
	_, err := New(d)
	require.Error(t, err)

	d = testDeps(t, newMemStore())
	d.RateLimit = "lots"
	_, err = NewRouter(d)
	require.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		SecretKey:    "s3cret",
		PasswordHash: string(hash),
		RateLimit:    "30-M",
		Env:          "development",
	}

	d, err := FromConfig(cfg, newMemStore(), zerolog.Nop())
	require.NoError(t, err)
	c := newTestClient(t, d)
	assert.Equal(t, http.StatusOK, c.get("/").Status)

	css := c.get("/static/style.css")
	assert.Equal(t, http.StatusOK, css.Status)
	assert.Contains(t, css.Body, ".card")

	cfg.PasswordHash = "plaintext"
	_, err = FromConfig(cfg, newMemStore(), zerolog.Nop())
	assert.Error(t, err)
}
