package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newTestEnv()
	env.pinger.err = errors.New("connection refused")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSubmitContact(t *testing.T) {
	env := newTestEnv()
	env.contact.out = &models.Inquiry{ID: "inq-1"}

	rec := env.do(jsonRequest(http.MethodPost, "/contact",
		`{"name":"Jane","email":"jane@example.com","company":"Acme","service":"Audit","message":"Hello"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Inquiry submitted successfully","id":"inq-1"}`, rec.Body.String())
	assert.Equal(t, models.Inquiry{
		Name: "Jane", Email: "jane@example.com", Company: "Acme", Service: "Audit", Message: "Hello",
	}, env.contact.got)
}

func TestSubmitContact_MissingFields(t *testing.T) {
	env := newTestEnv()

	rec := env.do(jsonRequest(http.MethodPost, "/contact", `{"name":"Jane","email":"jane@example.com"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.contact.got.Name)
}

func TestListPosts(t *testing.T) {
	env := newTestEnv()
	env.blog.page = &services.PostPage{
		Posts:   []models.Post{{ID: "p1", Slug: "zero-trust", Title: "Zero Trust"}},
		Total:   11,
		Limit:   10,
		Offset:  0,
		HasMore: true,
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/blog?category=Cloud&search=trust&limit=10&offset=-5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PostFilter{Category: "Cloud", Search: "trust", Limit: 10, Offset: 0}, env.blog.gotFilter)

	body := decodeBody(t, rec)
	posts := body["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, []any{}, posts[0].(map[string]any)["tags"])
	assert.Equal(t, map[string]any{"total": float64(11), "limit": float64(10), "offset": float64(0), "hasMore": true}, body["pagination"])
}

func TestListCategories_NotShadowedBySlug(t *testing.T) {
	env := newTestEnv()
	env.blog.cats = []models.CategoryCount{{Category: "Cloud", Count: 2}}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/blog/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories":[{"category":"Cloud","count":2}]}`, rec.Body.String())
	assert.Empty(t, env.blog.gotSlug)
}

func TestGetPost(t *testing.T) {
	env := newTestEnv()
	env.blog.post = &models.Post{ID: "p1", Slug: "zero-trust", Tags: []string{"identity"}}
	env.blog.related = []models.Post{{ID: "p2", Slug: "mfa"}}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/blog/zero-trust", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "zero-trust", env.blog.gotSlug)
	body := decodeBody(t, rec)
	assert.Equal(t, "p1", body["post"].(map[string]any)["id"])
	assert.Len(t, body["relatedPosts"], 1)
}

func TestGetPost_NotFound(t *testing.T) {
	env := newTestEnv()
	env.blog.err = common.ErrorNotFound

	rec := env.do(httptest.NewRequest(http.MethodGet, "/blog/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

func TestWrongMethod(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/contact", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoverer(t *testing.T) {
	env := newTestEnv()
	env.blog.panics = true

	rec := env.do(httptest.NewRequest(http.MethodGet, "/blog", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv()
	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := env.do(req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ForeignOrigin(t *testing.T) {
	env := newTestEnv()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")

	rec := env.do(req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
