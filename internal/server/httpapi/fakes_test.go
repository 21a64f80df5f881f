package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/logging"
	"github.com/dmitrijs2005/eastsecure/internal/server/auth"
	"github.com/dmitrijs2005/eastsecure/internal/server/config"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/oauth"
	"github.com/dmitrijs2005/eastsecure/internal/server/services"
)

const goodToken = "good-token"

var testIdentity = auth.Identity{ID: "user-1", Email: "jane@example.com", Name: "Jane", Role: common.RoleClient}

type fakeIdentity struct {
	method services.LoginMethod
	acc    *models.Account
	err    error

	gotRole     string
	gotExternal string
}

func (f *fakeIdentity) CheckUser(context.Context, string) (services.LoginMethod, error) {
	return f.method, f.err
}

func (f *fakeIdentity) Register(_ context.Context, _, _, _, _, _, role string) (*models.Account, error) {
	f.gotRole = role
	return f.acc, f.err
}

func (f *fakeIdentity) Login(context.Context, string, string) (*models.Account, error) {
	return f.acc, f.err
}

func (f *fakeIdentity) SignInExternal(_ context.Context, email, _ string) (*models.Account, error) {
	f.gotExternal = email
	return f.acc, f.err
}

type fakeVerification struct {
	email string
	acc   *models.Account
	err   error

	gotProfile services.Profile
}

func (f *fakeVerification) RequestCode(context.Context, string) (string, error) {
	return f.email, f.err
}

func (f *fakeVerification) RedeemCode(_ context.Context, _, _ string, p services.Profile) (*models.Account, error) {
	f.gotProfile = p
	return f.acc, f.err
}

type fakeRequests struct {
	created *models.ServiceRequest
	list    []models.ServiceRequest
	stats   *services.DashboardStats
	err     error

	gotOwner string
}

func (f *fakeRequests) Create(_ context.Context, owner, _, _, _ string) (*models.ServiceRequest, error) {
	f.gotOwner = owner
	return f.created, f.err
}

func (f *fakeRequests) List(_ context.Context, owner string) ([]models.ServiceRequest, error) {
	f.gotOwner = owner
	return f.list, f.err
}

func (f *fakeRequests) Dashboard(_ context.Context, owner string) (*services.DashboardStats, error) {
	f.gotOwner = owner
	return f.stats, f.err
}

type fakeScans struct {
	scan    *models.ScanRecord
	list    []models.ScanRecord
	url     string
	err     error
	urlErr  error
	gotType string
}

func (f *fakeScans) CreateScan(_ context.Context, _, _, scanType string) (*models.ScanRecord, error) {
	f.gotType = scanType
	return f.scan, f.err
}

func (f *fakeScans) GetScan(context.Context, string, string) (*models.ScanRecord, error) {
	return f.scan, f.err
}

func (f *fakeScans) ListScans(context.Context, string) ([]models.ScanRecord, error) {
	return f.list, f.err
}

func (f *fakeScans) ReportURL(context.Context, *models.ScanRecord) (string, error) {
	return f.url, f.urlErr
}

type fakeContact struct {
	out *models.Inquiry
	err error
	got models.Inquiry
}

func (f *fakeContact) Submit(_ context.Context, in models.Inquiry) (*models.Inquiry, error) {
	f.got = in
	return f.out, f.err
}

type fakeBlog struct {
	page    *services.PostPage
	post    *models.Post
	related []models.Post
	cats    []models.CategoryCount
	err     error
	panics  bool

	gotFilter models.PostFilter
	gotSlug   string
}

func (f *fakeBlog) List(_ context.Context, filter models.PostFilter) (*services.PostPage, error) {
	if f.panics {
		panic("boom")
	}
	f.gotFilter = filter
	return f.page, f.err
}

func (f *fakeBlog) GetBySlug(_ context.Context, slug string) (*models.Post, []models.Post, error) {
	f.gotSlug = slug
	return f.post, f.related, f.err
}

func (f *fakeBlog) Categories(context.Context) ([]models.CategoryCount, error) {
	return f.cats, f.err
}

type fakeFlow struct {
	profile *oauth.Profile
	err     error
}

func (f *fakeFlow) AuthCodeURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (f *fakeFlow) Exchange(context.Context, string) (*oauth.Profile, error) {
	return f.profile, f.err
}

type fakeProviders map[string]oauth.Flow

func (p fakeProviders) Get(name string) (oauth.Flow, bool) {
	f, ok := p[name]
	return f, ok
}

type fakeIssuer struct {
	issueErr error
	revoked  []string
}

func (f *fakeIssuer) Issue(_ context.Context, id auth.Identity) (string, time.Time, error) {
	if f.issueErr != nil {
		return "", time.Time{}, f.issueErr
	}
	return "token-" + id.ID, time.Now().Add(time.Hour), nil
}

func (f *fakeIssuer) Resolve(_ context.Context, token string) (*auth.Identity, error) {
	if token != goodToken {
		return nil, common.ErrInvalidToken
	}
	id := testIdentity
	return &id, nil
}

func (f *fakeIssuer) Revoke(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testEnv struct {
	identity     *fakeIdentity
	verification *fakeVerification
	requests     *fakeRequests
	scans        *fakeScans
	contact      *fakeContact
	blog         *fakeBlog
	flow         *fakeFlow
	issuer       *fakeIssuer
	pinger       *fakePinger
	cfg          *config.Config
}

func newTestEnv() *testEnv {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return &testEnv{
		identity:     &fakeIdentity{},
		verification: &fakeVerification{},
		requests:     &fakeRequests{},
		scans:        &fakeScans{},
		contact:      &fakeContact{},
		blog:         &fakeBlog{},
		flow:         &fakeFlow{},
		issuer:       &fakeIssuer{},
		pinger:       &fakePinger{},
		cfg:          cfg,
	}
}

func (e *testEnv) router() http.Handler {
	return NewRouter(Deps{
		Identity:     e.identity,
		Verification: e.verification,
		Requests:     e.requests,
		Scans:        e.scans,
		Contact:      e.contact,
		Blog:         e.blog,
		OAuth:        fakeProviders{oauth.GitHub: e.flow},
		Issuer:       e.issuer,
		DB:           e.pinger,
		Logger:       logging.New(logging.FormatJSON, "error", io.Discard),
		Config:       e.cfg,
	})
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+goodToken)
	return req
}

func testAccount() *models.Account {
	return &models.Account{
		ID:        "user-1",
		Email:     "jane@example.com",
		Name:      "Jane",
		Role:      common.RoleClient,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == common.SessionCookieName {
			return c
		}
	}
	return nil
}
