package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/eastsecure/internal/dbx"
	"github.com/dmitrijs2005/eastsecure/internal/logging"
	"github.com/dmitrijs2005/eastsecure/internal/server/jobs"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/inquiries"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/posts"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/scans"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/servicerequests"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/verificationcodes"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.New(logging.FormatJSON, "error", io.Discard)
}

// --- accounts ---

type fakeAccountsRepo struct {
	createIn  *models.Account
	createOut *models.Account
	createErr error

	getOut *models.Account
	getErr error

	upsertIn  *models.Account
	upsertAt  time.Time
	upsertOut *models.Account
	upsertErr error
}

func (f *fakeAccountsRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.createIn = a
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeAccountsRepo) GetByEmail(context.Context, string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeAccountsRepo) GetByID(context.Context, string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeAccountsRepo) UpsertVerified(_ context.Context, a *models.Account, at time.Time) (*models.Account, error) {
	f.upsertIn, f.upsertAt = a, at
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	return f.upsertOut, nil
}

// --- verification codes ---

type fakeCodesRepo struct {
	calls []string

	lockErr   error
	latestOut time.Time
	latestErr error
	deleteErr error
	createIn  *models.VerificationCode
	createErr error

	consumeEmail, consumeCode string
	consumeErr                error

	staleOut int64
	staleErr error
}

func (f *fakeCodesRepo) LockEmail(context.Context, string) error {
	f.calls = append(f.calls, "lock")
	return f.lockErr
}

func (f *fakeCodesRepo) LatestCreatedAt(context.Context, string) (time.Time, error) {
	f.calls = append(f.calls, "latest")
	return f.latestOut, f.latestErr
}

func (f *fakeCodesRepo) DeleteByEmail(context.Context, string) error {
	f.calls = append(f.calls, "delete")
	return f.deleteErr
}

func (f *fakeCodesRepo) Create(_ context.Context, c *models.VerificationCode) (*models.VerificationCode, error) {
	f.calls = append(f.calls, "create")
	f.createIn = c
	if f.createErr != nil {
		return nil, f.createErr
	}
	return c, nil
}

func (f *fakeCodesRepo) Consume(_ context.Context, email, code string, now time.Time) (*models.VerificationCode, error) {
	f.consumeEmail, f.consumeCode = email, code
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	return &models.VerificationCode{Email: email, Code: code, Used: true}, nil
}

func (f *fakeCodesRepo) DeleteStale(context.Context, time.Time) (int64, error) {
	return f.staleOut, f.staleErr
}

// --- sessions ---

type fakeSessionsRepo struct {
	expiredOut int64
	expiredErr error
}

func (f *fakeSessionsRepo) Create(context.Context, string, string, time.Time) error { return nil }
func (f *fakeSessionsRepo) Find(context.Context, string) (*models.Session, error) {
	return nil, nil
}
func (f *fakeSessionsRepo) Delete(context.Context, string) error { return nil }
func (f *fakeSessionsRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return f.expiredOut, f.expiredErr
}

// --- inquiries ---

type fakeInquiriesRepo struct {
	in  *models.Inquiry
	err error
}

func (f *fakeInquiriesRepo) Create(_ context.Context, in *models.Inquiry) (*models.Inquiry, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	out := *in
	out.ID = "inq-1"
	return &out, nil
}

// --- service requests ---

type fakeRequestsRepo struct {
	createIn  *models.ServiceRequest
	createErr error

	listOut []models.ServiceRequest
	listErr error

	countOut map[string]int
	countErr error
}

func (f *fakeRequestsRepo) Create(_ context.Context, r *models.ServiceRequest) (*models.ServiceRequest, error) {
	f.createIn = r
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *r
	out.ID = "req-1"
	return &out, nil
}

func (f *fakeRequestsRepo) ListByUser(context.Context, string) ([]models.ServiceRequest, error) {
	return f.listOut, f.listErr
}

func (f *fakeRequestsRepo) CountByStatus(context.Context, string) (map[string]int, error) {
	return f.countOut, f.countErr
}

// --- scans ---

type finishCall struct {
	id, status string
	results    json.RawMessage
}

type fakeScansRepo struct {
	mu sync.Mutex

	createIn  *models.ScanRecord
	createErr error

	getOut *models.ScanRecord
	getErr error

	listOut []models.ScanRecord

	claimOut *models.ScanRecord
	claimErr error

	finished   []finishCall
	finishErr  error
	finishErrs []error

	reportKey    string
	reportKeyErr error

	summaryOut *models.ScanSummary
	summaryErr error
}

func (f *fakeScansRepo) Create(_ context.Context, s *models.ScanRecord) (*models.ScanRecord, error) {
	f.createIn = s
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *s
	out.ID = "0b7f8c1e-3c3e-4b8e-9a57-1f4f7e0c2d11"
	return &out, nil
}

func (f *fakeScansRepo) GetByID(context.Context, string) (*models.ScanRecord, error) {
	return f.getOut, f.getErr
}

func (f *fakeScansRepo) ListByUser(context.Context, string) ([]models.ScanRecord, error) {
	return f.listOut, nil
}

func (f *fakeScansRepo) Claim(context.Context, string) (*models.ScanRecord, error) {
	return f.claimOut, f.claimErr
}

func (f *fakeScansRepo) Finish(_ context.Context, id, status string, results json.RawMessage, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, finishCall{id: id, status: status, results: results})
	if len(f.finishErrs) > 0 {
		err := f.finishErrs[0]
		f.finishErrs = f.finishErrs[1:]
		return err
	}
	return f.finishErr
}

func (f *fakeScansRepo) SetReportKey(_ context.Context, _, key string) error {
	f.reportKey = key
	return f.reportKeyErr
}

func (f *fakeScansRepo) Summary(context.Context, string) (*models.ScanSummary, error) {
	return f.summaryOut, f.summaryErr
}

// --- posts ---

type fakePostsRepo struct {
	listIn  models.PostFilter
	listOut []models.Post
	listErr error

	countOut int
	countErr error

	slugOut *models.Post
	slugErr error

	relatedCategory, relatedExclude string
	relatedLimit                    int
	relatedOut                      []models.Post

	categoriesOut []models.CategoryCount
}

func (f *fakePostsRepo) List(_ context.Context, filter models.PostFilter) ([]models.Post, error) {
	f.listIn = filter
	return f.listOut, f.listErr
}

func (f *fakePostsRepo) Count(context.Context, models.PostFilter) (int, error) {
	return f.countOut, f.countErr
}

func (f *fakePostsRepo) GetBySlug(context.Context, string) (*models.Post, error) {
	return f.slugOut, f.slugErr
}

func (f *fakePostsRepo) Related(_ context.Context, category, excludeID string, limit int) ([]models.Post, error) {
	f.relatedCategory, f.relatedExclude, f.relatedLimit = category, excludeID, limit
	return f.relatedOut, nil
}

func (f *fakePostsRepo) Categories(context.Context) ([]models.CategoryCount, error) {
	return f.categoriesOut, nil
}

// --- manager ---

type fakeRepoManager struct {
	a  *fakeAccountsRepo
	v  *fakeCodesRepo
	s  *fakeSessionsRepo
	i  *fakeInquiriesRepo
	r  *fakeRequestsRepo
	sc *fakeScansRepo
	p  *fakePostsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		a:  &fakeAccountsRepo{},
		v:  &fakeCodesRepo{},
		s:  &fakeSessionsRepo{},
		i:  &fakeInquiriesRepo{},
		r:  &fakeRequestsRepo{},
		sc: &fakeScansRepo{},
		p:  &fakePostsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository { return m.a }
func (m *fakeRepoManager) VerificationCodes(dbx.DBTX) verificationcodes.Repository {
	return m.v
}
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository   { return m.s }
func (m *fakeRepoManager) Inquiries(dbx.DBTX) inquiries.Repository { return m.i }
func (m *fakeRepoManager) ServiceRequests(dbx.DBTX) servicerequests.Repository {
	return m.r
}
func (m *fakeRepoManager) Scans(dbx.DBTX) scans.Repository { return m.sc }
func (m *fakeRepoManager) Posts(dbx.DBTX) posts.Repository { return m.p }

// --- collaborators ---

type fakeNotifier struct {
	codeEmail, code string
	codeTTL         time.Duration
	codeErr         error

	inquiry    *models.Inquiry
	contactErr error
}

func (n *fakeNotifier) SendVerificationCode(_ context.Context, email, code string, ttl time.Duration) error {
	n.codeEmail, n.code, n.codeTTL = email, code, ttl
	return n.codeErr
}

func (n *fakeNotifier) SendContactNotification(_ context.Context, in *models.Inquiry) error {
	n.inquiry = in
	return n.contactErr
}

type fakeQueue struct {
	got []jobs.ScanJob
	err error
}

func (q *fakeQueue) Enqueue(_ context.Context, job jobs.ScanJob) error {
	q.got = append(q.got, job)
	return q.err
}

type fakeScanner struct {
	gotURL, gotType string
	out             json.RawMessage
	err             error
}

func (s *fakeScanner) Scan(_ context.Context, url, scanType string) (json.RawMessage, error) {
	s.gotURL, s.gotType = url, scanType
	return s.out, s.err
}

type fakeArchive struct {
	putKey  string
	putBody []byte
	putErr  error

	url    string
	urlErr error
}

func (a *fakeArchive) Put(_ context.Context, key string, body []byte) error {
	a.putKey, a.putBody = key, body
	return a.putErr
}

func (a *fakeArchive) PresignedURL(_ context.Context, key string) (string, error) {
	return a.url + key, a.urlErr
}
