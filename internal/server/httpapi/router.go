// Package httpapi is the JSON API used by the marketing site and the client
// portal. Errors are returned as {"error": "..."}.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/eastsecure/internal/logging"
	"github.com/dmitrijs2005/eastsecure/internal/server/auth"
	"github.com/dmitrijs2005/eastsecure/internal/server/config"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/oauth"
	"github.com/dmitrijs2005/eastsecure/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type IdentityService interface {
	CheckUser(ctx context.Context, email string) (services.LoginMethod, error)
	Register(ctx context.Context, name, email, password, company, phone, role string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*models.Account, error)
	SignInExternal(ctx context.Context, email, name string) (*models.Account, error)
}

type VerificationService interface {
	RequestCode(ctx context.Context, email string) (string, error)
	RedeemCode(ctx context.Context, email, code string, profile services.Profile) (*models.Account, error)
}

type ServiceRequestService interface {
	Create(ctx context.Context, ownerID, service, description, priority string) (*models.ServiceRequest, error)
	List(ctx context.Context, ownerID string) ([]models.ServiceRequest, error)
	Dashboard(ctx context.Context, ownerID string) (*services.DashboardStats, error)
}

type ScanService interface {
	CreateScan(ctx context.Context, ownerID, url, scanType string) (*models.ScanRecord, error)
	GetScan(ctx context.Context, id, ownerID string) (*models.ScanRecord, error)
	ListScans(ctx context.Context, ownerID string) ([]models.ScanRecord, error)
	ReportURL(ctx context.Context, scan *models.ScanRecord) (string, error)
}

type ContactService interface {
	Submit(ctx context.Context, in models.Inquiry) (*models.Inquiry, error)
}

type BlogService interface {
	List(ctx context.Context, f models.PostFilter) (*services.PostPage, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, []models.Post, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
}

type OAuthProviders interface {
	Get(name string) (oauth.Flow, bool)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators of the API.
type Deps struct {
	Identity     IdentityService
	Verification VerificationService
	Requests     ServiceRequestService
	Scans        ScanService
	Contact      ContactService
	Blog         BlogService
	OAuth        OAuthProviders
	Issuer       auth.Issuer
	DB           Pinger
	Logger       logging.Logger
	Config       *config.Config
}

type handler struct {
	identity     IdentityService
	verification VerificationService
	requests     ServiceRequestService
	scans        ScanService
	contact      ContactService
	blog         BlogService
	oauth        OAuthProviders
	issuer       auth.Issuer
	db           Pinger
	logger       logging.Logger

	cookieSecure bool
	portalURL    string
}

// NewRouter builds the complete HTTP handler, including CORS, panic
// recovery and access logging.
func NewRouter(d Deps) http.Handler {
	h := &handler{
		identity:     d.Identity,
		verification: d.Verification,
		requests:     d.Requests,
		scans:        d.Scans,
		contact:      d.Contact,
		blog:         d.Blog,
		oauth:        d.OAuth,
		issuer:       d.Issuer,
		db:           d.DB,
		logger:       d.Logger,
		cookieSecure: d.Config.CookieSecure,
		portalURL:    d.Config.PortalURL,
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	// auth
	r.HandleFunc("/auth/check-user", h.checkUser).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/send-code", h.sendCode).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify-email", h.verifyEmail).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)
	r.Handle("/auth/me", h.requireSession(h.me)).Methods(http.MethodGet)
	r.HandleFunc("/auth/oauth/{provider}/start", h.oauthStart).Methods(http.MethodGet)
	r.HandleFunc("/auth/oauth/{provider}/callback", h.oauthCallback).Methods(http.MethodGet)

	// public site
	r.HandleFunc("/contact", h.submitContact).Methods(http.MethodPost)
	r.HandleFunc("/blog", h.listPosts).Methods(http.MethodGet)
	r.HandleFunc("/blog/categories", h.listCategories).Methods(http.MethodGet)
	r.HandleFunc("/blog/{slug}", h.getPost).Methods(http.MethodGet)

	// portal
	r.Handle("/service-requests", h.requireSession(h.createServiceRequest)).Methods(http.MethodPost)
	r.Handle("/service-requests", h.requireSession(h.listServiceRequests)).Methods(http.MethodGet)
	r.Handle("/dashboard/stats", h.requireSession(h.dashboardStats)).Methods(http.MethodGet)
	r.Handle("/scanner", h.requireSession(h.createScan)).Methods(http.MethodPost)
	r.Handle("/scanner", h.requireSession(h.getScans)).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   d.Config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(h.recoverer(h.accessLog(r)))
}
