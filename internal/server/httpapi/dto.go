package httpapi

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/services"
)

// --- requests ---

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Company  string `json:"company"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyEmailRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name"`
	Company  string `json:"company"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"omitempty,max=72"`
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Service string `json:"service" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type serviceRequestRequest struct {
	Service     string `json:"service" validate:"required"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

type scanRequest struct {
	URL      string `json:"url" validate:"required,http_url"`
	ScanType string `json:"scanType"`
}

// --- responses ---

type userDTO struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Company       string     `json:"company"`
	Phone         string     `json:"phone"`
	Role          string     `json:"role"`
	EmailVerified *time.Time `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toUserDTO(a *models.Account) userDTO {
	return userDTO{
		ID:            a.ID,
		Email:         a.Email,
		Name:          a.Name,
		Company:       a.Company,
		Phone:         a.Phone,
		Role:          a.Role,
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt,
	}
}

type serviceRequestDTO struct {
	ID          string    `json:"id"`
	Service     string    `json:"service"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toServiceRequestDTO(r *models.ServiceRequest) serviceRequestDTO {
	return serviceRequestDTO{
		ID:          r.ID,
		Service:     r.Service,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type statsDTO struct {
	TotalRequests     int        `json:"totalRequests"`
	ActiveServices    int        `json:"activeServices"`
	CompletedServices int        `json:"completedServices"`
	PendingServices   int        `json:"pendingServices"`
	TotalScans        int        `json:"totalScans"`
	LastScanAt        *time.Time `json:"lastScanAt"`
}

func toStatsDTO(d *services.DashboardStats) statsDTO {
	return statsDTO{
		TotalRequests:     d.TotalRequests,
		ActiveServices:    d.ActiveServices,
		CompletedServices: d.CompletedServices,
		PendingServices:   d.PendingServices,
		TotalScans:        d.TotalScans,
		LastScanAt:        d.LastScanAt,
	}
}

type scanDTO struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	ScanType    string          `json:"scanType"`
	Status      string          `json:"status"`
	Results     json.RawMessage `json:"results"`
	ReportURL   string          `json:"reportUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt"`
}

func toScanDTO(s *models.ScanRecord) scanDTO {
	results := s.Results
	if len(results) == 0 {
		results = json.RawMessage("null")
	}
	return scanDTO{
		ID:          s.ID,
		URL:         s.URL,
		ScanType:    s.ScanType,
		Status:      s.Status,
		Results:     results,
		CreatedAt:   s.CreatedAt,
		CompletedAt: s.CompletedAt,
	}
}

type postDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	Excerpt     string    `json:"excerpt"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Author      string    `json:"author"`
	AuthorImage string    `json:"authorImage"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toPostDTOs(posts []models.Post) []postDTO {
	out := make([]postDTO, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, postDTO{
			ID:          p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			Content:     p.Content,
			Excerpt:     p.Excerpt,
			Category:    p.Category,
			Tags:        tags,
			Author:      p.Author,
			AuthorImage: p.AuthorImage,
			Image:       p.Image,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return out
}

type paginationDTO struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type categoryDTO struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
