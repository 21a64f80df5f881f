package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/logging"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/notify"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/repomanager"
)

// ContactService stores contact-form inquiries and alerts sales.
type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    notify.Notifier
	logger      logging.Logger
}

func NewContactService(db *sql.DB, m repomanager.RepositoryManager, n notify.Notifier, l logging.Logger) *ContactService {
	return &ContactService{db: db, repomanager: m, notifier: n, logger: l}
}

// Submit stores the inquiry with status new. A failed notification is
// logged; the inquiry is already saved and the caller still succeeds.
func (s *ContactService) Submit(ctx context.Context, in models.Inquiry) (*models.Inquiry, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Company = strings.TrimSpace(in.Company)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Service = strings.TrimSpace(in.Service)
	in.Message = strings.TrimSpace(in.Message)

	if in.Name == "" || in.Service == "" || in.Message == "" || !validEmail(in.Email) {
		return nil, fmt.Errorf("%w: name, a valid email, service and message are required", common.ErrInvalidInput)
	}
	in.Status = models.InquiryStatusNew

	saved, err := s.repomanager.Inquiries(s.db).Create(ctx, &in)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendContactNotification(ctx, saved); err != nil {
		s.logger.Error(ctx, "contact notification failed", "inquiry_id", saved.ID, "error", err)
	}
	return saved, nil
}
