package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ourxmas/payment-service/internal/models"
	"github.com/ourxmas/payment-service/internal/repository"
)

// Store is the persistence surface the service depends on
type Store interface {
	Ping(ctx context.Context) error
	CreateTransaction(tx *models.Transaction) (bool, error)
	FindTransactionByID(id int64) (*models.Transaction, error)
	FindTransactionBySepayID(sepayID int64) (*models.Transaction, error)
	ListTransactions(filter repository.ListFilter) ([]models.Transaction, int64, error)
	SummarizeDay(day time.Time) (repository.DailySummary, error)
	CreateUserSession(session *models.UserSession) error
	FindUserSessionByID(id string) (*models.UserSession, error)
	FindUserSessionsByPhone(phone string) ([]models.UserSession, error)
	ListUserSessions(status models.PaymentStatus, limit, offset int) ([]models.UserSession, error)
	CountUserSessions(status models.PaymentStatus) (int64, error)
	UpdateUserSession(id string, update repository.SessionUpdate) (*models.UserSession, error)
	DeleteUserSession(id string) error
}

// Notifier delivers out-of-band alerts about newly stored payments
type Notifier interface {
	SendPaymentNotification(tx *models.Transaction, paymentCode string) error
}

// ErrNotFound mirrors the store sentinel for callers that do not import the
// repository package.
var ErrNotFound = repository.ErrNotFound

// Service handles business logic
type Service struct {
	store    Store
	notifier Notifier
	log      *logrus.Logger
}

// NewService initializes a new service. notifier may be nil, in which case no
// payment notifications are sent.
func NewService(store Store, notifier Notifier, log *logrus.Logger) *Service {
	return &Service{store: store, notifier: notifier, log: log}
}

// IngestInput is a structurally validated webhook payload
type IngestInput struct {
	SepayID         int64
	Gateway         string
	TransactionDate time.Time
	AccountNumber   string
	Content         string
	TransferType    string
	Amount          int64
	ReferenceCode   string
	Description     *string
}

// IngestTransaction stores the reported transaction exactly once. The second
// return value is false when a transaction with the same gateway identifier
// was already stored; that outcome is a success, not an error. The storage
// unique constraint on sepay_id resolves concurrent duplicate deliveries.
func (s *Service) IngestTransaction(input IngestInput) (*models.Transaction, bool, error) {
	existing, err := s.store.FindTransactionBySepayID(input.SepayID)
	if err == nil {
		s.log.WithField("sepay_id", input.SepayID).Info("Transaction already processed")
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("failed to check for existing transaction: %w", err)
	}

	tx := &models.Transaction{
		SepayID:         input.SepayID,
		Gateway:         input.Gateway,
		TransactionDate: input.TransactionDate,
		AccountNumber:   input.AccountNumber,
		Content:         input.Content,
		TransferType:    input.TransferType,
		Amount:          input.Amount,
		ReferenceCode:   input.ReferenceCode,
		Description:     input.Description,
	}

	created, err := s.store.CreateTransaction(tx)
	if err != nil {
		return nil, false, err
	}
	if !created {
		// Lost the race against a concurrent delivery of the same event.
		existing, err := s.store.FindTransactionBySepayID(input.SepayID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load existing transaction: %w", err)
		}
		s.log.WithField("sepay_id", input.SepayID).Info("Duplicate delivery absorbed")
		return existing, false, nil
	}

	code := ExtractPaymentCode(tx.Content)
	s.log.WithFields(logrus.Fields{
		"sepay_id":     tx.SepayID,
		"gateway":      tx.Gateway,
		"amount":       tx.Amount,
		"payment_code": code,
	}).Info("Transaction stored")

	if s.notifier != nil && tx.TransferType == models.TransferIn {
		if err := s.notifier.SendPaymentNotification(tx, code); err != nil {
			s.log.Errorf("Failed to send payment notification for %d: %v", tx.SepayID, err)
		}
	}
	return tx, true, nil
}

// ListParams narrows and pages a transaction listing
type ListParams struct {
	StartDate *time.Time
	EndDate   *time.Time
	Content   string
	Skip      int
	Limit     int
}

// ListTransactions returns transactions matching the filters, newest first,
// plus the total number of matches.
func (s *Service) ListTransactions(params ListParams) ([]models.Transaction, int64, error) {
	if params.Skip < 0 {
		params.Skip = 0
	}
	if params.Limit <= 0 {
		params.Limit = 100
	}
	if params.Limit > 1000 {
		params.Limit = 1000
	}
	return s.store.ListTransactions(repository.ListFilter{
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		Content:   params.Content,
		Skip:      params.Skip,
		Limit:     params.Limit,
	})
}

// GetTransaction retrieves a transaction by internal identifier
func (s *Service) GetTransaction(id int64) (*models.Transaction, error) {
	return s.store.FindTransactionByID(id)
}

// Ping verifies the backing store is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// LogDailySummary logs counts and totals for the given day. Wired to the
// midnight cron job with the previous day.
func (s *Service) LogDailySummary(day time.Time) {
	summary, err := s.store.SummarizeDay(day)
	if err != nil {
		s.log.Errorf("Failed to summarize %s: %v", day.Format("2006-01-02"), err)
		return
	}
	s.log.WithFields(logrus.Fields{
		"day":        day.Format("2006-01-02"),
		"count":      summary.Count,
		"amount_in":  summary.AmountIn,
		"amount_out": summary.AmountOut,
	}).Info("Daily transaction summary")
}

// SessionInput carries the fields for a new user session
type SessionInput struct {
	PhoneNumber   string
	SessionLink   *string
	SessionImages []string
	PaymentStatus models.PaymentStatus
}

// CreateSession creates a user session with a generated identifier
func (s *Service) CreateSession(input SessionInput) (*models.UserSession, error) {
	status := input.PaymentStatus
	if status == "" {
		status = models.PaymentPending
	}
	images := input.SessionImages
	if images == nil {
		images = []string{}
	}
	session := &models.UserSession{
		ID:            uuid.NewString(),
		PhoneNumber:   input.PhoneNumber,
		SessionLink:   input.SessionLink,
		SessionImages: images,
		PaymentStatus: status,
	}
	if err := s.store.CreateUserSession(session); err != nil {
		return nil, err
	}
	s.log.Infof("User session created for %s", session.PhoneNumber)
	return session, nil
}

// GetSession retrieves a session by identifier
func (s *Service) GetSession(id string) (*models.UserSession, error) {
	return s.store.FindUserSessionByID(id)
}

// GetSessionsByPhone retrieves all sessions for a phone number
func (s *Service) GetSessionsByPhone(phone string) ([]models.UserSession, error) {
	return s.store.FindUserSessionsByPhone(phone)
}

// ListSessions returns sessions newest first, optionally filtered by status
func (s *Service) ListSessions(status models.PaymentStatus, limit, offset int) ([]models.UserSession, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListUserSessions(status, limit, offset)
}

// CountSessions returns the session count, optionally filtered by status
func (s *Service) CountSessions(status models.PaymentStatus) (int64, error) {
	return s.store.CountUserSessions(status)
}

// UpdateSession applies a partial update to a session
func (s *Service) UpdateSession(id string, update repository.SessionUpdate) (*models.UserSession, error) {
	return s.store.UpdateUserSession(id, update)
}

// DeleteSession removes a session
func (s *Service) DeleteSession(id string) error {
	return s.store.DeleteUserSession(id)
}
