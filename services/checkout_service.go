package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xtopay/checkout-backend/common/logger"
	"github.com/xtopay/checkout-backend/models"
	awspkg "github.com/xtopay/checkout-backend/pkg/aws"
	"github.com/xtopay/checkout-backend/repository"
)

// CheckoutService drives the checkout lifecycle.
type CheckoutService interface {
	Initiate(ctx context.Context, req *models.InitiateCheckoutRequest) (*models.InitiateCheckoutResult, *ServiceError)
	GetStatus(ctx context.Context, clientReference string) (*models.CheckoutStatus, *ServiceError)
	Cancel(ctx context.Context, clientReference string) (*models.CancelResult, *ServiceError)
}

// CheckoutSettings carries the configured values the service needs.
type CheckoutSettings struct {
	BaseURL           string
	DefaultBusinessID string
	SNSTopicARN       string
}

type checkoutServiceImpl struct {
	checkouts repository.CheckoutRepository
	customers repository.CustomerRepository
	snsClient awspkg.SNSPublisher
	metrics   MetricsRecorder
	settings  CheckoutSettings
	logger    *zap.Logger
	now       func() time.Time
}

// CheckoutOption customises a CheckoutService.
type CheckoutOption func(*checkoutServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CheckoutOption {
	return func(s *checkoutServiceImpl) { s.now = now }
}

// NewCheckoutService creates a new CheckoutService. snsClient and metrics
// may be nil.
func NewCheckoutService(
	checkouts repository.CheckoutRepository,
	customers repository.CustomerRepository,
	snsClient awspkg.SNSPublisher,
	metrics MetricsRecorder,
	settings CheckoutSettings,
	logger *zap.Logger,
	opts ...CheckoutOption,
) CheckoutService {
	s := &checkoutServiceImpl{
		checkouts: checkouts,
		customers: customers,
		snsClient: snsClient,
		metrics:   metrics,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewCheckoutID returns "xtp_" followed by a random UUID.
func NewCheckoutID() string {
	return models.CheckoutIDPrefix + uuid.NewString()
}

// Initiate upserts the payer (when one is given), persists a pending
// checkout that expires in 30 minutes and returns its hosted URL.
func (s *checkoutServiceImpl) Initiate(ctx context.Context, req *models.InitiateCheckoutRequest) (*models.InitiateCheckoutResult, *ServiceError) {
	log := logger.With(ctx, s.logger).With(zap.String("client_reference", req.ClientReference))

	var customerID *uuid.UUID
	if data := req.CustomerData(); data != nil {
		customer := &models.Customer{Phone: data.Phone, Name: data.Name, Email: data.Email}
		if err := s.customers.UpsertByPhone(ctx, customer); err != nil {
			log.Error("Customer upsert failed", zap.Error(err))
			return nil, persistenceError(err)
		}
		customerID = &customer.ID
	}

	businessID := req.BusinessID
	if businessID == "" {
		businessID = s.settings.DefaultBusinessID
	}

	now := s.now().UTC()
	checkout := &models.Checkout{
		CheckoutID:      NewCheckoutID(),
		BusinessID:      businessID,
		ClientReference: req.ClientReference,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Description:     req.Description,
		CustomerID:      customerID,
		Channels:        req.Channels,
		CallbackURL:     req.CallbackURL,
		ReturnURL:       req.ReturnURL,
		CancelURL:       req.CancelURL,
		Status:          models.CheckoutStatusPending,
		CreatedAt:       now,
		ExpiresAt:       now.Add(models.CheckoutTTL),
	}

	if err := s.checkouts.Create(ctx, checkout); err != nil {
		log.Error("Failed to persist checkout", zap.Error(err))
		return nil, persistenceError(err)
	}

	log.Info("Checkout initiated",
		zap.String("checkout_id", checkout.CheckoutID),
		zap.String("business_id", businessID),
		zap.Float64("amount", checkout.Amount),
		zap.String("currency", checkout.Currency),
	)

	s.publishEvent(ctx, log, models.CheckoutEvent{
		EventType:       models.EventCheckoutInitiated,
		CheckoutID:      checkout.CheckoutID,
		BusinessID:      businessID,
		ClientReference: checkout.ClientReference,
		Amount:          checkout.Amount,
		Currency:        checkout.Currency,
		Status:          checkout.Status,
		Timestamp:       now,
	})
	recordCount(s.metrics, s.logger, awspkg.MetricCheckoutsInitiated, map[string]string{"Currency": checkout.Currency})

	return &models.InitiateCheckoutResult{
		CheckoutID:      checkout.CheckoutID,
		CheckoutURL:     s.settings.BaseURL + checkout.CheckoutID,
		ExpiresAt:       checkout.ExpiresAt,
		ClientReference: checkout.ClientReference,
	}, nil
}

// GetStatus reports the derived status. It never writes.
func (s *checkoutServiceImpl) GetStatus(ctx context.Context, clientReference string) (*models.CheckoutStatus, *ServiceError) {
	if clientReference == "" {
		return nil, validationError("clientReference is required")
	}

	checkout, err := s.checkouts.FindByClientReference(ctx, clientReference)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("Checkout not found")
	}
	if err != nil {
		logger.With(ctx, s.logger).Error("Checkout lookup failed",
			zap.String("client_reference", clientReference), zap.Error(err))
		return nil, persistenceError(err)
	}

	return models.NewCheckoutStatus(checkout), nil
}

// Cancel overwrites the status with cancelled regardless of its current
// value. A reference matching no row still reports success.
func (s *checkoutServiceImpl) Cancel(ctx context.Context, clientReference string) (*models.CancelResult, *ServiceError) {
	if clientReference == "" {
		return nil, validationError("clientReference is required")
	}
	log := logger.With(ctx, s.logger).With(zap.String("client_reference", clientReference))

	at := s.now().UTC()
	rows, err := s.checkouts.Cancel(ctx, clientReference, at)
	if err != nil {
		log.Error("Failed to cancel checkout", zap.Error(err))
		return nil, persistenceError(err)
	}
	if rows == 0 {
		log.Warn("Cancel matched no checkout")
	} else {
		log.Info("Checkout cancelled", zap.Int64("rows", rows))
		s.publishEvent(ctx, log, models.CheckoutEvent{
			EventType:       models.EventCheckoutCancelled,
			ClientReference: clientReference,
			Status:          models.CheckoutStatusCancelled,
			Timestamp:       at,
		})
		recordCount(s.metrics, s.logger, awspkg.MetricCheckoutsCancelled, nil)
	}

	return &models.CancelResult{Status: models.CheckoutStatusCancelled, CancelledAt: at}, nil
}

// publishEvent is best effort: failures are logged, never returned.
func (s *checkoutServiceImpl) publishEvent(ctx context.Context, log *zap.Logger, event models.CheckoutEvent) {
	if s.snsClient == nil || s.settings.SNSTopicARN == "" {
		log.Debug("SNS not configured, skipping event publish", zap.String("event_type", event.EventType))
		return
	}
	if err := awspkg.PublishJSON(ctx, s.snsClient, s.settings.SNSTopicARN, event.EventType, event); err != nil {
		log.Error("Failed to publish SNS event", zap.String("event_type", event.EventType), zap.Error(err))
		return
	}
	log.Info("Published SNS event", zap.String("event_type", event.EventType))
}
