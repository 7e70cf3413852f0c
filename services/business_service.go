package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xtopay/checkout-backend/auth"
	"github.com/xtopay/checkout-backend/cache"
	"github.com/xtopay/checkout-backend/common/logger"
	"github.com/xtopay/checkout-backend/models"
	awspkg "github.com/xtopay/checkout-backend/pkg/aws"
	"github.com/xtopay/checkout-backend/repository"
)

var cacheDimensions = map[string]string{"Cache": "business"}

// BusinessService resolves merchant branding for authenticated callers.
type BusinessService interface {
	GetBusinessInfo(ctx context.Context, businessID string, creds auth.Credentials) (*models.BusinessInfo, *ServiceError)
}

type businessServiceImpl struct {
	repo    repository.BusinessRepository
	cache   cache.BusinessCache
	metrics MetricsRecorder
	logger  *zap.Logger
}

// NewBusinessService creates a new BusinessService. businessCache and
// metrics may be nil.
func NewBusinessService(
	repo repository.BusinessRepository,
	businessCache cache.BusinessCache,
	metrics MetricsRecorder,
	logger *zap.Logger,
) BusinessService {
	return &businessServiceImpl{
		repo:    repo,
		cache:   businessCache,
		metrics: metrics,
		logger:  logger,
	}
}

// GetBusinessInfo looks the business up and checks both halves of the
// caller's credentials against the stored pair.
func (s *businessServiceImpl) GetBusinessInfo(ctx context.Context, businessID string, creds auth.Credentials) (*models.BusinessInfo, *ServiceError) {
	if businessID == "" {
		return nil, validationError("business_id is required")
	}

	log := logger.With(ctx, s.logger).With(zap.String("business_id", businessID))

	business, err := s.lookup(ctx, log, businessID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("Business not found")
	}
	if err != nil {
		log.Error("Business lookup failed", zap.Error(err))
		return nil, persistenceError(err)
	}

	if !business.CredentialsMatch(creds.APIID, creds.APIKey) {
		log.Warn("Business credentials mismatch", zap.String("api_id", creds.APIID))
		return nil, forbiddenError()
	}

	return business.Info(), nil
}

// lookup reads through the cache. Cache failures are logged and fall back
// to the database.
func (s *businessServiceImpl) lookup(ctx context.Context, log *zap.Logger, businessID string) (*models.Business, error) {
	if s.cache != nil {
		b, ok, err := s.cache.Get(ctx, businessID)
		switch {
		case err != nil:
			log.Warn("Business cache read failed", zap.Error(err))
		case ok:
			recordCount(s.metrics, s.logger, awspkg.MetricCacheHits, cacheDimensions)
			return b, nil
		default:
			recordCount(s.metrics, s.logger, awspkg.MetricCacheMisses, cacheDimensions)
		}
	}

	b, err := s.repo.FindByBusinessID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, b); err != nil {
			log.Warn("Business cache write failed", zap.Error(err))
		}
	}
	return b, nil
}
