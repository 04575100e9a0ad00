package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
	"github.com/shubhamr/rawmat/pkg/domain/repositories"
	"github.com/shubhamr/rawmat/pkg/domain/services"
)

// ErrNumberGenerationExhausted is returned when every attempt to
// claim a fresh job number lost to a concurrent writer
var ErrNumberGenerationExhausted = errors.New("job number generation exhausted")

// DefaultMaxAttempts bounds the append retry loop
const DefaultMaxAttempts = 5

// EstimateConfig holds optional knobs for the estimate service
type EstimateConfig struct {
	// MaxAttempts bounds retries after job number conflicts (0 = default)
	MaxAttempts int
	// NumberFormat controls job number rendering
	NumberFormat services.NumberFormat
	// Logger receives request logs (nil = slog default)
	Logger *slog.Logger
	// Now supplies record timestamps (nil = time.Now)
	Now func() time.Time
}

// EstimateService runs the full estimation workflow: validate the
// parameters, compute the BOM, claim the next job number and append
// the record. The store's duplicate check is the authority on number
// collisions; the service retries with a freshly read maximum until
// it wins or runs out of attempts.
type EstimateService struct {
	validator *services.Validator
	estimator *services.Estimator
	store     repositories.RecordStore
	config    EstimateConfig
}

// NewEstimateService creates an estimate service with default configuration
func NewEstimateService(validator *services.Validator, estimator *services.Estimator, store repositories.RecordStore) *EstimateService {
	return NewEstimateServiceWithConfig(validator, estimator, store, EstimateConfig{})
}

// NewEstimateServiceWithConfig creates an estimate service with custom configuration
func NewEstimateServiceWithConfig(validator *services.Validator, estimator *services.Estimator, store repositories.RecordStore, config EstimateConfig) *EstimateService {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &EstimateService{
		validator: validator,
		estimator: estimator,
		store:     store,
		config:    config,
	}
}

// EstimateAndRecord validates the parameters, computes the BOM,
// assigns the next free job number and persists the record. The
// returned record is the persisted one.
func (s *EstimateService) EstimateAndRecord(ctx context.Context, params entities.JobParameters) (*entities.JobRecord, error) {
	requestID := uuid.NewString()
	logger := s.config.Logger.With("request_id", requestID, "job_type", params.JobType.String())

	if err := s.validator.Validate(params); err != nil {
		logger.Info("estimation rejected", "error", err)
		return nil, err
	}

	layout, lines, err := s.estimator.Estimate(params)
	if err != nil {
		logger.Error("estimation failed", "error", err)
		return nil, err
	}

	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		existing, err := s.store.ReadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading record store: %w", err)
		}

		now := s.config.Now()
		number := services.NextJobNumber(existing, now, s.config.NumberFormat)

		record, err := entities.NewJobRecord(number, params, layout, lines, now)
		if err != nil {
			return nil, fmt.Errorf("building job record: %w", err)
		}

		err = s.store.Append(ctx, record)
		if errors.Is(err, repositories.ErrDuplicateJobNumber) {
			logger.Warn("job number conflict, retrying", "job_number", number, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("appending record %s: %w", number, err)
		}

		logger.Info("estimation recorded", "job_number", number, "attempts", attempt)
		return record, nil
	}

	logger.Error("job number generation exhausted", "attempts", s.config.MaxAttempts)
	return nil, fmt.Errorf("after %d attempts: %w", s.config.MaxAttempts, ErrNumberGenerationExhausted)
}

// Preview validates and estimates without persisting anything
func (s *EstimateService) Preview(ctx context.Context, params entities.JobParameters) (entities.WebLayout, []entities.BOMLine, error) {
	if err := s.validator.Validate(params); err != nil {
		return entities.WebLayout{}, nil, err
	}
	return s.estimator.Estimate(params)
}

// History returns every persisted record in append order
func (s *EstimateService) History(ctx context.Context) ([]*entities.JobRecord, error) {
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading record store: %w", err)
	}
	return records, nil
}
