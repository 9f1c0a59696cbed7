package roster

import (
	"context"
	"errors"

	"github.com/gocomet/rider-roster/internal/domain/rider"
	"github.com/gocomet/rider-roster/internal/persistence"
	apperrors "github.com/gocomet/rider-roster/pkg/errors"
	"github.com/gocomet/rider-roster/pkg/logger"
	"github.com/gocomet/rider-roster/pkg/monitoring"
)

// Service implements the roster operations on top of a rider repository.
// Every error it returns is an *apperrors.AppError.
type Service struct {
	repo      rider.Repository
	validator *rider.FieldValidator
	log       *logger.Logger
	nr        *monitoring.NewRelicApp
}

// NewService creates a roster service. nr may be nil.
func NewService(repo rider.Repository, log *logger.Logger, nr *monitoring.NewRelicApp) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:      repo,
		validator: rider.NewFieldValidator(),
		log:       log.With(logger.String("component", "roster")),
		nr:        nr,
	}
}

// List returns one page of the filtered roster and the filtered total
func (s *Service) List(ctx context.Context, q rider.ListQuery) (*rider.ListResult, error) {
	res, err := s.repo.List(ctx, q.Normalize())
	if err != nil {
		return nil, s.mapError(err, "list riders")
	}
	return res, nil
}

// Get returns a single rider
func (s *Service) Get(ctx context.Context, id string) (*rider.Rider, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "get rider")
	}
	return r, nil
}

// Create validates the input and adds a new rider with defaults applied
func (s *Service) Create(ctx context.Context, in rider.Input) (*rider.Rider, error) {
	if problems := s.validator.Validate(in); len(problems) > 0 {
		return nil, s.rejected("create", problems)
	}
	in = in.Normalize()

	conflict, err := s.repo.HasConflict(ctx, in.Email, in.NRIC, "")
	if err != nil {
		return nil, s.mapError(err, "check rider uniqueness")
	}
	if conflict {
		return nil, apperrors.ErrRiderAlreadyExists
	}

	r := rider.NewFromInput(in)
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, s.mapError(err, "create rider")
	}

	s.log.Info("Rider created", logger.String("rider_id", r.ID), logger.String("vehicle", string(r.Vehicle)))
	s.nr.RecordRiderCreated(string(r.Vehicle), string(r.Status), s.storeName())
	return r, nil
}

// Update validates the input and replaces the rider's fields. Optional
// fields absent from the input keep their stored values.
func (s *Service) Update(ctx context.Context, id string, in rider.Input) (*rider.Rider, error) {
	if problems := s.validator.Validate(in); len(problems) > 0 {
		return nil, s.rejected("update", problems)
	}
	in = in.Normalize()

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "get rider")
	}

	conflict, err := s.repo.HasConflict(ctx, in.Email, in.NRIC, id)
	if err != nil {
		return nil, s.mapError(err, "check rider uniqueness")
	}
	if conflict {
		return nil, apperrors.ErrDuplicateOnUpdate
	}

	in.ApplyTo(r)
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, s.mapError(err, "update rider")
	}

	s.log.Info("Rider updated", logger.String("rider_id", r.ID))
	s.nr.RecordRiderUpdated(r.ID, string(r.Status))
	return r, nil
}

// Delete removes a rider
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, "delete rider")
	}
	s.log.Info("Rider deleted", logger.String("rider_id", id))
	s.nr.RecordRiderDeleted(id)
	return nil
}

func (s *Service) rejected(op string, problems []string) error {
	s.log.Debug("Rider payload rejected",
		logger.String("operation", op),
		logger.Strings("details", problems),
	)
	return apperrors.Validation(problems)
}

func (s *Service) storeName() string {
	if named, ok := s.repo.(interface{ StoreName() string }); ok {
		return named.StoreName()
	}
	if named, ok := s.repo.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "unknown"
}

// mapError converts repository failures into application errors, logging the
// ones that are not the client's fault.
func (s *Service) mapError(err error, op string) error {
	switch {
	case errors.Is(err, rider.ErrRiderNotFound):
		return apperrors.WithCause(apperrors.ErrRiderNotFound, err)
	case errors.Is(err, rider.ErrDuplicateRider):
		return apperrors.WithCause(apperrors.ErrDuplicateField, err)
	case errors.Is(err, persistence.ErrUnavailable):
		return apperrors.WithCause(apperrors.ErrStoreUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Warn("Rider operation timed out", logger.String("op", op), logger.Err(err))
		return apperrors.Timeout(err)
	}
	s.log.Error("Rider operation failed", logger.String("op", op), logger.Err(err))
	return apperrors.Internal("Internal server error", err)
}
