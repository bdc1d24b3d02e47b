package activity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRecord = errors.New("activity: invalid record")

// Repository is the persistence contract for activity records.
//
// It is append-only. List returns records newest first.
type Repository interface {
	Append(ctx context.Context, r Record) error
	List(ctx context.Context) ([]Record, error)
}

// Service appends activity records and answers filter queries over them.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Append validates r, fills ID and Timestamp when missing, and stores it.
func (s *Service) Append(ctx context.Context, r Record) (Record, error) {
	if s.repo == nil {
		return Record{}, errors.New("activity: repository not configured")
	}
	if r.Status == "" {
		r.Status = StatusInfo
	}
	if r.Severity == "" {
		r.Severity = SeverityLow
	}
	if !r.Type.Valid() || !r.Status.Valid() || !r.Severity.Valid() {
		return Record{}, ErrInvalidRecord
	}
	if strings.TrimSpace(r.Action) == "" {
		return Record{}, ErrInvalidRecord
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.clock().UTC()
	}
	if err := s.repo.Append(ctx, r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Query loads the current record set and applies c as of the service clock.
func (s *Service) Query(ctx context.Context, c Criteria) (Result, error) {
	if s.repo == nil {
		return Result{}, errors.New("activity: repository not configured")
	}
	records, err := s.repo.List(ctx)
	if err != nil {
		return Result{}, err
	}
	return Apply(records, c, s.clock()), nil
}

// RecordAuthEvent appends a successful authentication event for user.
func (s *Service) RecordAuthEvent(ctx context.Context, action, user, description string) error {
	_, err := s.Append(ctx, Record{
		Type:        TypeAuth,
		Category:    "Authentication",
		Action:      action,
		Description: description,
		Status:      StatusSuccess,
		Severity:    SeverityLow,
		User:        user,
		Resource:    "/session",
	})
	return err
}
