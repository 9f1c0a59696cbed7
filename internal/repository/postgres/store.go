package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gocomet/rider-roster/internal/domain/rider"
)

const (
	storeName = "postgres"

	uniqueViolation = "23505"

	riderColumns = "id, name, email, position, nric, image, status, phone, vehicle, license, " +
		"rating, rides_completed, created_at, updated_at"
)

type riderRow struct {
	ID             uuid.UUID `db:"id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	Position       string    `db:"position"`
	NRIC           string    `db:"nric"`
	Image          string    `db:"image"`
	Status         string    `db:"status"`
	Phone          string    `db:"phone"`
	Vehicle        string    `db:"vehicle"`
	License        string    `db:"license"`
	Rating         float64   `db:"rating"`
	RidesCompleted int       `db:"rides_completed"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (row riderRow) toRider() *rider.Rider {
	return &rider.Rider{
		ID:             row.ID.String(),
		Name:           row.Name,
		Email:          row.Email,
		Position:       row.Position,
		NRIC:           row.NRIC,
		Image:          row.Image,
		Status:         rider.Status(row.Status),
		Phone:          row.Phone,
		Vehicle:        rider.Vehicle(row.Vehicle),
		License:        row.License,
		Rating:         row.Rating,
		RidesCompleted: row.RidesCompleted,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

// Store implements rider.Store on a PostgreSQL riders table
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New creates a store on an open connection pool
func New(db *sqlx.DB) *Store {
	return &Store{
		db: db,
		// timestamptz keeps microseconds
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (s *Store) Name() string { return storeName }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close(ctx context.Context) error { return s.db.Close() }

// escapeLike makes s match literally inside a LIKE pattern
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// whereClause builds the filter for a list query, numbering placeholders from 1
func whereClause(q rider.ListQuery) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR nric ILIKE $%d)", n, n, n))
	}
	if q.FiltersStatus() {
		args = append(args, q.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) List(ctx context.Context, q rider.ListQuery) (*rider.ListResult, error) {
	q = q.Normalize()
	where, args := whereClause(q)

	var total int64
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM riders"+where, args...); err != nil {
		return nil, fmt.Errorf("failed to count riders: %w", err)
	}
	if q.PastEnd(total) {
		return &rider.ListResult{Riders: []*rider.Rider{}, Total: total}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM riders%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		riderColumns, where, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset())

	var rows []riderRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list riders: %w", err)
	}

	riders := make([]*rider.Rider, 0, len(rows))
	for _, row := range rows {
		riders = append(riders, row.toRider())
	}
	return &rider.ListResult{Riders: riders, Total: total}, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*rider.Rider, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, rider.ErrRiderNotFound
	}

	var row riderRow
	err = s.db.GetContext(ctx, &row, "SELECT "+riderColumns+" FROM riders WHERE id = $1", uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rider.ErrRiderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rider: %w", err)
	}
	return row.toRider(), nil
}

func (s *Store) HasConflict(ctx context.Context, email, nric, excludeID string) (bool, error) {
	query := "SELECT EXISTS (SELECT 1 FROM riders WHERE (email = $1 OR nric = $2)"
	args := []interface{}{email, nric}
	if uid, err := uuid.Parse(excludeID); err == nil {
		query += " AND id <> $3"
		args = append(args, uid)
	}
	query += ")"

	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("failed to check rider uniqueness: %w", err)
	}
	return exists, nil
}

func (s *Store) Create(ctx context.Context, r *rider.Rider) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate rider id: %w", err)
	}
	now := s.now()

	query := `INSERT INTO riders (` + riderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = s.db.ExecContext(ctx, query,
		id, r.Name, r.Email, r.Position, r.NRIC, r.Image, string(r.Status), r.Phone,
		string(r.Vehicle), r.License, r.Rating, r.RidesCompleted, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return rider.ErrDuplicateRider
		}
		return fmt.Errorf("failed to create rider: %w", err)
	}

	r.ID = id.String()
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

func (s *Store) Update(ctx context.Context, r *rider.Rider) error {
	uid, err := uuid.Parse(r.ID)
	if err != nil {
		return rider.ErrRiderNotFound
	}

	query := `UPDATE riders
		SET name = $1, email = $2, position = $3, nric = $4, image = $5, status = $6,
			phone = $7, vehicle = $8, license = $9, rating = $10, rides_completed = $11,
			updated_at = $12
		WHERE id = $13
		RETURNING ` + riderColumns

	var row riderRow
	err = s.db.GetContext(ctx, &row, query,
		r.Name, r.Email, r.Position, r.NRIC, r.Image, string(r.Status), r.Phone,
		string(r.Vehicle), r.License, r.Rating, r.RidesCompleted, s.now(), uid,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return rider.ErrRiderNotFound
	case isUniqueViolation(err):
		return rider.ErrDuplicateRider
	case err != nil:
		return fmt.Errorf("failed to update rider: %w", err)
	}

	*r = *row.toRider()
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return rider.ErrRiderNotFound
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM riders WHERE id = $1", uid)
	if err != nil {
		return fmt.Errorf("failed to delete rider: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete rider: %w", err)
	}
	if rowsAffected == 0 {
		return rider.ErrRiderNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM riders"); err != nil {
		return 0, fmt.Errorf("failed to count riders: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM riders"); err != nil {
		return fmt.Errorf("failed to delete riders: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
