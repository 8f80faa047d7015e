package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/smontoya/cupo/backend/internal/domain"
)

// SavedRouteRepo defines the persistence operations for saved routes.
// The booking core only reads saved routes; create and delete are passenger
// self-service operations.
type SavedRouteRepo interface {
	// Create inserts a new saved route and returns the persisted record.
	Create(ctx context.Context, route domain.SavedRoute) (domain.SavedRoute, error)

	// ListAll returns every saved route. This is the candidate set for the
	// publish-trigger match; the service filters it with the shared predicate.
	ListAll(ctx context.Context) ([]domain.SavedRoute, error)

	// ListByPassenger returns a passenger's saved routes, newest first.
	ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.SavedRoute, error)

	// Delete removes a saved route, scoped to the owning passenger.
	// Returns domain.ErrNotFound if no such route exists for that passenger.
	Delete(ctx context.Context, id, passengerID uuid.UUID) error
}

// pgSavedRouteRepo is the Postgres implementation of SavedRouteRepo.
type pgSavedRouteRepo struct {
	db db
}

// NewSavedRouteRepo constructs a SavedRouteRepo backed by the provided db connection.
func NewSavedRouteRepo(db db) SavedRouteRepo {
	return &pgSavedRouteRepo{db: db}
}

const savedRouteColumns = `id, passenger_id, passenger_email, origin, destination, preferred_date, created_at`

func (r *pgSavedRouteRepo) Create(ctx context.Context, route domain.SavedRoute) (domain.SavedRoute, error) {
	const q = `
		INSERT INTO saved_routes (passenger_id, passenger_email, origin, destination, preferred_date)
		VALUES (@passenger_id, @passenger_email, @origin, @destination, @preferred_date)
		RETURNING ` + savedRouteColumns

	args := pgx.NamedArgs{
		"passenger_id":    route.PassengerID,
		"passenger_email": route.PassengerEmail,
		"origin":          route.Origin,
		"destination":     route.Destination,
		"preferred_date":  route.PreferredDate, // nil becomes NULL
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanSavedRoute(row)
	if err != nil {
		return domain.SavedRoute{}, fmt.Errorf("repo.SavedRouteRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgSavedRouteRepo) ListAll(ctx context.Context) ([]domain.SavedRoute, error) {
	const q = `SELECT ` + savedRouteColumns + ` FROM saved_routes ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SavedRouteRepo.ListAll: %w", err)
	}
	defer rows.Close()

	return collectSavedRoutes(rows, "repo.SavedRouteRepo.ListAll")
}

func (r *pgSavedRouteRepo) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.SavedRoute, error) {
	const q = `
		SELECT ` + savedRouteColumns + `
		FROM saved_routes
		WHERE passenger_id = @passenger_id
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"passenger_id": passengerID})
	if err != nil {
		return nil, fmt.Errorf("repo.SavedRouteRepo.ListByPassenger: %w", err)
	}
	defer rows.Close()

	return collectSavedRoutes(rows, "repo.SavedRouteRepo.ListByPassenger")
}

func (r *pgSavedRouteRepo) Delete(ctx context.Context, id, passengerID uuid.UUID) error {
	const q = `DELETE FROM saved_routes WHERE id = @id AND passenger_id = @passenger_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "passenger_id": passengerID})
	if err != nil {
		return fmt.Errorf("repo.SavedRouteRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SavedRouteRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// collectSavedRoutes drains rows into a slice, wrapping errors with op.
func collectSavedRoutes(rows pgx.Rows, op string) ([]domain.SavedRoute, error) {
	var routes []domain.SavedRoute
	for rows.Next() {
		sr, err := scanSavedRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		routes = append(routes, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return routes, nil
}

// scanSavedRoute maps a single database row into a domain.SavedRoute.
// It handles the UUID and nullable preferred_date conversions.
func scanSavedRoute(s scanner) (domain.SavedRoute, error) {
	var (
		sr          domain.SavedRoute
		id          pgtype.UUID
		passengerID pgtype.UUID
		prefDate    pgtype.Date
	)

	err := s.Scan(&id, &passengerID, &sr.PassengerEmail, &sr.Origin, &sr.Destination, &prefDate, &sr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SavedRoute{}, domain.ErrNotFound
		}
		return domain.SavedRoute{}, err
	}

	sr.ID = uuid.UUID(id.Bytes)
	sr.PassengerID = uuid.UUID(passengerID.Bytes)
	if prefDate.Valid {
		d := time.Date(prefDate.Time.Year(), prefDate.Time.Month(), prefDate.Time.Day(), 0, 0, 0, 0, time.UTC)
		sr.PreferredDate = &d
	}
	return sr, nil
}
