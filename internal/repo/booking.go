package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/smontoya/cupo/backend/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique index violation.
const uniqueViolation = "23505"

// BookingRepo defines the persistence operations for booking requests.
//
// Transition is the load-bearing operation: it pairs the status flip with the
// seat-counter effect in one transaction, so two concurrent confirmations on
// the same trip can never both succeed when only one seat remains.
type BookingRepo interface {
	// Create inserts a new pending request and returns the persisted record.
	// Returns domain.ErrConflict if an active (pending or confirmed) request
	// already exists for the same (trip, passenger) pair — the partial unique
	// index closes the race between two simultaneous requests.
	Create(ctx context.Context, req domain.BookingRequest) (domain.BookingRequest, error)

	// GetByID retrieves a single request by its UUID primary key.
	// Returns domain.ErrNotFound if no request with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.BookingRequest, error)

	// Transition atomically moves a request to the given status and applies
	// the seat effect the state machine prescribes:
	//
	//	→ confirmed:          seats_available - 1, guarded by seats > 0
	//	→ anything else:      seats_available + 1 iff prior state was confirmed
	//
	// Returns domain.ErrNotFound if the request does not exist,
	// domain.ErrConflict if the request is in a terminal state or if the
	// confirm guard fails (no seats left — the request stays pending).
	Transition(ctx context.Context, id uuid.UUID, to domain.BookingStatus) (domain.BookingRequest, error)

	// CancelActiveByTrip transitions every active request of a trip to the
	// given cancelled status and returns how many were cancelled. Seats are
	// not restored: the edit cascade overwrites the counter with the
	// driver's submitted value and the delete cascade removes the trip row.
	CancelActiveByTrip(ctx context.Context, tripID uuid.UUID, to domain.BookingStatus) (int, error)

	// ListByTrip returns all requests for a trip, oldest first.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.BookingRequest, error)

	// ListByPassenger returns all requests made by a passenger, newest first.
	ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.BookingRequest, error)
}

// pgBookingRepo is the Postgres implementation of BookingRepo.
type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `id, trip_id, passenger_id, status, requested_at, updated_at`

func (r *pgBookingRepo) Create(ctx context.Context, req domain.BookingRequest) (domain.BookingRequest, error) {
	const q = `
		INSERT INTO booking_requests (trip_id, passenger_id, status)
		VALUES (@trip_id, @passenger_id, @status)
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{
		"trip_id":      req.TripID,
		"passenger_id": req.PassengerID,
		"status":       domain.StatusPending,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanBooking(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.BookingRequest{}, fmt.Errorf("repo.BookingRepo.Create: active request exists: %w", domain.ErrConflict)
		}
		return domain.BookingRequest{}, fmt.Errorf("repo.BookingRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BookingRequest, error) {
	const q = `SELECT ` + bookingColumns + ` FROM booking_requests WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanBooking(row)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}
	return result, nil
}

// Transition implements the check-and-decrement atomically. The request row
// is locked first, then the trip counter is updated conditionally, then the
// status flips — all in one transaction, so concurrent confirms serialize on
// the row locks and the seats > 0 guard decides the winner.
func (r *pgBookingRepo) Transition(ctx context.Context, id uuid.UUID, to domain.BookingStatus) (domain.BookingRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("repo.BookingRepo.Transition: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const lockQ = `SELECT ` + bookingColumns + ` FROM booking_requests WHERE id = @id FOR UPDATE`
	current, err := scanBooking(tx.QueryRow(ctx, lockQ, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("repo.BookingRepo.Transition: %w", err)
	}

	if !current.Status.CanTransition(to) {
		return domain.BookingRequest{}, fmt.Errorf(
			"repo.BookingRepo.Transition: %s -> %s: %w", current.Status, to, domain.ErrConflict)
	}

	switch {
	case to == domain.StatusConfirmed:
		const decQ = `
			UPDATE trips
			SET seats_available = seats_available - 1, updated_at = now()
			WHERE id = @trip_id AND seats_available > 0`
		tag, err := tx.Exec(ctx, decQ, pgx.NamedArgs{"trip_id": current.TripID})
		if err != nil {
			return domain.BookingRequest{}, fmt.Errorf("repo.BookingRepo.Transition: decrement: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// No seats left — the request stays pending.
			return domain.BookingRequest{}, fmt.Errorf("repo.BookingRepo.Transition: no seats left: %w", domain.ErrConflict)
		}

	case current.Status == domain.StatusConfirmed:
		// Leaving confirmed releases the seat. The trip row may already be
		// gone (driver deleted it); zero rows affected is fine then.
		const incQ = `
			UPDATE trips
			SET seats_available = seats_available + 1, updated_at = now()
			WHERE id = @trip_id`
		if _, err := tx.Exec(ctx, incQ, pgx.NamedArgs{"trip_id": current.TripID}); err != nil {
			return domain.BookingRequest{}, fmt.Errorf("repo.BookingRepo.Transition: increment: %w", err)
		}
	}

	const updQ = `
		UPDATE booking_requests
		SET status = @status, updated_at = now()
		WHERE id = @id
		RETURNING ` + bookingColumns
	result, err := scanBooking(tx.QueryRow(ctx, updQ, pgx.NamedArgs{"id": id, "status": to}))
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("repo.BookingRepo.Transition: update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.BookingRequest{}, fmt.Errorf("repo.BookingRepo.Transition: commit: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) CancelActiveByTrip(ctx context.Context, tripID uuid.UUID, to domain.BookingStatus) (int, error) {
	if !to.Terminal() {
		return 0, fmt.Errorf("repo.BookingRepo.CancelActiveByTrip: %q is not a terminal status: %w", to, domain.ErrValidation)
	}

	const q = `
		UPDATE booking_requests
		SET status = @status, updated_at = now()
		WHERE trip_id = @trip_id AND status IN ('pending', 'confirmed')`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "status": to})
	if err != nil {
		return 0, fmt.Errorf("repo.BookingRepo.CancelActiveByTrip: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *pgBookingRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.BookingRequest, error) {
	const q = `
		SELECT ` + bookingColumns + `
		FROM booking_requests
		WHERE trip_id = @trip_id
		ORDER BY requested_at ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows, "repo.BookingRepo.ListByTrip")
}

func (r *pgBookingRepo) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.BookingRequest, error) {
	const q = `
		SELECT ` + bookingColumns + `
		FROM booking_requests
		WHERE passenger_id = @passenger_id
		ORDER BY requested_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"passenger_id": passengerID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByPassenger: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows, "repo.BookingRepo.ListByPassenger")
}

// collectBookings drains rows into a slice, wrapping errors with op.
func collectBookings(rows pgx.Rows, op string) ([]domain.BookingRequest, error) {
	var reqs []domain.BookingRequest
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		reqs = append(reqs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return reqs, nil
}

// scanBooking maps a single database row into a domain.BookingRequest.
func scanBooking(s scanner) (domain.BookingRequest, error) {
	var (
		b           domain.BookingRequest
		id          pgtype.UUID
		tripID      pgtype.UUID
		passengerID pgtype.UUID
		status      string
	)

	err := s.Scan(&id, &tripID, &passengerID, &status, &b.RequestedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BookingRequest{}, domain.ErrNotFound
		}
		return domain.BookingRequest{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.TripID = uuid.UUID(tripID.Bytes)
	b.PassengerID = uuid.UUID(passengerID.Bytes)
	b.Status = domain.BookingStatus(status)
	return b, nil
}
