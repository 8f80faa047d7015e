package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smontoya/cupo/backend/internal/domain"
)

func sampleRequest(tripID, passengerID uuid.UUID, status domain.BookingStatus) domain.BookingRequest {
	return domain.BookingRequest{
		ID:          uuid.New(),
		TripID:      tripID,
		PassengerID: passengerID,
		Status:      status,
		RequestedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

// ---- RequestSeat -----------------------------------------------------------

func TestRequestSeat_Created(t *testing.T) {
	tripID := uuid.New()
	passenger := uuid.New()
	req := sampleRequest(tripID, passenger, domain.StatusPending)

	m := newServerMocks()
	m.bookings.requestSeat = func(_ context.Context, gotTrip, gotPassenger uuid.UUID) (domain.BookingRequest, error) {
		assert.Equal(t, tripID, gotTrip)
		assert.Equal(t, passenger, gotPassenger)
		return req, nil
	}

	rec := doRequest(t, newTestServer(m), http.MethodPost, "/trips/"+tripID.String()+"/requests", passenger, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.BookingRequest
	decodeBody(t, rec, &got)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestRequestSeat_DuplicateConflict(t *testing.T) {
	m := newServerMocks()
	m.bookings.requestSeat = func(_ context.Context, _, _ uuid.UUID) (domain.BookingRequest, error) {
		return domain.BookingRequest{}, fmt.Errorf("active request exists: %w", domain.ErrConflict)
	}

	rec := doRequest(t, newTestServer(m), http.MethodPost, "/trips/"+uuid.NewString()+"/requests", uuid.New(), nil)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "conflict", resp.Error.Code)
	assert.Equal(t, "active request exists", resp.Error.Message)
}

func TestRequestSeat_OwnTripRejected(t *testing.T) {
	m := newServerMocks()
	m.bookings.requestSeat = func(_ context.Context, _, _ uuid.UUID) (domain.BookingRequest, error) {
		return domain.BookingRequest{}, fmt.Errorf("%w: cannot request a seat on your own trip", domain.ErrValidation)
	}

	rec := doRequest(t, newTestServer(m), http.MethodPost, "/trips/"+uuid.NewString()+"/requests", uuid.New(), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRequestSeat_Unauthenticated(t *testing.T) {
	rec := doRequest(t, newTestServer(newServerMocks()), http.MethodPost, "/trips/"+uuid.NewString()+"/requests", uuid.Nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- DecideRequest ---------------------------------------------------------

func TestDecideRequest_Confirm(t *testing.T) {
	driver := uuid.New()
	req := sampleRequest(uuid.New(), uuid.New(), domain.StatusConfirmed)

	m := newServerMocks()
	m.bookings.decide = func(_ context.Context, requestID, driverID uuid.UUID, decision domain.Decision) (domain.BookingRequest, error) {
		assert.Equal(t, req.ID, requestID)
		assert.Equal(t, driver, driverID)
		assert.Equal(t, domain.DecisionConfirm, decision)
		return req, nil
	}

	rec := doRequest(t, newTestServer(m), http.MethodPost, "/requests/"+req.ID.String()+"/decision",
		driver, map[string]string{"decision": "confirm"})

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.BookingRequest
	decodeBody(t, rec, &got)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
}

func TestDecideRequest_FullTripConflict(t *testing.T) {
	m := newServerMocks()
	m.bookings.decide = func(_ context.Context, _, _ uuid.UUID, _ domain.Decision) (domain.BookingRequest, error) {
		return domain.BookingRequest{}, fmt.Errorf("no seats left: %w", domain.ErrConflict)
	}

	rec := doRequest(t, newTestServer(m), http.MethodPost, "/requests/"+uuid.NewString()+"/decision",
		uuid.New(), map[string]string{"decision": "confirm"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDecideRequest_NotDriverForbidden(t *testing.T) {
	m := newServerMocks()
	m.bookings.decide = func(_ context.Context, _, _ uuid.UUID, _ domain.Decision) (domain.BookingRequest, error) {
		return domain.BookingRequest{}, fmt.Errorf("not the trip's driver: %w", domain.ErrUnauthorized)
	}

	rec := doRequest(t, newTestServer(m), http.MethodPost, "/requests/"+uuid.NewString()+"/decision",
		uuid.New(), map[string]string{"decision": "reject"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDecideRequest_InvalidDecision(t *testing.T) {
	m := newServerMocks()
	m.bookings.decide = func(_ context.Context, _, _ uuid.UUID, _ domain.Decision) (domain.BookingRequest, error) {
		return domain.BookingRequest{}, fmt.Errorf("%w: decision must be \"confirm\" or \"reject\"", domain.ErrValidation)
	}

	rec := doRequest(t, newTestServer(m), http.MethodPost, "/requests/"+uuid.NewString()+"/decision",
		uuid.New(), map[string]string{"decision": "approve"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- CancelRequest ---------------------------------------------------------

func TestCancelRequest_OK(t *testing.T) {
	passenger := uuid.New()
	req := sampleRequest(uuid.New(), passenger, domain.StatusCancelledByPassenger)

	m := newServerMocks()
	m.bookings.cancelOwn = func(_ context.Context, requestID, passengerID uuid.UUID) (domain.BookingRequest, error) {
		assert.Equal(t, req.ID, requestID)
		assert.Equal(t, passenger, passengerID)
		return req, nil
	}

	rec := doRequest(t, newTestServer(m), http.MethodPost, "/requests/"+req.ID.String()+"/cancel", passenger, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.BookingRequest
	decodeBody(t, rec, &got)
	assert.Equal(t, domain.StatusCancelledByPassenger, got.Status)
}

func TestCancelRequest_AlreadyTerminalConflict(t *testing.T) {
	m := newServerMocks()
	m.bookings.cancelOwn = func(_ context.Context, _, _ uuid.UUID) (domain.BookingRequest, error) {
		return domain.BookingRequest{}, fmt.Errorf("rejected -> cancelled_by_passenger: %w", domain.ErrConflict)
	}

	rec := doRequest(t, newTestServer(m), http.MethodPost, "/requests/"+uuid.NewString()+"/cancel", uuid.New(), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ---- Listings --------------------------------------------------------------

func TestListMyRequests_OK(t *testing.T) {
	passenger := uuid.New()
	reqs := []domain.BookingRequest{
		sampleRequest(uuid.New(), passenger, domain.StatusConfirmed),
		sampleRequest(uuid.New(), passenger, domain.StatusCancelledTripEdited),
	}

	m := newServerMocks()
	m.bookings.listByPassenger = func(_ context.Context, passengerID uuid.UUID) ([]domain.BookingRequest, error) {
		assert.Equal(t, passenger, passengerID)
		return reqs, nil
	}

	rec := doRequest(t, newTestServer(m), http.MethodGet, "/requests", passenger, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.BookingRequest `json:"data"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, domain.StatusCancelledTripEdited, resp.Data[1].Status)
}

func TestListTripRequests_OK(t *testing.T) {
	driver := uuid.New()
	tripID := uuid.New()

	m := newServerMocks()
	m.bookings.listByTrip = func(_ context.Context, gotTrip, gotDriver uuid.UUID) ([]domain.BookingRequest, error) {
		assert.Equal(t, tripID, gotTrip)
		assert.Equal(t, driver, gotDriver)
		return []domain.BookingRequest{sampleRequest(tripID, uuid.New(), domain.StatusPending)}, nil
	}

	rec := doRequest(t, newTestServer(m), http.MethodGet, "/trips/"+tripID.String()+"/requests", driver, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.BookingRequest `json:"data"`
	}
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Data, 1)
}

func TestListTripRequests_NotOwnerForbidden(t *testing.T) {
	m := newServerMocks()
	m.bookings.listByTrip = func(_ context.Context, _, _ uuid.UUID) ([]domain.BookingRequest, error) {
		return nil, fmt.Errorf("not the trip's driver: %w", domain.ErrUnauthorized)
	}

	rec := doRequest(t, newTestServer(m), http.MethodGet, "/trips/"+uuid.NewString()+"/requests", uuid.New(), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
