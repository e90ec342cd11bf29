package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDSNEnv names a disposable Postgres database. Tests that need one are
// skipped when it is unset.
const testDSNEnv = "FLIGHTBROKER_TEST_DSN"

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func newStoredBooking(t *testing.T, repo BookingRepository) *domain.Booking {
	t.Helper()
	id := time.Now().UnixNano()
	b := &domain.Booking{
		UserID:      "user-1",
		PNR:         fmt.Sprintf("P%d", id),
		BookingID:   id,
		ResultIndex: "OB1",
		TraceID:     "trace-1",
		NetPayable:  decimal.RequireFromString("5013.75"),
		Itinerary:   domain.FlightItinerary{PNR: fmt.Sprintf("P%d", id), BookingID: id},
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestPGBookingRepository_TransitionPaymentStatusOnce(t *testing.T) {
	repo := NewBookingRepository(newTestPool(t))
	ctx := context.Background()
	b := newStoredBooking(t, repo)
	from := []domain.PaymentStatus{domain.PaymentStatusInitiated}

	updated, ok, err := repo.TransitionPaymentStatus(ctx, b.BookingID, from, domain.PaymentStatusSuccess)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.PaymentStatusSuccess, updated.PaymentStatus)

	again, ok, err := repo.TransitionPaymentStatus(ctx, b.BookingID, from, domain.PaymentStatusSuccess)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, again)

	stored, err := repo.GetByBookingID(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, stored.PaymentStatus)
	assert.True(t, stored.NetPayable.Equal(b.NetPayable))
}

func TestPGBookingRepository_MarkTicketedOnce(t *testing.T) {
	repo := NewBookingRepository(newTestPool(t))
	ctx := context.Background()
	b := newStoredBooking(t, repo)

	issued := b.Itinerary
	issued.Passenger = []domain.Passenger{{FirstName: "Asha", Ticket: &domain.Ticket{TicketNumber: "0981234567"}}}

	ticketed, err := repo.MarkTicketed(ctx, b.BookingID, issued)
	require.NoError(t, err)
	require.True(t, ticketed.Ticketed())
	require.Len(t, ticketed.Itinerary.Passenger, 1)
	assert.Equal(t, "0981234567", ticketed.Itinerary.Passenger[0].Ticket.TicketNumber)

	_, err = repo.MarkTicketed(ctx, b.BookingID, issued)
	assert.ErrorIs(t, err, domain.ErrAlreadyTicketed)
}

func TestPGBookingRepository_UnknownBooking(t *testing.T) {
	repo := NewBookingRepository(newTestPool(t))

	_, err := repo.GetByBookingID(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPGTokenRepository_LatestReturnsNewestRow(t *testing.T) {
	repo := NewTokenRepository(newTestPool(t))
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	older := &domain.AuthToken{TokenID: fmt.Sprintf("old-%d", suffix), MemberID: 1, AgencyID: 2, IPAddress: "ip"}
	newer := &domain.AuthToken{TokenID: fmt.Sprintf("new-%d", suffix), MemberID: 1, AgencyID: 2, IPAddress: "ip"}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	assert.Greater(t, newer.ID, older.ID)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.TokenID, latest.TokenID)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestPGPaymentRepository_AppendKeepsEveryCheck(t *testing.T) {
	pool := newTestPool(t)
	bookings := NewBookingRepository(pool)
	payments := NewPaymentRepository(pool)
	ctx := context.Background()
	b := newStoredBooking(t, bookings)

	for _, code := range []string{domain.PaymentCodePending, domain.PaymentCodeSuccess} {
		p := &domain.PaymentResponse{
			UserID:    b.UserID,
			BookingID: b.BookingID,
			Success:   true,
			Code:      code,
			Data:      domain.PaymentData{MerchantTransactionID: fmt.Sprint(b.BookingID)},
		}
		require.NoError(t, payments.Append(ctx, p))
		assert.NotZero(t, p.ID)
	}

	list, err := payments.ListByBookingID(ctx, b.BookingID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.PaymentCodePending, list[0].Code)
	assert.Equal(t, domain.PaymentCodeSuccess, list[1].Code)
	assert.Equal(t, fmt.Sprint(b.BookingID), list[1].Data.MerchantTransactionID)
}
