package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyflow/internal/models/db_models"
	"copyflow/pkg/utils"
)

func TestUpsertActivePeriod_CreatesFreshRow(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	ledger := NewSubscriptionService(repo)
	userID := uuid.New()

	sub, err := ledger.UpsertActivePeriod(context.Background(), userID, db_models.PlanPro, "mp_p1", 149.90)
	require.NoError(t, err)

	assert.Equal(t, db_models.SubStatusActive, sub.Status)
	assert.Equal(t, db_models.PlanPro, sub.PlanType)
	require.NotNil(t, sub.ExpiresAt)

	wantExpiry := time.Now().Add(SubscriptionPeriod).Unix()
	assert.InDelta(t, wantExpiry, *sub.ExpiresAt, 5)

	assert.Len(t, repo.activeRowsFor(userID), 1)
}

func TestUpsertActivePeriod_ExtendsInPlace(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	ledger := NewSubscriptionService(repo)
	userID := uuid.New()

	first, err := ledger.UpsertActivePeriod(context.Background(), userID, db_models.PlanStarter, "mp_p1", 49.90)
	require.NoError(t, err)

	second, err := ledger.UpsertActivePeriod(context.Background(), userID, db_models.PlanPro, "mp_p2", 149.90)
	require.NoError(t, err)

	// Same row retargeted, never a second active row.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, db_models.PlanPro, second.PlanType)
	assert.Equal(t, "mp_p2", second.MercadoPagoPaymentID)
	assert.Len(t, repo.activeRowsFor(userID), 1)
	assert.Len(t, repo.rowsFor(userID), 1)
}

func TestUpsertActivePeriod_RejectsNonPaidPlan(t *testing.T) {
	ledger := NewSubscriptionService(newFakeSubscriptionRepo())

	_, err := ledger.UpsertActivePeriod(context.Background(), uuid.New(), db_models.PlanFree, "mp_p1", 0)
	assert.ErrorIs(t, err, utils.ErrUnknownPlan)
}

func TestCurrentPlan_LazyExpiry(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	ledger := NewSubscriptionService(repo)
	userID := uuid.New()

	_, err := ledger.UpsertActivePeriod(context.Background(), userID, db_models.PlanPro, "mp_p1", 149.90)
	require.NoError(t, err)

	// Age the row past its window.
	past := time.Now().Add(-time.Hour).Unix()
	repo.mu.Lock()
	repo.subs[0].ExpiresAt = &past
	repo.mu.Unlock()

	plan, err := ledger.CurrentPlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, db_models.PlanFree, plan)

	// The stale row was flipped to expired as a side effect of the read.
	rows := repo.rowsFor(userID)
	require.Len(t, rows, 1)
	assert.Equal(t, db_models.SubStatusExpired, rows[0].Status)
}

func TestUpsertAfterExpiryCreatesNewRow(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	ledger := NewSubscriptionService(repo)
	userID := uuid.New()

	first, err := ledger.UpsertActivePeriod(context.Background(), userID, db_models.PlanStarter, "mp_p1", 49.90)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour).Unix()
	repo.mu.Lock()
	repo.subs[0].ExpiresAt = &past
	repo.mu.Unlock()

	second, err := ledger.UpsertActivePeriod(context.Background(), userID, db_models.PlanStarter, "mp_p2", 49.90)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, repo.activeRowsFor(userID), 1)
	assert.Len(t, repo.rowsFor(userID), 2)
}

func TestCancel_Idempotent(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	ledger := NewSubscriptionService(repo)
	userID := uuid.New()

	// No active subscription: no-op, no error.
	require.NoError(t, ledger.Cancel(context.Background(), userID))

	_, err := ledger.UpsertActivePeriod(context.Background(), userID, db_models.PlanPro, "mp_p1", 149.90)
	require.NoError(t, err)

	require.NoError(t, ledger.Cancel(context.Background(), userID))
	require.NoError(t, ledger.Cancel(context.Background(), userID))

	assert.Empty(t, repo.activeRowsFor(userID))

	plan, err := ledger.CurrentPlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, db_models.PlanFree, plan)
}

func TestConcurrentUpserts_SingleActiveRow(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	ledger := NewSubscriptionService(repo)
	userID := uuid.New()

	done := make(chan error, 2)
	go func() {
		_, err := ledger.UpsertActivePeriod(context.Background(), userID, db_models.PlanPro, "mp_p1", 149.90)
		done <- err
	}()
	go func() {
		_, err := ledger.UpsertActivePeriod(context.Background(), userID, db_models.PlanPro, "mp_p2", 149.90)
		done <- err
	}()
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	assert.Len(t, repo.activeRowsFor(userID), 1)
}
