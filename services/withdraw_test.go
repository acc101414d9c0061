package services

import (
	"context"
	"errors"
	"testing"

	"dropship-hub/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWithdrawCharge(t *testing.T) {
	tests := []struct {
		amount string
		charge string
		net    string
	}{
		{"1000", "10", "990"},
		{"1234.56", "12.35", "1222.21"},
		{"2500.50", "25.01", "2475.49"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			charge, net := WithdrawCharge(decimal.RequireFromString(tt.amount))
			assert.True(t, charge.Equal(decimal.RequireFromString(tt.charge)), "charge %s", charge)
			assert.True(t, net.Equal(decimal.RequireFromString(tt.net)), "net %s", net)
		})
	}
}

func TestValidateWithdrawAmount(t *testing.T) {
	d := decimal.NewFromInt
	assert.ErrorIs(t, ValidateWithdrawAmount(d(999), d(5000)), ErrBelowMinimum)
	assert.ErrorIs(t, ValidateWithdrawAmount(d(1500), d(1200)), ErrInsufficientBalance)
	assert.NoError(t, ValidateWithdrawAmount(d(1000), d(1000)))
}

func TestComputeBalance(t *testing.T) {
	user := models.User{Email: "a@x.com", MyReferralUser: make([]models.ReferredUser, 3)}
	orders := []models.Order{
		{Status: "Delivered", SellingPrice: 1500},
		{Status: "delivered", SellingPrice: 700},
		{Status: "Pending", SellingPrice: 5000},
	}
	active := []models.Withdraw{
		{Status: models.WithdrawPending, Amount: 1000, Source: SourceStore},
		{Status: models.WithdrawApproved, Amount: 100, Source: SourceReferral},
		{Status: models.WithdrawRejected, Amount: 900, Source: SourceStore},
		{Status: models.WithdrawApproved, Amount: 50},
	}

	b := ComputeBalance(user, orders, active)
	assert.Equal(t, 2200.0, b.StoreEarned)
	assert.Equal(t, 1050.0, b.StoreReserved)
	assert.Equal(t, 1150.0, b.Store)
	assert.Equal(t, 150.0, b.ReferralEarned)
	assert.Equal(t, 50.0, b.Referral)
	assert.Equal(t, 1150.0, b.For(SourceStore))
	assert.Equal(t, 50.0, b.For(SourceReferral))
}

func newWithdrawFixture() (*WithdrawService, *fakeWithdrawRepo, *fakeLocker, *fakePayouter) {
	repo := &fakeWithdrawRepo{
		users: map[string]models.User{"a@x.com": {Email: "a@x.com"}},
		orders: []models.Order{
			{Email: "a@x.com", Status: "Delivered", SellingPrice: 1500},
			{Email: "a@x.com", Status: "Delivered", SellingPrice: 700},
		},
		withdraws: []models.Withdraw{
			{ID: primitive.NewObjectID(), Email: "a@x.com", Status: models.WithdrawPending, Amount: 1000, Source: SourceStore},
		},
	}
	locker := newFakeLocker()
	payout := &fakePayouter{ref: "trsf_1"}
	return NewWithdrawService(repo, locker, newFakeIdem(), payout, nil), repo, locker, payout
}

func TestWithdrawService_Request(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending withdrawal with charge", func(t *testing.T) {
		svc, repo, _, _ := newWithdrawFixture()

		w, replayed, err := svc.Request(ctx, WithdrawRequest{Email: "a@x.com", Amount: 1200, PaymentMethod: "bKash", PaymentNumber: "01712345678"})
		require.NoError(t, err)
		assert.False(t, replayed)
		assert.Equal(t, models.WithdrawPending, w.Status)
		assert.Equal(t, SourceStore, w.Source)
		assert.Equal(t, 12.0, w.Charge)
		assert.Equal(t, 1188.0, w.NetAmount)
		assert.Equal(t, 1, repo.creates)
	})

	t.Run("rejects amount below minimum", func(t *testing.T) {
		svc, repo, _, _ := newWithdrawFixture()

		_, _, err := svc.Request(ctx, WithdrawRequest{Email: "a@x.com", Amount: 999})
		assert.ErrorIs(t, err, ErrBelowMinimum)
		assert.Zero(t, repo.creates)
	})

	t.Run("pending withdrawals reduce the balance", func(t *testing.T) {
		svc, _, _, _ := newWithdrawFixture()

		_, _, err := svc.Request(ctx, WithdrawRequest{Email: "a@x.com", Amount: 1201})
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("second request sees the first", func(t *testing.T) {
		svc, repo, _, _ := newWithdrawFixture()
		repo.orders = append(repo.orders, models.Order{Email: "a@x.com", Status: "Delivered", SellingPrice: 1000})

		_, _, err := svc.Request(ctx, WithdrawRequest{Email: "a@x.com", Amount: 1200})
		require.NoError(t, err)
		_, _, err = svc.Request(ctx, WithdrawRequest{Email: "a@x.com", Amount: 1200})
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("held lock reports conflict", func(t *testing.T) {
		svc, _, locker, _ := newWithdrawFixture()
		locker.held[withdrawLockSpace+"a@x.com"] = true

		_, _, err := svc.Request(ctx, WithdrawRequest{Email: "a@x.com", Amount: 1000})
		assert.ErrorIs(t, err, ErrWithdrawInProgress)
	})

	t.Run("lock is released after request", func(t *testing.T) {
		svc, _, locker, _ := newWithdrawFixture()

		_, _, err := svc.Request(ctx, WithdrawRequest{Email: "a@x.com", Amount: 5000})
		require.Error(t, err)
		assert.Empty(t, locker.held)
	})

	t.Run("idempotency key replays first result", func(t *testing.T) {
		svc, repo, _, _ := newWithdrawFixture()
		req := WithdrawRequest{Email: "a@x.com", Amount: 1000, IdempotencyKey: "k1"}

		first, _, err := svc.Request(ctx, req)
		require.NoError(t, err)
		second, replayed, err := svc.Request(ctx, req)
		require.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, repo.creates)
	})

	t.Run("same key racing past the first lookup still replays", func(t *testing.T) {
		_, repo, locker, payout := newWithdrawFixture()
		repo.orders = append(repo.orders, models.Order{Email: "a@x.com", Status: "Delivered", SellingPrice: 2000})
		idem := newParkingIdem()
		svc := NewWithdrawService(repo, locker, idem, payout, nil)
		req := WithdrawRequest{Email: "a@x.com", Amount: 1000, IdempotencyKey: "k1"}

		type result struct {
			w        models.Withdraw
			replayed bool
			err      error
		}
		late := make(chan result, 1)
		go func() {
			w, replayed, err := svc.Request(ctx, req)
			late <- result{w, replayed, err}
		}()
		<-idem.parked

		first, replayed, err := svc.Request(ctx, req)
		require.NoError(t, err)
		assert.False(t, replayed)

		close(idem.release)
		second := <-late
		require.NoError(t, second.err)
		assert.True(t, second.replayed)
		assert.Equal(t, first.ID, second.w.ID)
		assert.Equal(t, 1, repo.creates)
	})

	t.Run("referral source uses referral income", func(t *testing.T) {
		svc, repo, _, _ := newWithdrawFixture()
		repo.users["a@x.com"] = models.User{Email: "a@x.com", MyReferralUser: make([]models.ReferredUser, 25)}

		w, _, err := svc.Request(ctx, WithdrawRequest{Email: "a@x.com", Amount: 1250, Source: "Referral"})
		require.NoError(t, err)
		assert.Equal(t, SourceReferral, w.Source)

		_, _, err = svc.Request(ctx, WithdrawRequest{Email: "a@x.com", Amount: 1000, Source: SourceReferral})
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("unknown source", func(t *testing.T) {
		svc, _, _, _ := newWithdrawFixture()

		_, _, err := svc.Request(ctx, WithdrawRequest{Email: "a@x.com", Amount: 1000, Source: "bonus"})
		assert.Equal(t, CodeInvalidInput, CodeOf(err))
	})
}

func TestWithdrawService_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("approval pays out and stores reference", func(t *testing.T) {
		svc, repo, _, payout := newWithdrawFixture()
		id := repo.withdraws[0].ID

		w, err := svc.Decide(ctx, id, models.WithdrawApproved)
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawApproved, w.Status)
		assert.Equal(t, "trsf_1", w.PayoutRef)
		assert.NotNil(t, w.ApprovedDate)
		assert.Equal(t, 1, payout.calls)
		assert.Equal(t, "trsf_1", repo.withdraws[0].PayoutRef)
	})

	t.Run("rejection skips payout", func(t *testing.T) {
		svc, repo, _, payout := newWithdrawFixture()

		w, err := svc.Decide(ctx, repo.withdraws[0].ID, models.WithdrawRejected)
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawRejected, w.Status)
		assert.Zero(t, payout.calls)
	})

	t.Run("failed payout reverts to pending", func(t *testing.T) {
		svc, repo, _, payout := newWithdrawFixture()
		payout.err = errors.New("bank down")
		id := repo.withdraws[0].ID

		_, err := svc.Decide(ctx, id, models.WithdrawApproved)
		require.Error(t, err)
		assert.Equal(t, []primitive.ObjectID{id}, repo.reverted)
		assert.Equal(t, models.WithdrawPending, repo.withdraws[0].Status)
	})

	t.Run("already decided withdrawal conflicts", func(t *testing.T) {
		svc, repo, _, _ := newWithdrawFixture()
		id := repo.withdraws[0].ID
		_, err := svc.Decide(ctx, id, models.WithdrawRejected)
		require.NoError(t, err)

		_, err = svc.Decide(ctx, id, models.WithdrawApproved)
		assert.Equal(t, CodeConflict, CodeOf(err))
	})

	t.Run("invalid status", func(t *testing.T) {
		svc, repo, _, _ := newWithdrawFixture()

		_, err := svc.Decide(ctx, repo.withdraws[0].ID, "Paid")
		assert.Equal(t, CodeInvalidInput, CodeOf(err))
	})
}
