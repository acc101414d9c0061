package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dropship-hub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var bkash = models.Payment{Method: "bKash", Number: "01712345678", TransactionID: "TX9"}

func newPackageFixture() (*PackageService, *fakePackageRepo, models.Package, time.Time) {
	repo := newFakePackageRepo()
	pkg := models.Package{ID: primitive.NewObjectID(), Name: "Gold", Price: 500, DurationDays: 30, Active: true}
	repo.packages[pkg.ID] = pkg
	repo.users["m@x.com"] = models.User{Email: "m@x.com"}

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewPackageService(repo, nil)
	svc.now = func() time.Time { return now }
	return svc, repo, pkg, now
}

func TestPackageService_Buy(t *testing.T) {
	ctx := context.Background()

	t.Run("records a pending purchase", func(t *testing.T) {
		svc, repo, pkg, _ := newPackageFixture()

		pp, err := svc.Buy(ctx, "m@x.com", pkg.ID, bkash)
		require.NoError(t, err)
		assert.Equal(t, models.PurchasePending, pp.Status)
		assert.Equal(t, "Gold", pp.PackageName)
		assert.Equal(t, 500.0, pp.Price)
		assert.Len(t, repo.purchases, 1)
	})

	t.Run("unregistered buyer", func(t *testing.T) {
		svc, repo, pkg, _ := newPackageFixture()

		_, err := svc.Buy(ctx, "ghost@x.com", pkg.ID, bkash)
		assert.ErrorIs(t, err, ErrNotRegistered)
		assert.Empty(t, repo.purchases)
	})

	t.Run("inactive package", func(t *testing.T) {
		svc, repo, pkg, _ := newPackageFixture()
		pkg.Active = false
		repo.packages[pkg.ID] = pkg

		_, err := svc.Buy(ctx, "m@x.com", pkg.ID, bkash)
		assert.Equal(t, CodeInvalidInput, CodeOf(err))
	})

	t.Run("unknown package", func(t *testing.T) {
		svc, _, _, _ := newPackageFixture()

		_, err := svc.Buy(ctx, "m@x.com", primitive.NewObjectID(), bkash)
		assert.Equal(t, CodeNotFound, CodeOf(err))
	})
}

func TestPackageService_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("approval makes the buyer a member", func(t *testing.T) {
		svc, repo, pkg, now := newPackageFixture()
		pp, err := svc.Buy(ctx, "m@x.com", pkg.ID, bkash)
		require.NoError(t, err)

		d, err := svc.Decide(ctx, pp.ID, models.PurchaseApproved)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseApproved, d.Purchase.Status)
		require.NotNil(t, d.Subscription)
		assert.Equal(t, now.AddDate(0, 0, 30), d.Subscription.ValidUntil)

		u := repo.users["m@x.com"]
		assert.True(t, u.IsMember)
		assert.Equal(t, "Gold", u.Subscription.Plan)
	})

	t.Run("approval extends a running subscription", func(t *testing.T) {
		svc, repo, pkg, now := newPackageFixture()
		until := now.AddDate(0, 0, 10)
		repo.users["m@x.com"] = models.User{Email: "m@x.com", IsMember: true, Subscription: &models.Subscription{Plan: "Gold", ValidUntil: until}}
		pp, err := svc.Buy(ctx, "m@x.com", pkg.ID, bkash)
		require.NoError(t, err)

		d, err := svc.Decide(ctx, pp.ID, models.PurchaseApproved)
		require.NoError(t, err)
		assert.Equal(t, until.AddDate(0, 0, 30), d.Subscription.ValidUntil)
	})

	t.Run("rejection grants nothing", func(t *testing.T) {
		svc, repo, pkg, _ := newPackageFixture()
		pp, err := svc.Buy(ctx, "m@x.com", pkg.ID, bkash)
		require.NoError(t, err)

		d, err := svc.Decide(ctx, pp.ID, models.PurchaseRejected)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseRejected, d.Purchase.Status)
		assert.Nil(t, d.Subscription)
		assert.Empty(t, repo.granted)
	})

	t.Run("failed grant returns the purchase to pending", func(t *testing.T) {
		svc, repo, pkg, _ := newPackageFixture()
		pp, err := svc.Buy(ctx, "m@x.com", pkg.ID, bkash)
		require.NoError(t, err)
		repo.grantErr = errors.New("write failed")

		_, err = svc.Decide(ctx, pp.ID, models.PurchaseApproved)
		require.Error(t, err)
		assert.Equal(t, []primitive.ObjectID{pp.ID}, repo.reverted)
		assert.Equal(t, models.PurchasePending, repo.purchases[pp.ID].Status)

		repo.grantErr = nil
		d, err := svc.Decide(ctx, pp.ID, models.PurchaseApproved)
		require.NoError(t, err, "a reverted purchase can be approved again")
		assert.True(t, repo.users["m@x.com"].IsMember)
		assert.NotNil(t, d.Subscription)
	})

	t.Run("buyer removed before approval", func(t *testing.T) {
		svc, repo, pkg, _ := newPackageFixture()
		pp, err := svc.Buy(ctx, "m@x.com", pkg.ID, bkash)
		require.NoError(t, err)
		delete(repo.users, "m@x.com")

		_, err = svc.Decide(ctx, pp.ID, models.PurchaseApproved)
		assert.Equal(t, CodeNotFound, CodeOf(err))
		assert.Equal(t, models.PurchasePending, repo.purchases[pp.ID].Status)
	})

	t.Run("already decided", func(t *testing.T) {
		svc, _, pkg, _ := newPackageFixture()
		pp, err := svc.Buy(ctx, "m@x.com", pkg.ID, bkash)
		require.NoError(t, err)
		_, err = svc.Decide(ctx, pp.ID, models.PurchaseRejected)
		require.NoError(t, err)

		_, err = svc.Decide(ctx, pp.ID, models.PurchaseApproved)
		assert.Equal(t, CodeConflict, CodeOf(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, _, _, _ := newPackageFixture()

		_, err := svc.Decide(ctx, primitive.NewObjectID(), "Paid")
		assert.Equal(t, CodeInvalidInput, CodeOf(err))
	})
}
