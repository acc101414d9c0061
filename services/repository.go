package services

import (
	"context"
	"errors"
	"time"

	"dropship-hub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore backs the services with the models package
type MongoStore struct{}

func NewMongoStore() *MongoStore { return &MongoStore{} }

func (MongoStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := models.GetUserByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return u, NewDomainError(CodeNotFound, "User not found")
	}
	return u, err
}

func (MongoStore) DeliveredOrders(ctx context.Context, email string) ([]models.Order, error) {
	return models.DeliveredOrders(ctx, email)
}

func (MongoStore) ActiveWithdraws(ctx context.Context, email string) ([]models.Withdraw, error) {
	return models.ActiveWithdraws(ctx, email)
}

func (MongoStore) CreateWithdraw(ctx context.Context, w models.Withdraw) (models.Withdraw, error) {
	return models.CreateWithdraw(ctx, w)
}

func (MongoStore) TransitionWithdraw(ctx context.Context, id primitive.ObjectID, status string, at time.Time) (models.Withdraw, error) {
	set := bson.M{"status": status}
	if status == models.WithdrawApproved {
		set["approvedDate"] = at
	}
	w, err := models.TransitionWithdraw(ctx, id, set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return w, NewDomainError(CodeConflict, "Withdrawal not found or already decided")
	}
	return w, err
}

func (MongoStore) RevertWithdraw(ctx context.Context, id primitive.ObjectID) error {
	return models.RevertWithdraw(ctx, id)
}

func (MongoStore) SetPayoutRef(ctx context.Context, id primitive.ObjectID, ref string) error {
	return models.SetPayoutRef(ctx, id, ref)
}

func (MongoStore) GetCartItemsByEmail(ctx context.Context, email string) ([]models.CartItem, error) {
	return models.GetCartItemsByEmail(ctx, email)
}

func (MongoStore) GetProductByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return models.GetProductByID(ctx, id)
}

func (MongoStore) DecrementStock(ctx context.Context, id primitive.ObjectID, size string, qty int) (bool, error) {
	return models.DecrementStock(ctx, id, size, qty)
}

func (MongoStore) IncrementStock(ctx context.Context, id primitive.ObjectID, size string, qty int) error {
	return models.IncrementStock(ctx, id, size, qty)
}

func (MongoStore) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	return models.CreateOrder(ctx, order)
}

func (MongoStore) ClearCart(ctx context.Context, email string, ids []primitive.ObjectID) error {
	return models.ClearCart(ctx, email, ids)
}

func (MongoStore) GetUserByReferralCode(ctx context.Context, code string) (models.User, error) {
	return models.GetUserByReferralCode(ctx, code)
}

func (MongoStore) AddReferral(ctx context.Context, referrerID primitive.ObjectID, referred models.ReferredUser, bonus float64) (bool, error) {
	return models.AddReferral(ctx, referrerID, referred, bonus)
}

func (MongoStore) GetPackageByID(ctx context.Context, id primitive.ObjectID) (models.Package, error) {
	p, err := models.GetPackageByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return p, NewDomainError(CodeNotFound, "Package not found")
	}
	return p, err
}

func (MongoStore) CreatePackagePurchase(ctx context.Context, pp models.PackagePurchase) (models.PackagePurchase, error) {
	return models.CreatePackagePurchase(ctx, pp)
}

func (MongoStore) DecidePackagePurchase(ctx context.Context, id primitive.ObjectID, status string) (models.PackagePurchase, error) {
	pp, err := models.DecidePackagePurchase(ctx, id, status)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return pp, NewDomainError(CodeConflict, "Purchase not found or already decided")
	}
	return pp, err
}

func (MongoStore) RevertPackagePurchase(ctx context.Context, id primitive.ObjectID) error {
	return models.RevertPackagePurchase(ctx, id)
}

func (MongoStore) GrantMembership(ctx context.Context, email string, sub models.Subscription) error {
	err := models.GrantMembership(ctx, email, sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotRegistered
	}
	return err
}
