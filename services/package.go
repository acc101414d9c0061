package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dropship-hub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var ErrNotRegistered = NewDomainError(CodeNotFound, "User not registered")

// PackageRepository is the storage the membership purchase flow needs
type PackageRepository interface {
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetPackageByID(ctx context.Context, id primitive.ObjectID) (models.Package, error)
	CreatePackagePurchase(ctx context.Context, pp models.PackagePurchase) (models.PackagePurchase, error)
	DecidePackagePurchase(ctx context.Context, id primitive.ObjectID, status string) (models.PackagePurchase, error)
	RevertPackagePurchase(ctx context.Context, id primitive.ObjectID) error
	GrantMembership(ctx context.Context, email string, sub models.Subscription) error
}

// PackageService sells membership packages paid by manual mobile payment
type PackageService struct {
	repo PackageRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewPackageService(repo PackageRepository, log *zap.Logger) *PackageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PackageService{repo: repo, log: log, now: time.Now}
}

// Buy records a pending purchase. Only registered users can buy, so that
// approval always has someone to grant membership to.
func (s *PackageService) Buy(ctx context.Context, email string, packageID primitive.ObjectID, payment models.Payment) (models.PackagePurchase, error) {
	if _, err := s.repo.GetUserByEmail(ctx, email); err != nil {
		if CodeOf(err) == CodeNotFound || errors.Is(err, mongo.ErrNoDocuments) {
			return models.PackagePurchase{}, ErrNotRegistered
		}
		return models.PackagePurchase{}, fmt.Errorf("load buyer: %w", err)
	}

	pkg, err := s.repo.GetPackageByID(ctx, packageID)
	if err != nil {
		return models.PackagePurchase{}, err
	}
	if !pkg.Active {
		return models.PackagePurchase{}, Invalid("Package is not available")
	}

	pp, err := s.repo.CreatePackagePurchase(ctx, models.PackagePurchase{
		Email:       email,
		PackageID:   pkg.ID,
		PackageName: pkg.Name,
		Price:       pkg.Price,
		Payment:     payment,
	})
	if err != nil {
		return models.PackagePurchase{}, fmt.Errorf("create purchase: %w", err)
	}
	return pp, nil
}

// PackageDecision is the outcome of an admin review
type PackageDecision struct {
	Purchase     models.PackagePurchase `json:"purchase"`
	Subscription *models.Subscription   `json:"subscription,omitempty"`
}

// Decide approves or rejects a pending purchase. Approval grants membership;
// if that fails the purchase goes back to Pending so it can be decided again.
func (s *PackageService) Decide(ctx context.Context, id primitive.ObjectID, status string) (PackageDecision, error) {
	if status != models.PurchaseApproved && status != models.PurchaseRejected {
		return PackageDecision{}, Invalid("Status must be Approved or Rejected")
	}

	pp, err := s.repo.DecidePackagePurchase(ctx, id, status)
	if err != nil {
		return PackageDecision{}, err
	}
	if status == models.PurchaseRejected {
		return PackageDecision{Purchase: pp}, nil
	}

	sub, err := s.grant(ctx, pp)
	if err != nil {
		if rerr := s.repo.RevertPackagePurchase(context.WithoutCancel(ctx), pp.ID); rerr != nil {
			s.log.Error("Failed to revert package approval", zap.String("purchase_id", pp.ID.Hex()), zap.Error(rerr))
		}
		return PackageDecision{}, err
	}

	s.log.Info("Membership granted",
		zap.String("email", pp.Email),
		zap.String("package", sub.Plan),
		zap.Time("valid_until", sub.ValidUntil),
	)
	return PackageDecision{Purchase: pp, Subscription: &sub}, nil
}

func (s *PackageService) grant(ctx context.Context, pp models.PackagePurchase) (models.Subscription, error) {
	pkg, err := s.repo.GetPackageByID(ctx, pp.PackageID)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("load package: %w", err)
	}
	user, err := s.repo.GetUserByEmail(ctx, pp.Email)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("load buyer: %w", err)
	}
	sub := ExtendSubscription(user.Subscription, pkg.Name, pkg.DurationDays, s.now())
	if err := s.repo.GrantMembership(ctx, pp.Email, sub); err != nil {
		return models.Subscription{}, fmt.Errorf("grant membership: %w", err)
	}
	return sub, nil
}
