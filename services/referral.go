package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dropship-hub/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReferralBonus is credited once per referred user
const ReferralBonus = 50

// ReferralIncome is the bonus earned for n referred users
func ReferralIncome(n int) decimal.Decimal {
	return decimal.NewFromInt(ReferralBonus).Mul(decimal.NewFromInt(int64(n)))
}

// NewReferralCode returns an 8 character upper-case code
func NewReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// NormalizeReferralCode trims and upper-cases a code typed by a user
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CanAttributeReferral rejects self-referral and empty emails
func CanAttributeReferral(referrerEmail, newEmail string) bool {
	return newEmail != "" && !strings.EqualFold(referrerEmail, newEmail)
}

// ReferralRepository is the storage referral attribution needs
type ReferralRepository interface {
	GetUserByReferralCode(ctx context.Context, code string) (models.User, error)
	AddReferral(ctx context.Context, referrerID primitive.ObjectID, referred models.ReferredUser, bonus float64) (bool, error)
}

// AttributeReferral credits the owner of code with the new user.
// It returns the referrer's email, or "" when nothing was credited.
func AttributeReferral(ctx context.Context, repo ReferralRepository, code string, newUser models.User, now time.Time) (string, error) {
	code = NormalizeReferralCode(code)
	if code == "" {
		return "", nil
	}
	referrer, err := repo.GetUserByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", Invalid("Referral code not found")
		}
		return "", fmt.Errorf("find referrer: %w", err)
	}
	if !CanAttributeReferral(referrer.Email, newUser.Email) {
		return "", Invalid("You cannot use your own referral code")
	}
	credited, err := repo.AddReferral(ctx, referrer.ID, models.ReferredUser{
		Email:    newUser.Email,
		Name:     newUser.Name,
		JoinedAt: now,
	}, ReferralBonus)
	if err != nil {
		return "", fmt.Errorf("credit referral: %w", err)
	}
	if !credited {
		return "", nil
	}
	return referrer.Email, nil
}
