package payout

import (
	"context"
	"fmt"

	"dropship-hub/config"
	"dropship-hub/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Payouter sends an approved withdrawal to its owner and returns a provider reference
type Payouter interface {
	Pay(ctx context.Context, w models.Withdraw, user models.User) (string, error)
}

// New builds the payouter selected by cfg.Provider
func New(cfg config.PayoutConfig, log *zap.Logger) (Payouter, error) {
	switch cfg.Provider {
	case "manual":
		return NewManual(log), nil
	case "omise":
		return NewOmise(cfg, log)
	default:
		return nil, fmt.Errorf("unknown payout provider %q", cfg.Provider)
	}
}

// minorUnits converts an amount to the smallest currency unit
func minorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
