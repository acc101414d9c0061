package payout

import (
	"context"

	"dropship-hub/models"

	"go.uber.org/zap"
)

// Manual records approvals that an admin pays by hand over mobile banking
type Manual struct {
	log *zap.Logger
}

func NewManual(log *zap.Logger) *Manual {
	return &Manual{log: log}
}

func (m *Manual) Pay(_ context.Context, w models.Withdraw, _ models.User) (string, error) {
	m.log.Info("Manual payout due",
		zap.String("withdraw_id", w.ID.Hex()),
		zap.String("email", w.Email),
		zap.String("method", w.PaymentMethod),
		zap.String("number", w.PaymentNumber),
		zap.Float64("net_amount", w.NetAmount),
	)
	return "manual-" + w.ID.Hex(), nil
}
