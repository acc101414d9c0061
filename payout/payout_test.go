package payout

import (
	"context"
	"testing"

	"dropship-hub/config"
	"dropship-hub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestManualPay(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewManual(zap.New(core))
	w := models.Withdraw{ID: primitive.NewObjectID(), Email: "a@x.com", NetAmount: 990, PaymentMethod: "bKash", PaymentNumber: "01712345678"}

	ref, err := m.Pay(context.Background(), w, models.User{})
	require.NoError(t, err)
	assert.Equal(t, "manual-"+w.ID.Hex(), ref)

	entries := logs.FilterMessage("Manual payout due").All()
	require.Len(t, entries, 1)
	assert.Equal(t, 990.0, entries[0].ContextMap()["net_amount"])
}

func TestNew(t *testing.T) {
	p, err := New(config.PayoutConfig{Provider: "manual"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Manual{}, p)

	_, err = New(config.PayoutConfig{Provider: "paypal"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(99000), minorUnits(990))
	assert.Equal(t, int64(122221), minorUnits(1222.21))
	assert.Equal(t, int64(247549), minorUnits(2475.49))
}

func TestOmiseBrandFor(t *testing.T) {
	o := &Omise{bankCode: "bbl"}
	assert.Equal(t, "scb", o.brandFor("SCB"))
	assert.Equal(t, "bbl", o.brandFor(""))
	assert.Equal(t, "bbl", o.brandFor("Bank Transfer"))
}

func TestOmisePayRequiresAccount(t *testing.T) {
	o := &Omise{bankCode: "bbl", log: zap.NewNop()}
	_, err := o.Pay(context.Background(), models.Withdraw{}, models.User{})
	assert.Error(t, err)
}
