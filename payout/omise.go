package payout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dropship-hub/config"
	"dropship-hub/models"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"go.uber.org/zap"
)

// Omise pays withdrawals by bank transfer through an Omise recipient
type Omise struct {
	client   *omise.Client
	bankCode string
	log      *zap.Logger
}

func NewOmise(cfg config.PayoutConfig, log *zap.Logger) (*Omise, error) {
	client, err := omise.NewClient(cfg.OmisePublicKey, cfg.OmiseSecretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client init failed: %w", err)
	}
	return &Omise{client: client, bankCode: cfg.DefaultBankCode, log: log}, nil
}

// Pay creates a recipient for the withdrawal's account and transfers the net amount to it
func (o *Omise) Pay(ctx context.Context, w models.Withdraw, user models.User) (string, error) {
	if w.PaymentNumber == "" {
		return "", errors.New("withdrawal has no account number")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := user.Name
	if name == "" {
		name = user.Email
	}

	recipient := &omise.Recipient{}
	err := o.client.Do(recipient, &operations.CreateRecipient{
		Name:  name,
		Email: user.Email,
		Type:  "individual",
		BankAccount: &omise.BankAccountRequest{
			Brand:  o.brandFor(w.PaymentMethod),
			Number: w.PaymentNumber,
			Name:   name,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create recipient: %w", err)
	}

	transfer := &omise.Transfer{}
	err = o.client.Do(transfer, &operations.CreateTransfer{
		Amount:    minorUnits(w.NetAmount),
		Recipient: recipient.ID,
	})
	if err != nil {
		return "", fmt.Errorf("transfer failed: %w", err)
	}

	o.log.Info("Payout transferred",
		zap.String("withdraw_id", w.ID.Hex()),
		zap.String("recipient_id", recipient.ID),
		zap.String("transfer_id", transfer.ID),
	)
	return transfer.ID, nil
}

// brandFor uses the payment method as bank code when it looks like one
func (o *Omise) brandFor(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	if method != "" && !strings.ContainsAny(method, " -") && len(method) <= 5 {
		return method
	}
	return o.bankCode
}
