package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dropship-hub/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Withdrawal sources
const (
	SourceStore    = "store"
	SourceReferral = "referral"
)

// MinWithdrawAmount is the smallest amount a user may request
const MinWithdrawAmount = 1000

var withdrawChargeRate = decimal.RequireFromString("0.01")

const (
	withdrawLockTTL   = 15 * time.Second
	idempotencyTTL    = 24 * time.Hour
	withdrawLockSpace = "withdraw_lock:"
	withdrawIdemSpace = "withdraw_idem:"
)

// Balance is the withdrawable amount per source
type Balance struct {
	StoreEarned     float64 `json:"storeEarned"`
	StoreReserved   float64 `json:"storeReserved"`
	Store           float64 `json:"store"`
	ReferralEarned  float64 `json:"referralEarned"`
	ReferralReserve float64 `json:"referralReserved"`
	Referral        float64 `json:"referral"`
	MinimumAmount   float64 `json:"minimumAmount"`
}

// For returns the withdrawable amount of source
func (b Balance) For(source string) float64 {
	if source == SourceReferral {
		return b.Referral
	}
	return b.Store
}

// StoreEarnings sums the selling price of delivered orders
func StoreEarnings(orders []models.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		if IsDelivered(o.Status) {
			sum = sum.Add(decimal.NewFromFloat(o.SellingPrice))
		}
	}
	return sum
}

// ReservedAmount sums pending and approved withdrawals of source.
// Withdrawals stored before sources existed count against the store balance.
func ReservedAmount(ws []models.Withdraw, source string) decimal.Decimal {
	sum := decimal.Zero
	for _, w := range ws {
		if w.Status != models.WithdrawPending && w.Status != models.WithdrawApproved {
			continue
		}
		ws := w.Source
		if ws == "" {
			ws = SourceStore
		}
		if ws == source {
			sum = sum.Add(decimal.NewFromFloat(w.Amount))
		}
	}
	return sum
}

// ComputeBalance derives both withdrawable balances
func ComputeBalance(user models.User, delivered []models.Order, active []models.Withdraw) Balance {
	storeEarned := StoreEarnings(delivered)
	storeReserved := ReservedAmount(active, SourceStore)
	refEarned := ReferralIncome(len(user.MyReferralUser))
	refReserved := ReservedAmount(active, SourceReferral)

	return Balance{
		StoreEarned:     storeEarned.InexactFloat64(),
		StoreReserved:   storeReserved.InexactFloat64(),
		Store:           storeEarned.Sub(storeReserved).InexactFloat64(),
		ReferralEarned:  refEarned.InexactFloat64(),
		ReferralReserve: refReserved.InexactFloat64(),
		Referral:        refEarned.Sub(refReserved).InexactFloat64(),
		MinimumAmount:   MinWithdrawAmount,
	}
}

// WithdrawCharge returns the 1% charge and the net amount, rounded to 2 places
func WithdrawCharge(amount decimal.Decimal) (charge, net decimal.Decimal) {
	charge = amount.Mul(withdrawChargeRate).Round(2)
	return charge, amount.Sub(charge)
}

// ValidateWithdrawAmount enforces the minimum and the balance ceiling
func ValidateWithdrawAmount(amount, withdrawable decimal.Decimal) error {
	if amount.LessThan(decimal.NewFromInt(MinWithdrawAmount)) {
		return ErrBelowMinimum
	}
	if amount.GreaterThan(withdrawable) {
		return ErrInsufficientBalance
	}
	return nil
}

// WithdrawRepository is the storage the withdraw flow needs
type WithdrawRepository interface {
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	DeliveredOrders(ctx context.Context, email string) ([]models.Order, error)
	ActiveWithdraws(ctx context.Context, email string) ([]models.Withdraw, error)
	CreateWithdraw(ctx context.Context, w models.Withdraw) (models.Withdraw, error)
	TransitionWithdraw(ctx context.Context, id primitive.ObjectID, status string, at time.Time) (models.Withdraw, error)
	RevertWithdraw(ctx context.Context, id primitive.ObjectID) error
	SetPayoutRef(ctx context.Context, id primitive.ObjectID, ref string) error
}

// Locker is a best-effort mutual exclusion keyed by string. Acquire returns an
// owner token; Release only frees the lock while that token still holds it.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

// IdempotencyStore remembers results by key for a while
type IdempotencyStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Payouter sends an approved withdrawal to the user and returns a provider reference
type Payouter interface {
	Pay(ctx context.Context, w models.Withdraw, user models.User) (string, error)
}

// WithdrawService runs the balance check and the insert under a per-user lock
type WithdrawService struct {
	repo   WithdrawRepository
	locker Locker
	idem   IdempotencyStore
	payout Payouter
	log    *zap.Logger
	now    func() time.Time
}

func NewWithdrawService(repo WithdrawRepository, locker Locker, idem IdempotencyStore, payout Payouter, log *zap.Logger) *WithdrawService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WithdrawService{repo: repo, locker: locker, idem: idem, payout: payout, log: log, now: time.Now}
}

// Balance loads the data behind the user's withdrawable balances
func (s *WithdrawService) Balance(ctx context.Context, email string) (Balance, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return Balance{}, fmt.Errorf("load user: %w", err)
	}
	delivered, err := s.repo.DeliveredOrders(ctx, email)
	if err != nil {
		return Balance{}, fmt.Errorf("load delivered orders: %w", err)
	}
	active, err := s.repo.ActiveWithdraws(ctx, email)
	if err != nil {
		return Balance{}, fmt.Errorf("load withdrawals: %w", err)
	}
	return ComputeBalance(user, delivered, active), nil
}

// WithdrawRequest is a user's request to withdraw from one source
type WithdrawRequest struct {
	Email          string
	Amount         float64
	Source         string
	PaymentMethod  string
	PaymentNumber  string
	IdempotencyKey string
}

// Request validates and records a withdrawal. The second result is true when
// the response was replayed from an earlier request with the same idempotency key.
func (s *WithdrawService) Request(ctx context.Context, req WithdrawRequest) (models.Withdraw, bool, error) {
	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" {
		source = SourceStore
	}
	if source != SourceStore && source != SourceReferral {
		return models.Withdraw{}, false, Invalid("Unknown withdrawal source: " + req.Source)
	}

	idemKey := ""
	if req.IdempotencyKey != "" {
		idemKey = withdrawIdemSpace + req.Email + ":" + req.IdempotencyKey
		if w, ok, err := s.replay(ctx, idemKey); err != nil || ok {
			return w, ok, err
		}
	}

	lockKey := withdrawLockSpace + req.Email
	token, acquired, err := s.locker.Acquire(ctx, lockKey, withdrawLockTTL)
	if err != nil {
		return models.Withdraw{}, false, fmt.Errorf("acquire withdraw lock: %w", err)
	}
	if !acquired {
		return models.Withdraw{}, false, ErrWithdrawInProgress
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			s.log.Warn("Failed to release withdraw lock", zap.String("email", req.Email), zap.Error(err))
		}
	}()

	// a request with the same key may have finished while we waited for the lock
	if idemKey != "" {
		if w, ok, err := s.replay(ctx, idemKey); err != nil || ok {
			return w, ok, err
		}
	}

	balance, err := s.Balance(ctx, req.Email)
	if err != nil {
		return models.Withdraw{}, false, err
	}

	amount := decimal.NewFromFloat(req.Amount).Round(2)
	if err := ValidateWithdrawAmount(amount, decimal.NewFromFloat(balance.For(source))); err != nil {
		return models.Withdraw{}, false, err
	}
	charge, net := WithdrawCharge(amount)

	w, err := s.repo.CreateWithdraw(ctx, models.Withdraw{
		Email:         req.Email,
		Amount:        amount.InexactFloat64(),
		Charge:        charge.InexactFloat64(),
		NetAmount:     net.InexactFloat64(),
		Source:        source,
		Status:        models.WithdrawPending,
		PaymentMethod: req.PaymentMethod,
		PaymentNumber: req.PaymentNumber,
	})
	if err != nil {
		return models.Withdraw{}, false, fmt.Errorf("create withdraw: %w", err)
	}

	if idemKey != "" {
		if raw, err := json.Marshal(w); err == nil {
			if err := s.idem.Save(ctx, idemKey, raw, idempotencyTTL); err != nil {
				s.log.Warn("Failed to store idempotency key", zap.String("key", idemKey), zap.Error(err))
			}
		}
	}

	s.log.Info("Withdrawal requested",
		zap.String("email", req.Email),
		zap.String("source", source),
		zap.Float64("amount", w.Amount),
	)
	return w, false, nil
}

// replay returns the stored result for an idempotency key, if any
func (s *WithdrawService) replay(ctx context.Context, key string) (models.Withdraw, bool, error) {
	cached, ok, err := s.idem.Load(ctx, key)
	if err != nil {
		return models.Withdraw{}, false, fmt.Errorf("load idempotency key: %w", err)
	}
	if !ok {
		return models.Withdraw{}, false, nil
	}
	var w models.Withdraw
	if err := json.Unmarshal(cached, &w); err != nil {
		return models.Withdraw{}, false, fmt.Errorf("decode idempotent response: %w", err)
	}
	return w, true, nil
}

// Decide approves or rejects a pending withdrawal. Approval pays out and
// puts the withdrawal back to Pending if the payout fails.
func (s *WithdrawService) Decide(ctx context.Context, id primitive.ObjectID, status string) (models.Withdraw, error) {
	if status != models.WithdrawApproved && status != models.WithdrawRejected {
		return models.Withdraw{}, Invalid("Status must be Approved or Rejected")
	}

	w, err := s.repo.TransitionWithdraw(ctx, id, status, s.now())
	if err != nil {
		return models.Withdraw{}, err
	}
	if status == models.WithdrawRejected {
		return w, nil
	}

	user, err := s.repo.GetUserByEmail(ctx, w.Email)
	if err != nil {
		s.revert(ctx, w)
		return models.Withdraw{}, fmt.Errorf("load withdraw owner: %w", err)
	}
	ref, err := s.payout.Pay(ctx, w, user)
	if err != nil {
		s.revert(ctx, w)
		return models.Withdraw{}, fmt.Errorf("payout: %w", err)
	}
	if ref != "" {
		if err := s.repo.SetPayoutRef(ctx, w.ID, ref); err != nil {
			s.log.Error("Payout sent but reference not stored",
				zap.String("withdraw_id", w.ID.Hex()), zap.String("ref", ref), zap.Error(err))
		}
		w.PayoutRef = ref
	}
	return w, nil
}

func (s *WithdrawService) revert(ctx context.Context, w models.Withdraw) {
	if err := s.repo.RevertWithdraw(context.WithoutCancel(ctx), w.ID); err != nil {
		s.log.Error("Failed to revert withdrawal approval", zap.String("withdraw_id", w.ID.Hex()), zap.Error(err))
	}
}

// IsDomainError reports whether err carries a business-rule code
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
