package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"dropship-hub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]bool{}} }

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return "", false, nil
	}
	l.held[key] = true
	return key, true, nil
}

func (l *fakeLocker) Release(_ context.Context, key, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

type fakeIdem struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeIdem() *fakeIdem { return &fakeIdem{data: map[string][]byte{}} }

func (f *fakeIdem) Load(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeIdem) Save(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

type fakePayouter struct {
	ref   string
	err   error
	calls int
}

func (p *fakePayouter) Pay(context.Context, models.Withdraw, models.User) (string, error) {
	p.calls++
	return p.ref, p.err
}

type fakeWithdrawRepo struct {
	users     map[string]models.User
	orders    []models.Order
	withdraws []models.Withdraw
	creates   int
	reverted  []primitive.ObjectID
}

func (r *fakeWithdrawRepo) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := r.users[email]
	if !ok {
		return u, NewDomainError(CodeNotFound, "User not found")
	}
	return u, nil
}

func (r *fakeWithdrawRepo) DeliveredOrders(_ context.Context, email string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if o.Email == email && IsDelivered(o.Status) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeWithdrawRepo) ActiveWithdraws(_ context.Context, email string) ([]models.Withdraw, error) {
	var out []models.Withdraw
	for _, w := range r.withdraws {
		if w.Email == email && (w.Status == models.WithdrawPending || w.Status == models.WithdrawApproved) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWithdrawRepo) CreateWithdraw(_ context.Context, w models.Withdraw) (models.Withdraw, error) {
	r.creates++
	w.ID = primitive.NewObjectID()
	w.RequestDate = time.Now()
	r.withdraws = append(r.withdraws, w)
	return w, nil
}

func (r *fakeWithdrawRepo) TransitionWithdraw(_ context.Context, id primitive.ObjectID, status string, at time.Time) (models.Withdraw, error) {
	for i, w := range r.withdraws {
		if w.ID == id && w.Status == models.WithdrawPending {
			r.withdraws[i].Status = status
			if status == models.WithdrawApproved {
				r.withdraws[i].ApprovedDate = &at
			}
			return r.withdraws[i], nil
		}
	}
	return models.Withdraw{}, NewDomainError(CodeConflict, "Withdrawal not found or already decided")
}

func (r *fakeWithdrawRepo) RevertWithdraw(_ context.Context, id primitive.ObjectID) error {
	r.reverted = append(r.reverted, id)
	for i, w := range r.withdraws {
		if w.ID == id {
			r.withdraws[i].Status = models.WithdrawPending
			r.withdraws[i].ApprovedDate = nil
		}
	}
	return nil
}

func (r *fakeWithdrawRepo) SetPayoutRef(_ context.Context, id primitive.ObjectID, ref string) error {
	for i, w := range r.withdraws {
		if w.ID == id {
			r.withdraws[i].PayoutRef = ref
		}
	}
	return nil
}

type fakeCheckoutRepo struct {
	cart        []models.CartItem
	products    map[primitive.ObjectID]*models.Product
	failOrder   bool
	cleared     []primitive.ObjectID
	orders      []models.Order
	decrementOK func(id primitive.ObjectID) bool
}

func (r *fakeCheckoutRepo) GetCartItemsByEmail(_ context.Context, email string) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, it := range r.cart {
		if it.Email == email {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeCheckoutRepo) GetProductByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return models.Product{}, errors.New("not found")
	}
	return *p, nil
}

func (r *fakeCheckoutRepo) DecrementStock(_ context.Context, id primitive.ObjectID, size string, qty int) (bool, error) {
	if r.decrementOK != nil && !r.decrementOK(id) {
		return false, nil
	}
	p := r.products[id]
	for i, s := range p.Sizes {
		if s.Size == size && s.Stock >= qty {
			p.Sizes[i].Stock -= qty
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCheckoutRepo) IncrementStock(_ context.Context, id primitive.ObjectID, size string, qty int) error {
	p := r.products[id]
	for i, s := range p.Sizes {
		if s.Size == size {
			p.Sizes[i].Stock += qty
		}
	}
	return nil
}

func (r *fakeCheckoutRepo) CreateOrder(_ context.Context, order models.Order) (models.Order, error) {
	if r.failOrder {
		return models.Order{}, errors.New("insert failed")
	}
	order.ID = primitive.NewObjectID()
	r.orders = append(r.orders, order)
	return order, nil
}

func (r *fakeCheckoutRepo) ClearCart(_ context.Context, _ string, ids []primitive.ObjectID) error {
	r.cleared = append(r.cleared, ids...)
	return nil
}

// parkingIdem stops the first Load after it has read the store, until release is closed
type parkingIdem struct {
	*fakeIdem
	once    sync.Once
	parked  chan struct{}
	release chan struct{}
}

func newParkingIdem() *parkingIdem {
	return &parkingIdem{fakeIdem: newFakeIdem(), parked: make(chan struct{}), release: make(chan struct{})}
}

func (p *parkingIdem) Load(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := p.fakeIdem.Load(ctx, key)
	p.once.Do(func() {
		close(p.parked)
		<-p.release
	})
	return v, ok, err
}

type fakePackageRepo struct {
	users     map[string]models.User
	packages  map[primitive.ObjectID]models.Package
	purchases map[primitive.ObjectID]models.PackagePurchase
	grantErr  error
	granted   map[string]models.Subscription
	reverted  []primitive.ObjectID
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{
		users:     map[string]models.User{},
		packages:  map[primitive.ObjectID]models.Package{},
		purchases: map[primitive.ObjectID]models.PackagePurchase{},
		granted:   map[string]models.Subscription{},
	}
}

func (r *fakePackageRepo) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := r.users[email]
	if !ok {
		return u, NewDomainError(CodeNotFound, "User not found")
	}
	return u, nil
}

func (r *fakePackageRepo) GetPackageByID(_ context.Context, id primitive.ObjectID) (models.Package, error) {
	p, ok := r.packages[id]
	if !ok {
		return p, NewDomainError(CodeNotFound, "Package not found")
	}
	return p, nil
}

func (r *fakePackageRepo) CreatePackagePurchase(_ context.Context, pp models.PackagePurchase) (models.PackagePurchase, error) {
	pp.ID = primitive.NewObjectID()
	pp.Status = models.PurchasePending
	r.purchases[pp.ID] = pp
	return pp, nil
}

func (r *fakePackageRepo) DecidePackagePurchase(_ context.Context, id primitive.ObjectID, status string) (models.PackagePurchase, error) {
	pp, ok := r.purchases[id]
	if !ok || pp.Status != models.PurchasePending {
		return pp, NewDomainError(CodeConflict, "Purchase not found or already decided")
	}
	pp.Status = status
	r.purchases[id] = pp
	return pp, nil
}

func (r *fakePackageRepo) RevertPackagePurchase(_ context.Context, id primitive.ObjectID) error {
	r.reverted = append(r.reverted, id)
	pp := r.purchases[id]
	pp.Status = models.PurchasePending
	r.purchases[id] = pp
	return nil
}

func (r *fakePackageRepo) GrantMembership(_ context.Context, email string, sub models.Subscription) error {
	if r.grantErr != nil {
		return r.grantErr
	}
	u, ok := r.users[email]
	if !ok {
		return ErrNotRegistered
	}
	u.IsMember = true
	u.Subscription = &sub
	r.users[email] = u
	r.granted[email] = sub
	return nil
}
