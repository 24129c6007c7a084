package repos

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/services"
)

type cartKey struct{ user, product int64 }

// MemoryStore implements every storage contract in process. A single
// mutex serialises writers, which makes CreateOrder atomic and
// TransitionOrder a compare-and-swap.
type MemoryStore struct {
	mu          sync.RWMutex
	products    map[int64]domain.Product
	users       map[int64]domain.User
	cart        map[cartKey]domain.CartItem
	orders      map[string]domain.Order
	reviews     []domain.Review
	subscribers map[string]domain.Subscriber
	messages    []domain.ContactMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:    map[int64]domain.Product{},
		users:       map[int64]domain.User{},
		cart:        map[cartKey]domain.CartItem{},
		orders:      map[string]domain.Order{},
		subscribers: map[string]domain.Subscriber{},
	}
}

func (m *MemoryStore) Stores() services.Stores {
	return services.Stores{Products: m, Carts: m, Orders: m, Reviews: m, Funnel: m, Users: m}
}

func (m *MemoryStore) PutProduct(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.products[p.ID] = p
}

func (m *MemoryStore) PutUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// ---------- products ----------

func (m *MemoryStore) ProductByID(_ context.Context, id int64) (domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.NotFound("product %d", id)
	}
	return p, nil
}

func (m *MemoryStore) ProductBySlug(_ context.Context, slug string) (domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return domain.Product{}, domain.NotFound("product %q", slug)
}

func (m *MemoryStore) ListProducts(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Product{}
	for _, p := range m.products {
		if (f.Featured && !p.Featured) || (f.Bestseller && !p.Bestseller) || (f.New && !p.IsNew) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	start := min(max(f.Offset, 0), len(out))
	end := min(start+limit, len(out))
	return out[start:end], nil
}

func (m *MemoryStore) IncrementViews(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.NotFound("product %d", id)
	}
	p.ViewCount++
	m.products[id] = p
	return nil
}

func (m *MemoryStore) UpdatePrice(_ context.Context, id int64, price decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.NotFound("product %d", id)
	}
	p.Price = price
	m.products[id] = p
	return nil
}

// ---------- cart ----------

func (m *MemoryStore) AddCartItem(_ context.Context, userID, productID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[productID]; !ok {
		return domain.NotFound("product %d", productID)
	}
	now := time.Now().UTC()
	k := cartKey{userID, productID}
	it, ok := m.cart[k]
	if !ok {
		it = domain.CartItem{UserID: userID, ProductID: productID, CreatedAt: now}
	}
	it.Quantity += qty
	it.UpdatedAt = now
	m.cart[k] = it
	return nil
}

func (m *MemoryStore) SetCartQuantity(_ context.Context, userID, productID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cartKey{userID, productID}
	it, ok := m.cart[k]
	if !ok {
		return domain.NotFound("product %d is not in the cart", productID)
	}
	it.Quantity = qty
	it.UpdatedAt = time.Now().UTC()
	m.cart[k] = it
	return nil
}

func (m *MemoryStore) CartItems(_ context.Context, userID int64) ([]domain.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.CartItem{}
	for k, it := range m.cart {
		if k.user == userID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

func (m *MemoryStore) RemoveCartItem(_ context.Context, userID, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cart, cartKey{userID, productID})
	return nil
}

func (m *MemoryStore) ClearCart(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.cart {
		if k.user == userID {
			delete(m.cart, k)
		}
	}
	return nil
}

// ---------- orders ----------

func (m *MemoryStore) CreateOrder(_ context.Context, o domain.Order, decrementStock bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.orders[o.ID]; dup {
		return domain.Persistence("order.insert", domain.Conflict("order %s exists", o.ID))
	}
	// validate everything before mutating so a failure leaves no trace
	seen := map[int64]bool{}
	for _, it := range o.Items {
		p, ok := m.products[it.ProductID]
		if !ok {
			return domain.Persistence("order.insert_item", domain.NotFound("product %d", it.ProductID))
		}
		if seen[it.ProductID] {
			return domain.Persistence("order.insert_item", domain.Conflict("duplicate product %d", it.ProductID))
		}
		seen[it.ProductID] = true
		if decrementStock && p.Stock < it.Quantity {
			return domain.Validation("insufficient stock for product %d", it.ProductID)
		}
	}

	o.Items = append([]domain.OrderItem(nil), o.Items...)
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	m.orders[o.ID] = o
	for _, it := range o.Items {
		if decrementStock {
			p := m.products[it.ProductID]
			p.Stock -= it.Quantity
			m.products[it.ProductID] = p
		}
		delete(m.cart, cartKey{o.UserID, it.ProductID})
	}
	return nil
}

func (m *MemoryStore) Order(_ context.Context, id string) (domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.NotFound("order %s", id)
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o, nil
}

func (m *MemoryStore) OrdersByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			o.Items = nil
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) PendingOrders(_ context.Context) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Order{}
	for _, o := range m.orders {
		if o.Status == domain.StatusPending {
			o.Items = nil
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) TransitionOrder(_ context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = at
	m.orders[id] = o
	return true, nil
}

func (m *MemoryStore) SetPaymentIntent(_ context.Context, id, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.NotFound("order %s", id)
	}
	o.PaymentIntentID = intentID
	o.UpdatedAt = time.Now().UTC()
	m.orders[id] = o
	return nil
}

// ---------- reviews, funnel, users ----------

func (m *MemoryStore) CreateReview(_ context.Context, r domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[r.ProductID]; !ok {
		return domain.NotFound("product %d", r.ProductID)
	}
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *MemoryStore) ReviewsByProduct(_ context.Context, productID int64) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Review{}
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateSubscriber(_ context.Context, s domain.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(s.Email)
	if _, ok := m.subscribers[key]; ok {
		return domain.Conflict("%s is already subscribed", s.Email)
	}
	m.subscribers[key] = s
	return nil
}

func (m *MemoryStore) CreateContactMessage(_ context.Context, msg domain.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *MemoryStore) UserByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.NotFound("user %d", id)
	}
	return &u, nil
}
