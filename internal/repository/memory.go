package repository

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tool-market/internal/models"
)

// memCollection keeps documents in insertion order.
type memCollection[T any] struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]T
}

func newMemCollection[T any]() *memCollection[T] {
	return &memCollection[T]{docs: make(map[primitive.ObjectID]T)}
}

func (c *memCollection[T]) put(id primitive.ObjectID, doc T) {
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = doc
}

func (c *memCollection[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		if doc := c.docs[id]; keep == nil || keep(doc) {
			out = append(out, doc)
		}
	}
	return out
}

func (c *memCollection[T]) remove(match func(T) bool) int64 {
	var deleted int64
	kept := c.order[:0]
	for _, id := range c.order {
		if match(c.docs[id]) {
			delete(c.docs, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
	return deleted
}

type MemoryToolRepository struct {
	tools *memCollection[models.Tool]
}

func NewMemoryToolRepository() *MemoryToolRepository {
	return &MemoryToolRepository{tools: newMemCollection[models.Tool]()}
}

func (r *MemoryToolRepository) List(_ context.Context) ([]models.Tool, error) {
	r.tools.mu.RLock()
	defer r.tools.mu.RUnlock()
	return r.tools.filter(nil), nil
}

func (r *MemoryToolRepository) FindByID(_ context.Context, id string) (*models.Tool, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.tools.mu.RLock()
	defer r.tools.mu.RUnlock()
	tool, ok := r.tools.docs[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return &tool, nil
}

func (r *MemoryToolRepository) Insert(_ context.Context, tool *models.Tool) (*models.InsertResult, error) {
	r.tools.mu.Lock()
	defer r.tools.mu.Unlock()
	tool.ID = primitive.NewObjectID()
	r.tools.put(tool.ID, *tool)
	return &models.InsertResult{Acknowledged: true, InsertedID: tool.ID.Hex()}, nil
}

// Upsert overwrites only the non-zero fields of tool, matching a $set of an omitempty document.
func (r *MemoryToolRepository) Upsert(_ context.Context, id string, tool *models.Tool) (*models.WriteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.tools.mu.Lock()
	defer r.tools.mu.Unlock()

	existing, found := r.tools.docs[oid]
	merged := mergeTool(existing, *tool)
	merged.ID = oid
	r.tools.put(oid, merged)

	res := &models.WriteResult{Acknowledged: true}
	if found {
		res.MatchedCount = 1
		if merged != existing {
			res.ModifiedCount = 1
		}
		return res, nil
	}
	hex := oid.Hex()
	res.UpsertedCount = 1
	res.UpsertedID = &hex
	return res, nil
}

func mergeTool(dst, src models.Tool) models.Tool {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Image != "" {
		dst.Image = src.Image
	}
	if src.Price != 0 {
		dst.Price = src.Price
	}
	if src.Quantity != 0 {
		dst.Quantity = src.Quantity
	}
	if src.MinimumOrder != 0 {
		dst.MinimumOrder = src.MinimumOrder
	}
	if src.Supplier != "" {
		dst.Supplier = src.Supplier
	}
	return dst
}

type MemoryOrderRepository struct {
	orders *memCollection[models.Order]
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: newMemCollection[models.Order]()}
}

func (r *MemoryOrderRepository) Insert(_ context.Context, order *models.Order) (*models.InsertResult, error) {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	order.ID = primitive.NewObjectID()
	r.orders.put(order.ID, cloneOrder(*order))
	return &models.InsertResult{Acknowledged: true, InsertedID: order.ID.Hex()}, nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.orders.mu.RLock()
	defer r.orders.mu.RUnlock()
	order, ok := r.orders.docs[oid]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneOrder(order)
	return &out, nil
}

func (r *MemoryOrderRepository) ListByEmail(_ context.Context, email string) ([]models.Order, error) {
	r.orders.mu.RLock()
	defer r.orders.mu.RUnlock()
	return cloneOrders(r.orders.filter(func(o models.Order) bool { return o.Email == email })), nil
}

func (r *MemoryOrderRepository) List(_ context.Context) ([]models.Order, error) {
	r.orders.mu.RLock()
	defer r.orders.mu.RUnlock()
	return cloneOrders(r.orders.filter(nil)), nil
}

func (r *MemoryOrderRepository) MarkPaid(_ context.Context, id, transactionID string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()

	order, ok := r.orders.docs[oid]
	if !ok || order.Paid {
		return nil, ErrNotFound
	}
	tx := transactionID
	order.Paid = true
	order.TransactionID = &tx
	r.orders.put(oid, order)

	out := cloneOrder(order)
	return &out, nil
}

func (r *MemoryOrderRepository) DeleteByEmail(_ context.Context, email string) (*models.DeleteResult, error) {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	deleted := r.orders.remove(func(o models.Order) bool { return o.Email == email })
	return &models.DeleteResult{Acknowledged: true, DeletedCount: deleted}, nil
}

func cloneOrder(o models.Order) models.Order {
	if o.TransactionID != nil {
		tx := *o.TransactionID
		o.TransactionID = &tx
	}
	return o
}

func cloneOrders(in []models.Order) []models.Order {
	for i := range in {
		in[i] = cloneOrder(in[i])
	}
	return in
}

type MemoryReviewRepository struct {
	reviews *memCollection[models.Review]
}

func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{reviews: newMemCollection[models.Review]()}
}

func (r *MemoryReviewRepository) Insert(_ context.Context, review *models.Review) (*models.InsertResult, error) {
	r.reviews.mu.Lock()
	defer r.reviews.mu.Unlock()
	review.ID = primitive.NewObjectID()
	r.reviews.put(review.ID, *review)
	return &models.InsertResult{Acknowledged: true, InsertedID: review.ID.Hex()}, nil
}

func (r *MemoryReviewRepository) List(_ context.Context) ([]models.Review, error) {
	r.reviews.mu.RLock()
	defer r.reviews.mu.RUnlock()
	return r.reviews.filter(nil), nil
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users *memCollection[models.User]
	byKey map[string]primitive.ObjectID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: newMemCollection[models.User](),
		byKey: make(map[string]primitive.ObjectID),
	}
}

func (r *MemoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users.filter(nil), nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	oid, ok := r.byKey[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.users.docs[oid]
	return &user, nil
}

func (r *MemoryUserRepository) UpsertByEmail(_ context.Context, email string, profile *models.UserProfile) (*models.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	oid, found := r.byKey[email]
	existing := models.User{Email: email}
	if found {
		existing = r.users.docs[oid]
	} else {
		oid = primitive.NewObjectID()
		existing.ID = oid
		r.byKey[email] = oid
	}

	updated := existing
	if profile != nil {
		applyProfile(&updated, *profile)
	}
	r.users.put(oid, updated)

	res := &models.WriteResult{Acknowledged: true}
	if found {
		res.MatchedCount = 1
		if updated != existing {
			res.ModifiedCount = 1
		}
		return res, nil
	}
	hex := oid.Hex()
	res.UpsertedCount = 1
	res.UpsertedID = &hex
	return res, nil
}

func (r *MemoryUserRepository) SetRole(_ context.Context, email string, role models.Role) (*models.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := &models.WriteResult{Acknowledged: true}
	oid, ok := r.byKey[email]
	if !ok {
		return res, nil
	}
	user := r.users.docs[oid]
	res.MatchedCount = 1
	if user.Role != role.String() {
		user.Role = role.String()
		r.users.put(oid, user)
		res.ModifiedCount = 1
	}
	return res, nil
}

func applyProfile(u *models.User, p models.UserProfile) {
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Location != "" {
		u.Location = p.Location
	}
	if p.Phone != "" {
		u.Phone = p.Phone
	}
	if p.Education != "" {
		u.Education = p.Education
	}
	if p.LinkedIn != "" {
		u.LinkedIn = p.LinkedIn
	}
}
