package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/shashiranjanraj/vyapar/app/models"
)

// MemoryUserRepository is an in-memory driver with the same contract as
// the MongoDB repository. It backs tests and local development without
// a running store.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.conflict(user, nil); err != nil {
		return models.User{}, err
	}
	if user.Orders == nil {
		user.Orders = []models.Order{}
	}
	r.users[user.UserID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) All(_ context.Context, fields []string) ([]map[string]interface{}, error) {
	if len(fields) == 0 {
		fields = DefaultListFields()
	}
	if err := ValidateProjection(fields); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		out = append(out, projectUser(r.users[id], fields))
	}
	return out, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, userID int) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return models.User{}, ErrNotFound
	}
	user = cloneUser(user)
	user.Password = ""
	return user, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, userID int, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[userID]
	if !ok {
		return models.User{}, ErrNotFound
	}
	if err := r.conflict(user, &userID); err != nil {
		return models.User{}, err
	}

	if user.Orders == nil {
		user.Orders = existing.Orders
	}
	user.CreatedAt = existing.CreatedAt

	delete(r.users, userID)
	r.users[user.UserID] = cloneUser(user)

	user = cloneUser(user)
	user.Password = ""
	return user, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return ErrNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *MemoryUserRepository) AppendOrder(_ context.Context, userID int, order models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.Orders = append(user.Orders, order)
	r.users[userID] = user
	return nil
}

func (r *MemoryUserRepository) Orders(_ context.Context, userID int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]models.Order{}, user.Orders...), nil
}

func (r *MemoryUserRepository) TotalPrice(_ context.Context, userID int) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok || len(user.Orders) == 0 {
		return 0, ErrNotFound
	}

	var total float64
	for _, o := range user.Orders {
		total += o.Price * float64(o.Quantity)
	}
	return total, nil
}

// conflict mirrors the MongoDB conflict check, naming the first
// colliding identity field. A non-nil excludeID skips the document the
// caller is about to replace.
func (r *MemoryUserRepository) conflict(user models.User, excludeID *int) error {
	for id, other := range r.users {
		if excludeID != nil && id == *excludeID {
			continue
		}
		switch {
		case other.UserID == user.UserID:
			return &ConflictError{Field: "userId"}
		case other.Username == user.Username:
			return &ConflictError{Field: "username"}
		case other.Email == user.Email:
			return &ConflictError{Field: "email"}
		}
	}
	return nil
}

func cloneUser(u models.User) models.User {
	u.Hobbies = append([]string(nil), u.Hobbies...)
	u.Orders = append([]models.Order{}, u.Orders...)
	return u
}
