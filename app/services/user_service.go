// Package services holds the user-and-orders business policy: password
// hashing, uniqueness delegation, cache handling, price aggregation
// rounding and domain events. Handlers validate; repositories persist;
// everything in between lives here.
package services

import (
	"context"
	"fmt"
	"math"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/pkg/cache"
	"github.com/shashiranjanraj/vyapar/pkg/event"
	"github.com/shashiranjanraj/vyapar/pkg/metrics"
	"github.com/shashiranjanraj/vyapar/pkg/password"
)

// Repository is the persistence surface the service depends on. The
// MongoDB implementation lives in app/repositories; tests substitute an
// in-memory fake.
type Repository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	All(ctx context.Context, fields []string) ([]map[string]interface{}, error)
	FindByID(ctx context.Context, userID int) (models.User, error)
	Update(ctx context.Context, userID int, user models.User) (models.User, error)
	Delete(ctx context.Context, userID int) error
	AppendOrder(ctx context.Context, userID int, order models.Order) error
	Orders(ctx context.Context, userID int) ([]models.Order, error)
	TotalPrice(ctx context.Context, userID int) (float64, error)
}

// Domain events fired by the service.
const (
	EventUserCreated = "user.created"
	EventUserDeleted = "user.deleted"
)

// UserService orchestrates user operations over a Repository and an
// optional read cache (nil disables caching).
type UserService struct {
	repo  Repository
	cache *cache.Store
}

func NewUserService(repo Repository, store *cache.Store) *UserService {
	return &UserService{repo: repo, cache: store}
}

// SignUp hashes the password and stores the new user. The returned
// record never carries the hash.
func (s *UserService) SignUp(ctx context.Context, user models.User) (models.User, error) {
	hashed, err := password.Hash(user.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hashed

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return models.User{}, err
	}

	created.Sanitize()
	metrics.UsersCreated.Inc()
	event.Fire(EventUserCreated, created)

	s.cache.Set(ctx, userKey(created.UserID), created)
	return created, nil
}

// AllUsers lists users projected to the requested field subset (empty
// means the default subset). Entries carry only the selected keys.
func (s *UserService) AllUsers(ctx context.Context, fields []string) ([]map[string]interface{}, error) {
	return s.repo.All(ctx, fields)
}

// UserByID returns one user, serving repeat reads from the cache.
func (s *UserService) UserByID(ctx context.Context, userID int) (models.User, error) {
	var cached models.User
	if s.cache.Get(ctx, userKey(userID), &cached) {
		return cached, nil
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	user.Sanitize()
	s.cache.Set(ctx, userKey(userID), user)
	return user, nil
}

// UpdateUser replaces the user's mutable fields, re-hashing the
// password. Uniqueness of re-keyed identity fields is enforced by the
// repository.
func (s *UserService) UpdateUser(ctx context.Context, userID int, user models.User) (models.User, error) {
	hashed, err := password.Hash(user.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hashed

	updated, err := s.repo.Update(ctx, userID, user)
	if err != nil {
		return models.User{}, err
	}

	updated.Sanitize()
	// Invalidate both keys: the path id and the (possibly new) document id.
	s.cache.Forget(ctx, userKey(userID), userKey(updated.UserID))
	return updated, nil
}

// DeleteUser removes the user and its embedded orders.
func (s *UserService) DeleteUser(ctx context.Context, userID int) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.cache.Forget(ctx, userKey(userID))
	event.Fire(EventUserDeleted, userID)
	return nil
}

// AppendOrder appends one order to the user's list.
func (s *UserService) AppendOrder(ctx context.Context, userID int, order models.Order) error {
	if err := s.repo.AppendOrder(ctx, userID, order); err != nil {
		return err
	}
	s.cache.Forget(ctx, userKey(userID))
	metrics.OrdersAppended.Inc()
	return nil
}

// Orders returns the user's orders in insertion order.
func (s *UserService) Orders(ctx context.Context, userID int) ([]models.Order, error) {
	return s.repo.Orders(ctx, userID)
}

// TotalPrice aggregates sum(price*quantity) across the user's orders,
// rounded half-up to 2 decimals.
func (s *UserService) TotalPrice(ctx context.Context, userID int) (float64, error) {
	total, err := s.repo.TotalPrice(ctx, userID)
	if err != nil {
		return 0, err
	}
	return round2(total), nil
}

// round2 rounds half-up to 2 decimal places. Totals are non-negative,
// so math.Round's half-away-from-zero is exactly half-up here.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func userKey(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}
