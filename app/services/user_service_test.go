package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/app/services"
)

func newService() *services.UserService {
	// nil cache store: every cache call must be a safe no-op.
	return services.NewUserService(repositories.NewMemoryUserRepository(), nil)
}

func sampleUser(id int) models.User {
	return models.User{
		UserID:   id,
		Username: "user" + string(rune('a'+id)),
		Password: "secret123",
		FullName: models.FullName{FirstName: "Jane", LastName: "Doe"},
		Age:      30,
		Email:    "user" + string(rune('a'+id)) + "@example.com",
		IsActive: true,
		Hobbies:  []string{"reading"},
		Address:  models.Address{Street: "1 Main St", City: "Springfield", Country: "US"},
	}
}

func TestSignUpThenFetchRoundTrip(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	in := sampleUser(1)
	created, err := svc.SignUp(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, created.Password, "password must never be returned")

	got, err := svc.UserByID(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, in.UserID, got.UserID)
	assert.Equal(t, in.Username, got.Username)
	assert.Equal(t, in.FullName, got.FullName)
	assert.Equal(t, in.Age, got.Age)
	assert.Equal(t, in.Email, got.Email)
	assert.Equal(t, in.Hobbies, got.Hobbies)
	assert.Equal(t, in.Address, got.Address)
	assert.Empty(t, got.Password, "password must never be returned")
}

func TestSignUpDuplicateIdentityFields(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.User)
		field  string
	}{
		{"userId", func(u *models.User) { u.Username = "other"; u.Email = "other@example.com" }, "userId"},
		{"username", func(u *models.User) { u.UserID = 99; u.Email = "other@example.com" }, "username"},
		{"email", func(u *models.User) { u.UserID = 99; u.Username = "other" }, "email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService()
			_, err := svc.SignUp(ctx, sampleUser(1))
			require.NoError(t, err)

			dup := sampleUser(1)
			tc.mutate(&dup)

			_, err = svc.SignUp(ctx, dup)
			var conflict *repositories.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tc.field, conflict.Field)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, sampleUser(1))
	require.NoError(t, err)

	in := sampleUser(1)
	in.Age = 31
	in.Address.City = "Shelbyville"
	updated, err := svc.UpdateUser(ctx, 1, in)
	require.NoError(t, err)
	assert.Equal(t, 31, updated.Age)
	assert.Equal(t, "Shelbyville", updated.Address.City)
	assert.Empty(t, updated.Password)
}

// Ids at the edge of the int domain are ordinary values: updating a
// user without re-keying it must never conflict with itself.
func TestUpdateKeepsOwnIdentity(t *testing.T) {
	ctx := context.Background()

	for _, id := range []int{-1, 0, 1} {
		svc := newService()
		_, err := svc.SignUp(ctx, sampleUser(id))
		require.NoError(t, err)

		in := sampleUser(id)
		in.Age = 40
		updated, err := svc.UpdateUser(ctx, id, in)
		require.NoError(t, err, "userId %d conflicted with itself", id)
		assert.Equal(t, 40, updated.Age)
	}
}

func TestUpdateMissingUser(t *testing.T) {
	svc := newService()
	_, err := svc.UpdateUser(context.Background(), 42, sampleUser(42))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUpdateConflictsWithOtherUser(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, sampleUser(1))
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, sampleUser(2))
	require.NoError(t, err)

	in := sampleUser(2)
	in.Username = sampleUser(1).Username // collide with user 1
	_, err = svc.UpdateUser(ctx, 2, in)

	var conflict *repositories.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)
}

func TestDeleteUser(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, sampleUser(1))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, 1))

	_, err = svc.UserByID(ctx, 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteUser(ctx, 1), repositories.ErrNotFound)
}

func TestAppendOrderPreservesInsertionOrder(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, sampleUser(1))
	require.NoError(t, err)

	a := models.Order{ProductName: "A", Price: 10, Quantity: 2}
	b := models.Order{ProductName: "B", Price: 3.333, Quantity: 1}
	require.NoError(t, svc.AppendOrder(ctx, 1, a))
	require.NoError(t, svc.AppendOrder(ctx, 1, b))

	orders, err := svc.Orders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, a, orders[0])
	assert.Equal(t, b, orders[1])
}

func TestAppendOrderMissingUser(t *testing.T) {
	svc := newService()
	err := svc.AppendOrder(context.Background(), 42, models.Order{ProductName: "A", Price: 1, Quantity: 1})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

// Rounding policy: half-up to 2 decimals.
// 10*2 + 3.333*1 = 23.333 → 23.33
func TestTotalPriceRoundsHalfUp(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, sampleUser(1))
	require.NoError(t, err)

	require.NoError(t, svc.AppendOrder(ctx, 1, models.Order{ProductName: "A", Price: 10, Quantity: 2}))
	require.NoError(t, svc.AppendOrder(ctx, 1, models.Order{ProductName: "B", Price: 3.333, Quantity: 1}))

	total, err := svc.TotalPrice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 23.33, total)
}

func TestTotalPriceHalfCent(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, sampleUser(1))
	require.NoError(t, err)

	// 2.345 rounds up, not to even.
	require.NoError(t, svc.AppendOrder(ctx, 1, models.Order{ProductName: "A", Price: 2.345, Quantity: 1}))

	total, err := svc.TotalPrice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.35, total)
}

func TestTotalPriceNoOrders(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, sampleUser(1))
	require.NoError(t, err)

	_, err = svc.TotalPrice(ctx, 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = svc.TotalPrice(ctx, 42)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAllUsersProjection(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, sampleUser(1))
	require.NoError(t, err)

	users, err := svc.AllUsers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NotContains(t, users[0], "password", "password is never selectable")
	assert.NotContains(t, users[0], "userId", "outside the default subset")
	assert.Equal(t, sampleUser(1).Username, users[0]["username"])

	users, err = svc.AllUsers(ctx, []string{"username", "age"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Len(t, users[0], 2, "entry carries exactly the selected keys")
	assert.NotContains(t, users[0], "email", "unselected field must be absent")

	_, err = svc.AllUsers(ctx, []string{"password"})
	var invalid *repositories.InvalidFieldError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "password", invalid.Field)
}

func TestUserByIDMissing(t *testing.T) {
	svc := newService()
	_, err := svc.UserByID(context.Background(), 42)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}
