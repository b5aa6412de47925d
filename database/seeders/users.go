package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/app/services"
)

func init() {
	Register("users", SeedUsers)
}

// SeedUsers inserts a couple of demo users. Re-running is harmless:
// duplicates are skipped.
func SeedUsers(ctx context.Context, svc *services.UserService) error {
	demo := []models.User{
		{
			UserID:   1,
			Username: "asha",
			Password: "asha1234",
			FullName: models.FullName{FirstName: "Asha", LastName: "Verma"},
			Age:      29,
			Email:    "asha@example.com",
			IsActive: true,
			Hobbies:  []string{"reading", "chess"},
			Address:  models.Address{Street: "12 MG Road", City: "Pune", Country: "India"},
			Orders: []models.Order{
				{ProductName: "Notebook", Price: 3.5, Quantity: 4},
			},
		},
		{
			UserID:   2,
			Username: "ravi",
			Password: "ravi5678",
			FullName: models.FullName{FirstName: "Ravi", LastName: "Iyer"},
			Age:      34,
			Email:    "ravi@example.com",
			IsActive: true,
			Hobbies:  []string{"cricket"},
			Address:  models.Address{Street: "4 Residency Rd", City: "Bengaluru", Country: "India"},
		},
	}

	for _, u := range demo {
		if _, err := svc.SignUp(ctx, u); err != nil {
			var conflict *repositories.ConflictError
			if errors.As(err, &conflict) {
				continue // already seeded
			}
			return err
		}
	}
	return nil
}
