// Package seeders provides a registry of database seed functions.
//
// Define a seeder in any file in this package:
//
//	func init() {
//	    seeders.Register("users", SeedUsers)
//	}
//
// Then run via CLI: vyapar seed
package seeders

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/vyapar/app/services"
)

// SeederFunc is the signature for a seed function. Seeding goes through
// the service layer so hashing and uniqueness policy apply.
type SeederFunc func(ctx context.Context, svc *services.UserService) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
// Call this from init() in your seeder files.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// Run executes every registered seeder in registration order.
func Run(ctx context.Context, svc *services.UserService) error {
	mu.Lock()
	queued := append([]seederEntry(nil), entries...)
	mu.Unlock()

	for _, e := range queued {
		fmt.Printf("Seeding %s…\n", e.name)
		if err := e.fn(ctx, svc); err != nil {
			return fmt.Errorf("seeder %s: %w", e.name, err)
		}
	}
	return nil
}
