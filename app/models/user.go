package models

import "time"

// User is the primary user document. userId, username and email are
// each unique across the collection (enforced by the indexes created in
// repositories.EnsureIndexes). Password holds a bcrypt hash and is
// stripped before any response is written.
type User struct {
	UserID    int       `bson:"userId" json:"userId"`
	Username  string    `bson:"username" json:"username" validate:"required,min=3,max=30"`
	Password  string    `bson:"password,omitempty" json:"password,omitempty" validate:"required,alpha_num,min=3,max=30"`
	FullName  FullName  `bson:"fullName" json:"fullName" validate:"required"`
	Age       int       `bson:"age" json:"age" validate:"gte=0"`
	Email     string    `bson:"email" json:"email" validate:"required,email"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	Hobbies   []string  `bson:"hobbies" json:"hobbies" validate:"required"`
	Address   Address   `bson:"address" json:"address" validate:"required"`
	Orders    []Order   `bson:"orders" json:"orders,omitempty"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// FullName splits the display name the way the API exposes it.
type FullName struct {
	FirstName string `bson:"firstName" json:"firstName" validate:"required"`
	LastName  string `bson:"lastName" json:"lastName" validate:"required"`
}

// Address is the user's postal address.
type Address struct {
	Street  string `bson:"street" json:"street" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	Country string `bson:"country" json:"country" validate:"required"`
}

// Order is a purchase line item embedded in its owning User document.
// Orders are append-only: they have no identity outside the user and
// are removed together with it.
type Order struct {
	ProductName string  `bson:"productName" json:"productName" validate:"required"`
	Price       float64 `bson:"price" json:"price" validate:"gte=0"`
	Quantity    int     `bson:"quantity" json:"quantity" validate:"gte=0"`
}

// Sanitize clears fields that must never leave the server.
func (u *User) Sanitize() {
	u.Password = ""
}
