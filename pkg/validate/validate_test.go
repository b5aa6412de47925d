package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/vyapar/pkg/validate"
)

type address struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city" validate:"required"`
}

type lineItem struct {
	ProductName string  `json:"productName" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
}

type signupInput struct {
	Username string     `json:"username" validate:"required,min=3,max=30"`
	Password string     `json:"password" validate:"required,alpha_num,min=3,max=30"`
	Email    string     `json:"email"    validate:"required,email"`
	Age      int        `json:"age"      validate:"gte=0"`
	Address  address    `json:"address"  validate:"required"`
	Hobbies  []string   `json:"hobbies"  validate:"required"`
	Website  string     `json:"website"  validate:"nullable,min=4"`
	Orders   []lineItem `json:"orders"`
}

func validInput() signupInput {
	return signupInput{
		Username: "john_doe",
		Password: "secret123",
		Email:    "john@example.com",
		Age:      25,
		Address:  address{Street: "1 Main St", City: "Springfield"},
		Hobbies:  []string{"chess"},
		Orders:   []lineItem{{ProductName: "Pen", Price: 1.5, Quantity: 2}},
	}
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(validInput())
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestCollectsAllViolations(t *testing.T) {
	errs := validate.Struct(signupInput{})
	if !validate.HasErrors(errs) {
		t.Fatal("expected violations for empty input")
	}
	for _, field := range []string{"username", "password", "email", "hobbies"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected a violation for %s, got: %v", field, errs)
		}
	}
}

// Zero is inside the domain of every bounded numeric field, so gte=0
// without required must accept it.
func TestZeroValuedNumbersPass(t *testing.T) {
	in := validInput()
	in.Age = 0
	in.Orders = []lineItem{{ProductName: "sample", Price: 0, Quantity: 0}}

	errs := validate.Struct(in)
	for _, field := range []string{"age", "orders[0].price", "orders[0].quantity"} {
		if msg, ok := errs[field]; ok {
			t.Errorf("zero-valued %s should pass, got: %s", field, msg)
		}
	}

	in.Orders = []lineItem{{ProductName: "sample", Price: -0.01, Quantity: -1}}
	errs = validate.Struct(in)
	if errs["orders[0].price"] == "" || errs["orders[0].quantity"] == "" {
		t.Errorf("negative values must still fail, got: %v", errs)
	}
}

func TestNestedFieldPaths(t *testing.T) {
	in := validInput()
	in.Address.City = ""
	errs := validate.Struct(in)
	if _, ok := errs["address.city"]; !ok {
		t.Errorf("expected violation keyed by address.city, got: %v", errs)
	}
}

func TestSliceDivePaths(t *testing.T) {
	in := validInput()
	in.Orders = append(in.Orders, lineItem{ProductName: "Ink", Price: -2, Quantity: 1})
	errs := validate.Struct(in)
	if _, ok := errs["orders[1].price"]; !ok {
		t.Errorf("expected violation keyed by orders[1].price, got: %v", errs)
	}
	if _, ok := errs["orders[0].price"]; ok {
		t.Errorf("valid order should not be flagged: %v", errs)
	}
}

func TestPasswordAlphaNum(t *testing.T) {
	in := validInput()
	in.Password = "sec ret!"
	errs := validate.Struct(in)
	if _, ok := errs["password"]; !ok {
		t.Errorf("expected alpha_num violation for password, got: %v", errs)
	}
}

func TestUsernameLength(t *testing.T) {
	in := validInput()
	in.Username = "ab"
	if errs := validate.Struct(in); errs["username"] == "" {
		t.Error("expected min length violation for username")
	}

	in.Username = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" // 35 chars
	if errs := validate.Struct(in); errs["username"] == "" {
		t.Error("expected max length violation for username")
	}
}

func TestEmailRule(t *testing.T) {
	in := validInput()
	in.Email = "not-an-email"
	if errs := validate.Struct(in); errs["email"] == "" {
		t.Error("expected email violation")
	}
}

func TestNullableSkipsRules(t *testing.T) {
	in := validInput()
	in.Website = ""
	if errs := validate.Struct(in); errs["website"] != "" {
		t.Errorf("nullable empty field should pass, got: %v", errs)
	}

	in.Website = "abc"
	if errs := validate.Struct(in); errs["website"] == "" {
		t.Error("nullable non-empty field should still run rules")
	}
}
