package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vyapar/app/controllers"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/app/routes"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/router"
)

func newAPI() http.Handler {
	repo := repositories.NewMemoryUserRepository()
	svc := services.NewUserService(repo, nil)
	r := router.New()
	routes.RegisterAPI(r, controllers.NewUserController(svc))
	return r.Handler()
}

const validUserJSON = `{
	"userId": 1,
	"username": "asha",
	"password": "asha1234",
	"fullName": {"firstName": "Asha", "lastName": "Verma"},
	"age": 29,
	"email": "asha@example.com",
	"isActive": true,
	"hobbies": ["reading"],
	"address": {"street": "12 MG Road", "city": "Pune", "country": "India"},
	"orders": []
}`

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "body: %s", rec.Body.String())
	return rec, envelope
}

func TestSignUpCreatesUser(t *testing.T) {
	api := newAPI()

	rec, env := do(t, api, http.MethodPost, "/api/users", validUserJSON)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "User created successfully!", env["message"])

	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["userId"])
	_, hasPassword := data["password"]
	assert.False(t, hasPassword, "password must not appear in the response")
}

func TestSignUpValidationCollectsFieldErrors(t *testing.T) {
	api := newAPI()

	rec, env := do(t, api, http.MethodPost, "/api/users", `{"userId": 1, "email": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, env["success"])

	errBody := env["error"].(map[string]interface{})
	assert.Equal(t, float64(400), errBody["code"])

	fields := errBody["fields"].(map[string]interface{})
	for _, f := range []string{"username", "password", "email", "fullName.firstName", "address.street"} {
		assert.Contains(t, fields, f)
	}
}

func TestSignUpMalformedJSON(t *testing.T) {
	api := newAPI()

	rec, env := do(t, api, http.MethodPost, "/api/users", `{"userId": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, env["success"])
}

func TestSignUpDuplicate(t *testing.T) {
	api := newAPI()

	rec, _ := do(t, api, http.MethodPost, "/api/users", validUserJSON)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, api, http.MethodPost, "/api/users", validUserJSON)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["message"], "duplicate")
}

func TestGetAllUsersDefaultProjection(t *testing.T) {
	api := newAPI()
	do(t, api, http.MethodPost, "/api/users", validUserJSON)

	rec, env := do(t, api, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	data := env["data"].([]interface{})
	require.Len(t, data, 1)
	user := data[0].(map[string]interface{})
	assert.Equal(t, "asha", user["username"])
	assert.Equal(t, float64(29), user["age"])
	for _, key := range []string{"password", "userId", "isActive", "hobbies", "orders", "createdAt"} {
		assert.NotContains(t, user, key, "unselected field must be absent from the wire")
	}
}

func TestGetAllUsersFieldSubset(t *testing.T) {
	api := newAPI()
	do(t, api, http.MethodPost, "/api/users", validUserJSON)

	rec, env := do(t, api, http.MethodGet, "/api/users?fields=username", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	data := env["data"].([]interface{})
	require.Len(t, data, 1)
	user := data[0].(map[string]interface{})
	require.Len(t, user, 1, "only the selected key appears")
	assert.Equal(t, "asha", user["username"])
}

func TestGetAllUsersInvalidField(t *testing.T) {
	api := newAPI()
	do(t, api, http.MethodPost, "/api/users", validUserJSON)

	rec, env := do(t, api, http.MethodGet, "/api/users?fields=invalidField", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["message"], "invalidField")

	rec, _ = do(t, api, http.MethodGet, "/api/users?fields=password", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserByID(t *testing.T) {
	api := newAPI()
	do(t, api, http.MethodPost, "/api/users", validUserJSON)

	rec, env := do(t, api, http.MethodGet, "/api/users/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "asha", data["username"])

	rec, env = do(t, api, http.MethodGet, "/api/users/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", env["message"])
	errBody := env["error"].(map[string]interface{})
	assert.Equal(t, float64(404), errBody["code"])
}

func TestGetUserByIDNonInteger(t *testing.T) {
	api := newAPI()

	rec, env := do(t, api, http.MethodGet, "/api/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, env["success"])
}

func TestUpdateUser(t *testing.T) {
	api := newAPI()
	do(t, api, http.MethodPost, "/api/users", validUserJSON)

	updated := strings.Replace(validUserJSON, `"age": 29`, `"age": 30`, 1)
	rec, env := do(t, api, http.MethodPut, "/api/users/1", updated)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(30), data["age"])

	rec, _ = do(t, api, http.MethodPut, "/api/users/999", validUserJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	api := newAPI()
	do(t, api, http.MethodPost, "/api/users", validUserJSON)

	rec, env := do(t, api, http.MethodDelete, "/api/users/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted successfully!", env["message"])
	data, ok := env["data"]
	require.True(t, ok, "envelope carries an explicit null data key")
	assert.Nil(t, data)

	rec, _ = do(t, api, http.MethodDelete, "/api/users/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, api, http.MethodGet, "/api/users/1/orders", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "embedded orders go with the user")
}

func TestOrdersLifecycle(t *testing.T) {
	api := newAPI()
	do(t, api, http.MethodPost, "/api/users", validUserJSON)

	rec, env := do(t, api, http.MethodPut, "/api/users/1/orders",
		`{"productName": "A", "price": 10, "quantity": 2}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Order created successfully!", env["message"])

	rec, _ = do(t, api, http.MethodPut, "/api/users/1/orders",
		`{"productName": "B", "price": 3.333, "quantity": 1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = do(t, api, http.MethodGet, "/api/users/1/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	orders := env["data"].(map[string]interface{})["orders"].([]interface{})
	require.Len(t, orders, 2)
	assert.Equal(t, "A", orders[0].(map[string]interface{})["productName"])
	assert.Equal(t, "B", orders[1].(map[string]interface{})["productName"])

	rec, env = do(t, api, http.MethodGet, "/api/users/1/orders/total-price", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	total := env["data"].(map[string]interface{})["totalPrice"]
	assert.Equal(t, 23.33, total)
}

func TestOrderValidation(t *testing.T) {
	api := newAPI()
	do(t, api, http.MethodPost, "/api/users", validUserJSON)

	rec, env := do(t, api, http.MethodPut, "/api/users/1/orders",
		`{"productName": "A", "price": -1, "quantity": 2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields := env["error"].(map[string]interface{})["fields"].(map[string]interface{})
	assert.Contains(t, fields, "price")
}

// Zero is a legal price and quantity: a free sample with quantity 0 is
// a well-formed order.
func TestOrderAcceptsZeroValues(t *testing.T) {
	api := newAPI()
	do(t, api, http.MethodPost, "/api/users", validUserJSON)

	rec, env := do(t, api, http.MethodPut, "/api/users/1/orders",
		`{"productName": "sample", "price": 0, "quantity": 0}`)
	assert.Equal(t, http.StatusCreated, rec.Code, "body: %v", env)
	assert.Equal(t, true, env["success"])
}

func TestSignUpAcceptsZeroAge(t *testing.T) {
	api := newAPI()

	body := strings.Replace(validUserJSON, `"age": 29`, `"age": 0`, 1)
	rec, env := do(t, api, http.MethodPost, "/api/users", body)
	assert.Equal(t, http.StatusCreated, rec.Code, "body: %v", env)

	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["age"])
}

func TestTotalPriceWithoutOrders(t *testing.T) {
	api := newAPI()
	do(t, api, http.MethodPost, "/api/users", validUserJSON)

	rec, _ := do(t, api, http.MethodGet, "/api/users/1/orders/total-price", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnmatchedRouteFallback(t *testing.T) {
	api := newAPI()

	rec, env := do(t, api, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, env["status"])
	assert.Equal(t, "Can't find /api/nope on this server!", env["message"])
}
