// Package controllers exposes the REST surface. Each handler validates
// the request shape, calls the matching service operation, and maps the
// outcome onto the response envelope.
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/bind"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
	"github.com/shashiranjanraj/vyapar/pkg/response"
	"github.com/shashiranjanraj/vyapar/pkg/router"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

// SignUp handles POST /api/users.
func (c *UserController) SignUp(w http.ResponseWriter, r *http.Request) {
	var user models.User
	errs, err := bind.JSON(r, &user)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.ValidationFail(w, errs)
		return
	}

	created, err := c.service.SignUp(r.Context(), user)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.Created(w, "User created successfully!", created)
}

// GetAllUsers handles GET /api/users?fields=a,b.
func (c *UserController) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	var fields []string
	if raw := r.URL.Query().Get("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}

	users, err := c.service.AllUsers(r.Context(), fields)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.Success(w, "Users fetched successfully!", users)
}

// GetUserByID handles GET /api/users/{userId}.
func (c *UserController) GetUserByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(w, r)
	if !ok {
		return
	}

	user, err := c.service.UserByID(r.Context(), userID)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.Success(w, "User fetched successfully!", user)
}

// UpdateUser handles PUT /api/users/{userId}.
func (c *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(w, r)
	if !ok {
		return
	}

	var user models.User
	errs, err := bind.JSON(r, &user)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.ValidationFail(w, errs)
		return
	}

	updated, err := c.service.UpdateUser(r.Context(), userID, user)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.Success(w, "User updated successfully!", updated)
}

// DeleteUser handles DELETE /api/users/{userId}.
func (c *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(w, r)
	if !ok {
		return
	}

	if err := c.service.DeleteUser(r.Context(), userID); err != nil {
		c.fail(w, r, err)
		return
	}

	response.Success(w, "User deleted successfully!", nil)
}

// AddOrder handles PUT /api/users/{userId}/orders.
func (c *UserController) AddOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(w, r)
	if !ok {
		return
	}

	var order models.Order
	errs, err := bind.JSON(r, &order)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.ValidationFail(w, errs)
		return
	}

	if err := c.service.AppendOrder(r.Context(), userID, order); err != nil {
		c.fail(w, r, err)
		return
	}

	response.Created(w, "Order created successfully!", nil)
}

// GetOrders handles GET /api/users/{userId}/orders.
func (c *UserController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(w, r)
	if !ok {
		return
	}

	orders, err := c.service.Orders(r.Context(), userID)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.Success(w, "Order fetched successfully!", map[string]interface{}{"orders": orders})
}

// GetTotalPrice handles GET /api/users/{userId}/orders/total-price.
func (c *UserController) GetTotalPrice(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(w, r)
	if !ok {
		return
	}

	total, err := c.service.TotalPrice(r.Context(), userID)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.Success(w, "Total price calculated successfully!", map[string]interface{}{"totalPrice": total})
}

// userID parses the {userId} path parameter, writing a 400 envelope for
// anything that isn't an integer.
func (c *UserController) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := router.Param(r, "userId")
	id, err := strconv.Atoi(raw)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "userId must be an integer")
		return 0, false
	}
	return id, true
}

// fail translates a service error into the envelope. Nothing propagates
// past this boundary.
func (c *UserController) fail(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *repositories.ConflictError
	var invalid *repositories.InvalidFieldError

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.Fail(w, http.StatusNotFound, "User not found")
	case errors.As(err, &conflict):
		response.Fail(w, http.StatusBadRequest, conflict.Error())
	case errors.As(err, &invalid):
		response.Fail(w, http.StatusBadRequest, invalid.Error())
	default:
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		response.Fail(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
