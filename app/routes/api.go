package routes

import (
	"net/http"

	"github.com/shashiranjanraj/vyapar/app/controllers"
	"github.com/shashiranjanraj/vyapar/pkg/response"
	"github.com/shashiranjanraj/vyapar/pkg/router"
)

// RegisterAPI mounts the user-management surface under /api and the
// legacy-shaped fallback for unmatched routes.
func RegisterAPI(r *router.Router, users *controllers.UserController) {
	api := r.Group("/api")

	api.Post("/users", "users.create", users.SignUp)
	api.Get("/users", "users.index", users.GetAllUsers)
	api.Get("/users/{userId}", "users.show", users.GetUserByID)
	api.Put("/users/{userId}", "users.update", users.UpdateUser)
	api.Delete("/users/{userId}", "users.delete", users.DeleteUser)

	api.Put("/users/{userId}/orders", "users.orders.create", users.AddOrder)
	api.Get("/users/{userId}/orders", "users.orders.index", users.GetOrders)
	api.Get("/users/{userId}/orders/total-price", "users.orders.total", users.GetTotalPrice)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.RouteNotFound(w, req.URL.Path)
	})
}
