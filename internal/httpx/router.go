package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		// public
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Get("/products-list", handler.ListProducts)

		r.Group(func(r chi.Router) {
			r.Use(handler.RequireAuth)

			r.Post("/orders", handler.CreateOrder)
			r.Get("/orders", handler.ListOrders)
			r.Get("/user/orders", handler.ListMyOrders)
			r.Get("/orders/{id}", handler.GetOrder)
			r.Put("/orders/{id}/status", handler.UpdateOrderStatus)
			r.Patch("/orders/{id}/status", handler.UpdateOrderStatus)
			r.Put("/orders/{orderId}/items/{itemId}", handler.UpdateOrderItem)
			r.Delete("/orders/{orderId}/items/{itemId}", handler.RemoveOrderItem)
			r.Delete("/orders/{id}", handler.DeleteOrder)

			r.Post("/payment/process", handler.ProcessPayment)
			r.Get("/payment/status/{orderId}", handler.PaymentStatus)

			r.Get("/notifications", handler.ListNotifications)
			r.Put("/notifications/{id}/read", handler.MarkNotificationRead)
			r.Delete("/notifications/{id}", handler.DeleteNotification)

			r.Get("/tables", handler.ListTables)
			r.Post("/tables/sessions", handler.StartTableSession)
			r.Put("/tables/sessions/{id}/close", handler.CloseTableSession)

			r.Get("/admin/users", handler.ListUsers)
			r.Delete("/admin/users/{email}", handler.DeleteUser)
			r.Put("/users/{email}", handler.UpdateUser)
			r.Put("/users/{email}/vote", handler.SubmitVote)
		})
	})

	return r
}
