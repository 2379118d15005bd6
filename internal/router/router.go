package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prata-pos/api/internal/config"
	"github.com/prata-pos/api/internal/database"
	"github.com/prata-pos/api/internal/enum"
	"github.com/prata-pos/api/internal/handler"
	mw "github.com/prata-pos/api/internal/middleware"
	"github.com/prata-pos/api/internal/service"
	"github.com/prata-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// The order screen loads the menu before sign-in.
	menuHandler := handler.NewMenuHandler(queries)
	menuHandler.RegisterPublicRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)

		// Tables: everyone on the floor reads them, only admins reshape the floor plan.
		tableHandler := handler.NewTableHandler(queries, hub)
		r.Route("/tables", func(r chi.Router) {
			r.Get("/", tableHandler.List)
			r.Get("/stats/summary", tableHandler.StatsSummary)
			r.Get("/{id}", tableHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				r.Post("/", tableHandler.Create)
				r.Put("/{id}", tableHandler.Update)
				r.Delete("/{id}", tableHandler.Delete)
			})
		})

		// Orders
		newOrderStore := func(db database.DBTX) service.OrderStore {
			return database.New(db)
		}
		orderService := service.NewOrderService(pool, newOrderStore)
		orderHandler := handler.NewOrderHandler(orderService, queries, hub)
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.List)
			r.Get("/stats/summary", orderHandler.StatsSummary)
			r.Get("/{id}", orderHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleWaiter, enum.UserRoleAdmin))
				r.Post("/", orderHandler.Create)
				r.Put("/{id}/status", orderHandler.UpdateStatus)
			})

			// Payments (nested under orders)
			paymentHandler := handler.NewPaymentHandler(orderService, queries, hub)
			r.Route("/{id}/payments", func(r chi.Router) {
				r.Get("/", paymentHandler.List)

				r.Group(func(r chi.Router) {
					r.Use(mw.RequireRole(enum.UserRoleCashier, enum.UserRoleAdmin))
					r.Post("/", paymentHandler.Create)
				})
			})
		})

		// Admin-only routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			userHandler := handler.NewUserHandler(queries)
			r.Route("/users", userHandler.RegisterRoutes)

			r.Route("/menu", menuHandler.RegisterAdminRoutes)

			reportHandler := handler.NewReportHandler(queries)
			reportHandler.RegisterRoutes(r)
		})
	})

	return r
}
