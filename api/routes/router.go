package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/comanda-pos/backend/api/controllers"
	"github.com/comanda-pos/backend/api/middleware"
	"github.com/comanda-pos/backend/pkg/logger"
	"github.com/comanda-pos/backend/pkg/metrics"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Health    *controllers.HealthController
	Orders    *controllers.OrdersController
	Menu      *controllers.MenuController
	Inventory *controllers.InventoryController
	Tables    *controllers.TablesController
	Payments  *controllers.PaymentsController
	Expenses  *controllers.ExpensesController
	Audit     *controllers.AuditController
}

// New assembles the HTTP router.
func New(ctrl Controllers, logg *logger.Logger, set *metrics.Set, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(logg, set))
	router.Use(middleware.Recoverer(logg))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", ctrl.Health.Live)
	router.Get("/readyz", ctrl.Health.Ready)
	router.Handle("/metrics", set.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ctrl.Orders.Create)
			r.Get("/", ctrl.Orders.List)
			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", ctrl.Orders.Get)
				r.Patch("/status", ctrl.Orders.UpdateStatus)
				r.Post("/cancel", ctrl.Orders.Cancel)
				r.Post("/items", ctrl.Orders.AddItem)
				r.Route("/items/{itemID}", func(r chi.Router) {
					r.Patch("/", ctrl.Orders.UpdateItemQuantity)
					r.Patch("/status", ctrl.Orders.UpdateItemStatus)
					r.Delete("/", ctrl.Orders.RemoveItem)
				})
				r.Get("/payments", ctrl.Payments.ListByOrder)
			})
		})

		r.Route("/menu", func(r chi.Router) {
			r.Route("/items", func(r chi.Router) {
				r.Post("/", ctrl.Menu.CreateItem)
				r.Get("/", ctrl.Menu.ListItems)
				r.Route("/{itemID}", func(r chi.Router) {
					r.Get("/", ctrl.Menu.GetItem)
					r.Put("/", ctrl.Menu.UpdateItem)
					r.Patch("/availability", ctrl.Menu.SetItemAvailability)
					r.Delete("/", ctrl.Menu.DeleteItem)
				})
			})
			r.Route("/addons", func(r chi.Router) {
				r.Post("/", ctrl.Menu.CreateAddon)
				r.Get("/", ctrl.Menu.ListAddons)
				r.Route("/{addonID}", func(r chi.Router) {
					r.Put("/", ctrl.Menu.UpdateAddon)
					r.Delete("/", ctrl.Menu.DeleteAddon)
				})
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/", ctrl.Inventory.Create)
			r.Get("/", ctrl.Inventory.List)
			r.Get("/low-stock", ctrl.Inventory.LowStock)
			r.Get("/expiring", ctrl.Inventory.Expiring)
			r.Route("/{itemID}", func(r chi.Router) {
				r.Get("/", ctrl.Inventory.Get)
				r.Put("/", ctrl.Inventory.Update)
				r.Delete("/", ctrl.Inventory.Delete)
				r.Post("/restock", ctrl.Inventory.Restock)
			})
		})

		r.Route("/tables", func(r chi.Router) {
			r.Post("/", ctrl.Tables.Create)
			r.Get("/", ctrl.Tables.List)
			r.Route("/{tableID}", func(r chi.Router) {
				r.Get("/", ctrl.Tables.Get)
				r.Patch("/status", ctrl.Tables.SetStatus)
				r.Delete("/", ctrl.Tables.Delete)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", ctrl.Payments.Pay)
			r.Get("/", ctrl.Payments.ListByRange)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", ctrl.Expenses.Create)
			r.Get("/", ctrl.Expenses.List)
			r.Get("/summary", ctrl.Expenses.Summary)
			r.Route("/{expenseID}", func(r chi.Router) {
				r.Put("/", ctrl.Expenses.Update)
				r.Delete("/", ctrl.Expenses.Delete)
			})
		})

		r.Get("/audit", ctrl.Audit.List)
	})

	return router
}
