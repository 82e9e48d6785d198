package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/star-marathon/star_backend/internal/store"
)

// RegisterStoreRoutes wires the store. The product listing is public, buying
// and product management require a session.
func RegisterStoreRoutes(r fiber.Router, h *store.Handler, session, adminOnly, idempotency fiber.Handler) {
	group := r.Group("/store")
	group.Get("/", h.List)
	if idempotency != nil {
		group.Post("/buy", session, idempotency, h.Buy)
	} else {
		group.Post("/buy", session, h.Buy)
	}
	group.Post("/", session, adminOnly, h.Create)
}
