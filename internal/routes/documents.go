package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/star-marathon/star_backend/internal/document"
)

// RegisterDocumentRoutes wires documents. Listing is public, management is
// admin only.
func RegisterDocumentRoutes(r fiber.Router, h *document.Handler, session, adminOnly fiber.Handler) {
	group := r.Group("/documents")
	group.Get("/", h.List)
	group.Post("/", session, adminOnly, h.Save)
	group.Delete("/:id", session, adminOnly, h.Delete)
}
