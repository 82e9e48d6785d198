package document

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes the documents endpoints.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns documents for the requested language.
func (h *Handler) List(c *fiber.Ctx) error {
	lang := c.Query("lang", "ru")
	docs, err := h.repo.ListByLanguage(c.UserContext(), lang)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "list documents failed")
	}
	if docs == nil {
		docs = []Document{}
	}
	return c.Status(http.StatusOK).JSON(docs)
}

// Save creates or updates a document; a zero id means create.
func (h *Handler) Save(c *fiber.Ctx) error {
	var doc Document
	if err := c.BodyParser(&doc); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Language == "" {
		doc.Language = "ru"
	}
	if err := h.repo.Save(c.UserContext(), doc); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "save document failed")
	}
	return c.Status(http.StatusOK).JSON(doc)
}

// Delete removes a document by id.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid document id")
	}
	if err := h.repo.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "document not found")
		}
		return fiber.NewError(http.StatusInternalServerError, "delete document failed")
	}
	return c.SendStatus(http.StatusOK)
}
