package contest

import (
	"errors"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/star-marathon/star_backend/internal/middleware"
)

// Handler exposes contest endpoints for both the user and admin areas.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns active contest cards for the requested language.
func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.svc.List(c.UserContext(), c.Query("lang", "ru"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "list contests failed")
	}
	if items == nil {
		items = []ListItem{}
	}
	return c.Status(http.StatusOK).JSON(items)
}

// Get returns one contest with questions and options.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid contest id")
	}
	item, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "contest not found")
		}
		return fiber.NewError(http.StatusInternalServerError, "get contest failed")
	}
	return c.Status(http.StatusOK).JSON(item)
}

// Submit handles a multipart contest entry: optional answersJson field plus
// any number of uploaded files.
func (h *Handler) Submit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid contest id")
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthenticated")
	}

	var files []EntryFile
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, header := range form.File["files"] {
			src, err := header.Open()
			if err != nil {
				return fiber.NewError(http.StatusBadRequest, "unreadable file")
			}
			body, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				return fiber.NewError(http.StatusBadRequest, "unreadable file")
			}
			files = append(files, EntryFile{Name: header.Filename, ContentType: header.Header.Get("Content-Type"), Body: body})
		}
	}

	err = h.svc.Submit(c.UserContext(), id, userID, c.FormValue("answersJson"), files)
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "contest not found")
	case errors.Is(err, ErrAlreadyParticipated):
		return fiber.NewError(http.StatusBadRequest, "already participated")
	case err != nil:
		return fiber.NewError(http.StatusInternalServerError, "submit failed")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

// AdminList returns every contest.
func (h *Handler) AdminList(c *fiber.Ctx) error {
	items, err := h.svc.All(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "list contests failed")
	}
	if items == nil {
		items = []Contest{}
	}
	return c.Status(http.StatusOK).JSON(items)
}

// Create stores a new contest.
func (h *Handler) Create(c *fiber.Ctx) error {
	var in Contest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	in.ID = uuid.Nil // ids are always issued server-side
	saved, err := h.svc.Save(c.UserContext(), in)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "create contest failed")
	}
	return c.Status(http.StatusOK).JSON(saved)
}

// Update replaces an existing contest.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid contest id")
	}
	var in Contest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	in.ID = id
	saved, err := h.svc.Save(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "contest not found")
		}
		return fiber.NewError(http.StatusInternalServerError, "update contest failed")
	}
	return c.Status(http.StatusOK).JSON(saved)
}

// Delete removes a contest.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid contest id")
	}
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "contest not found")
		}
		return fiber.NewError(http.StatusInternalServerError, "delete contest failed")
	}
	return c.SendStatus(http.StatusOK)
}

// Participants lists entries for the admin area.
func (h *Handler) Participants(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid contest id")
	}
	infos, err := h.svc.Participants(c.UserContext(), id)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "list participants failed")
	}
	if infos == nil {
		infos = []ParticipantInfo{}
	}
	return c.Status(http.StatusOK).JSON(infos)
}
