package store

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/star-marathon/star_backend/internal/middleware"
)

// Handler exposes the store endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns active products for the requested language.
func (h *Handler) List(c *fiber.Ctx) error {
	lang := c.Query("lang", "ru")
	products, err := h.svc.Products(c.UserContext(), lang)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "list products failed")
	}
	if products == nil {
		products = []Product{}
	}
	return c.Status(http.StatusOK).JSON(products)
}

// Create handles the admin product form (multipart, optional image).
func (h *Handler) Create(c *fiber.Ctx) error {
	price, err := strconv.Atoi(c.FormValue("price"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid price")
	}

	in := CreateProductInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Price:       price,
		Language:    c.FormValue("language"),
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "unreadable image")
		}
		body, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "unreadable image")
		}
		in.ImageName = file.Filename
		in.ImageType = file.Header.Get("Content-Type")
		in.ImageBody = body
	}

	product, err := h.svc.CreateProduct(c.UserContext(), in)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(product)
}

type buyRequest struct {
	ProductID uuid.UUID `json:"productId"`
}

// Buy debits stars upstream and records the purchase.
func (h *Handler) Buy(c *fiber.Ctx) error {
	var req buyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthenticated")
	}

	_, err := h.svc.Buy(c.UserContext(), userID, middleware.ExtToken(c), req.ProductID)
	switch {
	case errors.Is(err, ErrProductNotFound):
		return fiber.NewError(http.StatusBadRequest, "product not found")
	case errors.Is(err, ErrDebitFailed):
		return fiber.NewError(http.StatusBadRequest, "not enough stars or provider error")
	case err != nil:
		return fiber.NewError(http.StatusInternalServerError, "purchase failed")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}
