package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/star-marathon/star_backend/internal/notification"
	"github.com/star-marathon/star_backend/internal/storage"
	"github.com/star-marathon/star_backend/internal/storm"
)

// ErrDebitFailed means the loyalty provider refused the star debit, usually
// an insufficient balance or a stale session credential.
var ErrDebitFailed = errors.New("star debit failed")

// Service implements the store use cases.
type Service struct {
	repo     Repository
	ledger   storm.Ledger
	files    storage.Uploader
	notifier notification.Notifier
}

// NewService wires the store service.
func NewService(repo Repository, ledger storm.Ledger, files storage.Uploader, notifier notification.Notifier) *Service {
	return &Service{repo: repo, ledger: ledger, files: files, notifier: notifier}
}

// Products lists active products visible for the language.
func (s *Service) Products(ctx context.Context, lang string) ([]Product, error) {
	return s.repo.ListActive(ctx, lang)
}

// CreateProductInput carries the admin product form.
type CreateProductInput struct {
	Title       string
	Description string
	Price       int
	Language    string
	ImageName   string
	ImageType   string
	ImageBody   []byte
}

// CreateProduct stores a new product, uploading the image first when present.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (Product, error) {
	if in.Title == "" {
		return Product{}, errors.New("title is required")
	}
	if in.Price <= 0 {
		return Product{}, errors.New("price must be positive")
	}

	var imageURL string
	if len(in.ImageBody) > 0 {
		if s.files == nil {
			return Product{}, errors.New("object storage is not configured")
		}
		url, err := s.files.Upload(ctx, in.ImageName, in.ImageType, in.ImageBody)
		if err != nil {
			return Product{}, fmt.Errorf("upload image: %w", err)
		}
		imageURL = url
	}

	lang := in.Language
	if lang == "" {
		lang = "ru"
	}
	product := Product{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    imageURL,
		Language:    lang,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// Buy debits the product price from the user's star balance at the loyalty
// provider and records a pending purchase. The debit happens first: if the
// provider refuses, nothing is written locally.
func (s *Service) Buy(ctx context.Context, userID int64, extToken string, productID uuid.UUID) (Purchase, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		return Purchase{}, err
	}
	if !product.IsActive {
		return Purchase{}, ErrProductNotFound
	}

	if err := s.ledger.AddTransaction(ctx, extToken, -product.Price, "Покупка: "+product.Title); err != nil {
		return Purchase{}, fmt.Errorf("%w: %v", ErrDebitFailed, err)
	}

	purchase := Purchase{
		ID:              uuid.New(),
		UserID:          userID,
		ProductID:       product.ID,
		PriceAtPurchase: product.Price,
		Status:          PurchaseStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.CreatePurchase(ctx, purchase); err != nil {
		// The debit already went through; surface loudly, operators reconcile manually.
		return Purchase{}, fmt.Errorf("record purchase after debit: %w", err)
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPurchase,
			Destination: strconv.FormatInt(userID, 10),
			Body:        product.Title,
		})
	}
	return purchase, nil
}
