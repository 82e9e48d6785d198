package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/star-marathon/star_backend/internal/storage"
	"github.com/star-marathon/star_backend/internal/storm"
)

type fakeLedger struct {
	err     error
	debits  []int
	tokens  []string
	descrs  []string
	profile storm.Profile
}

func (f *fakeLedger) GetProfile(context.Context, string) (storm.Profile, error) {
	return f.profile, nil
}

func (f *fakeLedger) GetRating(context.Context, string) ([]storm.RatingItem, error) { return nil, nil }

func (f *fakeLedger) GetTransactions(context.Context, string) ([]storm.Transaction, error) {
	return nil, nil
}

func (f *fakeLedger) AddTransaction(_ context.Context, token string, amount int, descr string) error {
	if f.err != nil {
		return f.err
	}
	f.tokens = append(f.tokens, token)
	f.debits = append(f.debits, amount)
	f.descrs = append(f.descrs, descr)
	return nil
}

func seedProduct(t *testing.T, repo Repository, price int, active bool) Product {
	t.Helper()
	p := Product{
		ID:        uuid.New(),
		Title:     "Футболка",
		Price:     price,
		Language:  "ru",
		IsActive:  active,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestBuyDebitsFrozenPrice(t *testing.T) {
	repo := NewMemoryRepository()
	ledger := &fakeLedger{}
	svc := NewService(repo, ledger, storage.NewMemoryStorage(), nil)
	product := seedProduct(t, repo, 150, true)

	purchase, err := svc.Buy(context.Background(), 42, "S1", product.ID)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if len(ledger.debits) != 1 || ledger.debits[0] != -150 {
		t.Fatalf("expected single debit of -150, got %v", ledger.debits)
	}
	if ledger.tokens[0] != "S1" {
		t.Fatalf("debit used wrong credential %q", ledger.tokens[0])
	}
	if purchase.PriceAtPurchase != 150 || purchase.Status != PurchaseStatusPending {
		t.Fatalf("unexpected purchase: %+v", purchase)
	}
}

func TestBuyRefusedWhenDebitFails(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &fakeLedger{err: errors.New("insufficient balance")}, nil, nil)
	product := seedProduct(t, repo, 150, true)

	if _, err := svc.Buy(context.Background(), 42, "S1", product.ID); !errors.Is(err, ErrDebitFailed) {
		t.Fatalf("expected debit failure, got %v", err)
	}
}

func TestBuyInactiveProduct(t *testing.T) {
	repo := NewMemoryRepository()
	ledger := &fakeLedger{}
	svc := NewService(repo, ledger, nil, nil)
	product := seedProduct(t, repo, 150, false)

	if _, err := svc.Buy(context.Background(), 42, "S1", product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not-found for inactive product, got %v", err)
	}
	if len(ledger.debits) != 0 {
		t.Fatal("no debit may happen for an inactive product")
	}
}

func TestCreateProductUploadsImage(t *testing.T) {
	repo := NewMemoryRepository()
	files := storage.NewMemoryStorage()
	svc := NewService(repo, &fakeLedger{}, files, nil)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Title:     "Кружка",
		Price:     90,
		ImageName: "mug.png",
		ImageType: "image/png",
		ImageBody: []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.ImageURL == "" {
		t.Fatal("expected image url")
	}
	if len(files.Objects) != 1 {
		t.Fatalf("expected one stored object, got %d", len(files.Objects))
	}
	if product.Language != "ru" {
		t.Fatalf("expected language fallback, got %q", product.Language)
	}
}

func TestProductsFilterLanguage(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &fakeLedger{}, nil, nil)

	repo.CreateProduct(context.Background(), Product{ID: uuid.New(), Title: "ru item", Language: "ru", IsActive: true})
	repo.CreateProduct(context.Background(), Product{ID: uuid.New(), Title: "en item", Language: "en", IsActive: true})
	repo.CreateProduct(context.Background(), Product{ID: uuid.New(), Title: "all item", Language: LanguageAll, IsActive: true})
	repo.CreateProduct(context.Background(), Product{ID: uuid.New(), Title: "hidden", Language: "ru", IsActive: false})

	products, err := svc.Products(context.Background(), "ru")
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 visible products, got %d", len(products))
	}
}
