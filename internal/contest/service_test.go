package contest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/star-marathon/star_backend/internal/storage"
)

func seedContest(t *testing.T, repo Repository, active bool) Contest {
	t.Helper()
	end := time.Now().UTC().Add(72 * time.Hour)
	c := Contest{
		ID:       uuid.New(),
		Kind:     KindContest,
		Title:    "Фотоконкурс",
		Language: "ru",
		Location: "All",
		StarsWin: 500,
		EndDate:  &end,
		IsActive: active,
	}
	if err := repo.Save(context.Background(), c); err != nil {
		t.Fatalf("seed contest: %v", err)
	}
	return c
}

func TestSubmitOncePerUser(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, storage.NewMemoryStorage(), nil)
	c := seedContest(t, repo, true)

	if err := svc.Submit(context.Background(), c.ID, 42, `[{"qId":"1","answer":"a"}]`, nil); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := svc.Submit(context.Background(), c.ID, 42, "", nil); !errors.Is(err, ErrAlreadyParticipated) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	// A different user may still enter.
	if err := svc.Submit(context.Background(), c.ID, 43, "", nil); err != nil {
		t.Fatalf("second user submit: %v", err)
	}
}

func TestSubmitUploadsFiles(t *testing.T) {
	repo := NewMemoryRepository()
	files := storage.NewMemoryStorage()
	svc := NewService(repo, files, nil)
	c := seedContest(t, repo, true)

	err := svc.Submit(context.Background(), c.ID, 42, "", []EntryFile{
		{Name: "entry.jpg", ContentType: "image/jpeg", Body: []byte{0xff, 0xd8}},
		{Name: "extra.png", ContentType: "image/png", Body: []byte{0x89}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(files.Objects) != 2 {
		t.Fatalf("expected 2 uploaded objects, got %d", len(files.Objects))
	}

	infos, err := svc.Participants(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("participants: %v", err)
	}
	if len(infos) != 1 || len(infos[0].FileURLs) != 2 {
		t.Fatalf("unexpected participants: %+v", infos)
	}
}

func TestSubmitUnknownContest(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, nil)
	if err := svc.Submit(context.Background(), uuid.New(), 42, "", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListComputesDaysLeft(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, nil, nil)
	seedContest(t, repo, true)
	seedContest(t, repo, false) // inactive, hidden

	items, err := svc.List(context.Background(), "ru")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 active contest, got %d", len(items))
	}
	if items[0].DaysLeft != 3 {
		t.Fatalf("expected 3 days left, got %d", items[0].DaysLeft)
	}
}

func TestSaveReissuesQuestionIDs(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, nil, nil)

	staleID := uuid.New()
	saved, err := svc.Save(context.Background(), Contest{
		Kind:  KindSurvey,
		Title: "Опрос",
		Questions: []Question{
			{ID: staleID, Text: "q1", Options: []Option{{Text: "a"}, {Text: "b"}}},
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == uuid.Nil {
		t.Fatal("expected issued contest id")
	}
	if saved.Questions[0].ID == staleID || saved.Questions[0].ID == uuid.Nil {
		t.Fatalf("question id not reissued: %s", saved.Questions[0].ID)
	}
	for _, opt := range saved.Questions[0].Options {
		if opt.ID == uuid.Nil {
			t.Fatal("option id not issued")
		}
	}
}

func TestSaveUnknownContestFails(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, nil)
	if _, err := svc.Save(context.Background(), Contest{ID: uuid.New(), Title: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
