package contest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/star-marathon/star_backend/internal/notification"
	"github.com/star-marathon/star_backend/internal/storage"
)

// ErrAlreadyParticipated means the user already entered this contest.
var ErrAlreadyParticipated = errors.New("already participated")

// Service implements the contest use cases.
type Service struct {
	repo     Repository
	files    storage.Uploader
	notifier notification.Notifier
}

// NewService wires the contest service.
func NewService(repo Repository, files storage.Uploader, notifier notification.Notifier) *Service {
	return &Service{repo: repo, files: files, notifier: notifier}
}

// ListItem is the user-facing contest card.
type ListItem struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle,omitempty"`
	StarsJoin int        `json:"starsJoin"`
	StarsWin  int        `json:"starsWin"`
	DaysLeft  int        `json:"daysLeft"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// List returns active contest cards for the language.
func (s *Service) List(ctx context.Context, lang string) ([]ListItem, error) {
	contests, err := s.repo.ListActive(ctx, lang)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	items := make([]ListItem, 0, len(contests))
	for _, c := range contests {
		items = append(items, ListItem{
			ID:        c.ID,
			Kind:      c.Kind,
			Title:     c.Title,
			Subtitle:  c.Subtitle,
			StarsJoin: c.StarsJoin,
			StarsWin:  c.StarsWin,
			DaysLeft:  c.DaysLeft(now),
			EndDate:   c.EndDate,
		})
	}
	return items, nil
}

// Get returns one contest with its questions.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Contest, error) {
	return s.repo.Find(ctx, id)
}

// EntryFile is an uploaded submission file.
type EntryFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// Submit enters the user into a contest, at most once. Files are uploaded to
// object storage; answers travel as an opaque JSON string the frontend parses.
func (s *Service) Submit(ctx context.Context, contestID uuid.UUID, userID int64, answersJSON string, files []EntryFile) error {
	if _, err := s.repo.Find(ctx, contestID); err != nil {
		return err
	}

	exists, err := s.repo.HasParticipant(ctx, contestID, userID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyParticipated
	}

	var urls []string
	for _, f := range files {
		if s.files == nil {
			return errors.New("object storage is not configured")
		}
		url, err := s.files.Upload(ctx, f.Name, f.ContentType, f.Body)
		if err != nil {
			return fmt.Errorf("upload entry file: %w", err)
		}
		urls = append(urls, url)
	}

	participant := Participant{
		ID:          uuid.New(),
		ContestID:   contestID,
		UserID:      userID,
		FileURLs:    urls,
		AnswersJSON: answersJSON,
		JoinedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateParticipant(ctx, participant); err != nil {
		return err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindContestEntry,
			Destination: strconv.FormatInt(userID, 10),
			Body:        contestID.String(),
		})
	}
	return nil
}

// All returns every contest for the admin area.
func (s *Service) All(ctx context.Context) ([]Contest, error) {
	return s.repo.ListAll(ctx)
}

// Save creates a contest (zero id) or replaces an existing one. Question and
// option ids are reissued on every save, matching the replace-wholesale update
// model.
func (s *Service) Save(ctx context.Context, c Contest) (Contest, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	} else if _, err := s.repo.Find(ctx, c.ID); err != nil {
		return Contest{}, err
	}
	if c.Kind == "" {
		c.Kind = KindContest
	}
	if c.Language == "" {
		c.Language = "ru"
	}
	if c.Location == "" {
		c.Location = "All"
	}
	for i := range c.Questions {
		c.Questions[i].ID = uuid.New()
		for j := range c.Questions[i].Options {
			c.Questions[i].Options[j].ID = uuid.New()
		}
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return Contest{}, err
	}
	return c, nil
}

// Delete removes a contest.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Participants lists contest entries for the admin area.
func (s *Service) Participants(ctx context.Context, contestID uuid.UUID) ([]ParticipantInfo, error) {
	return s.repo.ListParticipants(ctx, contestID)
}
