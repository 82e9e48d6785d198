package contest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals a missing contest.
var ErrNotFound = errors.New("contest not found")

// Repository persists contests and their participants.
type Repository interface {
	ListActive(ctx context.Context, lang string) ([]Contest, error)
	ListAll(ctx context.Context) ([]Contest, error)
	Find(ctx context.Context, id uuid.UUID) (Contest, error)
	Save(ctx context.Context, c Contest) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasParticipant(ctx context.Context, contestID uuid.UUID, userID int64) (bool, error)
	CreateParticipant(ctx context.Context, p Participant) error
	ListParticipants(ctx context.Context, contestID uuid.UUID) ([]ParticipantInfo, error)
}

// PostgresRepository implements Repository using PostgreSQL. Questions are
// held in a jsonb column: they are only ever read and written as a whole
// together with their contest.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed contest repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const contestColumns = `id, kind, title, subtitle, language, location, stars_join, stars_win, end_date, is_active, questions`

// ListActive returns active contests for the language, latest deadline first.
func (r *PostgresRepository) ListActive(ctx context.Context, lang string) ([]Contest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contestColumns+` FROM contests
        WHERE is_active AND (language = $1 OR language = $2)
        ORDER BY end_date DESC NULLS LAST`, lang, LanguageAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContests(rows)
}

// ListAll returns every contest for the admin area.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]Contest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contestColumns+` FROM contests ORDER BY end_date DESC NULLS LAST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContests(rows)
}

// Find fetches one contest with its questions.
func (r *PostgresRepository) Find(ctx context.Context, id uuid.UUID) (Contest, error) {
	row := r.db.QueryRow(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = $1`, id)
	c, err := scanContest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contest{}, ErrNotFound
	}
	return c, err
}

// Save upserts a contest, replacing its questions wholesale.
func (r *PostgresRepository) Save(ctx context.Context, c Contest) error {
	questions, err := json.Marshal(c.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO contests (id, kind, title, subtitle, language, location, stars_join, stars_win, end_date, is_active, questions)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (id) DO UPDATE SET
            kind = EXCLUDED.kind, title = EXCLUDED.title, subtitle = EXCLUDED.subtitle,
            language = EXCLUDED.language, location = EXCLUDED.location,
            stars_join = EXCLUDED.stars_join, stars_win = EXCLUDED.stars_win,
            end_date = EXCLUDED.end_date, is_active = EXCLUDED.is_active,
            questions = EXCLUDED.questions`,
		c.ID, c.Kind, c.Title, c.Subtitle, c.Language, c.Location, c.StarsJoin, c.StarsWin, c.EndDate, c.IsActive, questions)
	return err
}

// Delete removes a contest and, via FK cascade, its participants.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM contests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// HasParticipant reports whether the user already entered the contest.
func (r *PostgresRepository) HasParticipant(ctx context.Context, contestID uuid.UUID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM contest_participants WHERE contest_id = $1 AND user_id = $2)`,
		contestID, userID).Scan(&exists)
	return exists, err
}

// CreateParticipant records a contest entry.
func (r *PostgresRepository) CreateParticipant(ctx context.Context, p Participant) error {
	_, err := r.db.Exec(ctx, `INSERT INTO contest_participants (id, contest_id, user_id, file_urls, answers_json, is_winner, joined_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.ContestID, p.UserID, p.FileURLs, p.AnswersJSON, p.IsWinner, p.JoinedAt.UTC())
	return err
}

// ListParticipants returns contest entries joined with profile display data,
// newest first.
func (r *PostgresRepository) ListParticipants(ctx context.Context, contestID uuid.UUID) ([]ParticipantInfo, error) {
	rows, err := r.db.Query(ctx, `SELECT p.id, p.contest_id, p.user_id, p.file_urls, p.answers_json, p.is_winner, p.joined_at,
            COALESCE(u.username, ''), COALESCE(u.avatar_url, '')
        FROM contest_participants p
        LEFT JOIN profiles u ON u.id = p.user_id
        WHERE p.contest_id = $1
        ORDER BY p.joined_at DESC`, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []ParticipantInfo
	for rows.Next() {
		var (
			info     ParticipantInfo
			joinedAt time.Time
		)
		if err := rows.Scan(&info.ID, &info.ContestID, &info.UserID, &info.FileURLs, &info.AnswersJSON,
			&info.IsWinner, &joinedAt, &info.Username, &info.AvatarURL); err != nil {
			return nil, err
		}
		info.JoinedAt = joinedAt.UTC()
		if info.Username == "" {
			info.Username = fmt.Sprintf("User %d", info.UserID)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func collectContests(rows pgx.Rows) ([]Contest, error) {
	var contests []Contest
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, err
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContest(row rowScanner) (Contest, error) {
	var (
		c         Contest
		questions []byte
	)
	if err := row.Scan(&c.ID, &c.Kind, &c.Title, &c.Subtitle, &c.Language, &c.Location,
		&c.StarsJoin, &c.StarsWin, &c.EndDate, &c.IsActive, &questions); err != nil {
		return Contest{}, err
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &c.Questions); err != nil {
			return Contest{}, fmt.Errorf("decode questions: %w", err)
		}
	}
	return c, nil
}
