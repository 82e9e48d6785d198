package profile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals a missing profile.
var ErrNotFound = errors.New("profile not found")

// Repository persists profiles.
type Repository interface {
	Find(ctx context.Context, id int64) (Profile, error)
	Save(ctx context.Context, p Profile) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Find fetches a profile by Telegram id.
func (r *PostgresRepository) Find(ctx context.Context, id int64) (Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, role, phone_number, external_auth_jwt, language_code, avatar_url, created_at
        FROM profiles WHERE id = $1`, id)

	var (
		p         Profile
		createdAt time.Time
	)
	if err := row.Scan(&p.ID, &p.Username, &p.Role, &p.PhoneNumber, &p.ExternalAuthJWT, &p.LanguageCode, &p.AvatarURL, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.CreatedAt = createdAt.UTC()
	return p, nil
}

// Save upserts a profile. Concurrent logins for the same id race here and the
// last writer wins, which is acceptable: both converge to the same values.
func (r *PostgresRepository) Save(ctx context.Context, p Profile) error {
	_, err := r.db.Exec(ctx, `INSERT INTO profiles (id, username, role, phone_number, external_auth_jwt, language_code, avatar_url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO UPDATE SET
            username = EXCLUDED.username,
            role = EXCLUDED.role,
            phone_number = EXCLUDED.phone_number,
            external_auth_jwt = EXCLUDED.external_auth_jwt,
            language_code = EXCLUDED.language_code,
            avatar_url = EXCLUDED.avatar_url`,
		p.ID, p.Username, p.Role, p.PhoneNumber, p.ExternalAuthJWT, p.LanguageCode, p.AvatarURL, p.CreatedAt.UTC())
	return err
}
