package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sumamakhan761/vendor-management/internal/domain"
)

// PostgresUserRepository is the PostgreSQL implementation of UserRepository.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository creates a new instance of PostgresUserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// UpsertGoogleUser inserts the user on first sign-in and refreshes the profile
// fields on every later one. The internal id is stable across sign-ins.
func (r *PostgresUserRepository) UpsertGoogleUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (google_subject, email, name, image)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (google_subject) DO UPDATE
        SET email = EXCLUDED.email,
            name = EXCLUDED.name,
            image = EXCLUDED.image,
            updated_at = NOW()
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		user.GoogleSubject,
		user.Email,
		user.Name,
		user.Image,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pgErr, ok := constraintViolation(err); ok {
			log.Printf("level=warn component=store msg=\"user upsert violated constraint\" code=%s constraint=%s", pgErr.Code, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}
