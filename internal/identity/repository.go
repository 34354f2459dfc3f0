package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/synthvault/synthvault/internal/infra"
)

var (
	// ErrNotFound indicates no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrAddressTaken indicates the address is already registered.
	ErrAddressTaken = errors.New("address already registered")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByAddress(ctx context.Context, address string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db infra.DB
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db infra.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `INSERT INTO users (id, address, passphrase_hash, created_at)
        VALUES ($1, $2, $3, $4) ON CONFLICT (address) DO NOTHING`,
		userID, user.Address, user.PassphraseHash, user.CreatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAddressTaken
	}
	return nil
}

// FindByAddress fetches a user by address.
func (r *PostgresRepository) FindByAddress(ctx context.Context, address string) (User, error) {
	return r.find(ctx, `SELECT id, address, passphrase_hash, created_at FROM users WHERE address = $1`, address)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, err
	}
	return r.find(ctx, `SELECT id, address, passphrase_hash, created_at FROM users WHERE id = $1`, userID)
}

func (r *PostgresRepository) find(ctx context.Context, query string, arg any) (User, error) {
	var (
		user      User
		id        uuid.UUID
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(&id, &user.Address, &user.PassphraseHash, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
