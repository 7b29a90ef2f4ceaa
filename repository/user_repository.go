package repository

import (
	"context"
	"errors"
	"fmt"

	"lotto/database"
	"lotto/domain/entities"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, external_id, username, balance, total_won, created_at, updated_at`

// UserRepository implements user data access
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Username,
		&user.Balance,
		&user.TotalWon,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByIDForUpdate retrieves a user and locks the row until the transaction ends
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", id, err)
	}
	return user, nil
}

// GetByExternalID retrieves a user by the caller-supplied identity
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by external ID %d: %w", externalID, err)
	}
	return user, nil
}

// Create inserts a user. Returns (nil, nil) if the external ID is already taken.
func (r *UserRepository) Create(ctx context.Context, externalID int64, username string, initialBalance int64) (*entities.User, error) {
	query := `
		INSERT INTO users (external_id, username, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, externalID, username, initialBalance))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// AdjustBalance atomically adds delta to the balance and returns the new balance.
// The balance CHECK constraint rejects any change that would go negative.
func (r *UserRepository) AdjustBalance(ctx context.Context, id int64, delta int64) (int64, error) {
	query := `
		UPDATE users
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, id, delta).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("user %d not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance for user %d: %w", id, err)
	}
	return balance, nil
}

// AddWinnings credits a prize to balance and total_won and returns the new balance
func (r *UserRepository) AddWinnings(ctx context.Context, id int64, amount int64) (int64, error) {
	query := `
		UPDATE users
		SET balance = balance + $2, total_won = total_won + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, id, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("user %d not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add winnings for user %d: %w", id, err)
	}
	return balance, nil
}
