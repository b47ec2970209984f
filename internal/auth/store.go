package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// CredentialStore defines persistence operations for user credentials.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, userID string) error
	// RedeemResetToken atomically swaps the password hash and clears the reset
	// columns of the user holding tokenHash, provided it has not expired at now.
	RedeemResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*User, error)
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// PGStore implements CredentialStore using PostgreSQL.
type PGStore struct {
	db db.DBTX
}

// NewPGStore constructs a PostgreSQL credential store.
func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

const userColumns = `id::text, name, email, password_hash, reset_token_hash, reset_token_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var (
		u         User
		resetHash *string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &resetHash, &u.ResetTokenExpiresAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if resetHash != nil {
		u.ResetTokenHash = *resetHash
	}
	return &u, nil
}

func (s *PGStore) findOne(ctx context.Context, op, query string, arg any) (*User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("operation", op).Wrap(err)
	}
	return user, nil
}

// FindByEmail fetches a user by normalized email.
func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, "find user by email",
		`SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email))
}

// FindByID fetches a user by id. Ids that are not UUIDs are reported as not found.
func (s *PGStore) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shared.ErrNotFound
	}
	return s.findOne(ctx, "find user by id",
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByResetTokenHash fetches the user holding tokenHash, expired or not.
func (s *PGStore) FindByResetTokenHash(ctx context.Context, tokenHash string) (*User, error) {
	return s.findOne(ctx, "find user by reset token",
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = $1`, tokenHash)
}

// Insert persists a new user and returns the stored record.
func (s *PGStore) Insert(ctx context.Context, user *User) (*User, error) {
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	created, err := scanUser(s.db.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		id, user.Name, NormalizeEmail(user.Email), user.PasswordHash))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicateKey
		}
		return nil, oops.Code("USER_INSERT_FAILED").With("operation", "insert user").Wrap(err)
	}
	return created, nil
}

func (s *PGStore) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("operation", op).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (s *PGStore) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return s.execOne(ctx, "update password hash",
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, hash)
}

// SetResetToken stores a reset token hash, replacing any pending one.
func (s *PGStore) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return s.execOne(ctx, "set reset token",
		`UPDATE users SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = NOW() WHERE id = $1`,
		userID, tokenHash, expiresAt.UTC())
}

// ClearResetToken drops any pending reset token.
func (s *PGStore) ClearResetToken(ctx context.Context, userID string) error {
	return s.execOne(ctx, "clear reset token",
		`UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW() WHERE id = $1`, userID)
}

// RedeemResetToken returns shared.ErrNotFound when no live token matches.
func (s *PGStore) RedeemResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*User, error) {
	user, err := scanUser(s.db.QueryRow(ctx,
		`UPDATE users
		 SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		 WHERE reset_token_hash = $1 AND reset_token_expires_at > $3
		 RETURNING `+userColumns,
		tokenHash, passwordHash, now.UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("USER_UPDATE_FAILED").With("operation", "redeem reset token").Wrap(err)
	}
	return user, nil
}

// PurgeExpiredResetTokens clears reset columns whose expiry is at or before now.
func (s *PGStore) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL
		 WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, oops.Code("USER_UPDATE_FAILED").With("operation", "purge reset tokens").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

var _ CredentialStore = (*PGStore)(nil)
