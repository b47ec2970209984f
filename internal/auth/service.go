package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// ServiceConfig tunes the authentication service.
type ServiceConfig struct {
	// ResetTTL bounds how long a reset token stays redeemable.
	ResetTTL time.Duration
	// OpTimeout bounds each store and hashing call.
	OpTimeout time.Duration
	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// Service wraps authentication business rules.
type Service struct {
	store    CredentialStore
	hasher   PasswordHasher
	tokens   *TokenIssuer
	cfg      ServiceConfig
	validate *validator.Validate

	// dummyDigest is verified against when the email is unknown so that
	// login latency does not reveal registration.
	dummyDigest string
}

// NewService constructs a new Service.
func NewService(store CredentialStore, hasher PasswordHasher, tokens *TokenIssuer, cfg ServiceConfig) *Service {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	svc := &Service{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		cfg:      cfg,
		validate: shared.NewValidator(),
	}
	if digest, err := hasher.Hash(context.Background(), "backoffice-timing-equalizer"); err == nil {
		svc.dummyDigest = digest
	}
	return svc
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OpTimeout)
}

// Register validates input, hashes the password and stores a new user.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = NormalizeEmail(input.Email)
	if err := shared.ValidateStruct(s.validate, input); err != nil {
		return nil, err
	}
	if err := checkPasswordBytes("password", input.Password); err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	digest, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, oops.Code("PASSWORD_HASH_FAILED").With("operation", "register").Wrap(err)
	}
	user, err := s.store.Insert(ctx, &User{Name: input.Name, Email: input.Email, PasswordHash: digest})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateKey) {
			return nil, err
		}
		return nil, oops.Code("REGISTER_FAILED").With("email", input.Email).Wrap(err)
	}
	return user, nil
}

// Login checks credentials and issues a session token. Unknown emails and
// wrong passwords both yield shared.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		fields := map[string]string{}
		if email == "" {
			fields["email"] = "is required"
		}
		if password == "" {
			fields["password"] = "is required"
		}
		return LoginResult{}, shared.NewValidationError("email and password are required", fields)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if len(password) > MaxPasswordBytes {
		// No stored digest can match.
		s.burnVerify(ctx, password[:MaxPasswordBytes])
		return LoginResult{}, shared.ErrInvalidCredentials
	}

	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		s.burnVerify(ctx, password)
		return LoginResult{}, shared.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, oops.Code("LOGIN_FAILED").With("operation", "lookup").Wrap(err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return LoginResult{}, oops.Code("LOGIN_FAILED").With("operation", "verify").With("user_id", user.ID).Wrap(err)
	}
	if !ok {
		return LoginResult{}, shared.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, 0)
	if err != nil {
		return LoginResult{}, oops.Code("LOGIN_FAILED").With("operation", "issue token").Wrap(err)
	}
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) burnVerify(ctx context.Context, password string) {
	if s.dummyDigest != "" {
		_, _ = s.hasher.Verify(ctx, password, s.dummyDigest)
	}
}

// Authenticate verifies a bearer token and returns the identity it asserts.
func (s *Service) Authenticate(token string) (shared.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return shared.Identity{}, err
	}
	return shared.Identity{UserID: claims.UserID, IssuedAt: claims.IssuedAt}, nil
}

// Verify implements the gate's verifier by delegating to the token issuer.
func (s *Service) Verify(token string) (Claims, error) {
	return s.tokens.Verify(token)
}

// CurrentUser loads the user behind an authenticated identity.
func (s *Service) CurrentUser(ctx context.Context, id shared.Identity) (*User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	user, err := s.store.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The token outlived its account.
			return nil, shared.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// RequestReset issues a reset token for email, replacing any pending one.
// For an unknown email it returns a zero ticket and no error, after doing the
// same token generation work.
func (s *Service) RequestReset(ctx context.Context, email string) (ResetTicket, error) {
	email = NormalizeEmail(email)
	token, tokenHash, err := newResetToken()
	if err != nil {
		return ResetTicket{}, err
	}
	if email == "" {
		return ResetTicket{}, nil
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		return ResetTicket{}, nil
	}
	if err != nil {
		return ResetTicket{}, oops.Code("RESET_REQUEST_FAILED").With("operation", "lookup").Wrap(err)
	}

	expiresAt := s.cfg.Now().Add(s.cfg.ResetTTL)
	if err := s.store.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Deleted between lookup and update.
			return ResetTicket{}, nil
		}
		return ResetTicket{}, oops.Code("RESET_REQUEST_FAILED").With("operation", "store token").With("user_id", user.ID).Wrap(err)
	}
	return ResetTicket{Token: token, Email: user.Email, Name: user.Name, ExpiresAt: expiresAt}, nil
}

type redeemInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// RedeemReset sets a new password using a pending reset token. A token is
// accepted at most once; unknown, replaced and expired tokens all yield
// shared.ErrInvalidResetToken.
func (s *Service) RedeemReset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if err := shared.ValidateStruct(s.validate, redeemInput{Token: token, NewPassword: newPassword}); err != nil {
		return err
	}
	if err := checkPasswordBytes("newPassword", newPassword); err != nil {
		return err
	}
	if !wellFormedResetToken(token) {
		return shared.ErrInvalidResetToken
	}
	tokenHash := hashResetToken(token)

	ctx, cancel := s.bound(ctx)
	defer cancel()

	now := s.cfg.Now()
	user, err := s.store.FindByResetTokenHash(ctx, tokenHash)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.ErrInvalidResetToken
	}
	if err != nil {
		return oops.Code("RESET_REDEEM_FAILED").With("operation", "lookup").Wrap(err)
	}
	if !hashesEqual(user.ResetTokenHash, tokenHash) || !user.HasPendingReset(now) {
		return shared.ErrInvalidResetToken
	}

	digest, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return oops.Code("PASSWORD_HASH_FAILED").With("operation", "redeem reset").Wrap(err)
	}
	if _, err := s.store.RedeemResetToken(ctx, tokenHash, digest, now); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Replaced or redeemed concurrently.
			return shared.ErrInvalidResetToken
		}
		return oops.Code("RESET_REDEEM_FAILED").With("operation", "redeem").With("user_id", user.ID).Wrap(err)
	}
	return nil
}

// PurgeExpiredResets clears reset tokens that expired before now.
func (s *Service) PurgeExpiredResets(ctx context.Context) (int64, error) {
	return s.store.PurgeExpiredResetTokens(ctx, s.cfg.Now())
}
