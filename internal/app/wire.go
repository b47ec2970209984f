package app

import (
	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/platform/db"
)

// NewAuthService assembles the credential service shared by the API, the
// worker and the CLI.
func NewAuthService(cfg *Config, conn db.DBTX) (*auth.Service, error) {
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTTTL,
	}, nil)
	if err != nil {
		return nil, err
	}
	return auth.NewService(
		auth.NewPGStore(conn),
		auth.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		auth.ServiceConfig{ResetTTL: cfg.ResetTokenTTL, OpTimeout: cfg.AuthOpTimeout},
	), nil
}
