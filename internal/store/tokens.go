package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/mechatrack/internal/model"
)

// RevokedTokens records logged-out token IDs until they expire.
type RevokedTokens struct {
	DB  *sql.DB
	Now func() time.Time
}

// Revoke adds a token's JTI to the revocation list.
func (s *RevokedTokens) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, model.NewTimestamp(expiresAt),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	// Opportunistically clean up expired revocations.
	_, _ = s.DB.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, model.NewTimestamp(clock(s.Now)),
	)

	return nil
}

// IsRevoked checks if a token's JTI has been revoked.
func (s *RevokedTokens) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return count > 0, nil
}
