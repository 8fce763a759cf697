package api

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/glyphkit/glyphkit-server/internal/auth"
)

// authenticateRequest validates the Authorization header and returns the
// token claims. The claims carry the acting user's ID for audit fields.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*auth.AccessClaims, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	// A token that was presented but fails verification is forbidden,
	// matching the admin client's expectations.
	claims, err := s.services.Auth.VerifyToken(parts[1])
	if err != nil {
		return nil, err
	}

	// The account may have been disabled after the token was issued.
	if _, err := s.services.Auth.CurrentUser(ctx, claims.UserID); err != nil {
		return nil, err
	}

	return claims, nil
}

// authenticatePlugin validates the static Figma plugin token.
func (s *Server) authenticatePlugin(authHeader string) error {
	if s.pluginToken == "" {
		return huma.Error401Unauthorized("Plugin access is not configured")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.pluginToken)) != 1 {
		return huma.Error401Unauthorized("Invalid plugin token")
	}

	return nil
}

func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
