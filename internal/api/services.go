package api

import (
	"github.com/glyphkit/glyphkit-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth     *service.AuthService
	Icon     *service.IconService
	Category *service.CategoryService
}
