package v1

import (
	"context"

	"github.com/labstack/echo/v5"

	"github.com/parleychat/parley/internal/profile"
	"github.com/parleychat/parley/plugin/gemini"
	"github.com/parleychat/parley/server/auth"
	"github.com/parleychat/parley/store"
)

// ModelClient produces the assistant reply for a user message. Implementations
// never fail; upstream problems come back as reply text.
type ModelClient interface {
	Generate(ctx context.Context, message string, history []gemini.Exchange) string
}

type APIV1Service struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store
	Model   ModelClient

	authenticator *auth.Authenticator
	loginLimiter  *auth.LoginLimiter
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store, model ModelClient) *APIV1Service {
	return &APIV1Service{
		Secret:        secret,
		Profile:       profile,
		Store:         store,
		Model:         model,
		authenticator: auth.NewAuthenticator(store, secret),
		loginLimiter:  auth.NewLoginLimiter(),
	}
}

// RegisterRoutes mounts every API route under /api.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/auth/login/", s.login)
	g.POST("/auth/register/", s.register)
	g.POST("/auth/logout/", s.logout)
	g.GET("/auth/profile/", s.getProfile)

	g.GET("/chat/", s.listChatTurns)
	g.POST("/chat/", s.sendChatMessage)
	g.DELETE("/chat/clear/", s.clearChatTurns)
}
