package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/pkg/errors"

	"github.com/parleychat/parley/server/auth"
	"github.com/parleychat/parley/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type userResponse struct {
	ID        int32  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type authResponse struct {
	User    userResponse `json:"user"`
	Message string       `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *APIV1Service) login(c *echo.Context) error {
	if !s.loginLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts, try again later")
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}

	ctx := c.Request().Context()
	user, err := s.authenticator.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		slog.Error("failed to log in", slog.String("username", req.Username), slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "Error logging in")
	}
	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: toUserResponse(user), Message: "Login successful"})
}

func (s *APIV1Service) register(c *echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username, email, and password are required")
	}

	ctx := c.Request().Context()
	if len(req.Password) > auth.MaxPasswordBytes {
		return echo.NewHTTPError(http.StatusBadRequest, "Ensure the password has no more than 72 bytes.")
	}

	existing, err := s.Store.GetUser(ctx, &store.FindUser{Username: &req.Username})
	if err != nil {
		return s.registrationFailed(err)
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Username already exists")
	}
	existing, err = s.Store.GetUser(ctx, &store.FindUser{Email: &req.Email})
	if err != nil {
		return s.registrationFailed(err)
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email already exists")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return s.registrationFailed(err)
	}
	user, err := s.Store.CreateUser(ctx, &store.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		return s.registrationFailed(err)
	}
	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(user), Message: "Registration successful"})
}

func (*APIV1Service) registrationFailed(err error) error {
	slog.Error("failed to create user", slog.String("error", err.Error()))
	return echo.NewHTTPError(http.StatusInternalServerError, "Error creating user")
}

// logout works without a valid session so a client can always clear its cookie.
func (s *APIV1Service) logout(c *echo.Context) error {
	req := c.Request()
	token := auth.ExtractToken(req.Header.Get("Authorization"), req.Header.Get("Cookie"))
	if err := s.authenticator.RevokeSession(req.Context(), token); err != nil {
		slog.Warn("failed to revoke session", slog.String("error", err.Error()))
	}
	http.SetCookie(c.Response(), s.buildAccessTokenCookie("", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

func (s *APIV1Service) getProfile(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *APIV1Service) startSession(c *echo.Context, user *store.User) error {
	token, expiresAt, err := s.authenticator.IssueSession(c.Request().Context(), user)
	if err != nil {
		slog.Error("failed to issue session", slog.Int("user", int(user.ID)), slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "Error starting session")
	}
	http.SetCookie(c.Response(), s.buildAccessTokenCookie(token, expiresAt))
	return nil
}

func (s *APIV1Service) buildAccessTokenCookie(token string, expiresAt time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     auth.AccessTokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Profile != nil && s.Profile.Mode == "prod",
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	return cookie
}

// requireAuth resolves the request owner or fails with 401.
func (s *APIV1Service) requireAuth(c *echo.Context) (*store.User, error) {
	req := c.Request()
	user, err := s.authenticator.AuthenticateToUser(req.Context(), req.Header.Get("Authorization"), req.Header.Get("Cookie"))
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthenticated) {
			slog.Error("failed to authenticate request", slog.String("error", err.Error()))
		}
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided")
	}
	return user, nil
}

func toUserResponse(user *store.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}
