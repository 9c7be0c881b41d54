package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/parleychat/parley/internal/profile"
	"github.com/parleychat/parley/plugin/gemini"
	apiv1 "github.com/parleychat/parley/server/router/api/v1"
	"github.com/parleychat/parley/store"
)

const (
	requestIDHeader = "X-Request-Id"
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	httpServer *http.Server
}

// NewServer wires the API onto a fresh echo instance. A missing model
// credential is returned as gemini.ErrMissingAPIKey.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	model, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:  profile.GeminiAPIKey,
		Model:   profile.GeminiModel,
		BaseURL: profile.GeminiBaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create model client")
	}
	return newServer(profile, store, model)
}

func newServer(profile *profile.Profile, store *store.Store, model apiv1.ModelClient) (*Server, error) {
	ipExtractor, err := newIPExtractor(profile.TrustedProxies)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Secret:  profile.Secret,
		Profile: profile,
		Store:   store,
	}

	e := echo.New()
	e.HTTPErrorHandler = apiv1.HTTPErrorHandler
	e.IPExtractor = ipExtractor
	e.Use(middleware.Recover())
	e.Use(requestLogger)
	if len(profile.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     profile.AllowedOrigins,
			AllowCredentials: true,
		}))
	}

	e.GET("/healthz", func(c *echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	apiv1.NewAPIV1Service(s.Secret, profile, store, model).RegisterRoutes(e)

	s.echoServer = e
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(profile.Addr, strconv.Itoa(profile.Port)),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// newIPExtractor uses the socket address unless trusted proxies are
// configured, in which case X-Forwarded-For is honoured from those ranges only.
func newIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}
	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid trusted proxy range %q", cidr)
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(options...), nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", slog.String("addr", s.httpServer.Addr), slog.String("mode", s.Profile.Mode))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to serve")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.Shutdown(context.Background())
	})
	return g.Wait()
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown server")
	}
	return nil
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		req := c.Request()
		requestID := req.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Response().Header().Set(requestIDHeader, requestID)

		start := time.Now()
		err := next(c)
		attrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Duration("latency", time.Since(start)),
		}
		if err != nil {
			var httpErr *echo.HTTPError
			var statusCoder echo.HTTPStatusCoder
			if errors.As(err, &httpErr) {
				attrs = append(attrs, slog.Int("status", httpErr.Code))
			} else if errors.As(err, &statusCoder) {
				attrs = append(attrs, slog.Int("status", statusCoder.StatusCode()))
			}
			attrs = append(attrs, slog.String("error", err.Error()))
			slog.Warn("request failed", attrs...)
			return err
		}
		slog.Info("request", attrs...)
		return nil
	}
}
