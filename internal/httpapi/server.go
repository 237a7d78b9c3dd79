// Package httpapi serves the gameshelf operations as a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ryanm101/gameshelf/internal/catalog"
	"github.com/ryanm101/gameshelf/internal/db"
	"github.com/ryanm101/gameshelf/internal/logging"
	"github.com/ryanm101/gameshelf/internal/metrics"
)

// GameService is the games repository as seen by the API.
type GameService interface {
	FetchGames(ctx context.Context, page int) (*catalog.GameListResponse, error)
	SearchGames(ctx context.Context, query string, page int) (*catalog.GameListResponse, error)
	GameDetails(ctx context.Context, id int64) (*catalog.Game, error)
	RateGame(ctx context.Context, userID, gameID int64, rating float64) error
}

// UserService is the users repository as seen by the API.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	Login(ctx context.Context, email, password string) (int64, error)
	User(ctx context.Context, id int64) (*db.User, error)
}

// Store reports store statistics for /health and /metrics.
type Store interface {
	Stats(ctx context.Context) (db.Stats, error)
}

// Options configures the server.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Server handles HTTP requests.
type Server struct {
	echo     *echo.Echo
	games    GameService
	users    UserService
	store    Store
	secret   []byte
	tokenTTL time.Duration
}

// New creates a server. An empty JWT secret is replaced by a random one,
// so tokens do not survive a restart.
func New(games GameService, users UserService, store Store, opts Options) *Server {
	if opts.JWTSecret == "" {
		logging.Warn("no JWT secret configured, using a random one")
		opts.JWTSecret = uuid.NewString()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 72 * time.Hour
	}

	s := &Server{
		echo:     echo.New(),
		games:    games,
		users:    users,
		store:    store,
		secret:   []byte(opts.JWTSecret),
		tokenTTL: opts.TokenTTL,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	e := s.echo
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(requestLogger())

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", s.handleMetrics)

	api := e.Group("/api/v1")
	users := api.Group("/users")
	users.POST("/register", s.handleRegister)
	users.POST("/login", s.handleLogin)

	games := api.Group("/games")
	games.GET("", s.handleListGames)
	games.GET("/:id", s.handleGetGame)

	me := api.Group("/me")
	me.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    s.secret,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(Claims) },
		ErrorHandler: func(c echo.Context, err error) error {
			logging.Debug("rejected token", "path", c.Path(), "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
		},
	}))
	me.GET("", s.handleMe)
	me.PUT("/games/:id/rating", s.handleRate)
}

// ServeHTTP lets the server be used as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				level = slog.LevelWarn
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logging.Get().LogAttrs(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	status, code := "healthy", http.StatusOK
	if _, err := s.store.Stats(c.Request().Context()); err != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	return c.JSON(code, echo.Map{"status": status})
}

func (s *Server) handleMetrics(c echo.Context) error {
	if st, err := s.store.Stats(c.Request().Context()); err != nil {
		logging.Warn("failed to update db metrics", "error", err)
	} else {
		metrics.UpdateDBMetrics(metrics.Counts{Users: st.Users, Games: st.Games, Ratings: st.Ratings})
	}
	return echo.WrapHandler(promhttp.Handler())(c)
}
