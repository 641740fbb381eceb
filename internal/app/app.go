package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-classic/internal/config"
	"github.com/vancomm/minesweeper-classic/internal/database"
	"github.com/vancomm/minesweeper-classic/internal/handlers"
	"github.com/vancomm/minesweeper-classic/internal/middleware"
	"github.com/vancomm/minesweeper-classic/internal/repository"
	"github.com/vancomm/minesweeper-classic/internal/session"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	logger     *slog.Logger
	router     *http.ServeMux
	db         *pgxpool.Pool
	cookies    *config.Cookies
	sessions   *session.Store
	migrations fs.FS
}

func New(logger *slog.Logger, migrations fs.FS) *App {
	return &App{
		logger:     logger,
		router:     http.NewServeMux(),
		migrations: migrations,
	}
}

func (a *App) setup(ctx context.Context) (*config.Sessions, error) {
	db, migrator, err := database.ConnectAndMigrate(ctx, a.migrations)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db
	if srcErr, dbErr := migrator.Close(); srcErr != nil || dbErr != nil {
		a.logger.Warn("unable to close migrator",
			slog.Any("source_error", srcErr), slog.Any("db_error", dbErr))
	}

	jwt, err := config.NewJWT()
	if err != nil {
		return nil, err
	}
	cookies, err := config.NewCookies(jwt)
	if err != nil {
		return nil, err
	}
	a.cookies = cookies

	ws, err := config.NewWebSocket()
	if err != nil {
		return nil, err
	}

	params, err := config.NewGame()
	if err != nil {
		return nil, fmt.Errorf("invalid board config: %w", err)
	}

	sessions, err := config.NewSessions()
	if err != nil {
		return nil, err
	}
	a.sessions = session.NewStore(a.logger, createRand(), sessions.TTL)

	repo := repository.New(db)
	a.loadRoutes(
		handlers.NewGameHandler(a.logger, a.sessions, repo, ws, *params),
		handlers.NewAuth(a.logger, repo, cookies),
	)

	return sessions, nil
}

// Handler is the router behind the middleware stack, mounted at the
// configured base path.
func (a *App) Handler() http.Handler {
	var h http.Handler = a.router
	if base := config.BasePath(); base != "" {
		h = http.StripPrefix(base, h)
	}
	return middleware.Wrap(
		h,
		middleware.Auth(a.logger, a.cookies),
		middleware.Cors(),
		middleware.Logging(a.logger),
	)
}

func (a *App) Start(ctx context.Context) error {
	sessions, err := a.setup(ctx)
	if err != nil {
		return err
	}
	defer a.db.Close()

	port := config.Port()
	server := &http.Server{
		Addr:        port,
		Handler:     a.Handler(),
		IdleTimeout: time.Minute,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", port))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down", slog.Int("live_sessions", a.sessions.Len()))
		return server.Shutdown(sCtx)
	})

	g.Go(func() error {
		return a.sessions.Run(gCtx, sessions.SweepInterval)
	})

	return g.Wait()
}
