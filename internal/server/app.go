// Package server wires configuration, storage, the session backend and the
// HTTP API together and runs them until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/loanportal/internal/cryptox"
	"github.com/dmitrijs2005/loanportal/internal/logging"
	"github.com/dmitrijs2005/loanportal/internal/server/auth"
	"github.com/dmitrijs2005/loanportal/internal/server/config"
	"github.com/dmitrijs2005/loanportal/internal/server/httpserver"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/loanportal/internal/server/services"
	gsessions "github.com/gorilla/sessions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jonboulle/clockwork"
)

const sessionPurgeInterval = 15 * time.Minute

// expiredPurger is implemented by session backends that do not expire
// records on their own.
type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	clock    clockwork.Clock
	db       *sql.DB
	sessions sessions.Repository
	closers  []io.Closer
	server   *httpserver.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	clock := clockwork.NewRealClock()

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, clock: clock, db: db, closers: []io.Closer{db}}

	rm := repomanager.NewPostgresRepositoryManager(clock)
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := app.initSessionBackend(ctx, rm)
	if err != nil {
		app.close()
		return nil, err
	}
	app.sessions = store

	hasher := cryptox.NewHasher(c.KDFConcurrency)
	us := services.NewUserService(db, rm, hasher, clock, logger)
	ls := services.NewLoanService(db, rm)

	sessionStore := auth.NewServerStore(store, auth.NewTokenCodec([]byte(c.SessionSecret), clock), clock, &gsessions.Options{
		Path:     "/",
		MaxAge:   int(c.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	app.server = httpserver.NewServer(httpserver.Options{
		Address:        c.EndpointAddrHTTP,
		LoginRateLimit: c.LoginRateLimit,
		LoginRateBurst: c.LoginRateBurst,
	}, logger, us, ls, sessionStore, db.PingContext)

	return app, nil
}

func (app *App) initSessionBackend(ctx context.Context, rm *repomanager.PostgresRepositoryManager) (sessions.Repository, error) {
	switch app.config.SessionBackend {
	case config.SessionBackendRedis:
		rdb, err := sessions.NewRedisClient(app.config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.closers = append(app.closers, rdb)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		return sessions.NewRedisRepository(rdb, app.clock), nil

	case config.SessionBackendMemory:
		m, err := sessions.NewMemoryRepository(ctx, app.config.SessionTTL, app.clock)
		if err != nil {
			return nil, fmt.Errorf("memory session store init error: %w", err)
		}
		app.closers = append(app.closers, m)
		return m, nil

	default:
		return rm.Sessions(app.db), nil
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeExpiredSessions periodically deletes dead session rows.
func (app *App) purgeExpiredSessions(ctx context.Context, p expiredPurger) {
	ticker := app.clock.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				app.logger.Warn(ctx, "session purge failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "purged expired sessions", "count", n)
			}
		}
	}
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "env", app.config.AppEnv, "session_backend", app.config.SessionBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if p, ok := app.sessions.(expiredPurger); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.purgeExpiredSessions(ctx, p)
		}()
	}

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}
