package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/watercan/internal/pkg/clock"
	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/goroutine"
	"github.com/shandysiswandi/watercan/internal/pkg/hash"
	"github.com/shandysiswandi/watercan/internal/pkg/idempotency"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/jwt"
	"github.com/shandysiswandi/watercan/internal/pkg/messaging"
	"github.com/shandysiswandi/watercan/internal/pkg/ratelimit"
	"github.com/shandysiswandi/watercan/internal/pkg/router"
	"github.com/shandysiswandi/watercan/internal/pkg/sms"
	"github.com/shandysiswandi/watercan/internal/pkg/storage"
	"github.com/shandysiswandi/watercan/internal/pkg/uid"
	"github.com/shandysiswandi/watercan/internal/pkg/validator"
	"go.uber.org/atomic"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	limiters  ratelimit.Factory
	sms       sms.Sender
	messaging messaging.Messaging
	storage   storage.Storage
	casbin    *casbin.Enforcer

	// server
	router     *router.Router
	httpServer *http.Server
	ready      *atomic.Bool

	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
		ready:  atomic.NewBool(false),
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initRateLimit()
	app.initSMS()
	app.initStorage()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initClosers()
	app.initModules()

	return app
}
