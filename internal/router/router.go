package router

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "claims-review/docs"
	mem "claims-review/internal/adapters/storage/memory"
	pg "claims-review/internal/adapters/storage/postgres"
	"claims-review/internal/domain/access"
	"claims-review/internal/domain/agents"
	"claims-review/internal/domain/claims"
	"claims-review/internal/domain/dashboard"
	"claims-review/internal/domain/lifecycle"
	"claims-review/internal/domain/shares"
	"claims-review/internal/middleware"
	"claims-review/internal/platform/logger"
	"claims-review/internal/platform/pubsub"
	"claims-review/internal/ports/auth"
	"claims-review/internal/seed"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Identity habilita /auth/*. nil => sin rutas de sesión.
	Identity auth.IdentityProvider

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Notifications reparte los shares nuevos a los suscriptores SSE. Con Postgres
	// lo alimenta el ShareListener; si es nil se crea uno local.
	Notifications *pubsub.Hub[shares.Notification]

	// Seed se carga al armar el router (idempotente).
	Seed *seed.Data

	Logger logger.Logger
}

func NewRouter(opts Options) (http.Handler, error) {
	log := logger.OrDiscard(opts.Logger)

	hub := opts.Notifications
	if hub == nil {
		hub = pubsub.NewHub[shares.Notification](pubsub.DefaultBuffer)
	}

	var (
		claimRepo claims.Repository
		agentRepo agents.Repository
		shareRepo shares.Repository
	)
	if opts.DB != nil {
		claimRepo = pg.NewClaimsRepo(opts.DB)
		agentRepo = pg.NewAgentsRepo(opts.DB)
		// las notificaciones salen del trigger vía LISTEN
		shareRepo = pg.NewSharesRepo(opts.DB)
	} else {
		claimRepo = mem.NewClaimsRepo()
		agentRepo = mem.NewAgentsRepo()
		shareRepo = mem.NewSharesRepo(hub)
	}

	if opts.Seed != nil {
		if err := seed.Apply(context.Background(), *opts.Seed, agentRepo, claimRepo, log); err != nil {
			return nil, err
		}
	}

	// Services por módulo
	agentsSvc := agents.NewService(agentRepo, log)
	claimsSvc := claims.NewService(claimRepo, log)
	sharesSvc := shares.NewService(shareRepo, claimsSvc, agentsSvc, hub, log)
	policy := access.NewPolicy(sharesSvc)
	engine := lifecycle.NewEngine(claimsSvc)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier, agentsSvc, log))
	r.Use(middleware.RequestLog(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	access.RegisterRoutes(r)
	claims.RegisterRoutes(r, claimsSvc, policy, log)
	lifecycle.RegisterRoutes(r, engine, policy, log)
	shares.RegisterRoutes(r, sharesSvc, policy, log)
	dashboard.RegisterRoutes(r, claimsSvc, policy, log)
	agents.RegisterRoutes(r, agentsSvc, policy, log)
	if opts.Identity != nil {
		agents.RegisterAuthRoutes(r, opts.Identity, agentsSvc, log)
	}

	return r, nil
}
