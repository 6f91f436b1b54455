package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/auth"
	"github.com/MediSynth-io/contactbook/internal/config"
	"github.com/MediSynth-io/contactbook/internal/contacts"
	"github.com/MediSynth-io/contactbook/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// Deps are the services the HTTP layer dispatches to.
type Deps struct {
	Auth     *auth.Service
	Contacts *contacts.Service
	Logger   *zap.Logger
}

type Api struct {
	Config   config.Config
	Router   *chi.Mux
	auth     *auth.Service
	contacts *contacts.Service
	validate *validator.Validate
	log      *zap.Logger
}

func NewApi(cfg config.Config, deps Deps) (*Api, error) {
	if cfg.APIPort == 0 {
		return nil, errors.New("Must have at least a port to start API")
	}
	if deps.Auth == nil || deps.Contacts == nil {
		return nil, errors.New("api: auth and contacts services are required")
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	api := &Api{
		Config:   cfg,
		Router:   chi.NewRouter(),
		auth:     deps.Auth,
		contacts: deps.Contacts,
		validate: newValidator(),
		log:      log,
	}
	api.setupRoutes()
	return api, nil
}

func (api *Api) corsOptions() cors.Options {
	origins := []string{"http://localhost:*", "http://127.0.0.1:*"}
	if api.Config.CORSOrigin != "" {
		origins = []string{api.Config.CORSOrigin}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func (api *Api) setupRoutes() {
	r := api.Router
	r.Use(cors.Handler(api.corsOptions()))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(api.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/heartbeat"))

	r.NotFound(api.notFound)
	r.MethodNotAllowed(api.notFound)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Server is running. Use /contacts endpoint."})
	})

	if dir := api.Config.Storage.UploadDir; dir != "" && !api.Config.Storage.Remote {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(filesOnly{http.Dir(dir)})))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", api.RegisterHandler)
		r.Post("/login", api.LoginHandler)
		r.Post("/refresh", api.RefreshHandler)
		r.Post("/logout", api.LogoutHandler)
		r.Post("/send-reset-email", api.SendResetEmailHandler)
		r.Post("/reset-pwd", api.ResetPasswordHandler)
	})

	r.Route("/contacts", func(r chi.Router) {
		r.Use(api.authenticate)
		r.Get("/", api.ListContactsHandler)
		r.Post("/", api.CreateContactHandler)
		r.Route("/{contactId}", func(r chi.Router) {
			r.Use(validateID("contactId"))
			r.Get("/", api.GetContactHandler)
			r.Patch("/", api.UpdateContactHandler)
			r.Delete("/", api.DeleteContactHandler)
		})
	})
}

func (api *Api) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{Status: http.StatusNotFound, Message: "Route not found"})
}

// Serve listens on the configured port until ctx is cancelled, then shuts
// down gracefully. The expired-session cleanup loop runs alongside.
func (api *Api) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort),
		Handler:           api.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go api.runSessionCleanup(janitorCtx, api.Config.Auth.SessionCleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		api.log.Info("starting API server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	api.log.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (api *Api) runSessionCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := api.auth.CleanupExpiredSessions(ctx)
		if err != nil {
			api.log.Error("error cleaning up expired sessions", zap.Error(err))
		} else if n > 0 {
			api.log.Info("removed expired sessions", zap.Int64("count", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
