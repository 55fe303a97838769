// Package server wires the HTTP handlers into a chi router.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"ourtasker-backend/internal/activity"
	"ourtasker-backend/internal/ai"
	"ourtasker-backend/internal/auth"
	"ourtasker-backend/internal/integrations"
	"ourtasker-backend/internal/observability"
	"ourtasker-backend/internal/tasks"
)

// Deps is everything the router needs. Stores are interfaces so tests can
// run the full route table against in-memory fakes.
type Deps struct {
	Users      auth.UserStore
	Tasks      tasks.Store
	Activities activity.Store

	JWTSecret []byte
	JWTTTL    time.Duration

	CORSOrigins []string
	AIRateLimit RateLimitConfig

	Slack  *integrations.Slack
	Sheets *integrations.Sheets

	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	recorder := activity.NewRecorder(d.Activities, d.Logger)
	authH := auth.NewHandler(d.Users, d.JWTSecret, d.JWTTTL, d.Logger)
	authMW := auth.NewMiddleware(d.JWTSecret, d.Users, d.Logger)
	taskH := tasks.NewHandler(d.Tasks, recorder, d.Logger)
	aiH := ai.NewHandler(d.Tasks, d.Activities, recorder, d.Metrics, d.Logger)
	intH := integrations.NewHandler(d.Slack, d.Sheets, d.Metrics, d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(d.Logger, d.Metrics))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Group(func(r chi.Router) {
				r.Use(authMW.Handler)
				r.Get("/me", authH.Me)
				r.Post("/logout", authH.Logout)
				r.Delete("/account", authH.DeleteAccount)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authMW.Handler)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskH.List)
				r.Post("/", taskH.Create)
				r.Get("/search", taskH.Search)
				r.Get("/stats", aiH.TaskStats)
				r.Put("/{id}", taskH.Update)
				r.Delete("/{id}", taskH.Delete)
				r.Post("/{id}/comments", taskH.AddComment)
			})

			r.Get("/activities", activity.ListHandler(d.Activities, d.Logger))

			r.Route("/ai", func(r chi.Router) {
				r.Use(RateLimit(d.AIRateLimit))
				r.Post("/chat", aiH.Chat)
				r.Post("/suggest-tasks", aiH.SuggestTasks)
				r.Post("/generate-subtasks", aiH.GenerateSubtasks)
				r.Get("/productivity-insights", aiH.ProductivityInsights)
			})

			r.Route("/integrations", func(r chi.Router) {
				r.Post("/slack/notify", intH.SlackNotify)
				r.Post("/sheets/log-task", intH.SheetsLogTask)
				r.Post("/test/{service}", intH.Test)
			})
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
