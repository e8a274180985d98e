// Package handlers wires the HTTP surface: auth, posts, comments,
// reactions, predictions, the live feed websocket and operational
// endpoints.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Niklauzi/lyte/internal/auth"
	"github.com/Niklauzi/lyte/internal/config"
	"github.com/Niklauzi/lyte/internal/database"
	"github.com/Niklauzi/lyte/internal/images"
	"github.com/Niklauzi/lyte/internal/logging"
	"github.com/Niklauzi/lyte/internal/middleware"
	"github.com/Niklauzi/lyte/internal/reaction"
)

type Handler struct {
	store    *database.Store
	sessions *auth.Sessions
	engine   *reaction.Engine
	images   *images.Store
	hub      *Hub
	validate *validator.Validate
	metrics  *middleware.Metrics
	prom     http.Handler
	log      zerolog.Logger
	cfg      config.Server
}

// New builds the handler set and starts the live feed hub.
func New(store *database.Store, sessions *auth.Sessions, engine *reaction.Engine, imgStore *images.Store, cfg config.Server) *Handler {
	reg := prometheus.NewRegistry()

	h := &Handler{
		store:    store,
		sessions: sessions,
		engine:   engine,
		images:   imgStore,
		hub:      NewHub(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  middleware.NewMetrics(reg),
		prom:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		log:      logging.With("http"),
		cfg:      cfg,
	}
	go h.hub.Run()
	return h
}

// Routes assembles the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(h.log))
	r.Use(h.metrics.Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireUser := middleware.RequireUser(h.sessions)
	optionalUser := middleware.OptionalUser(h.sessions)

	r.Get("/", h.Health)
	r.Method(http.MethodGet, "/metrics", h.prom)
	r.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.Dir(h.images.Dir()))))
	r.Get("/ws", h.ServeWS)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(h.cfg.LoginRequests, h.cfg.LoginWindow))
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/anonymous", h.Anonymous)
		})
		r.With(requireUser).Get("/me", h.Me)
	})

	r.Route("/posts", func(r chi.Router) {
		r.With(optionalUser).Get("/", h.ListPosts)
		r.With(requireUser, middleware.RequireAdmin).Post("/", h.CreatePost)

		r.Route("/{postID}", func(r chi.Router) {
			r.With(optionalUser).Get("/", h.GetPost)
			r.With(requireUser, middleware.RequireAdmin).Put("/", h.UpdatePost)
			r.With(requireUser, middleware.RequireAdmin).Delete("/", h.DeletePost)

			r.Get("/comments", h.ListComments)
			r.With(requireUser).Post("/comments", h.CreateComment)

			r.With(requireUser).Post("/like", h.react(reaction.Like))
			r.With(requireUser).Post("/dislike", h.react(reaction.Dislike))
		})
	})

	r.Route("/predict", func(r chi.Router) {
		r.Get("/engagement/{postID}", h.PredictEngagement)
		r.Get("/trending", h.PredictTrending)
	})

	return r
}

// Health is the root liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "lyte API is running",
	})
}
