package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenworks/vision-cms-backend/api/controllers"
	"github.com/lumenworks/vision-cms-backend/api/middleware"
	"github.com/lumenworks/vision-cms-backend/internal/admin"
	"github.com/lumenworks/vision-cms-backend/internal/content"
	"github.com/lumenworks/vision-cms-backend/pkg/config"
	"github.com/lumenworks/vision-cms-backend/pkg/db"
	"github.com/lumenworks/vision-cms-backend/pkg/logger"
	"github.com/lumenworks/vision-cms-backend/pkg/redis"
	"github.com/lumenworks/vision-cms-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	adminService *admin.Service,
	contentService *content.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", controllers.AuthSignup(adminService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(adminService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/check", controllers.AuthCheck(adminService, logg))
		r.Put("/unlock", controllers.AuthUnlock(adminService, logg))
	})

	for _, section := range contentService.Sections() {
		section := section
		r.Route("/api/v1/"+section.Name, func(r chi.Router) {
			r.Get("/", controllers.ContentList(contentService, logg, section.Name))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Post("/", controllers.ContentCreate(contentService, cfg.Media, logg, section.Name))
				r.Put("/{id}", controllers.ContentUpdate(contentService, cfg.Media, logg, section.Name))
				r.Delete("/{id}", controllers.ContentDelete(contentService, logg, section.Name))
				if section.Truncatable {
					r.Delete("/", controllers.ContentTruncate(contentService, logg, section.Name))
				}
			})
		})
	}

	r.Route("/api/v1/careers", func(r chi.Router) {
		r.Get("/", controllers.CareerList(contentService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/", controllers.CareerCreate(contentService, logg))
			r.Put("/{id}", controllers.CareerUpdate(contentService, logg))
			r.Delete("/{id}", controllers.CareerDelete(contentService, logg))
		})
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.CategoryList(contentService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/", controllers.CategoryCreate(contentService, logg))
			r.Put("/{id}", controllers.CategoryUpdate(contentService, logg))
			r.Delete("/{id}", controllers.CategoryDelete(contentService, logg))
		})
	})

	return r
}
