// Package comicplatform предоставляет маршруты для основного приложения.
package comicplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/comic-platform/internal/config"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/admin/userread"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/admin/userrole"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/auth/google"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/auth/updatepassword"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/auth/updateprofile"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/auth/verifyotp"
	chaptercontent "github.com/magabrotheeeer/comic-platform/internal/http/handlers/chapter/content"
	chaptercreate "github.com/magabrotheeeer/comic-platform/internal/http/handlers/chapter/create"
	chapterremove "github.com/magabrotheeeer/comic-platform/internal/http/handlers/chapter/remove"
	chapterupdate "github.com/magabrotheeeer/comic-platform/internal/http/handlers/chapter/update"
	comiccreate "github.com/magabrotheeeer/comic-platform/internal/http/handlers/comic/create"
	comiclike "github.com/magabrotheeeer/comic-platform/internal/http/handlers/comic/like"
	comiclist "github.com/magabrotheeeer/comic-platform/internal/http/handlers/comic/list"
	comicread "github.com/magabrotheeeer/comic-platform/internal/http/handlers/comic/read"
	comicremove "github.com/magabrotheeeer/comic-platform/internal/http/handlers/comic/remove"
	comictotal "github.com/magabrotheeeer/comic-platform/internal/http/handlers/comic/total"
	comicupdate "github.com/magabrotheeeer/comic-platform/internal/http/handlers/comic/update"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/health"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/payment/initiate"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/payment/planlist"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/payment/planset"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/payment/premiumcount"
	"github.com/magabrotheeeer/comic-platform/internal/http/handlers/payment/verify"
	reviewcreate "github.com/magabrotheeeer/comic-platform/internal/http/handlers/review/create"
	reviewlike "github.com/magabrotheeeer/comic-platform/internal/http/handlers/review/like"
	reviewlist "github.com/magabrotheeeer/comic-platform/internal/http/handlers/review/list"
	"github.com/magabrotheeeer/comic-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/comic-platform/internal/lib/jwt"
	adminservice "github.com/magabrotheeeer/comic-platform/internal/services/admin"
	authservice "github.com/magabrotheeeer/comic-platform/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/comic-platform/internal/services/catalog"
	chapterservice "github.com/magabrotheeeer/comic-platform/internal/services/chapter"
	paymentservice "github.com/magabrotheeeer/comic-platform/internal/services/payment"
	reviewservice "github.com/magabrotheeeer/comic-platform/internal/services/review"
	"github.com/magabrotheeeer/comic-platform/internal/storage/repository"
)

// Services набор бизнес-сервисов, которыми пользуются обработчики.
type Services struct {
	Auth    *authservice.AuthService
	Catalog *catalogservice.CatalogService
	Chapter *chapterservice.ChapterService
	Review  *reviewservice.ReviewService
	Payment *paymentservice.PaymentService
	Admin   *adminservice.AdminService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker, db *repository.Storage, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimitRPS, cfg.RateLimitBurst))
			r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/verify-otp", verifyotp.New(logger, s.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/google", google.New(logger, s.Auth).ServeHTTP)
			r.Post("/forgot-password", forgotpassword.New(logger, s.Auth).ServeHTTP)
			r.Post("/reset-password/{token}", resetpassword.New(logger, s.Auth).ServeHTTP)

			r.Get("/comics", comiclist.New(logger, s.Catalog).ServeHTTP)
			r.Get("/comics/total", comictotal.New(logger, s.Catalog).ServeHTTP)
			r.Get("/comics/{id}", comicread.New(logger, s.Catalog).ServeHTTP)
			r.Get("/comics/{id}/reviews", reviewlist.New(logger, s.Review).ServeHTTP)
			r.Get("/plans", planlist.New(logger, s.Payment).ServeHTTP)
		})

		// Контент главы доступен и анониму, если глава не премиальная
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(jwtMaker, logger))
			r.Get("/chapters/{id}/content", chaptercontent.New(logger, s.Chapter).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Post("/logout", logout.New(logger).ServeHTTP)
			r.Get("/users/me", profile.New(logger, s.Auth).ServeHTTP)
			r.Put("/users/me", updateprofile.New(logger, s.Auth).ServeHTTP)
			r.Put("/users/me/password", updatepassword.New(logger, s.Auth).ServeHTTP)

			r.Post("/comics/{id}/like", comiclike.New(logger, s.Catalog).ServeHTTP)
			r.Post("/comics/{id}/reviews", reviewcreate.New(logger, s.Review).ServeHTTP)
			r.Post("/reviews/{id}/like", reviewlike.New(logger, s.Review).ServeHTTP)

			r.Post("/payments", initiate.New(logger, s.Payment).ServeHTTP)
			r.Post("/payments/{id}/verify", verify.New(logger, s.Payment).ServeHTTP)

			// Административные операции
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Post("/comics", comiccreate.New(logger, s.Catalog).ServeHTTP)
				r.Put("/comics/{id}", comicupdate.New(logger, s.Catalog).ServeHTTP)
				r.Delete("/comics/{id}", comicremove.New(logger, s.Catalog).ServeHTTP)

				r.Post("/chapters", chaptercreate.New(logger, s.Chapter).ServeHTTP)
				r.Put("/chapters/{id}", chapterupdate.New(logger, s.Chapter).ServeHTTP)
				r.Delete("/chapters/{id}", chapterremove.New(logger, s.Chapter).ServeHTTP)

				r.Get("/admin/users", userlist.New(logger, s.Admin).ServeHTTP)
				r.Get("/admin/users/{uid}", userread.New(logger, s.Admin).ServeHTTP)
				r.Put("/admin/users/{uid}/role", userrole.New(logger, s.Admin).ServeHTTP)

				r.Put("/plans", planset.New(logger, s.Payment).ServeHTTP)
				r.Get("/admin/premium-users/count", premiumcount.New(logger, s.Payment).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
