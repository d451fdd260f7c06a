package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/libraria-backend/api/controllers"
	"github.com/angelmondragon/libraria-backend/api/middleware"
	booksvc "github.com/angelmondragon/libraria-backend/internal/books"
	loansvc "github.com/angelmondragon/libraria-backend/internal/loans"
	usersvc "github.com/angelmondragon/libraria-backend/internal/users"
	"github.com/angelmondragon/libraria-backend/pkg/config"
	"github.com/angelmondragon/libraria-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/libraria-backend/pkg/redis"
)

// LoansRouter assembles the loan orchestrator's HTTP surface. The
// idempotency middleware is attached only when the feature flag is on
// and a Redis store was wired.
func LoansRouter(
	cfg *config.Config,
	logg *logger.Logger,
	loanService loansvc.Service,
	store pkgredis.IdempotencyStore,
	registry *prometheus.Registry,
	deps map[string]controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(baseMiddleware(logg)...)

	mountOps(r, cfg, logg, "loans-api", registry, deps)

	r.Route("/api", func(r chi.Router) {
		if cfg.FeatureFlags.Idempotency && store != nil {
			r.With(middleware.Idempotency(store, logg)).Post("/loans", controllers.IssueLoan(loanService, logg))
			r.With(middleware.Idempotency(store, logg)).Post("/returns", controllers.ReturnLoan(loanService, logg))
		} else {
			r.Post("/loans", controllers.IssueLoan(loanService, logg))
			r.Post("/returns", controllers.ReturnLoan(loanService, logg))
		}

		r.Route("/loans", func(r chi.Router) {
			r.Get("/overdue", controllers.OverdueLoans(loanService, logg))
			r.Get("/stats", controllers.LoanStats(loanService, logg))
			r.Get("/active-users", controllers.LoanActiveUsers(loanService, logg))
			r.Get("/user/{user_id}", controllers.UserLoanHistory(loanService, logg))
			r.Get("/{id}", controllers.LoanDetail(loanService, logg))
			r.Put("/{id}/extend", controllers.ExtendLoan(loanService, logg))
		})
	})

	return r
}

// BooksRouter assembles the book catalog's HTTP surface.
func BooksRouter(
	cfg *config.Config,
	logg *logger.Logger,
	bookService booksvc.Service,
	registry *prometheus.Registry,
	deps map[string]controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(baseMiddleware(logg)...)

	mountOps(r, cfg, logg, "books-api", registry, deps)

	r.Route("/api/books", func(r chi.Router) {
		r.Post("/", controllers.CreateBook(bookService, logg))
		r.Get("/", controllers.SearchBooks(bookService, logg))
		r.Get("/batch", controllers.BatchBooks(bookService, logg))
		r.Get("/popular", controllers.PopularBooks(bookService, logg))
		r.Get("/stats", controllers.BookStats(bookService, logg))
		r.Get("/{id}", controllers.GetBook(bookService, logg))
		r.Put("/{id}", controllers.UpdateBook(bookService, logg))
		r.Delete("/{id}", controllers.DeleteBook(bookService, logg))
		r.Patch("/{id}/availability", controllers.AdjustBookAvailability(bookService, logg))
	})

	return r
}

// UsersRouter assembles the user directory's HTTP surface.
func UsersRouter(
	cfg *config.Config,
	logg *logger.Logger,
	userService usersvc.Service,
	registry *prometheus.Registry,
	deps map[string]controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(baseMiddleware(logg)...)

	mountOps(r, cfg, logg, "users-api", registry, deps)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", controllers.CreateUser(userService, logg))
		r.Get("/active", controllers.MostActiveUsers(userService, logg))
		r.Get("/stats", controllers.UserStats(userService, logg))
		r.Get("/{id}", controllers.GetUser(userService, logg))
		r.Put("/{id}", controllers.UpdateUser(userService, logg))
		r.Patch("/{id}/borrows", controllers.AdjustUserBorrows(userService, logg))
	})

	return r
}

func baseMiddleware(logg *logger.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	}
}

func mountOps(r chi.Router, cfg *config.Config, logg *logger.Logger, service string, registry *prometheus.Registry, deps map[string]controllers.Pinger) {
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg, service))
		r.Get("/ready", controllers.HealthReady(cfg, logg, service, deps))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
}
