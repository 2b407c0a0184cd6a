package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pennywise/internal/app"
	"github.com/MrJamesThe3rd/pennywise/internal/http/account"
	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/export"
	"github.com/MrJamesThe3rd/pennywise/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pennywise/internal/http/transaction"
)

type Options struct {
	Secret         []byte
	AllowedOrigins []string
}

func New(svc *app.Services, opts Options) http.Handler {
	accountsV1 := account.NewHandler(svc.Accounts)
	transactionsV1 := transaction.NewHandler(svc.Transactions)
	importV1 := importcsv.NewHandler(svc.Importer, svc.Transactions)
	exportV1 := export.NewHandler(svc.Export)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.Secret))

		r.Route("/accounts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			accountsV1.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/import", importV1.Routes)
		r.Route("/export", exportV1.Routes)
	})

	return router
}
