package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/vberezkin/linkcut/internal/models"
)

// LinkService defines the interface for the core link shortening business logic.
type LinkService interface {
	// Create validates the target URL and stores a new link for the owner.
	// It returns the created link or an error if validation fails or no
	// unique short code could be allocated.
	Create(ctx context.Context, targetURL, ownerID string) (*models.Link, error)

	// Resolve translates a short code into its link, counting the visit.
	// It returns an error if the link is not found.
	Resolve(ctx context.Context, code string) (*models.Link, error)

	// Stats retrieves a link by its short code without counting a visit.
	Stats(ctx context.Context, code string) (*models.Link, error)

	// ListForOwner returns the links created by the given owner.
	ListForOwner(ctx context.Context, ownerID string) ([]models.Link, error)
}

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
// baseURL is the public prefix short URLs are constructed from.
func NewRouter(logger *httplog.Logger, linkSvc LinkService, baseURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", ownerIDHeader},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)

		r.Route("/links", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(requireOwner)

				r.Post("/", handleCreateLink(linkSvc, validate, baseURL))
				r.Get("/", handleListLinks(linkSvc, baseURL))
			})

			r.Get("/{shortCode}/stats", handleLinkStats(linkSvc, baseURL))
		})
	})

	r.Get("/{shortCode}", handleRedirect(linkSvc))

	return r
}
