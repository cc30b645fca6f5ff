package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vberezkin/linkcut/internal/database"
	"github.com/vberezkin/linkcut/internal/models"
	"github.com/vberezkin/linkcut/internal/service"
	"github.com/vberezkin/linkcut/pkg/response"
)

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// linkRequest represents the request payload for creating a shortened link.
type linkRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// linkResponse represents the response payload for a link operation.
type linkResponse struct {
	Code       string    `json:"code"`
	ShortURL   string    `json:"short_url"`
	URL        string    `json:"url"`
	ClickCount int64     `json:"click_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// toLinkResponse converts a link model from the business layer into a response payload.
func toLinkResponse(baseURL string, link *models.Link) linkResponse {
	return linkResponse{
		Code:       link.Code,
		ShortURL:   baseURL + "/" + link.Code,
		URL:        link.TargetURL,
		ClickCount: link.ClickCount,
		CreatedAt:  link.CreatedAt,
	}
}

// handleCreateLink handles POST requests to shorten a URL for the
// authenticated owner.
//
// The request must contain a valid URL. The handler validates the input,
// calls the link service and returns the generated short code with
// relevant metadata.
func handleCreateLink(svc LinkService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleCreateLink"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req linkRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		link, err := svc.Create(r.Context(), req.URL, ownerIDFromContext(r.Context()))
		if err != nil {
			if errors.Is(err, service.ErrInvalidURL) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.BadRequestResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(baseURL, link)))
	}
}

// handleListLinks handles GET requests to list the authenticated owner's links.
func handleListLinks(svc LinkService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleListLinks"
	const successMsg = "The links were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		links, err := svc.ListForOwner(r.Context(), ownerIDFromContext(r.Context()))
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := make([]linkResponse, 0, len(links))
		for i := range links {
			data = append(data, toLinkResponse(baseURL, &links[i]))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

// handleLinkStats handles GET requests to retrieve usage statistics for a link.
//
// The handler fetches the click count and metadata for the given short code
// without counting a visit, returning the data or a 404 error if the link
// doesn't exist.
func handleLinkStats(svc LinkService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleLinkStats"
	const successMsg = "The link statistics retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		link, err := svc.Stats(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(baseURL, link)))
	}
}

// handleRedirect handles GET requests on short codes, redirecting the visitor
// to the target URL. Each successful redirect counts one visit; the increment
// happens atomically in the store, never as a separate read then write.
func handleRedirect(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		link, err := svc.Resolve(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, link.TargetURL, http.StatusFound)
	}
}
