package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/vberezkin/linkcut/internal/database"
	"github.com/vberezkin/linkcut/internal/models"
	"github.com/vberezkin/linkcut/internal/shortcode"
)

var (
	// ErrInvalidURL is returned when the target URL fails basic validation.
	ErrInvalidURL = errors.New("invalid target url")
	// ErrCodeSpaceExhausted is returned when no unique short code could be
	// allocated within the retry bound.
	ErrCodeSpaceExhausted = errors.New("short code space exhausted")
)

// LinkRepository defines the interface for working with links at the business logic layer.
type LinkRepository interface {
	// Insert stores a new link with the given code, target URL and owner.
	// It returns database.ErrCodeExists when the code is already taken.
	Insert(ctx context.Context, code, targetURL, ownerID string) (*models.Link, error)

	// FindByCode retrieves a link by its short code without side effects.
	// It returns database.ErrLinkNotFound when no link matches.
	FindByCode(ctx context.Context, code string) (*models.Link, error)

	// IncrementAndFetch atomically increments the click counter of a link
	// and returns the updated record.
	IncrementAndFetch(ctx context.Context, code string) (*models.Link, error)

	// ListByOwner returns all links created by the given owner.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error)
}

// CodeGenerator allocates short codes that are free at the moment of allocation.
type CodeGenerator interface {
	Allocate(ctx context.Context) (string, error)
}

// LinkService implements the owner-scoped link registry and the redirect
// resolver on top of a LinkRepository and a CodeGenerator.
type LinkService struct {
	repo LinkRepository
	gen  CodeGenerator
}

func NewLinkService(repo LinkRepository, gen CodeGenerator) *LinkService {
	return &LinkService{
		repo: repo,
		gen:  gen,
	}
}

// Create validates the target URL, allocates a short code and stores the link
// for the given owner. A lost insert race surfaces as database.ErrCodeExists
// and triggers a retry with a fresh code, bounded by a maximum attempt count.
func (s *LinkService) Create(ctx context.Context, targetURL, ownerID string) (*models.Link, error) {
	const op = "service.LinkService.Create"
	const maxRetries = 5

	if !isValidURL(targetURL) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidURL)
	}

	for i := 0; i < maxRetries; i++ {
		code, err := s.gen.Allocate(ctx)
		if err != nil {
			if errors.Is(err, shortcode.ErrSpaceExhausted) {
				return nil, fmt.Errorf("%s: %w", op, ErrCodeSpaceExhausted)
			}

			return nil, fmt.Errorf("%s: failed to allocate short code: %w", op, err)
		}

		link, err := s.repo.Insert(ctx, code, targetURL, ownerID)
		if err != nil {
			if errors.Is(err, database.ErrCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to create link: %w", op, err)
		}

		return link, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrCodeSpaceExhausted)
}

// Resolve translates a short code into its link, counting the visit. Lookup
// and increment happen as one atomic store operation, so concurrent resolves
// of the same code all retain their increments. An unknown code yields
// database.ErrLinkNotFound; the code syntax is not validated beyond that.
func (s *LinkService) Resolve(ctx context.Context, code string) (*models.Link, error) {
	const op = "service.LinkService.Resolve"

	link, err := s.repo.IncrementAndFetch(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return link, nil
}

// Stats retrieves a link by its short code without counting a visit.
func (s *LinkService) Stats(ctx context.Context, code string) (*models.Link, error) {
	const op = "service.LinkService.Stats"

	link, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link stats: %w", op, err)
	}

	return link, nil
}

// ListForOwner returns the links created by the given owner, newest first.
func (s *LinkService) ListForOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	const op = "service.LinkService.ListForOwner"

	links, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	return links, nil
}

func isValidURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
