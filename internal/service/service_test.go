package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vberezkin/linkcut/internal/database"
	"github.com/vberezkin/linkcut/internal/models"
	"github.com/vberezkin/linkcut/internal/shortcode"
)

type MockLinkRepository struct {
	mock.Mock
}

func (r *MockLinkRepository) Insert(ctx context.Context, code, targetURL, ownerID string) (*models.Link, error) {
	args := r.Called(ctx, code, targetURL, ownerID)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	args := r.Called(ctx, code)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) IncrementAndFetch(ctx context.Context, code string) (*models.Link, error) {
	args := r.Called(ctx, code)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	args := r.Called(ctx, ownerID)
	links, _ := args.Get(0).([]models.Link)
	return links, args.Error(1)
}

type MockCodeGenerator struct {
	mock.Mock
}

func (g *MockCodeGenerator) Allocate(ctx context.Context) (string, error) {
	args := g.Called(ctx)
	return args.String(0), args.Error(1)
}

type LinkServiceTestSuite struct {
	suite.Suite
	errUnknown   error
	linkRepoMock *MockLinkRepository
	codeGenMock  *MockCodeGenerator
	svc          *LinkService
}

func (suite *LinkServiceTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *LinkServiceTestSuite) SetupSubTest() {
	suite.linkRepoMock = new(MockLinkRepository)
	suite.codeGenMock = new(MockCodeGenerator)
	suite.svc = NewLinkService(suite.linkRepoMock, suite.codeGenMock)
}

func (suite *LinkServiceTestSuite) TearDownSubTest() {
	suite.linkRepoMock.AssertExpectations(suite.T())
	suite.codeGenMock.AssertExpectations(suite.T())
}

func (suite *LinkServiceTestSuite) TestCreate() {
	suite.Run("invalid url", func() {
		for _, raw := range []string{"", "not a url", "example.com/path", "https://"} {
			link, err := suite.svc.Create(context.Background(), raw, "user1")

			suite.Error(err)
			suite.ErrorIs(err, ErrInvalidURL)
			suite.Nil(link)
		}
	})

	suite.Run("allocation space exhausted", func() {
		suite.codeGenMock.
			On("Allocate", context.Background()).
			Once().
			Return("", shortcode.ErrSpaceExhausted)

		link, err := suite.svc.Create(context.Background(), "https://example.com", "user1")

		suite.Error(err)
		suite.ErrorIs(err, ErrCodeSpaceExhausted)
		suite.Nil(link)
	})

	suite.Run("allocation unknown error", func() {
		suite.codeGenMock.
			On("Allocate", context.Background()).
			Once().
			Return("", suite.errUnknown)

		link, err := suite.svc.Create(context.Background(), "https://example.com", "user1")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("maximum retries error", func() {
		suite.codeGenMock.
			On("Allocate", context.Background()).
			Times(5).
			Return("Ab3xQ9z", nil)
		suite.linkRepoMock.
			On("Insert", context.Background(), "Ab3xQ9z", "https://example.com", "user1").
			Times(5).
			Return(nil, database.ErrCodeExists)

		link, err := suite.svc.Create(context.Background(), "https://example.com", "user1")

		suite.Error(err)
		suite.ErrorIs(err, ErrCodeSpaceExhausted)
		suite.Nil(link)
	})

	suite.Run("retries on insert race", func() {
		suite.codeGenMock.
			On("Allocate", context.Background()).
			Once().
			Return("taken12", nil)
		suite.linkRepoMock.
			On("Insert", context.Background(), "taken12", "https://example.com", "user1").
			Once().
			Return(nil, database.ErrCodeExists)
		suite.codeGenMock.
			On("Allocate", context.Background()).
			Once().
			Return("free345", nil)
		suite.linkRepoMock.
			On("Insert", context.Background(), "free345", "https://example.com", "user1").
			Once().
			Return(&models.Link{
				Code:      "free345",
				TargetURL: "https://example.com",
				OwnerID:   "user1",
			}, nil)

		link, err := suite.svc.Create(context.Background(), "https://example.com", "user1")

		suite.NoError(err)
		suite.NotNil(link)
		suite.Equal("free345", link.Code)
	})

	suite.Run("unknown repository error", func() {
		suite.codeGenMock.
			On("Allocate", context.Background()).
			Once().
			Return("Ab3xQ9z", nil)
		suite.linkRepoMock.
			On("Insert", context.Background(), "Ab3xQ9z", "https://example.com", "user1").
			Once().
			Return(nil, suite.errUnknown)

		link, err := suite.svc.Create(context.Background(), "https://example.com", "user1")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		suite.codeGenMock.
			On("Allocate", context.Background()).
			Once().
			Return("Ab3xQ9z", nil)
		suite.linkRepoMock.
			On("Insert", context.Background(), "Ab3xQ9z", "https://example.com", "user1").
			Once().
			Return(&models.Link{
				Code:      "Ab3xQ9z",
				TargetURL: "https://example.com",
				OwnerID:   "user1",
			}, nil)

		link, err := suite.svc.Create(context.Background(), "https://example.com", "user1")

		suite.NoError(err)
		suite.NotNil(link)
		suite.Equal("Ab3xQ9z", link.Code)
		suite.Equal("https://example.com", link.TargetURL)
		suite.Equal("user1", link.OwnerID)
		suite.Zero(link.ClickCount)
	})
}

func (suite *LinkServiceTestSuite) TestResolve() {
	suite.Run("not found", func() {
		suite.linkRepoMock.
			On("IncrementAndFetch", context.Background(), "doesnotexist").
			Once().
			Return(nil, database.ErrLinkNotFound)

		link, err := suite.svc.Resolve(context.Background(), "doesnotexist")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrLinkNotFound)
		suite.Nil(link)
	})

	suite.Run("unknown error", func() {
		suite.linkRepoMock.
			On("IncrementAndFetch", context.Background(), "Ab3xQ9z").
			Once().
			Return(nil, suite.errUnknown)

		link, err := suite.svc.Resolve(context.Background(), "Ab3xQ9z")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		suite.linkRepoMock.
			On("IncrementAndFetch", context.Background(), "Ab3xQ9z").
			Once().
			Return(&models.Link{
				Code:       "Ab3xQ9z",
				TargetURL:  "https://example.com",
				OwnerID:    "user1",
				ClickCount: 1,
			}, nil)

		link, err := suite.svc.Resolve(context.Background(), "Ab3xQ9z")

		suite.NoError(err)
		suite.NotNil(link)
		suite.Equal("https://example.com", link.TargetURL)
		suite.Equal(int64(1), link.ClickCount)
	})
}

func (suite *LinkServiceTestSuite) TestStats() {
	suite.Run("not found", func() {
		suite.linkRepoMock.
			On("FindByCode", context.Background(), "doesnotexist").
			Once().
			Return(nil, database.ErrLinkNotFound)

		link, err := suite.svc.Stats(context.Background(), "doesnotexist")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrLinkNotFound)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		suite.linkRepoMock.
			On("FindByCode", context.Background(), "Ab3xQ9z").
			Once().
			Return(&models.Link{
				Code:       "Ab3xQ9z",
				TargetURL:  "https://example.com",
				OwnerID:    "user1",
				ClickCount: 3,
			}, nil)

		link, err := suite.svc.Stats(context.Background(), "Ab3xQ9z")

		suite.NoError(err)
		suite.NotNil(link)
		suite.Equal(int64(3), link.ClickCount)
	})
}

func (suite *LinkServiceTestSuite) TestListForOwner() {
	suite.Run("unknown error", func() {
		suite.linkRepoMock.
			On("ListByOwner", context.Background(), "user1").
			Once().
			Return(nil, suite.errUnknown)

		links, err := suite.svc.ListForOwner(context.Background(), "user1")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(links)
	})

	suite.Run("success", func() {
		suite.linkRepoMock.
			On("ListByOwner", context.Background(), "user1").
			Once().
			Return([]models.Link{
				{Code: "def456Y", TargetURL: "https://example.org", OwnerID: "user1"},
				{Code: "abc123X", TargetURL: "https://example.com", OwnerID: "user1"},
			}, nil)

		links, err := suite.svc.ListForOwner(context.Background(), "user1")

		suite.NoError(err)
		suite.Len(links, 2)
		for _, link := range links {
			suite.Equal("user1", link.OwnerID)
		}
	})
}

func TestLinkService(t *testing.T) {
	suite.Run(t, new(LinkServiceTestSuite))
}
