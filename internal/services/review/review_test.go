package review

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
	"github.com/magabrotheeeer/comic-platform/internal/storage/repository"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateReview(ctx context.Context, review models.Review) (int, error) {
	args := m.Called(ctx, review)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ExistsReviewByUser(ctx context.Context, comicID int, userUID string) (bool, error) {
	args := m.Called(ctx, comicID, userUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetReview(ctx context.Context, reviewID int) (*models.Review, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockRepository) ListReviews(ctx context.Context, comicID, limit, offset int) ([]*models.Review, error) {
	args := m.Called(ctx, comicID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Review), args.Error(1)
}

func (m *MockRepository) CountReviews(ctx context.Context, comicID int) (int, error) {
	args := m.Called(ctx, comicID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ToggleReviewLike(ctx context.Context, reviewID int, userUID string) (bool, int, error) {
	args := m.Called(ctx, reviewID, userUID)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func (m *MockRepository) GetComic(ctx context.Context, comicID int) (*models.Comic, error) {
	args := m.Called(ctx, comicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comic), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestReviewService_Create(t *testing.T) {
	comic := &models.Comic{ID: 10, Title: "Vinland Saga"}
	req := models.DummyReview{Rating: 5, Comment: "masterpiece"}

	t.Run("успешное создание отзыва", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)

		repo.On("GetComic", mock.Anything, 10).Return(comic, nil).Once()
		repo.On("ExistsReviewByUser", mock.Anything, 10, "uid-1").Return(false, nil).Once()
		repo.On("CreateReview", mock.Anything, mock.MatchedBy(func(r models.Review) bool {
			return r.ComicID == 10 && r.UserUID == "uid-1" && r.Rating == 5
		})).Return(77, nil).Once()
		cache.On("Invalidate", "comic:10").Return(nil).Once()
		repo.On("GetReview", mock.Anything, 77).Return(&models.Review{ID: 77, ComicID: 10, UserUID: "uid-1", Rating: 5}, nil).Once()

		service := New(repo, cache, newNoopLogger())
		review, err := service.Create(context.Background(), 10, "uid-1", req)

		require.NoError(t, err)
		assert.Equal(t, 77, review.ID)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("повторный отзыв запрещён", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetComic", mock.Anything, 10).Return(comic, nil).Once()
		repo.On("ExistsReviewByUser", mock.Anything, 10, "uid-1").Return(true, nil).Once()

		service := New(repo, new(MockCache), newNoopLogger())
		_, err := service.Create(context.Background(), 10, "uid-1", req)

		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("комикс не найден", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetComic", mock.Anything, 99).Return(nil, repository.ErrNotFound).Once()

		service := New(repo, new(MockCache), newNoopLogger())
		_, err := service.Create(context.Background(), 99, "uid-1", req)

		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestReviewService_ToggleLike(t *testing.T) {
	t.Run("лайк чужого отзыва", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetReview", mock.Anything, 5).Return(&models.Review{ID: 5, UserUID: "uid-author"}, nil).Once()
		repo.On("ToggleReviewLike", mock.Anything, 5, "uid-reader").Return(true, 3, nil).Once()

		service := New(repo, new(MockCache), newNoopLogger())
		liked, count, err := service.ToggleLike(context.Background(), 5, "uid-reader")

		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, 3, count)
	})

	t.Run("свой отзыв лайкать нельзя", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetReview", mock.Anything, 5).Return(&models.Review{ID: 5, UserUID: "uid-author"}, nil).Once()

		service := New(repo, new(MockCache), newNoopLogger())
		_, _, err := service.ToggleLike(context.Background(), 5, "uid-author")

		assert.ErrorIs(t, err, errs.ErrForbidden)
		repo.AssertNotCalled(t, "ToggleReviewLike", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("отзыв не найден", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetReview", mock.Anything, 99).Return(nil, repository.ErrNotFound).Once()

		service := New(repo, new(MockCache), newNoopLogger())
		_, _, err := service.ToggleLike(context.Background(), 99, "uid-reader")

		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}
