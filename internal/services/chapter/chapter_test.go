package chapter

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
	"github.com/magabrotheeeer/comic-platform/internal/storage/repository"
)

type MockChapterRepository struct {
	mock.Mock
}

func (m *MockChapterRepository) CreateChapter(ctx context.Context, chapter models.Chapter) (int, error) {
	args := m.Called(ctx, chapter)
	return args.Int(0), args.Error(1)
}

func (m *MockChapterRepository) GetChapter(ctx context.Context, chapterID int) (*models.Chapter, error) {
	args := m.Called(ctx, chapterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterRepository) ExistsChapterNumber(ctx context.Context, comicID, chapterNumber, excludeID int) (bool, error) {
	args := m.Called(ctx, comicID, chapterNumber, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChapterRepository) UpdateChapter(ctx context.Context, chapterID int, upd models.DummyChapterUpdate) (*models.Chapter, error) {
	args := m.Called(ctx, chapterID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterRepository) DeleteChapter(ctx context.Context, chapterID int) error {
	args := m.Called(ctx, chapterID)
	return args.Error(0)
}

func (m *MockChapterRepository) GetComic(ctx context.Context, comicID int) (*models.Comic, error) {
	args := m.Called(ctx, comicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comic), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
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

func TestChapterService_GetContent(t *testing.T) {
	freeChapter := &models.Chapter{ID: 1, ComicID: 10, ChapterNumber: 1, ContentURL: "https://cdn.example.com/1"}
	premiumChapter := &models.Chapter{ID: 2, ComicID: 10, ChapterNumber: 2, Premium: true}
	freeComic := &models.Comic{ID: 10, Title: "One Punch"}
	premiumComic := &models.Comic{ID: 20, Title: "Berserk", Premium: true}

	start := time.Now().UTC().Add(-24 * time.Hour)
	end := time.Now().UTC().Add(24 * time.Hour)
	subscriber := &models.User{
		UID:  "uid-premium",
		Role: models.RoleUser,
		Subscription: models.Subscription{
			Plan:      models.PlanPremium,
			StartDate: &start,
			EndDate:   &end,
		},
	}
	freeUser := &models.User{
		UID:          "uid-free",
		Role:         models.RoleUser,
		Subscription: models.Subscription{Plan: models.PlanNone},
	}
	admin := &models.User{UID: "uid-admin", Role: models.RoleAdmin}

	tests := []struct {
		name        string
		chapterID   int
		userUID     string
		setupMocks  func(*MockChapterRepository, *MockUserRepository)
		expectedErr error
	}{
		{
			name:      "бесплатная глава доступна анониму",
			chapterID: 1,
			userUID:   "",
			setupMocks: func(r *MockChapterRepository, _ *MockUserRepository) {
				r.On("GetChapter", mock.Anything, 1).Return(freeChapter, nil).Once()
				r.On("GetComic", mock.Anything, 10).Return(freeComic, nil).Once()
			},
		},
		{
			name:      "премиум-глава недоступна анониму",
			chapterID: 2,
			userUID:   "",
			setupMocks: func(r *MockChapterRepository, _ *MockUserRepository) {
				r.On("GetChapter", mock.Anything, 2).Return(premiumChapter, nil).Once()
				r.On("GetComic", mock.Anything, 10).Return(freeComic, nil).Once()
			},
			expectedErr: errs.ErrForbidden,
		},
		{
			name:      "премиум-глава доступна подписчику",
			chapterID: 2,
			userUID:   "uid-premium",
			setupMocks: func(r *MockChapterRepository, u *MockUserRepository) {
				r.On("GetChapter", mock.Anything, 2).Return(premiumChapter, nil).Once()
				r.On("GetComic", mock.Anything, 10).Return(freeComic, nil).Once()
				u.On("GetUser", mock.Anything, "uid-premium").Return(subscriber, nil).Once()
			},
		},
		{
			name:      "премиум-глава недоступна без подписки",
			chapterID: 2,
			userUID:   "uid-free",
			setupMocks: func(r *MockChapterRepository, u *MockUserRepository) {
				r.On("GetChapter", mock.Anything, 2).Return(premiumChapter, nil).Once()
				r.On("GetComic", mock.Anything, 10).Return(freeComic, nil).Once()
				u.On("GetUser", mock.Anything, "uid-free").Return(freeUser, nil).Once()
			},
			expectedErr: errs.ErrForbidden,
		},
		{
			name:      "премиальность комикса закрывает и бесплатную главу",
			chapterID: 3,
			userUID:   "uid-free",
			setupMocks: func(r *MockChapterRepository, u *MockUserRepository) {
				inPremiumComic := &models.Chapter{ID: 3, ComicID: 20, ChapterNumber: 1}
				r.On("GetChapter", mock.Anything, 3).Return(inPremiumComic, nil).Once()
				r.On("GetComic", mock.Anything, 20).Return(premiumComic, nil).Once()
				u.On("GetUser", mock.Anything, "uid-free").Return(freeUser, nil).Once()
			},
			expectedErr: errs.ErrForbidden,
		},
		{
			name:      "администратор читает премиум без подписки",
			chapterID: 2,
			userUID:   "uid-admin",
			setupMocks: func(r *MockChapterRepository, u *MockUserRepository) {
				r.On("GetChapter", mock.Anything, 2).Return(premiumChapter, nil).Once()
				r.On("GetComic", mock.Anything, 10).Return(freeComic, nil).Once()
				u.On("GetUser", mock.Anything, "uid-admin").Return(admin, nil).Once()
			},
		},
		{
			name:      "глава не найдена",
			chapterID: 99,
			userUID:   "",
			setupMocks: func(r *MockChapterRepository, _ *MockUserRepository) {
				r.On("GetChapter", mock.Anything, 99).Return(nil, repository.ErrNotFound).Once()
			},
			expectedErr: errs.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockChapterRepository)
			users := new(MockUserRepository)
			cache := new(MockCache)

			tt.setupMocks(repo, users)

			service := New(repo, users, cache, newNoopLogger())
			chapter, err := service.GetContent(context.Background(), tt.chapterID, tt.userUID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, chapter)
			}

			repo.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}

func TestChapterService_Add_DuplicateNumber(t *testing.T) {
	repo := new(MockChapterRepository)
	users := new(MockUserRepository)
	cache := new(MockCache)

	repo.On("GetComic", mock.Anything, 10).Return(&models.Comic{ID: 10}, nil).Once()
	repo.On("ExistsChapterNumber", mock.Anything, 10, 5, 0).Return(true, nil).Once()

	service := New(repo, users, cache, newNoopLogger())
	_, err := service.Add(context.Background(), models.DummyChapter{ComicID: 10, Title: "Ch 5", ChapterNumber: 5})

	assert.ErrorIs(t, err, errs.ErrConflict)
	repo.AssertExpectations(t)
}

func TestChapterService_Update_NumberConflict(t *testing.T) {
	repo := new(MockChapterRepository)
	users := new(MockUserRepository)
	cache := new(MockCache)

	current := &models.Chapter{ID: 7, ComicID: 10, ChapterNumber: 3}
	newNumber := 4
	repo.On("GetChapter", mock.Anything, 7).Return(current, nil).Once()
	repo.On("ExistsChapterNumber", mock.Anything, 10, 4, 7).Return(true, nil).Once()

	service := New(repo, users, cache, newNoopLogger())
	_, err := service.Update(context.Background(), 7, models.DummyChapterUpdate{ChapterNumber: &newNumber})

	assert.ErrorIs(t, err, errs.ErrConflict)
	repo.AssertExpectations(t)
}
