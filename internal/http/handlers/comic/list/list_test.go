package list

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/comic-platform/internal/models"
)

// MockService реализует интерфейс list.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, filter models.ComicFilter) ([]*models.Comic, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Comic), args.Int(1), args.Error(2)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	comics := []*models.Comic{
		{ID: 1, Title: "One Punch", Author: "ONE"},
		{ID: 2, Title: "Berserk", Author: "Miura"},
	}

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "каталог с параметрами по умолчанию",
			url:  "/comics",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, mock.MatchedBy(func(f models.ComicFilter) bool {
					return f.Limit == 20 && f.Offset == 0 &&
						f.SortBy == models.SortCreatedAt && f.SortDesc
				})).Return(comics, 2, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_pages":1`,
		},
		{
			name: "пагинация считает offset",
			url:  "/comics?page=3&limit=10",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, mock.MatchedBy(func(f models.ComicFilter) bool {
					return f.Limit == 10 && f.Offset == 20
				})).Return(comics, 45, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_pages":5`,
		},
		{
			name: "фильтры собираются из query",
			url:  "/comics?search=punch&genres=Action,Comedy&match_all=true&premium=true&min_rating=4&min_likes=10&sort_by=averageRating&sort_order=asc",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, mock.MatchedBy(func(f models.ComicFilter) bool {
					return f.Search == "punch" && len(f.Genres) == 2 && f.MatchAll &&
						f.Premium != nil && *f.Premium &&
						f.MinRating != nil && *f.MinRating == 4 &&
						f.MinLikes != nil && *f.MinLikes == 10 &&
						f.SortBy == models.SortAverageRating && !f.SortDesc
				})).Return(comics, 2, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "неизвестный жанр",
			url:            "/comics?genres=cooking-with-lava",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `unknown genre`,
		},
		{
			name:           "limit за пределами диапазона",
			url:            "/comics?limit=500",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:           "нулевая страница",
			url:            "/comics?page=0",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:           "нечисловой page",
			url:            "/comics?page=abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `page must be a number`,
		},
		{
			name:           "некорректный min_rating",
			url:            "/comics?min_rating=9",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `min_rating must be a number between 0 and 5`,
		},
		{
			name:           "некорректная дата created_after",
			url:            "/comics?created_after=yesterday",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `created_after must be an RFC 3339 timestamp`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
