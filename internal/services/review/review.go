// Package review содержит логику бизнес-уровня для отзывов и их лайков.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
	"github.com/magabrotheeeer/comic-platform/internal/storage/repository"
)

// ReviewRepository описывает контракт для работы с отзывами в базе данных.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review models.Review) (int, error)
	ExistsReviewByUser(ctx context.Context, comicID int, userUID string) (bool, error)
	GetReview(ctx context.Context, reviewID int) (*models.Review, error)
	ListReviews(ctx context.Context, comicID, limit, offset int) ([]*models.Review, error)
	CountReviews(ctx context.Context, comicID int) (int, error)
	ToggleReviewLike(ctx context.Context, reviewID int, userUID string) (bool, int, error)
	GetComic(ctx context.Context, comicID int) (*models.Comic, error)
}

// Cache сбрасывает кэш комикса: отзыв меняет его средний рейтинг.
type Cache interface {
	Invalidate(key string) error
}

// ReviewService отвечает за отзывы и их лайки.
type ReviewService struct {
	repo  ReviewRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр ReviewService.
func New(repo ReviewRepository, cache Cache, log *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create добавляет отзыв: не более одного на пару (пользователь, комикс).
func (s *ReviewService) Create(ctx context.Context, comicID int, userUID string, req models.DummyReview) (*models.Review, error) {
	if _, err := s.repo.GetComic(ctx, comicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comic: %w", err)
	}

	exists, err := s.repo.ExistsReviewByUser(ctx, comicID, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to check review: %w", err)
	}
	if exists {
		return nil, errs.ErrConflict
	}

	review := models.Review{
		ComicID: comicID,
		UserUID: userUID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	id, err := s.repo.CreateReview(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	key := fmt.Sprintf("comic:%d", comicID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to remove comic from cache", slog.String("key", key), slog.Any("err", err))
	}
	return s.repo.GetReview(ctx, id)
}

// List возвращает страницу отзывов комикса и их общее число.
func (s *ReviewService) List(ctx context.Context, comicID, limit, offset int) ([]*models.Review, int, error) {
	if _, err := s.repo.GetComic(ctx, comicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, errs.ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to get comic: %w", err)
	}

	reviews, err := s.repo.ListReviews(ctx, comicID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	total, err := s.repo.CountReviews(ctx, comicID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return reviews, total, nil
}

// ToggleLike ставит либо снимает лайк на отзыв. Лайкать собственный
// отзыв нельзя.
func (s *ReviewService) ToggleLike(ctx context.Context, reviewID int, userUID string) (bool, int, error) {
	review, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, 0, errs.ErrNotFound
		}
		return false, 0, fmt.Errorf("failed to get review: %w", err)
	}
	if review.UserUID == userUID {
		return false, 0, errs.ErrForbidden
	}

	liked, count, err := s.repo.ToggleReviewLike(ctx, reviewID, userUID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, count, nil
}
