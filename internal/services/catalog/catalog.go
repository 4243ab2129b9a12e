// Package catalog содержит логику бизнес-уровня каталога комиксов:
// добавление, поиск с фильтрами, лайки и агрегаты.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
	"github.com/magabrotheeeer/comic-platform/internal/storage/repository"
)

// ComicRepository описывает контракт для работы с комиксами в базе данных.
type ComicRepository interface {
	CreateComic(ctx context.Context, comic models.Comic) (int, error)
	ExistsComicByTitleAuthor(ctx context.Context, title, author string) (bool, error)
	GetComic(ctx context.Context, comicID int) (*models.Comic, error)
	ListComics(ctx context.Context, filter models.ComicFilter) ([]*models.Comic, error)
	CountComics(ctx context.Context, filter models.ComicFilter) (int, error)
	UpdateComic(ctx context.Context, comicID int, upd models.DummyComicUpdate) (*models.Comic, error)
	DeleteComic(ctx context.Context, comicID int) error
	ToggleComicLike(ctx context.Context, comicID int, userUID string) (bool, int, error)
	TotalComics(ctx context.Context) (int, error)
}

// Cache описывает контракт кэша для горячих чтений каталога.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// CatalogService отвечает за операции каталога.
type CatalogService struct {
	repo  ComicRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр CatalogService.
func New(repo ComicRepository, cache Cache, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func comicCacheKey(comicID int) string {
	return fmt.Sprintf("comic:%d", comicID)
}

// Add добавляет комикс после проверки жанров и уникальности пары
// название+автор.
func (s *CatalogService) Add(ctx context.Context, req models.DummyComic) (*models.Comic, error) {
	for _, genre := range req.Genres {
		if !models.IsKnownGenre(genre) {
			return nil, fmt.Errorf("%w: unknown genre %q", errs.ErrInvalidInput, genre)
		}
	}

	exists, err := s.repo.ExistsComicByTitleAuthor(ctx, req.Title, req.Author)
	if err != nil {
		return nil, fmt.Errorf("failed to check comic: %w", err)
	}
	if exists {
		return nil, errs.ErrConflict
	}

	comic := models.Comic{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Genres:      req.Genres,
		Premium:     req.Premium,
	}
	id, err := s.repo.CreateComic(ctx, comic)
	if err != nil {
		return nil, fmt.Errorf("failed to create comic: %w", err)
	}
	return s.repo.GetComic(ctx, id)
}

// List возвращает страницу каталога и общее число подходящих комиксов.
func (s *CatalogService) List(ctx context.Context, filter models.ComicFilter) ([]*models.Comic, int, error) {
	comics, err := s.repo.ListComics(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comics: %w", err)
	}
	total, err := s.repo.CountComics(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count comics: %w", err)
	}
	return comics, total, nil
}

// Get возвращает комикс с агрегатами и главами, сначала из кэша.
func (s *CatalogService) Get(ctx context.Context, comicID int) (*models.Comic, error) {
	key := comicCacheKey(comicID)
	var cached models.Comic
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("failed to read comic from cache", slog.String("key", key), slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	comic, err := s.repo.GetComic(ctx, comicID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comic: %w", err)
	}
	if err := s.cache.Set(key, comic, time.Hour); err != nil {
		s.log.Warn("failed to cache comic", slog.String("key", key), slog.Any("err", err))
	}
	return comic, nil
}

// Update обновляет комикс и сбрасывает его кэш.
func (s *CatalogService) Update(ctx context.Context, comicID int, upd models.DummyComicUpdate) (*models.Comic, error) {
	if upd.Genres != nil {
		for _, genre := range *upd.Genres {
			if !models.IsKnownGenre(genre) {
				return nil, fmt.Errorf("%w: unknown genre %q", errs.ErrInvalidInput, genre)
			}
		}
	}

	comic, err := s.repo.UpdateComic(ctx, comicID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update comic: %w", err)
	}
	s.invalidate(comicID)
	return comic, nil
}

// Delete удаляет комикс вместе с главами, отзывами и лайками.
func (s *CatalogService) Delete(ctx context.Context, comicID int) error {
	if err := s.repo.DeleteComic(ctx, comicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("failed to delete comic: %w", err)
	}
	s.invalidate(comicID)
	return nil
}

// ToggleLike ставит либо снимает лайк пользователя.
func (s *CatalogService) ToggleLike(ctx context.Context, comicID int, userUID string) (bool, int, error) {
	if _, err := s.repo.GetComic(ctx, comicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, 0, errs.ErrNotFound
		}
		return false, 0, fmt.Errorf("failed to get comic: %w", err)
	}

	liked, count, err := s.repo.ToggleComicLike(ctx, comicID, userUID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle like: %w", err)
	}
	s.invalidate(comicID)
	return liked, count, nil
}

// Total возвращает общее число комиксов в каталоге.
func (s *CatalogService) Total(ctx context.Context) (int, error) {
	total, err := s.repo.TotalComics(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count comics: %w", err)
	}
	return total, nil
}

func (s *CatalogService) invalidate(comicID int) {
	key := comicCacheKey(comicID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to remove comic from cache", slog.String("key", key), slog.Any("err", err))
	}
}
