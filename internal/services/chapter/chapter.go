// Package chapter содержит логику бизнес-уровня для глав комиксов,
// включая выдачу контента с проверкой премиум-доступа.
package chapter

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

// ChapterRepository описывает контракт для работы с главами в базе данных.
type ChapterRepository interface {
	CreateChapter(ctx context.Context, chapter models.Chapter) (int, error)
	GetChapter(ctx context.Context, chapterID int) (*models.Chapter, error)
	ExistsChapterNumber(ctx context.Context, comicID, chapterNumber, excludeID int) (bool, error)
	UpdateChapter(ctx context.Context, chapterID int, upd models.DummyChapterUpdate) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, chapterID int) error
	GetComic(ctx context.Context, comicID int) (*models.Comic, error)
}

// UserRepository отдаёт пользователя для проверки подписки.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Cache сбрасывает кэш комикса при изменении его глав.
type Cache interface {
	Invalidate(key string) error
}

// ChapterService отвечает за главы и доступ к их контенту.
type ChapterService struct {
	repo  ChapterRepository
	users UserRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр ChapterService.
func New(repo ChapterRepository, users UserRepository, cache Cache, log *slog.Logger) *ChapterService {
	return &ChapterService{
		repo:  repo,
		users: users,
		cache: cache,
		log:   log,
	}
}

// Add добавляет главу. Номер главы уникален внутри комикса.
func (s *ChapterService) Add(ctx context.Context, req models.DummyChapter) (*models.Chapter, error) {
	if _, err := s.repo.GetComic(ctx, req.ComicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comic: %w", err)
	}

	exists, err := s.repo.ExistsChapterNumber(ctx, req.ComicID, req.ChapterNumber, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check chapter number: %w", err)
	}
	if exists {
		return nil, errs.ErrConflict
	}

	chapter := models.Chapter{
		ComicID:          req.ComicID,
		Title:            req.Title,
		ChapterNumber:    req.ChapterNumber,
		ContentURL:       req.ContentURL,
		Premium:          req.Premium,
		AvailableOffline: req.AvailableOffline,
	}
	id, err := s.repo.CreateChapter(ctx, chapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create chapter: %w", err)
	}
	s.invalidateComic(req.ComicID)
	return s.repo.GetChapter(ctx, id)
}

// Update обновляет переданные поля главы; смена номера проверяется
// на конфликт с другими главами того же комикса.
func (s *ChapterService) Update(ctx context.Context, chapterID int, upd models.DummyChapterUpdate) (*models.Chapter, error) {
	current, err := s.repo.GetChapter(ctx, chapterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}

	if upd.ChapterNumber != nil && *upd.ChapterNumber != current.ChapterNumber {
		exists, err := s.repo.ExistsChapterNumber(ctx, current.ComicID, *upd.ChapterNumber, chapterID)
		if err != nil {
			return nil, fmt.Errorf("failed to check chapter number: %w", err)
		}
		if exists {
			return nil, errs.ErrConflict
		}
	}

	chapter, err := s.repo.UpdateChapter(ctx, chapterID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update chapter: %w", err)
	}
	s.invalidateComic(current.ComicID)
	return chapter, nil
}

// Delete удаляет главу.
func (s *ChapterService) Delete(ctx context.Context, chapterID int) error {
	current, err := s.repo.GetChapter(ctx, chapterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("failed to get chapter: %w", err)
	}
	if err := s.repo.DeleteChapter(ctx, chapterID); err != nil {
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	s.invalidateComic(current.ComicID)
	return nil
}

// GetContent возвращает главу с контентом. Если премиальна глава или её
// комикс, доступ есть только у пользователей с активной премиум-подпиской;
// анонимный запрос к такой главе отклоняется.
func (s *ChapterService) GetContent(ctx context.Context, chapterID int, userUID string) (*models.Chapter, error) {
	chapter, err := s.repo.GetChapter(ctx, chapterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}

	comic, err := s.repo.GetComic(ctx, chapter.ComicID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comic: %w", err)
	}

	if chapter.Premium || comic.Premium {
		if userUID == "" {
			return nil, errs.ErrForbidden
		}
		user, err := s.users.GetUser(ctx, userUID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, errs.ErrForbidden
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if !user.HasActivePremium(time.Now().UTC()) {
			return nil, errs.ErrForbidden
		}
	}
	return chapter, nil
}

func (s *ChapterService) invalidateComic(comicID int) {
	key := fmt.Sprintf("comic:%d", comicID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to remove comic from cache", slog.String("key", key), slog.Any("err", err))
	}
}
