package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/comic-platform/internal/models"
)

const chapterColumns = `id, comic_id, title, chapter_number, content_url,
	      premium, available_offline, created_at, updated_at`

func scanChapter(row interface{ Scan(...any) error }) (*models.Chapter, error) {
	ch := &models.Chapter{}
	if err := row.Scan(&ch.ID, &ch.ComicID, &ch.Title, &ch.ChapterNumber,
		&ch.ContentURL, &ch.Premium, &ch.AvailableOffline,
		&ch.CreatedAt, &ch.UpdatedAt); err != nil {
		return nil, err
	}
	return ch, nil
}

// CreateChapter сохраняет новую главу и возвращает её идентификатор.
func (s *Storage) CreateChapter(ctx context.Context, chapter models.Chapter) (int, error) {
	const op = "storage.CreateChapter"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO chapters (comic_id, title, chapter_number, content_url, premium, available_offline)
		  VALUES ($1, $2, $3, $4, $5, $6)
		  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		chapter.ComicID, chapter.Title, chapter.ChapterNumber,
		chapter.ContentURL, chapter.Premium, chapter.AvailableOffline).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetChapter возвращает главу по идентификатору.
func (s *Storage) GetChapter(ctx context.Context, chapterID int) (*models.Chapter, error) {
	const op = "storage.GetChapter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + chapterColumns + ` FROM chapters WHERE id = $1`
	ch, err := scanChapter(s.DB.QueryRowContext(ctx, query, chapterID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

// ExistsChapterNumber проверяет, занят ли номер главы внутри комикса.
// Глава excludeID не учитывается, чтобы при обновлении не конфликтовать
// с самой собой.
func (s *Storage) ExistsChapterNumber(ctx context.Context, comicID, chapterNumber, excludeID int) (bool, error) {
	const op = "storage.ExistsChapterNumber"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM chapters
		  WHERE comic_id = $1 AND chapter_number = $2 AND id <> $3)`
	if err := s.DB.QueryRowContext(ctx, query, comicID, chapterNumber, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListChapters возвращает главы комикса в порядке номеров.
func (s *Storage) ListChapters(ctx context.Context, comicID int) ([]*models.Chapter, error) {
	const op = "storage.ListChapters"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + chapterColumns + ` FROM chapters
		  WHERE comic_id = $1 ORDER BY chapter_number ASC`
	rows, err := s.DB.QueryContext(ctx, query, comicID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Chapter
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, ch)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateChapter обновляет переданные поля главы.
func (s *Storage) UpdateChapter(ctx context.Context, chapterID int, upd models.DummyChapterUpdate) (*models.Chapter, error) {
	const op = "storage.UpdateChapter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var sets []string
	var args []any
	set := func(expr string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if upd.Title != nil {
		set("title = $%d", *upd.Title)
	}
	if upd.ChapterNumber != nil {
		set("chapter_number = $%d", *upd.ChapterNumber)
	}
	if upd.ContentURL != nil {
		set("content_url = $%d", *upd.ContentURL)
	}
	if upd.Premium != nil {
		set("premium = $%d", *upd.Premium)
	}
	if upd.AvailableOffline != nil {
		set("available_offline = $%d", *upd.AvailableOffline)
	}
	if len(sets) == 0 {
		return s.GetChapter(ctx, chapterID)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, chapterID)
	query := fmt.Sprintf(`UPDATE chapters SET %s WHERE id = $%d RETURNING `+chapterColumns,
		strings.Join(sets, ", "), len(args))
	ch, err := scanChapter(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

// DeleteChapter удаляет главу.
func (s *Storage) DeleteChapter(ctx context.Context, chapterID int) error {
	const op = "storage.DeleteChapter"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM chapters WHERE id = $1`, chapterID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
