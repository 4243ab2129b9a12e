package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/comic-platform/internal/models"
)

const comicColumns = `c.id, c.title, c.author, COALESCE(c.description, ''),
	      array_to_string(c.genres, ','), c.cover_image, c.premium,
	      c.created_at, c.updated_at`

func scanComic(row interface{ Scan(...any) error }) (*models.Comic, error) {
	c := &models.Comic{}
	var genres string
	if err := row.Scan(&c.ID, &c.Title, &c.Author, &c.Description, &genres,
		&c.CoverImage, &c.Premium, &c.CreatedAt, &c.UpdatedAt,
		&c.AverageRating, &c.LikesCount); err != nil {
		return nil, err
	}
	if genres != "" {
		c.Genres = strings.Split(genres, ",")
	}
	return c, nil
}

// aggregateJoins подтягивает средний рейтинг и число лайков отдельными
// сгруппированными подзапросами, чтобы соединения не искажали агрегаты.
const aggregateJoins = `
	  LEFT JOIN (SELECT comic_id, AVG(rating)::float8 AS avg_rating
	             FROM reviews GROUP BY comic_id) r ON r.comic_id = c.id
	  LEFT JOIN (SELECT comic_id, COUNT(*) AS likes_count
	             FROM comic_likes GROUP BY comic_id) l ON l.comic_id = c.id`

// CreateComic сохраняет новый комикс и возвращает его идентификатор.
func (s *Storage) CreateComic(ctx context.Context, comic models.Comic) (int, error) {
	const op = "storage.CreateComic"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO comics (title, author, description, genres, cover_image, premium)
		  VALUES ($1, $2, $3, string_to_array($4, ','), $5, $6)
		  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		comic.Title, comic.Author, comic.Description,
		strings.Join(comic.Genres, ","), comic.CoverImage, comic.Premium).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ExistsComicByTitleAuthor проверяет наличие комикса с такой же парой
// название+автор.
func (s *Storage) ExistsComicByTitleAuthor(ctx context.Context, title, author string) (bool, error) {
	const op = "storage.ExistsComicByTitleAuthor"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM comics WHERE title = $1 AND author = $2)`
	if err := s.DB.QueryRowContext(ctx, query, title, author).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// GetComic возвращает комикс вместе с агрегатами и списком глав.
func (s *Storage) GetComic(ctx context.Context, comicID int) (*models.Comic, error) {
	const op = "storage.GetComic"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + comicColumns + `,
		      COALESCE(r.avg_rating, 0), COALESCE(l.likes_count, 0)
		  FROM comics c` + aggregateJoins + `
		  WHERE c.id = $1`
	c, err := scanComic(s.DB.QueryRowContext(ctx, query, comicID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	chapters, err := s.ListChapters(ctx, comicID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.Chapters = chapters
	return c, nil
}

func buildComicFilter(filter models.ComicFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Search != "" {
		if filter.ExactMatch {
			add("(c.title = $%[1]d OR c.author = $%[1]d)", filter.Search)
		} else {
			add("(c.title ILIKE '%%' || $%[1]d || '%%' OR c.author ILIKE '%%' || $%[1]d || '%%')", filter.Search)
		}
	}
	if len(filter.Genres) > 0 {
		joined := strings.Join(filter.Genres, ",")
		if filter.MatchAll {
			add("c.genres @> string_to_array($%d, ',')", joined)
		} else {
			add("c.genres && string_to_array($%d, ',')", joined)
		}
	}
	if filter.Premium != nil {
		add("c.premium = $%d", *filter.Premium)
	}
	if filter.CreatedAfter != nil {
		add("c.created_at >= $%d", *filter.CreatedAfter)
	}
	if filter.MinRating != nil {
		add("COALESCE(r.avg_rating, 0) >= $%d", *filter.MinRating)
	}
	if filter.MinLikes != nil {
		add("COALESCE(l.likes_count, 0) >= $%d", *filter.MinLikes)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func comicOrderBy(filter models.ComicFilter) string {
	var col string
	switch filter.SortBy {
	case models.SortTitle:
		col = "c.title"
	case models.SortAuthor:
		col = "c.author"
	case models.SortAverageRating:
		col = "COALESCE(r.avg_rating, 0)"
	case models.SortLikesCount:
		col = "COALESCE(l.likes_count, 0)"
	default:
		col = "c.created_at"
	}
	dir := "ASC"
	if filter.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, c.id ASC", col, dir)
}

// ListComics возвращает страницу каталога с учётом фильтров и сортировки.
func (s *Storage) ListComics(ctx context.Context, filter models.ComicFilter) ([]*models.Comic, error) {
	const op = "storage.ListComics"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where, args := buildComicFilter(filter)
	query := `SELECT ` + comicColumns + `,
		      COALESCE(r.avg_rating, 0), COALESCE(l.likes_count, 0)
		  FROM comics c` + aggregateJoins + where + comicOrderBy(filter) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Comic
	for rows.Next() {
		c, err := scanComic(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountComics считает комиксы, подходящие под фильтр.
func (s *Storage) CountComics(ctx context.Context, filter models.ComicFilter) (int, error) {
	const op = "storage.CountComics"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where, args := buildComicFilter(filter)
	query := `SELECT COUNT(*) FROM comics c` + aggregateJoins + where

	var count int
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// UpdateComic обновляет непустые поля комикса.
func (s *Storage) UpdateComic(ctx context.Context, comicID int, upd models.DummyComicUpdate) (*models.Comic, error) {
	const op = "storage.UpdateComic"
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
	if upd.Author != nil {
		set("author = $%d", *upd.Author)
	}
	if upd.Description != nil {
		set("description = $%d", *upd.Description)
	}
	if upd.Genres != nil {
		set("genres = string_to_array($%d, ',')", strings.Join(*upd.Genres, ","))
	}
	if upd.CoverImage != nil {
		set("cover_image = $%d", *upd.CoverImage)
	}
	if upd.Premium != nil {
		set("premium = $%d", *upd.Premium)
	}
	if len(sets) == 0 {
		return s.GetComic(ctx, comicID)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, comicID)
	query := fmt.Sprintf(`UPDATE comics SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return s.GetComic(ctx, comicID)
}

// DeleteComic удаляет комикс вместе с главами, отзывами и лайками.
func (s *Storage) DeleteComic(ctx context.Context, comicID int) error {
	const op = "storage.DeleteComic"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM comics WHERE id = $1`, comicID)
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

// ToggleComicLike ставит либо снимает лайк. Возвращает true, если лайк
// в итоге стоит, и актуальное количество лайков.
func (s *Storage) ToggleComicLike(ctx context.Context, comicID int, userUID string) (bool, int, error) {
	const op = "storage.ToggleComicLike"
	select {
	case <-ctx.Done():
		return false, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM comic_likes WHERE comic_id = $1 AND user_uid = $2`, comicID, userUID)
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}

	liked := false
	if deleted == 0 {
		_, err = s.DB.ExecContext(ctx,
			`INSERT INTO comic_likes (comic_id, user_uid) VALUES ($1, $2)`, comicID, userUID)
		if err != nil {
			return false, 0, fmt.Errorf("%s: %w", op, err)
		}
		liked = true
	}

	var count int
	if err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comic_likes WHERE comic_id = $1`, comicID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	return liked, count, nil
}

// TotalComics считает все комиксы в каталоге без фильтров.
func (s *Storage) TotalComics(ctx context.Context) (int, error) {
	const op = "storage.TotalComics"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM comics`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
