package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/comic-platform/internal/models"
)

// CreateReview сохраняет отзыв и возвращает его идентификатор.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (int, error) {
	const op = "storage.CreateReview"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO reviews (comic_id, user_uid, rating, comment)
		  VALUES ($1, $2, $3, $4)
		  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		review.ComicID, review.UserUID, review.Rating, review.Comment).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ExistsReviewByUser проверяет, оставлял ли пользователь отзыв на комикс.
func (s *Storage) ExistsReviewByUser(ctx context.Context, comicID int, userUID string) (bool, error) {
	const op = "storage.ExistsReviewByUser"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE comic_id = $1 AND user_uid = $2)`
	if err := s.DB.QueryRowContext(ctx, query, comicID, userUID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// GetReview возвращает отзыв по идентификатору.
func (s *Storage) GetReview(ctx context.Context, reviewID int) (*models.Review, error) {
	const op = "storage.GetReview"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	r := &models.Review{}
	query := `SELECT id, comic_id, user_uid, rating, comment, created_at
		  FROM reviews WHERE id = $1`
	err := s.DB.QueryRowContext(ctx, query, reviewID).Scan(
		&r.ID, &r.ComicID, &r.UserUID, &r.Rating, &r.Comment, &r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListReviews возвращает страницу отзывов комикса, свежие первыми,
// вместе с данными автора и числом лайков.
func (s *Storage) ListReviews(ctx context.Context, comicID, limit, offset int) ([]*models.Review, error) {
	const op = "storage.ListReviews"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT rv.id, rv.comic_id, rv.user_uid, rv.rating, rv.comment, rv.created_at,
		      u.first_name, COALESCE(u.last_name, ''), u.avatar,
		      COALESCE(l.likes_count, 0)
		  FROM reviews rv
		  JOIN users u ON u.uid = rv.user_uid
		  LEFT JOIN (SELECT review_id, COUNT(*) AS likes_count
		             FROM review_likes GROUP BY review_id) l ON l.review_id = rv.id
		  WHERE rv.comic_id = $1
		  ORDER BY rv.created_at DESC, rv.id DESC
		  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, comicID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Review
	for rows.Next() {
		r := &models.Review{}
		if err = rows.Scan(&r.ID, &r.ComicID, &r.UserUID, &r.Rating, &r.Comment, &r.CreatedAt,
			&r.AuthorFirstName, &r.AuthorLastName, &r.AuthorAvatar, &r.LikesCount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountReviews считает отзывы комикса.
func (s *Storage) CountReviews(ctx context.Context, comicID int) (int, error) {
	const op = "storage.CountReviews"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM reviews WHERE comic_id = $1`
	if err := s.DB.QueryRowContext(ctx, query, comicID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ToggleReviewLike ставит либо снимает лайк на отзыв. Возвращает true,
// если лайк в итоге стоит, и актуальное количество лайков.
func (s *Storage) ToggleReviewLike(ctx context.Context, reviewID int, userUID string) (bool, int, error) {
	const op = "storage.ToggleReviewLike"
	select {
	case <-ctx.Done():
		return false, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM review_likes WHERE review_id = $1 AND user_uid = $2`, reviewID, userUID)
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
			`INSERT INTO review_likes (review_id, user_uid) VALUES ($1, $2)`, reviewID, userUID)
		if err != nil {
			return false, 0, fmt.Errorf("%s: %w", op, err)
		}
		liked = true
	}

	var count int
	if err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_likes WHERE review_id = $1`, reviewID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	return liked, count, nil
}
