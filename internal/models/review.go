package models

import "time"

// Review отзыв пользователя на комикс: не более одного на пару
// (пользователь, комикс).
type Review struct {
	ID         int       `json:"id"`
	ComicID    int       `json:"comic_id"`
	UserUID    string    `json:"user_uid"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	LikesCount int       `json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`

	// Данные автора, подставляемые при листинге.
	AuthorFirstName string `json:"author_first_name,omitempty"`
	AuthorLastName  string `json:"author_last_name,omitempty"`
	AuthorAvatar    string `json:"author_avatar,omitempty"`
}

// DummyReview используется для приёма отзыва из JSON-запроса.
type DummyReview struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}
