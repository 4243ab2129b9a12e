package models

import "time"

// Genres допустимые жанры комиксов.
var Genres = []string{
	"Action", "Adventure", "Comedy", "Drama", "Fantasy", "Horror",
	"Mystery", "Romance", "Sci-Fi", "Slice of Life", "Thriller",
}

// IsKnownGenre проверяет жанр по списку допустимых.
func IsKnownGenre(genre string) bool {
	for _, g := range Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// Comic основная модель комикса. AverageRating и LikesCount вычисляются
// при чтении из отзывов и лайков, в таблице не хранятся.
type Comic struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	CoverImage    string    `json:"cover_image"`
	Genres        []string  `json:"genres"`
	Premium       bool      `json:"premium"`
	AverageRating float64   `json:"average_rating"`
	LikesCount    int       `json:"likes_count"`
	Chapters      []*Chapter `json:"chapters,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DummyComic используется для приёма данных комикса из JSON-запроса.
type DummyComic struct {
	Title       string   `json:"title" validate:"required,min=1,max=100"`
	Author      string   `json:"author" validate:"required,min=2,max=50"`
	Description string   `json:"description" validate:"required,min=10,max=1000"`
	CoverImage  string   `json:"cover_image" validate:"required,url"`
	Genres      []string `json:"genres" validate:"required,min=1"`
	Premium     bool     `json:"premium"`
}

// DummyComicUpdate частичное обновление комикса: nil-поля не меняются.
type DummyComicUpdate struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=100"`
	Author      *string   `json:"author" validate:"omitempty,min=2,max=50"`
	Description *string   `json:"description" validate:"omitempty,min=10,max=1000"`
	CoverImage  *string   `json:"cover_image" validate:"omitempty,url"`
	Genres      *[]string `json:"genres" validate:"omitempty,min=1"`
	Premium     *bool     `json:"premium"`
}
