package models

import "time"

// Поля сортировки каталога комиксов.
const (
	SortCreatedAt     = "createdAt"
	SortTitle         = "title"
	SortAuthor        = "author"
	SortAverageRating = "averageRating"
	SortLikesCount    = "likesCount"
)

// ComicFilter параметры выборки каталога, передаваемые в слой доступа к данным.
// Пороговые значения MinRating и MinLikes применяются после агрегации,
// потому что считаются из отзывов и лайков.
type ComicFilter struct {
	Search       string     // Подстрока либо точное совпадение по названию/автору
	ExactMatch   bool       // Точное совпадение с учётом регистра
	Genres       []string   // Список жанров
	MatchAll     bool       // true: комикс содержит все жанры, false: хотя бы один
	Premium      *bool      // nil — без фильтра
	MinRating    *float64   // Нижний порог среднего рейтинга
	MinLikes     *int       // Нижний порог числа лайков
	CreatedAfter *time.Time // Нижняя граница даты создания
	SortBy       string     // Одно из Sort* значений
	SortDesc     bool
	Limit        int
	Offset       int
}

// DummyComicFilter используется для приёма параметров каталога из query-строки
// до их валидации и преобразования в ComicFilter.
type DummyComicFilter struct {
	Page         int    `validate:"gte=1"`
	Limit        int    `validate:"gte=1,lte=100"`
	Search       string `validate:"omitempty"`
	ExactMatch   bool
	Genres       string
	MatchAll     bool
	Premium      string `validate:"omitempty,oneof=true false"`
	MinRating    string `validate:"omitempty"`
	MinLikes     string `validate:"omitempty"`
	CreatedAfter string `validate:"omitempty"`
	SortBy       string `validate:"omitempty,oneof=createdAt title author averageRating likesCount"`
	SortOrder    string `validate:"omitempty,oneof=asc desc"`
}

// ReminderInfo сообщение о скором окончании подписки, публикуемое
// планировщиком в очередь уведомлений.
type ReminderInfo struct {
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	Plan      string    `json:"plan"`
	EndDate   time.Time `json:"end_date"`
}
