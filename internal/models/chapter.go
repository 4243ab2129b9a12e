package models

import "time"

// Chapter глава комикса. Контент гейтится, если премиальна глава
// или её комикс.
type Chapter struct {
	ID               int       `json:"id"`
	ComicID          int       `json:"comic_id"`
	Title            string    `json:"title"`
	ChapterNumber    int       `json:"chapter_number"`
	ContentURL       string    `json:"content_url,omitempty"`
	Premium          bool      `json:"premium"`
	AvailableOffline bool      `json:"available_offline"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DummyChapter используется для приёма данных главы из JSON-запроса.
type DummyChapter struct {
	ComicID          int    `json:"comic_id" validate:"required,gt=0"`
	Title            string `json:"title" validate:"required"`
	ChapterNumber    int    `json:"chapter_number" validate:"required,gt=0"`
	ContentURL       string `json:"content_url" validate:"required,url"`
	Premium          bool   `json:"premium"`
	AvailableOffline bool   `json:"available_offline"`
}

// DummyChapterUpdate частичное обновление главы: nil-поля не трогаются.
type DummyChapterUpdate struct {
	Title            *string `json:"title,omitempty" validate:"omitempty,min=1"`
	ChapterNumber    *int    `json:"chapter_number,omitempty" validate:"omitempty,gt=0"`
	ContentURL       *string `json:"content_url,omitempty" validate:"omitempty,url"`
	Premium          *bool   `json:"premium,omitempty"`
	AvailableOffline *bool   `json:"available_offline,omitempty"`
}
