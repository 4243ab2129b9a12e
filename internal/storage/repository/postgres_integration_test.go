package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/comic-platform/internal/models"
)

func TestStorage_GetComic_Aggregates(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	comicID := factory.CreateComic(t, "One Punch", "ONE", []string{"Action", "Comedy"}, false)
	factory.CreateChapter(t, comicID, 1, false)
	factory.CreateChapter(t, comicID, 2, true)

	reader1 := factory.CreateUser(t, "r1@example.com", "Reader", "hash", "user")
	reader2 := factory.CreateUser(t, "r2@example.com", "Reader", "hash", "user")
	factory.CreateReview(t, comicID, reader1, 4)
	factory.CreateReview(t, comicID, reader2, 5)

	_, _, err := storage.ToggleComicLike(ctx, comicID, reader1)
	require.NoError(t, err)

	comic, err := storage.GetComic(ctx, comicID)
	require.NoError(t, err)

	assert.Equal(t, "One Punch", comic.Title)
	assert.Equal(t, []string{"Action", "Comedy"}, comic.Genres)
	assert.InDelta(t, 4.5, comic.AverageRating, 0.001)
	assert.Equal(t, 1, comic.LikesCount)
	assert.Len(t, comic.Chapters, 2)
	assert.Equal(t, 1, comic.Chapters[0].ChapterNumber)

	bareID := factory.CreateComic(t, "Berserk", "Miura", []string{"Fantasy"}, false)
	bare, err := storage.GetComic(ctx, bareID)
	require.NoError(t, err)
	assert.Zero(t, bare.AverageRating)
	assert.Zero(t, bare.LikesCount)
}

func TestStorage_ListComics_Filters(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	factory.CreateComic(t, "One Punch", "ONE", []string{"Action", "Comedy"}, false)
	factory.CreateComic(t, "Berserk", "Miura", []string{"Action", "Fantasy"}, true)
	factory.CreateComic(t, "Yotsuba", "Azuma", []string{"Slice of Life"}, false)

	t.Run("фильтр по жанру", func(t *testing.T) {
		comics, err := storage.ListComics(ctx, models.ComicFilter{
			Genres: []string{"Action"},
			SortBy: models.SortTitle,
			Limit:  10,
		})
		require.NoError(t, err)
		assert.Len(t, comics, 2)
	})

	t.Run("все жанры сразу", func(t *testing.T) {
		comics, err := storage.ListComics(ctx, models.ComicFilter{
			Genres:   []string{"Action", "Fantasy"},
			MatchAll: true,
			SortBy:   models.SortTitle,
			Limit:    10,
		})
		require.NoError(t, err)
		require.Len(t, comics, 1)
		assert.Equal(t, "Berserk", comics[0].Title)
	})

	t.Run("поиск по подстроке", func(t *testing.T) {
		comics, err := storage.ListComics(ctx, models.ComicFilter{
			Search: "punch",
			SortBy: models.SortTitle,
			Limit:  10,
		})
		require.NoError(t, err)
		require.Len(t, comics, 1)
		assert.Equal(t, "One Punch", comics[0].Title)
	})

	t.Run("только премиальные", func(t *testing.T) {
		premium := true
		comics, err := storage.ListComics(ctx, models.ComicFilter{
			Premium: &premium,
			SortBy:  models.SortTitle,
			Limit:   10,
		})
		require.NoError(t, err)
		require.Len(t, comics, 1)
		assert.Equal(t, "Berserk", comics[0].Title)
	})

	t.Run("пагинация и счетчик", func(t *testing.T) {
		filter := models.ComicFilter{SortBy: models.SortTitle, Limit: 2}
		comics, err := storage.ListComics(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, comics, 2)

		total, err := storage.CountComics(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})
}

func TestStorage_ToggleComicLike(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	comicID := factory.CreateComic(t, "Berserk", "Miura", []string{"Action"}, false)
	userUID := factory.CreateUser(t, "user@example.com", "Reader", "hash", "user")

	liked, count, err := storage.ToggleComicLike(ctx, comicID, userUID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = storage.ToggleComicLike(ctx, comicID, userUID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)
}

func TestStorage_Payments(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "payer@example.com", "Payer", "hash", "user")

	id, err := storage.CreatePayment(ctx, models.Payment{
		UserUID:           userUID,
		PlanType:          models.PlanMonthly,
		Amount:            299.00,
		ProviderPaymentID: "intent-1",
	})
	require.NoError(t, err)

	t.Run("второй незавершённый платёж отклоняется базой", func(t *testing.T) {
		_, err := storage.CreatePayment(ctx, models.Payment{
			UserUID:           userUID,
			PlanType:          models.PlanMonthly,
			Amount:            299.00,
			ProviderPaymentID: "intent-2",
		})
		assert.Error(t, err)
	})

	t.Run("поиск незавершённого платежа", func(t *testing.T) {
		pending, err := storage.FindPendingPayment(ctx, userUID)
		require.NoError(t, err)
		assert.Equal(t, id, pending.ID)
	})

	t.Run("переход pending -> success", func(t *testing.T) {
		updated, err := storage.UpdatePaymentStatus(ctx, id, models.PaymentSuccess)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentSuccess, updated.Status)
	})

	t.Run("завершённый платёж больше не обновляется", func(t *testing.T) {
		_, err := storage.UpdatePaymentStatus(ctx, id, models.PaymentFailed)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_SubscriptionLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	now := time.Now().UTC()

	userUID := factory.CreateUser(t, "sub@example.com", "Sub", "hash", "user")

	err := storage.SetSubscription(ctx, userUID, models.PlanPremium, now, now.AddDate(0, 0, 30))
	require.NoError(t, err)

	users, err := storage.FindActivePremiumUsers(ctx, now)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, userUID, users[0].UID)
	assert.False(t, users[0].Subscription.ReminderSent)

	err = storage.MarkReminderSent(ctx, userUID)
	require.NoError(t, err)

	user, err := storage.GetUser(ctx, userUID)
	require.NoError(t, err)
	assert.True(t, user.Subscription.ReminderSent)

	err = storage.ResetSubscription(ctx, userUID)
	require.NoError(t, err)

	user, err = storage.GetUser(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanNone, user.Subscription.Plan)
	assert.Nil(t, user.Subscription.EndDate)
	assert.False(t, user.Subscription.ReminderSent)
}

func TestStorage_PurgeExpiredTokens(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, storage.UpsertOtp(ctx, models.Otp{
		Email: "old@example.com", Code: "111111", ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, storage.UpsertOtp(ctx, models.Otp{
		Email: "fresh@example.com", Code: "222222", ExpiresAt: now.Add(time.Hour),
	}))

	require.NoError(t, storage.PurgeExpiredTokens(ctx, now))

	_, err := storage.GetOtp(ctx, "old@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	otp, err := storage.GetOtp(ctx, "fresh@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", otp.Code)
}
