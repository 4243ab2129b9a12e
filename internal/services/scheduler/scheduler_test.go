package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/comic-platform/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindActivePremiumUsers(ctx context.Context, now time.Time) ([]*models.User, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockRepository) ResetSubscription(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func (m *MockRepository) MarkReminderSent(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func (m *MockRepository) PurgeExpiredTokens(ctx context.Context, now time.Time) error {
	args := m.Called(ctx, now)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func premiumUser(uid string, end time.Time, reminderSent bool) *models.User {
	start := end.Add(-30 * 24 * time.Hour)
	return &models.User{
		UID:       uid,
		Email:     uid + "@example.com",
		FirstName: "Test",
		Role:      models.RoleUser,
		Subscription: models.Subscription{
			Plan:         models.PlanPremium,
			StartDate:    &start,
			EndDate:      &end,
			ReminderSent: reminderSent,
		},
	}
}

func TestSchedulerService_Sweep(t *testing.T) {
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(*MockRepository, *MockPublisher)
	}{
		{
			name: "просроченная подписка сбрасывается",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				expired := premiumUser("uid-expired", now.Add(-time.Hour), false)
				r.On("FindActivePremiumUsers", mock.Anything, now).Return([]*models.User{expired}, nil).Once()
				r.On("ResetSubscription", mock.Anything, "uid-expired").Return(nil).Once()
				r.On("PurgeExpiredTokens", mock.Anything, now).Return(nil).Once()
			},
		},
		{
			name: "напоминание уходит внутри трёхдневного окна",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				expiring := premiumUser("uid-expiring", now.Add(48*time.Hour), false)
				r.On("FindActivePremiumUsers", mock.Anything, now).Return([]*models.User{expiring}, nil).Once()
				r.On("MarkReminderSent", mock.Anything, "uid-expiring").Return(nil).Once()
				p.On("Publish", "reminder", models.ReminderInfo{
					Email:     "uid-expiring@example.com",
					FirstName: "Test",
					Plan:      models.PlanPremium,
					EndDate:   *expiring.Subscription.EndDate,
				}).Return(nil).Once()
				r.On("PurgeExpiredTokens", mock.Anything, now).Return(nil).Once()
			},
		},
		{
			name: "повторное напоминание не отправляется",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				alreadyReminded := premiumUser("uid-reminded", now.Add(48*time.Hour), true)
				r.On("FindActivePremiumUsers", mock.Anything, now).Return([]*models.User{alreadyReminded}, nil).Once()
				r.On("PurgeExpiredTokens", mock.Anything, now).Return(nil).Once()
			},
		},
		{
			name: "подписка далеко от окончания не трогается",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				active := premiumUser("uid-active", now.Add(30*24*time.Hour), false)
				r.On("FindActivePremiumUsers", mock.Anything, now).Return([]*models.User{active}, nil).Once()
				r.On("PurgeExpiredTokens", mock.Anything, now).Return(nil).Once()
			},
		},
		{
			name: "подписка до текущего момента не трогается",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				boundary := premiumUser("uid-boundary", now, false)
				r.On("FindActivePremiumUsers", mock.Anything, now).Return([]*models.User{boundary}, nil).Once()
				r.On("PurgeExpiredTokens", mock.Anything, now).Return(nil).Once()
			},
		},
		{
			name: "бессрочная подписка пропускается",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				lifetime := premiumUser("uid-lifetime", now, false)
				lifetime.Subscription.EndDate = nil
				r.On("FindActivePremiumUsers", mock.Anything, now).Return([]*models.User{lifetime}, nil).Once()
				r.On("PurgeExpiredTokens", mock.Anything, now).Return(nil).Once()
			},
		},
		{
			name: "ошибка отметки напоминания блокирует публикацию",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				expiring := premiumUser("uid-markfail", now.Add(24*time.Hour), false)
				r.On("FindActivePremiumUsers", mock.Anything, now).Return([]*models.User{expiring}, nil).Once()
				r.On("MarkReminderSent", mock.Anything, "uid-markfail").Return(errors.New("db error")).Once()
				r.On("PurgeExpiredTokens", mock.Anything, now).Return(nil).Once()
			},
		},
		{
			name: "ошибка выборки не валит проход",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("FindActivePremiumUsers", mock.Anything, now).Return(nil, errors.New("db error")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			publisher := new(MockPublisher)
			tt.setupMocks(repo, publisher)

			service := NewSchedulerService(repo, publisher, newNoopLogger())
			service.Sweep(context.Background(), now)

			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}
