// Package scheduler запускает ежедневную проверку подписок: снимает
// просроченный премиум, шлёт напоминания об окончании и чистит
// просроченные коды подтверждения.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/models"
)

// Напоминание уходит, когда до конца подписки остаётся не больше трёх дней.
const reminderWindow = 3 * 24 * time.Hour

// UserRepository описывает контракт для проверки подписок.
type UserRepository interface {
	FindActivePremiumUsers(ctx context.Context, now time.Time) ([]*models.User, error)
	ResetSubscription(ctx context.Context, userUID string) error
	MarkReminderSent(ctx context.Context, userUID string) error
	PurgeExpiredTokens(ctx context.Context, now time.Time) error
}

// Publisher отправляет напоминания в очередь уведомлений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// SchedulerService раз в сутки проходит по премиум-подпискам.
type SchedulerService struct {
	repo      UserRepository
	publisher Publisher
	log       *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo UserRepository, publisher Publisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// RunDaily запускает проверку сразу и затем каждые сутки, пока не
// закрыт контекст.
func (s *SchedulerService) RunDaily(ctx context.Context) {
	s.Sweep(ctx, time.Now().UTC())

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx, time.Now().UTC())
		}
	}
}

// Sweep выполняет один проход: просроченный премиум сбрасывается, по
// заканчивающимся подпискам один раз уходит напоминание. Флаг
// reminder_sent ставится до публикации, повторная отправка при сбое
// очереди исключена.
func (s *SchedulerService) Sweep(ctx context.Context, now time.Time) {
	s.log.Info("starting subscription sweep")

	users, err := s.repo.FindActivePremiumUsers(ctx, now)
	if err != nil {
		s.log.Error("failed to find premium users", sl.Err(err))
		return
	}
	s.log.Info("found premium users", slog.Int("count", len(users)))

	var expired, reminded int
	for _, user := range users {
		if user.Subscription.EndDate == nil {
			continue
		}
		end := *user.Subscription.EndDate

		switch {
		case end.Before(now):
			if err := s.repo.ResetSubscription(ctx, user.UID); err != nil {
				s.log.Error("failed to reset subscription",
					slog.String("user_uid", user.UID), sl.Err(err))
				continue
			}
			expired++
		case end.After(now) && !end.After(now.Add(reminderWindow)) && !user.Subscription.ReminderSent:
			if err := s.repo.MarkReminderSent(ctx, user.UID); err != nil {
				s.log.Error("failed to mark reminder",
					slog.String("user_uid", user.UID), sl.Err(err))
				continue
			}
			info := models.ReminderInfo{
				Email:     user.Email,
				FirstName: user.FirstName,
				Plan:      user.Subscription.Plan,
				EndDate:   end,
			}
			if err := s.publisher.Publish("reminder", info); err != nil {
				s.log.Error("failed to publish reminder",
					slog.String("user_uid", user.UID), sl.Err(err))
				continue
			}
			reminded++
		}
	}

	if err := s.repo.PurgeExpiredTokens(ctx, now); err != nil {
		s.log.Error("failed to purge expired tokens", sl.Err(err))
	}

	s.log.Info("subscription sweep finished",
		slog.Int("expired", expired), slog.Int("reminded", reminded))
}
