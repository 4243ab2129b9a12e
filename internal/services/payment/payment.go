// Package payment содержит логику бизнес-уровня оплаты подписки:
// создание платежа у шлюза, проверку результата и выдачу премиума.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/paymentprovider"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
	"github.com/magabrotheeeer/comic-platform/internal/storage/repository"
)

// PaymentRepository описывает контракт для платежей и тарифных планов.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment models.Payment) (int, error)
	FindPendingPayment(ctx context.Context, userUID string) (*models.Payment, error)
	GetPayment(ctx context.Context, paymentID int) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID int, status string) (*models.Payment, error)
	UpsertPlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error)
	GetPlan(ctx context.Context, planType string) (*models.SubscriptionPlan, error)
	ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error)
	SetSubscription(ctx context.Context, userUID, plan string, startDate, endDate time.Time) error
	CountPremiumUsers(ctx context.Context) (int, error)
}

// UserRepository отдаёт пользователя для проверки подписки и отправки писем.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Mailer отправляет подтверждение оплаты.
type Mailer interface {
	SendPaymentConfirmation(email, firstName, planType string, endDate time.Time) error
}

// Provider создаёт и проверяет платёжные намерения у шлюза.
type Provider interface {
	CreateIntent(ctx context.Context, req paymentprovider.CreateIntentRequest) (*paymentprovider.Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*paymentprovider.Intent, error)
}

// Cache хранит список тарифных планов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

const plansCacheKey = "subscription_plans"

// PaymentService отвечает за платежи и тарифные планы.
type PaymentService struct {
	repo     PaymentRepository
	users    UserRepository
	provider Provider
	mailer   Mailer
	cache    Cache
	log      *slog.Logger
}

// New создает новый экземпляр PaymentService.
func New(repo PaymentRepository, users UserRepository, provider Provider,
	mailer Mailer, cache Cache, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		users:    users,
		provider: provider,
		mailer:   mailer,
		cache:    cache,
		log:      log,
	}
}

// InitiateResult платёж и ссылка для подтверждения оплаты.
type InitiateResult struct {
	Payment         *models.Payment `json:"payment"`
	ConfirmationURL string          `json:"confirmation_url"`
}

// Initiate создает платёж по тарифному плану. У пользователя может быть
// не больше одного незавершённого платежа.
func (s *PaymentService) Initiate(ctx context.Context, userUID, planType string) (*InitiateResult, error) {
	if !models.IsKnownPlanType(planType) {
		return nil, fmt.Errorf("%w: unknown plan type %q", errs.ErrInvalidInput, planType)
	}

	plan, err := s.repo.GetPlan(ctx, planType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	if _, err := s.repo.FindPendingPayment(ctx, userUID); err == nil {
		return nil, errs.ErrConflict
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check pending payment: %w", err)
	}

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Subscription.Plan == models.PlanPremium && user.HasActivePremium(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: premium subscription is already active", errs.ErrConflict)
	}

	req := paymentprovider.CreateIntentRequest{
		Amount: paymentprovider.Amount{
			Value:    int64(math.Round(plan.Price * 100)),
			Currency: "RUB",
		},
		Description: fmt.Sprintf("Premium subscription (%s)", planType),
	}
	req.Metadata.UserUID = userUID
	req.Metadata.PlanType = planType

	intent, err := s.provider.CreateIntent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	payment := models.Payment{
		UserUID:           userUID,
		PlanType:          planType,
		Amount:            plan.Price,
		ProviderPaymentID: intent.ID,
	}
	id, err := s.repo.CreatePayment(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	created, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &InitiateResult{Payment: created, ConfirmationURL: intent.ConfirmationURL}, nil
}

// Verify сверяет платёж со шлюзом. Успешный у шлюза платёж выдаёт
// пользователю премиум на срок тарифного плана, любой другой статус
// завершает платёж как неуспешный. Уже завершённые платежи не
// перепроверяются.
func (s *PaymentService) Verify(ctx context.Context, userUID string, paymentID int) (*models.Payment, error) {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment.UserUID != userUID {
		return nil, errs.ErrForbidden
	}
	if payment.Status != models.PaymentPending {
		return nil, fmt.Errorf("%w: payment already processed", errs.ErrConflict)
	}

	intent, err := s.provider.RetrieveIntent(ctx, payment.ProviderPaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	switch intent.Status {
	case paymentprovider.IntentSucceeded:
		updated, err := s.repo.UpdatePaymentStatus(ctx, paymentID, models.PaymentSuccess)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Параллельная проверка успела первой, отдаём свежее состояние.
				return s.repo.GetPayment(ctx, paymentID)
			}
			return nil, fmt.Errorf("failed to update payment: %w", err)
		}

		plan, err := s.repo.GetPlan(ctx, payment.PlanType)
		if err != nil {
			return nil, fmt.Errorf("failed to get plan: %w", err)
		}
		start := time.Now().UTC()
		end := start.AddDate(0, 0, plan.DurationDays)
		if err := s.repo.SetSubscription(ctx, userUID, models.PlanPremium, start, end); err != nil {
			return nil, fmt.Errorf("failed to activate subscription: %w", err)
		}
		if user, err := s.users.GetUser(ctx, userUID); err != nil {
			s.log.Error("failed to get user for confirmation email", sl.Err(err))
		} else if err := s.mailer.SendPaymentConfirmation(user.Email, user.FirstName, payment.PlanType, end); err != nil {
			// Подписка уже активирована, письмо не критично.
			s.log.Error("failed to send payment confirmation email", sl.Err(err))
		}
		s.log.Info("premium subscription activated",
			slog.String("user_uid", userUID),
			slog.String("plan_type", payment.PlanType),
			slog.Time("end_date", end))
		return updated, nil
	default:
		// Любой статус кроме succeeded завершает платёж как неуспешный.
		updated, err := s.repo.UpdatePaymentStatus(ctx, paymentID, models.PaymentFailed)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return s.repo.GetPayment(ctx, paymentID)
			}
			return nil, fmt.Errorf("failed to update payment: %w", err)
		}
		return updated, nil
	}
}

// SetPlan создаёт или обновляет тарифный план.
func (s *PaymentService) SetPlan(ctx context.Context, req models.DummyPlan) (*models.SubscriptionPlan, error) {
	if !models.IsKnownPlanType(req.PlanType) {
		return nil, fmt.Errorf("%w: unknown plan type %q", errs.ErrInvalidInput, req.PlanType)
	}
	plan, err := s.repo.UpsertPlan(ctx, models.SubscriptionPlan{
		PlanType:     req.PlanType,
		Price:        req.Price,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert plan: %w", err)
	}
	if err := s.cache.Invalidate(plansCacheKey); err != nil {
		s.log.Warn("failed to remove plans from cache", slog.Any("err", err))
	}
	return plan, nil
}

// ListPlans возвращает тарифные планы, сначала из кэша.
func (s *PaymentService) ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	var cached []*models.SubscriptionPlan
	found, err := s.cache.Get(plansCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans from cache", slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if err := s.cache.Set(plansCacheKey, plans, time.Hour); err != nil {
		s.log.Warn("failed to cache plans", slog.Any("err", err))
	}
	return plans, nil
}

// CountPremiumUsers возвращает число пользователей с премиум-планом.
func (s *PaymentService) CountPremiumUsers(ctx context.Context) (int, error) {
	count, err := s.repo.CountPremiumUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count premium users: %w", err)
	}
	return count, nil
}
