package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/comic-platform/internal/models"
)

const paymentColumns = `id, user_uid, plan_type, amount, provider_payment_id,
	      status, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	if err := row.Scan(&p.ID, &p.UserUID, &p.PlanType, &p.Amount,
		&p.ProviderPaymentID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePayment сохраняет платёж в статусе pending и возвращает его
// идентификатор. Частичный уникальный индекс гарантирует не больше
// одного ожидающего платежа на пользователя.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO payments (user_uid, plan_type, amount, provider_payment_id, status)
		  VALUES ($1, $2, $3, $4, 'pending')
		  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		payment.UserUID, payment.PlanType, payment.Amount, payment.ProviderPaymentID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// FindPendingPayment возвращает незавершённый платёж пользователя.
func (s *Storage) FindPendingPayment(ctx context.Context, userUID string) (*models.Payment, error) {
	const op = "storage.FindPendingPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments
		  WHERE user_uid = $1 AND status = 'pending'`
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetPayment возвращает платёж по идентификатору.
func (s *Storage) GetPayment(ctx context.Context, paymentID int) (*models.Payment, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdatePaymentStatus переводит платёж из pending в терминальный статус.
// Обновление с условием на статус не даёт перезаписать уже завершённый
// платёж при гонке двух проверок.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, paymentID int, status string) (*models.Payment, error) {
	const op = "storage.UpdatePaymentStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments SET status = $2, updated_at = NOW()
		  WHERE id = $1 AND status = 'pending'
		  RETURNING ` + paymentColumns
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, paymentID, status))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
