package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/comic-platform/internal/models"
)

// UpsertOtp сохраняет одноразовый код для почты, затирая предыдущий.
func (s *Storage) UpsertOtp(ctx context.Context, otp models.Otp) error {
	const op = "storage.UpsertOtp"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO otps (email, code, expires_at)
		  VALUES ($1, $2, $3)
		  ON CONFLICT (email) DO UPDATE
		  SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at;`
	if _, err := s.DB.ExecContext(ctx, query, otp.Email, otp.Code, otp.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetOtp возвращает код подтверждения для почты.
func (s *Storage) GetOtp(ctx context.Context, email string) (*models.Otp, error) {
	const op = "storage.GetOtp"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	otp := &models.Otp{}
	query := `SELECT email, code, expires_at FROM otps WHERE email = $1`
	err := s.DB.QueryRowContext(ctx, query, email).Scan(&otp.Email, &otp.Code, &otp.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return otp, nil
}

// DeleteOtp удаляет код подтверждения после использования.
func (s *Storage) DeleteOtp(ctx context.Context, email string) error {
	const op = "storage.DeleteOtp"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM otps WHERE email = $1`, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpsertResetToken сохраняет токен сброса пароля для почты.
func (s *Storage) UpsertResetToken(ctx context.Context, token models.ResetToken) error {
	const op = "storage.UpsertResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO reset_tokens (email, token, expires_at)
		  VALUES ($1, $2, $3)
		  ON CONFLICT (email) DO UPDATE
		  SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at;`
	if _, err := s.DB.ExecContext(ctx, query, token.Email, token.Token, token.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetResetToken ищет запись по значению токена.
func (s *Storage) GetResetToken(ctx context.Context, token string) (*models.ResetToken, error) {
	const op = "storage.GetResetToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rt := &models.ResetToken{}
	query := `SELECT email, token, expires_at FROM reset_tokens WHERE token = $1`
	err := s.DB.QueryRowContext(ctx, query, token).Scan(&rt.Email, &rt.Token, &rt.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rt, nil
}

// DeleteResetToken удаляет токен сброса пароля после использования.
func (s *Storage) DeleteResetToken(ctx context.Context, email string) error {
	const op = "storage.DeleteResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM reset_tokens WHERE email = $1`, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpsertPendingRegistration сохраняет данные регистрации до подтверждения
// кода. Повторная регистрация той же почты затирает предыдущую запись.
func (s *Storage) UpsertPendingRegistration(ctx context.Context, reg models.PendingRegistration) error {
	const op = "storage.UpsertPendingRegistration"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO pending_registrations (email, first_name, last_name, phone, password_hash, avatar, expires_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7)
		  ON CONFLICT (email) DO UPDATE
		  SET first_name = EXCLUDED.first_name,
		      last_name = EXCLUDED.last_name,
		      phone = EXCLUDED.phone,
		      password_hash = EXCLUDED.password_hash,
		      avatar = EXCLUDED.avatar,
		      expires_at = EXCLUDED.expires_at;`
	if _, err := s.DB.ExecContext(ctx, query,
		reg.Email, reg.FirstName, reg.LastName, reg.Phone,
		reg.PasswordHash, reg.Avatar, reg.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPendingRegistration возвращает ожидающую подтверждения регистрацию.
func (s *Storage) GetPendingRegistration(ctx context.Context, email string) (*models.PendingRegistration, error) {
	const op = "storage.GetPendingRegistration"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	reg := &models.PendingRegistration{}
	query := `SELECT email, first_name, last_name, phone, password_hash, avatar, expires_at
		  FROM pending_registrations WHERE email = $1`
	err := s.DB.QueryRowContext(ctx, query, email).Scan(
		&reg.Email, &reg.FirstName, &reg.LastName, &reg.Phone,
		&reg.PasswordHash, &reg.Avatar, &reg.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reg, nil
}

// DeletePendingRegistration удаляет запись после создания пользователя.
func (s *Storage) DeletePendingRegistration(ctx context.Context, email string) error {
	const op = "storage.DeletePendingRegistration"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM pending_registrations WHERE email = $1`, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PurgeExpiredTokens удаляет просроченные коды, токены сброса и
// неподтверждённые регистрации. Вызывается ежедневной проверкой.
func (s *Storage) PurgeExpiredTokens(ctx context.Context, now time.Time) error {
	const op = "storage.PurgeExpiredTokens"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	for _, query := range []string{
		`DELETE FROM otps WHERE expires_at < $1`,
		`DELETE FROM reset_tokens WHERE expires_at < $1`,
		`DELETE FROM pending_registrations WHERE expires_at < $1`,
	} {
		if _, err := s.DB.ExecContext(ctx, query, now); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
