package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/comic-platform/internal/models"
)

const userColumns = `uid, email, COALESCE(phone, ''), first_name, last_name,
	      COALESCE(password_hash, ''), avatar, provider, COALESCE(google_id, ''), role,
	      subscription_plan, subscription_start, subscription_end, reminder_sent,
	      created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var start, end sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Phone, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Avatar, &u.Provider, &u.GoogleID, &u.Role,
		&u.Subscription.Plan, &start, &end, &u.Subscription.ReminderSent,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if start.Valid {
		u.Subscription.StartDate = &start.Time
	}
	if end.Valid {
		u.Subscription.EndDate = &end.Time
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его uid.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, phone, first_name, last_name, password_hash,
		      avatar, provider, google_id, role)
		  VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), $9)
		  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Phone, user.FirstName, user.LastName, user.PasswordHash,
		user.Avatar, user.Provider, user.GoogleID, user.Role).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUser возвращает пользователя по его uid.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByGoogleID возвращает пользователя по идентификатору Google.
func (s *Storage) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	const op = "storage.GetUserByGoogleID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, googleID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей с пагинацией.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserProfile обновляет профиль. Пустые значения не трогают поле,
// кроме lastName: его можно затереть пустой строкой.
func (s *Storage) UpdateUserProfile(ctx context.Context, userUID, firstName, lastName, phone, avatar string, clearLastName bool) (*models.User, error) {
	const op = "storage.UpdateUserProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		  SET first_name = COALESCE(NULLIF($2, ''), first_name),
		      last_name = CASE WHEN $6 THEN $3 ELSE COALESCE(NULLIF($3, ''), last_name) END,
		      phone = COALESCE(NULLIF($4, ''), phone),
		      avatar = COALESCE(NULLIF($5, ''), avatar),
		      updated_at = NOW()
		  WHERE uid = $1
		  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID, firstName, lastName, phone, avatar, clearLastName))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateUserPassword сохраняет новый хэш пароля и при необходимости меняет provider.
func (s *Storage) UpdateUserPassword(ctx context.Context, userUID, passwordHash, provider string) error {
	const op = "storage.UpdateUserPassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		  SET password_hash = $2, provider = $3, updated_at = NOW()
		  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID, passwordHash, provider)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// LinkGoogleAccount привязывает аккаунт Google к локальному пользователю.
func (s *Storage) LinkGoogleAccount(ctx context.Context, userUID, googleID string) error {
	const op = "storage.LinkGoogleAccount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		  SET google_id = $2, provider = 'hybrid', updated_at = NOW()
		  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID, googleID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateUserRole меняет роль пользователя.
func (s *Storage) UpdateUserRole(ctx context.Context, userUID, role string) (*models.User, error) {
	const op = "storage.UpdateUserRole"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET role = $2, updated_at = NOW()
		  WHERE uid = $1
		  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID, role))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SetSubscription устанавливает окно действия премиум-подписки после
// успешной оплаты и сбрасывает флаг напоминания.
func (s *Storage) SetSubscription(ctx context.Context, userUID, plan string, startDate, endDate time.Time) error {
	const op = "storage.SetSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		  SET subscription_plan = $2,
		      subscription_start = $3,
		      subscription_end = $4,
		      reminder_sent = FALSE,
		      updated_at = NOW()
		  WHERE uid = $1`
	_, err := s.DB.ExecContext(ctx, query, userUID, plan, startDate, endDate)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindActivePremiumUsers находит пользователей с планом premium, у которых
// подписка уже началась. По ним проходит ежедневная проверка.
func (s *Storage) FindActivePremiumUsers(ctx context.Context, now time.Time) ([]*models.User, error) {
	const op = "storage.FindActivePremiumUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
		  FROM users
		  WHERE subscription_plan = 'premium' AND subscription_start <= $1`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ResetSubscription сбрасывает подписку в исходное состояние после истечения.
func (s *Storage) ResetSubscription(ctx context.Context, userUID string) error {
	const op = "storage.ResetSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		  SET subscription_plan = 'none',
		      subscription_start = NULL,
		      subscription_end = NULL,
		      reminder_sent = FALSE,
		      updated_at = NOW()
		  WHERE uid = $1`
	_, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkReminderSent помечает, что напоминание об окончании подписки отправлено.
func (s *Storage) MarkReminderSent(ctx context.Context, userUID string) error {
	const op = "storage.MarkReminderSent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET reminder_sent = TRUE, updated_at = NOW() WHERE uid = $1`
	_, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountPremiumUsers считает пользователей с планом premium.
func (s *Storage) CountPremiumUsers(ctx context.Context) (int, error) {
	const op = "storage.CountPremiumUsers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM users WHERE subscription_plan = 'premium'`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
