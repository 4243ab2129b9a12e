// Package auth содержит логику бизнес-уровня для регистрации,
// аутентификации и управления учётными записями.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/comic-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/comic-platform/internal/lib/password"
	"github.com/magabrotheeeer/comic-platform/internal/lib/random"
	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/oauth"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
	"github.com/magabrotheeeer/comic-platform/internal/storage/repository"
)

// Время жизни кода подтверждения, токена сброса и неподтверждённой регистрации.
const (
	otpTTL     = 10 * time.Minute
	resetTTL   = time.Hour
	pendingTTL = 24 * time.Hour
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userUID, firstName, lastName, phone, avatar string, clearLastName bool) (*models.User, error)
	UpdateUserPassword(ctx context.Context, userUID, passwordHash, provider string) error
	LinkGoogleAccount(ctx context.Context, userUID, googleID string) error
}

// TokenRepository описывает контракт для одноразовых кодов и токенов.
type TokenRepository interface {
	UpsertOtp(ctx context.Context, otp models.Otp) error
	GetOtp(ctx context.Context, email string) (*models.Otp, error)
	DeleteOtp(ctx context.Context, email string) error
	UpsertResetToken(ctx context.Context, token models.ResetToken) error
	GetResetToken(ctx context.Context, token string) (*models.ResetToken, error)
	DeleteResetToken(ctx context.Context, email string) error
	UpsertPendingRegistration(ctx context.Context, reg models.PendingRegistration) error
	GetPendingRegistration(ctx context.Context, email string) (*models.PendingRegistration, error)
	DeletePendingRegistration(ctx context.Context, email string) error
}

// Mailer отправляет письма с кодами и ссылками.
type Mailer interface {
	SendOtpEmail(email, firstName, code string) error
	SendResetEmail(email, firstName, token string) error
}

// GoogleVerifier проверяет ID-токены Google.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*oauth.GoogleProfile, error)
}

// AuthService отвечает за регистрацию, вход и управление паролями.
type AuthService struct {
	users    UserRepository
	tokens   TokenRepository
	mailer   Mailer
	google   GoogleVerifier
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает новый экземпляр AuthService.
func New(users UserRepository, tokens TokenRepository, mailer Mailer,
	google GoogleVerifier, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		mailer:   mailer,
		google:   google,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// RegisterParams данные регистрации нового пользователя.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Avatar    string
}

// Register сохраняет данные регистрации и высылает код подтверждения.
// Пользователь будет создан только после проверки кода.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) error {
	_, err := s.users.GetUserByEmail(ctx, params.Email)
	if err == nil {
		return errs.ErrConflict
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := password.GetHash(params.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	reg := models.PendingRegistration{
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Phone:        params.Phone,
		PasswordHash: hashed,
		Avatar:       params.Avatar,
		ExpiresAt:    now.Add(pendingTTL),
	}
	if err := s.tokens.UpsertPendingRegistration(ctx, reg); err != nil {
		return fmt.Errorf("failed to save registration: %w", err)
	}

	code, err := random.NewOtp()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	otp := models.Otp{
		Email:     params.Email,
		Code:      code,
		ExpiresAt: now.Add(otpTTL),
	}
	// Код сохраняется до отправки письма: при сбое почты пользователь
	// может запросить регистрацию повторно.
	if err := s.tokens.UpsertOtp(ctx, otp); err != nil {
		return fmt.Errorf("failed to save otp: %w", err)
	}
	if err := s.mailer.SendOtpEmail(params.Email, params.FirstName, code); err != nil {
		s.log.Error("failed to send otp email", slog.String("email", params.Email), sl.Err(err))
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

// VerifyOtp проверяет код, создает пользователя и возвращает JWT.
func (s *AuthService) VerifyOtp(ctx context.Context, email, code string) (string, *models.User, error) {
	otp, err := s.tokens.GetOtp(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, errs.ErrInvalidToken
		}
		return "", nil, fmt.Errorf("failed to get otp: %w", err)
	}
	now := time.Now().UTC()
	if otp.Code != code || otp.ExpiresAt.Before(now) {
		return "", nil, errs.ErrInvalidToken
	}

	reg, err := s.tokens.GetPendingRegistration(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, errs.ErrInvalidToken
		}
		return "", nil, fmt.Errorf("failed to get registration: %w", err)
	}
	if reg.ExpiresAt.Before(now) {
		return "", nil, errs.ErrInvalidToken
	}

	user := models.User{
		Email:        reg.Email,
		Phone:        reg.Phone,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PasswordHash: reg.PasswordHash,
		Avatar:       reg.Avatar,
		Provider:     models.ProviderLocal,
		Role:         models.RoleUser,
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.tokens.DeleteOtp(ctx, email); err != nil {
		s.log.Error("failed to delete otp", slog.String("email", email), sl.Err(err))
	}
	if err := s.tokens.DeletePendingRegistration(ctx, email); err != nil {
		s.log.Error("failed to delete registration", slog.String("email", email), sl.Err(err))
	}

	created, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	token, err := s.jwtMaker.GenerateToken(created.UID, created.Email, created.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, created, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, errs.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	// У пользователей, вошедших только через Google, нет пароля.
	if user.PasswordHash == "" {
		return "", nil, errs.ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, errs.ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

// GoogleAuth входит или регистрирует пользователя по ID-токену Google.
// Если почта уже занята локальным аккаунтом, Google привязывается к нему.
func (s *AuthService) GoogleAuth(ctx context.Context, idToken string) (string, *models.User, error) {
	profile, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidToken) {
			return "", nil, errs.ErrInvalidToken
		}
		return "", nil, fmt.Errorf("failed to verify google token: %w", err)
	}

	user, err := s.users.GetUserByGoogleID(ctx, profile.GoogleID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.users.GetUserByEmail(ctx, profile.Email)
		switch {
		case err == nil:
			if err := s.users.LinkGoogleAccount(ctx, user.UID, profile.GoogleID); err != nil {
				return "", nil, fmt.Errorf("failed to link google account: %w", err)
			}
		case errors.Is(err, repository.ErrNotFound):
			newUser := models.User{
				Email:     profile.Email,
				FirstName: profile.FirstName,
				LastName:  profile.LastName,
				Avatar:    profile.Avatar,
				Provider:  models.ProviderGoogle,
				GoogleID:  profile.GoogleID,
				Role:      models.RoleUser,
			}
			uid, err := s.users.CreateUser(ctx, newUser)
			if err != nil {
				return "", nil, fmt.Errorf("failed to create user: %w", err)
			}
			user, err = s.users.GetUser(ctx, uid)
			if err != nil {
				return "", nil, fmt.Errorf("failed to load user: %w", err)
			}
		default:
			return "", nil, fmt.Errorf("failed to get user: %w", err)
		}
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

// GetProfile возвращает профиль пользователя.
func (s *AuthService) GetProfile(ctx context.Context, userUID string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfileParams изменяемые поля профиля, пустые не трогаются.
type UpdateProfileParams struct {
	FirstName     string
	LastName      string
	ClearLastName bool
	Phone         string
	Avatar        string
}

// UpdateProfile обновляет профиль пользователя.
func (s *AuthService) UpdateProfile(ctx context.Context, userUID string, params UpdateProfileParams) (*models.User, error) {
	user, err := s.users.UpdateUserProfile(ctx, userUID,
		params.FirstName, params.LastName, params.Phone, params.Avatar, params.ClearLastName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// UpdatePassword меняет пароль после проверки текущего. Пользователю
// Google без пароля текущий пароль не нужен, при этом его способ входа
// становится гибридным.
func (s *AuthService) UpdatePassword(ctx context.Context, userUID, currentPassword, newPassword string) error {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	provider := user.Provider
	if user.PasswordHash != "" {
		if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
			return errs.ErrInvalidCredentials
		}
	} else {
		provider = models.ProviderHybrid
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, userUID, hashed, provider); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ForgotPassword создает токен сброса и высылает ссылку на почту.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := random.NewResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	rt := models.ResetToken{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(resetTTL),
	}
	if err := s.tokens.UpsertResetToken(ctx, rt); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}
	if err := s.mailer.SendResetEmail(email, user.FirstName, token); err != nil {
		s.log.Error("failed to send reset email", slog.String("email", email), sl.Err(err))
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword устанавливает новый пароль по токену сброса.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	rt, err := s.tokens.GetResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrInvalidToken
		}
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if rt.ExpiresAt.Before(time.Now().UTC()) {
		return errs.ErrInvalidToken
	}

	user, err := s.users.GetUserByEmail(ctx, rt.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ErrInvalidToken
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	provider := user.Provider
	if provider == models.ProviderGoogle {
		provider = models.ProviderHybrid
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, user.UID, hashed, provider); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.tokens.DeleteResetToken(ctx, rt.Email); err != nil {
		s.log.Error("failed to delete reset token", slog.String("email", rt.Email), sl.Err(err))
	}
	return nil
}
