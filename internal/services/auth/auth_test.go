package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/comic-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/comic-platform/internal/lib/password"
	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/oauth"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
	"github.com/magabrotheeeer/comic-platform/internal/storage/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUserProfile(ctx context.Context, userUID, firstName, lastName, phone, avatar string, clearLastName bool) (*models.User, error) {
	args := m.Called(ctx, userUID, firstName, lastName, phone, avatar, clearLastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUserPassword(ctx context.Context, userUID, passwordHash, provider string) error {
	args := m.Called(ctx, userUID, passwordHash, provider)
	return args.Error(0)
}

func (m *MockUserRepository) LinkGoogleAccount(ctx context.Context, userUID, googleID string) error {
	args := m.Called(ctx, userUID, googleID)
	return args.Error(0)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) UpsertOtp(ctx context.Context, otp models.Otp) error {
	args := m.Called(ctx, otp)
	return args.Error(0)
}

func (m *MockTokenRepository) GetOtp(ctx context.Context, email string) (*models.Otp, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Otp), args.Error(1)
}

func (m *MockTokenRepository) DeleteOtp(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockTokenRepository) UpsertResetToken(ctx context.Context, token models.ResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetResetToken(ctx context.Context, token string) (*models.ResetToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResetToken), args.Error(1)
}

func (m *MockTokenRepository) DeleteResetToken(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockTokenRepository) UpsertPendingRegistration(ctx context.Context, reg models.PendingRegistration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *MockTokenRepository) GetPendingRegistration(ctx context.Context, email string) (*models.PendingRegistration, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingRegistration), args.Error(1)
}

func (m *MockTokenRepository) DeletePendingRegistration(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOtpEmail(email, firstName, code string) error {
	args := m.Called(email, firstName, code)
	return args.Error(0)
}

func (m *MockMailer) SendResetEmail(email, firstName, token string) error {
	args := m.Called(email, firstName, token)
	return args.Error(0)
}

type MockGoogleVerifier struct {
	mock.Mock
}

func (m *MockGoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (*oauth.GoogleProfile, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.GoogleProfile), args.Error(1)
}

func newService(users *MockUserRepository, tokens *MockTokenRepository, mailer *MockMailer, google *MockGoogleVerifier) *AuthService {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	return New(users, tokens, mailer, google, maker, logger)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("успешная регистрация высылает код", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenRepository)
		mailer := new(MockMailer)

		users.On("GetUserByEmail", mock.Anything, "new@example.com").Return(nil, repository.ErrNotFound).Once()
		tokens.On("UpsertPendingRegistration", mock.Anything, mock.MatchedBy(func(reg models.PendingRegistration) bool {
			return reg.Email == "new@example.com" && reg.PasswordHash != "" && reg.PasswordHash != "secret123"
		})).Return(nil).Once()
		tokens.On("UpsertOtp", mock.Anything, mock.MatchedBy(func(otp models.Otp) bool {
			return otp.Email == "new@example.com" && len(otp.Code) == 6
		})).Return(nil).Once()
		mailer.On("SendOtpEmail", "new@example.com", "Ivan", mock.AnythingOfType("string")).Return(nil).Once()

		service := newService(users, tokens, mailer, new(MockGoogleVerifier))
		err := service.Register(context.Background(), RegisterParams{
			Email:     "new@example.com",
			Password:  "secret123",
			FirstName: "Ivan",
		})

		require.NoError(t, err)
		users.AssertExpectations(t)
		tokens.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("занятая почта", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "taken@example.com").
			Return(&models.User{UID: "uid-1", Email: "taken@example.com"}, nil).Once()

		service := newService(users, new(MockTokenRepository), new(MockMailer), new(MockGoogleVerifier))
		err := service.Register(context.Background(), RegisterParams{Email: "taken@example.com", Password: "secret123"})

		assert.ErrorIs(t, err, errs.ErrConflict)
	})
}

func TestAuthService_VerifyOtp(t *testing.T) {
	now := time.Now().UTC()

	t.Run("верный код создает пользователя", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenRepository)

		tokens.On("GetOtp", mock.Anything, "new@example.com").
			Return(&models.Otp{Email: "new@example.com", Code: "123456", ExpiresAt: now.Add(5 * time.Minute)}, nil).Once()
		tokens.On("GetPendingRegistration", mock.Anything, "new@example.com").
			Return(&models.PendingRegistration{
				Email:        "new@example.com",
				FirstName:    "Ivan",
				PasswordHash: "$2a$10$hash",
				ExpiresAt:    now.Add(time.Hour),
			}, nil).Once()
		users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "new@example.com" && u.Provider == models.ProviderLocal && u.Role == models.RoleUser
		})).Return("uid-new", nil).Once()
		tokens.On("DeleteOtp", mock.Anything, "new@example.com").Return(nil).Once()
		tokens.On("DeletePendingRegistration", mock.Anything, "new@example.com").Return(nil).Once()
		users.On("GetUser", mock.Anything, "uid-new").
			Return(&models.User{UID: "uid-new", Email: "new@example.com", Role: models.RoleUser}, nil).Once()

		service := newService(users, tokens, new(MockMailer), new(MockGoogleVerifier))
		token, user, err := service.VerifyOtp(context.Background(), "new@example.com", "123456")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "uid-new", user.UID)
		users.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})

	t.Run("неверный код", func(t *testing.T) {
		tokens := new(MockTokenRepository)
		tokens.On("GetOtp", mock.Anything, "new@example.com").
			Return(&models.Otp{Email: "new@example.com", Code: "123456", ExpiresAt: now.Add(5 * time.Minute)}, nil).Once()

		service := newService(new(MockUserRepository), tokens, new(MockMailer), new(MockGoogleVerifier))
		_, _, err := service.VerifyOtp(context.Background(), "new@example.com", "000000")

		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})

	t.Run("просроченный код", func(t *testing.T) {
		tokens := new(MockTokenRepository)
		tokens.On("GetOtp", mock.Anything, "new@example.com").
			Return(&models.Otp{Email: "new@example.com", Code: "123456", ExpiresAt: now.Add(-time.Minute)}, nil).Once()

		service := newService(new(MockUserRepository), tokens, new(MockMailer), new(MockGoogleVerifier))
		_, _, err := service.VerifyOtp(context.Background(), "new@example.com", "123456")

		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	t.Run("успешный вход", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "user@example.com").
			Return(&models.User{UID: "uid-1", Email: "user@example.com", PasswordHash: hash, Role: models.RoleUser}, nil).Once()

		service := newService(users, new(MockTokenRepository), new(MockMailer), new(MockGoogleVerifier))
		token, user, err := service.Login(context.Background(), "user@example.com", "secret123")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "uid-1", user.UID)
	})

	t.Run("неверный пароль", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "user@example.com").
			Return(&models.User{UID: "uid-1", PasswordHash: hash}, nil).Once()

		service := newService(users, new(MockTokenRepository), new(MockMailer), new(MockGoogleVerifier))
		_, _, err := service.Login(context.Background(), "user@example.com", "wrong")

		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("неизвестная почта", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound).Once()

		service := newService(users, new(MockTokenRepository), new(MockMailer), new(MockGoogleVerifier))
		_, _, err := service.Login(context.Background(), "ghost@example.com", "secret123")

		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("google-аккаунт без пароля", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "google@example.com").
			Return(&models.User{UID: "uid-g", Provider: models.ProviderGoogle}, nil).Once()

		service := newService(users, new(MockTokenRepository), new(MockMailer), new(MockGoogleVerifier))
		_, _, err := service.Login(context.Background(), "google@example.com", "anything")

		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})
}

func TestAuthService_GoogleAuth(t *testing.T) {
	profile := &oauth.GoogleProfile{
		GoogleID:  "google-123",
		Email:     "user@example.com",
		FirstName: "Ivan",
	}

	t.Run("существующий google-пользователь входит", func(t *testing.T) {
		users := new(MockUserRepository)
		google := new(MockGoogleVerifier)

		google.On("VerifyIDToken", mock.Anything, "id-token").Return(profile, nil).Once()
		users.On("GetUserByGoogleID", mock.Anything, "google-123").
			Return(&models.User{UID: "uid-g", Email: "user@example.com", Role: models.RoleUser}, nil).Once()

		service := newService(users, new(MockTokenRepository), new(MockMailer), google)
		token, user, err := service.GoogleAuth(context.Background(), "id-token")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "uid-g", user.UID)
	})

	t.Run("google привязывается к локальному аккаунту", func(t *testing.T) {
		users := new(MockUserRepository)
		google := new(MockGoogleVerifier)

		google.On("VerifyIDToken", mock.Anything, "id-token").Return(profile, nil).Once()
		users.On("GetUserByGoogleID", mock.Anything, "google-123").Return(nil, repository.ErrNotFound).Once()
		users.On("GetUserByEmail", mock.Anything, "user@example.com").
			Return(&models.User{UID: "uid-local", Email: "user@example.com", Provider: models.ProviderLocal, Role: models.RoleUser}, nil).Once()
		users.On("LinkGoogleAccount", mock.Anything, "uid-local", "google-123").Return(nil).Once()

		service := newService(users, new(MockTokenRepository), new(MockMailer), google)
		_, user, err := service.GoogleAuth(context.Background(), "id-token")

		require.NoError(t, err)
		assert.Equal(t, "uid-local", user.UID)
		users.AssertExpectations(t)
	})

	t.Run("новый пользователь создается", func(t *testing.T) {
		users := new(MockUserRepository)
		google := new(MockGoogleVerifier)

		google.On("VerifyIDToken", mock.Anything, "id-token").Return(profile, nil).Once()
		users.On("GetUserByGoogleID", mock.Anything, "google-123").Return(nil, repository.ErrNotFound).Once()
		users.On("GetUserByEmail", mock.Anything, "user@example.com").Return(nil, repository.ErrNotFound).Once()
		users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Provider == models.ProviderGoogle && u.GoogleID == "google-123"
		})).Return("uid-created", nil).Once()
		users.On("GetUser", mock.Anything, "uid-created").
			Return(&models.User{UID: "uid-created", Email: "user@example.com", Role: models.RoleUser}, nil).Once()

		service := newService(users, new(MockTokenRepository), new(MockMailer), google)
		_, user, err := service.GoogleAuth(context.Background(), "id-token")

		require.NoError(t, err)
		assert.Equal(t, "uid-created", user.UID)
	})

	t.Run("невалидный id-токен", func(t *testing.T) {
		google := new(MockGoogleVerifier)
		google.On("VerifyIDToken", mock.Anything, "bad-token").Return(nil, oauth.ErrInvalidToken).Once()

		service := newService(new(MockUserRepository), new(MockTokenRepository), new(MockMailer), google)
		_, _, err := service.GoogleAuth(context.Background(), "bad-token")

		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	now := time.Now().UTC()

	t.Run("пароль меняется по токену", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenRepository)

		tokens.On("GetResetToken", mock.Anything, "token-abc").
			Return(&models.ResetToken{Email: "user@example.com", Token: "token-abc", ExpiresAt: now.Add(time.Hour)}, nil).Once()
		users.On("GetUserByEmail", mock.Anything, "user@example.com").
			Return(&models.User{UID: "uid-1", Provider: models.ProviderLocal}, nil).Once()
		users.On("UpdateUserPassword", mock.Anything, "uid-1", mock.AnythingOfType("string"), models.ProviderLocal).Return(nil).Once()
		tokens.On("DeleteResetToken", mock.Anything, "user@example.com").Return(nil).Once()

		service := newService(users, tokens, new(MockMailer), new(MockGoogleVerifier))
		err := service.ResetPassword(context.Background(), "token-abc", "newsecret")

		require.NoError(t, err)
		users.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})

	t.Run("google-аккаунт становится гибридным", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenRepository)

		tokens.On("GetResetToken", mock.Anything, "token-abc").
			Return(&models.ResetToken{Email: "g@example.com", Token: "token-abc", ExpiresAt: now.Add(time.Hour)}, nil).Once()
		users.On("GetUserByEmail", mock.Anything, "g@example.com").
			Return(&models.User{UID: "uid-g", Provider: models.ProviderGoogle}, nil).Once()
		users.On("UpdateUserPassword", mock.Anything, "uid-g", mock.AnythingOfType("string"), models.ProviderHybrid).Return(nil).Once()
		tokens.On("DeleteResetToken", mock.Anything, "g@example.com").Return(nil).Once()

		service := newService(users, tokens, new(MockMailer), new(MockGoogleVerifier))
		err := service.ResetPassword(context.Background(), "token-abc", "newsecret")

		require.NoError(t, err)
	})

	t.Run("просроченный токен", func(t *testing.T) {
		tokens := new(MockTokenRepository)
		tokens.On("GetResetToken", mock.Anything, "token-old").
			Return(&models.ResetToken{Email: "user@example.com", Token: "token-old", ExpiresAt: now.Add(-time.Minute)}, nil).Once()

		service := newService(new(MockUserRepository), tokens, new(MockMailer), new(MockGoogleVerifier))
		err := service.ResetPassword(context.Background(), "token-old", "newsecret")

		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})

	t.Run("неизвестный токен", func(t *testing.T) {
		tokens := new(MockTokenRepository)
		tokens.On("GetResetToken", mock.Anything, "token-missing").Return(nil, repository.ErrNotFound).Once()

		service := newService(new(MockUserRepository), tokens, new(MockMailer), new(MockGoogleVerifier))
		err := service.ResetPassword(context.Background(), "token-missing", "newsecret")

		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})
}
