// Package oauth проверяет токены Google Sign-In через endpoint tokeninfo.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrInvalidToken = errors.New("invalid google token")

// GoogleProfile данные пользователя из проверенного ID-токена.
type GoogleProfile struct {
	GoogleID  string `json:"sub"`
	Email     string `json:"email"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	Avatar    string `json:"picture"`
	Audience  string `json:"aud"`
}

type GoogleVerifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
}

// NewGoogleVerifier создаёт верификатор; clientID сверяется с aud токена.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID:   clientID,
		endpoint:   "https://oauth2.googleapis.com/tokeninfo",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyIDToken проверяет ID-токен и возвращает профиль пользователя.
func (v *GoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error) {
	const op = "oauth.VerifyIDToken"

	reqURL := v.endpoint + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile.Audience != v.clientID {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if profile.Email == "" || profile.GoogleID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return &profile, nil
}
