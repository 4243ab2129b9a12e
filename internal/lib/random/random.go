// Package random генерирует одноразовые коды и токены для подтверждения почты
// и сброса пароля.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// OtpLength длина числового кода подтверждения.
const OtpLength = 6

// NewOtp возвращает шестизначный числовой код, сгенерированный crypto/rand.
func NewOtp() (string, error) {
	const op = "random.NewOtp"
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	n := binary.BigEndian.Uint32(buf[:])
	return fmt.Sprintf("%06d", n%900000+100000), nil
}

// NewResetToken возвращает 64-символьный hex токен для сброса пароля.
func NewResetToken() (string, error) {
	const op = "random.NewResetToken"
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}
