package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vogiaan1904/ticketbottle-checkin/config"
)

var (
	ErrTokenEmpty               = errors.New("token is empty")
	ErrTokenInvalid             = errors.New("token is invalid")
	ErrTokenUnexpectedSignature = errors.New("unexpected token signing method")
	ErrTokenInvalidClaims       = errors.New("token claims are invalid")
)

// Operator identifies the staff member performing a scan. It is
// passed explicitly into the check-in flow; nothing reads it from
// ambient state.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// TokenManager signs and parses operator bearer tokens. These are the
// only signed artifact in the service; ticket tokens stay unsigned and
// are authorized by store cross-reference instead.
type TokenManager struct {
	conf config.JWTConfig
}

func NewTokenManager(conf config.JWTConfig) *TokenManager {
	return &TokenManager{conf: conf}
}

func (m *TokenManager) Sign(op Operator) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":  op.ID,
		"name": op.Name,
		"role": op.Role,
		"exp":  now.Add(m.conf.Expiry).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(m.conf.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenStr, nil
}

func (m *TokenManager) Parse(tokenStr string) (Operator, error) {
	if tokenStr == "" {
		return Operator{}, ErrTokenEmpty
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenUnexpectedSignature
		}
		return []byte(m.conf.Secret), nil
	})
	if err != nil {
		return Operator{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid {
		return Operator{}, ErrTokenInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Operator{}, ErrTokenInvalidClaims
	}

	op := Operator{ID: sub}
	if name, ok := claims["name"].(string); ok {
		op.Name = name
	}
	if role, ok := claims["role"].(string); ok {
		op.Role = role
	}

	return op, nil
}
