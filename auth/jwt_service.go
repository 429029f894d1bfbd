package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims структура для JWT. Subject содержит ID пользователя.
type Claims struct {
	jwt.RegisteredClaims
}

// Service выпускает и проверяет токены доступа.
// Секрет и время жизни приходят из конфигурации.
type Service struct {
	key []byte
	ttl time.Duration
}

// NewService создает сервис токенов.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{key: []byte(secret), ttl: ttl}
}

// GenerateToken создает новый JWT для пользователя.
func (s *Service) GenerateToken(userID int64) (string, time.Time, error) {
	expirationTime := time.Now().Add(s.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "task_server_go",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not sign token: %w", err)
	}

	return tokenString, expirationTime, nil
}

// ValidateToken проверяет JWT и возвращает ID пользователя из Subject.
// Любая проблема с токеном (подпись, срок, формат) — это ошибка.
func (s *Service) ValidateToken(tokenString string) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})

	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok {
			if ve.Errors&jwt.ValidationErrorMalformed != 0 {
				return 0, fmt.Errorf("token is malformed")
			} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
				return 0, fmt.Errorf("token is expired or not active yet")
			}
		}
		return 0, fmt.Errorf("couldn't handle this token: %w", err)
	}

	if !token.Valid {
		return 0, fmt.Errorf("token is invalid")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("token subject is not a valid user id")
	}

	return userID, nil
}
