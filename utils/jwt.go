package utils

import (
	"errors"
	"fmt"
	"time"

	"catalog-admin/models"

	"github.com/golang-jwt/jwt/v5"
)

type UserClaims struct {
	User models.SessionUser `json:"user"`
	jwt.RegisteredClaims
}

// SignUser serializes the logged-in user into a signed cookie value.
func SignUser(user models.SessionUser, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseUser(value, secret string) (*models.SessionUser, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid user cookie")
	}
	if claims.User.ID == "" {
		claims.User.ID = claims.Subject
	}
	return &claims.User, nil
}
