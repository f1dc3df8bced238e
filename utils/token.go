package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/mmdatafocus/kvk_backend/config"
)

const (
	TokenIssuer   = "kvk-system"
	TokenAudience = "kvk-users"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token is not valid")

	ErrJwtSecretMissing = errors.New("JWT_SECRET must be set in production")
)

type JwtCustomClaim struct {
	ID   int    `json:"userId"`
	Role string `json:"role"`
	jwt.StandardClaims
}

const devJwtSecret = "kvk-dev-secret"

// CheckJwtSecret fails in production when neither JWT_SECRET nor API_SECRET is set.
func CheckJwtSecret() error {
	_, err := jwtSecret()
	return err
}

func jwtSecret() ([]byte, error) {
	secret := config.JwtSecret()
	if secret == "" {
		if config.IsProduction() {
			return nil, ErrJwtSecretMissing
		}
		return []byte(devJwtSecret), nil
	}
	return []byte(secret), nil
}

func JwtGenerate(userID int, role string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:   userID,
		Role: role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(config.JwtTTL()).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    TokenIssuer,
			Audience:  TokenAudience,
		},
	})
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}
	return t.SignedString(secret)
}

// JwtValidate returns ErrTokenExpired or ErrTokenInvalid so callers can tell them apart.
// A production process without a secret gets ErrJwtSecretMissing.
func JwtValidate(token string) (*JwtCustomClaim, error) {
	secret, err := jwtSecret()
	if err != nil {
		return nil, err
	}
	claims := &JwtCustomClaim{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid || claims.ID <= 0 {
		return nil, ErrTokenInvalid
	}
	if !claims.VerifyIssuer(TokenIssuer, true) || !claims.VerifyAudience(TokenAudience, true) {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
