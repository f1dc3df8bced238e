package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
)

func TestJwtRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-secret")

	token, err := JwtGenerate(42, "admin")
	if err != nil {
		t.Fatalf("JwtGenerate error: %v", err)
	}
	claims, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate error: %v", err)
	}
	if claims.ID != 42 || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != TokenIssuer || claims.Audience != TokenAudience {
		t.Fatalf("unexpected issuer/audience: %q %q", claims.Issuer, claims.Audience)
	}
}

func TestJwtValidateDistinguishesExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-secret")

	sign := func(claims *JwtCustomClaim, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	base := func(exp time.Time) *JwtCustomClaim {
		return &JwtCustomClaim{ID: 7, Role: "user", StandardClaims: jwt.StandardClaims{
			ExpiresAt: exp.Unix(), Issuer: TokenIssuer, Audience: TokenAudience,
		}}
	}
	wrongAudience := base(time.Now().Add(time.Hour))
	wrongAudience.Audience = "someone-else"

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", sign(base(time.Now().Add(-time.Hour)), "unit-secret"), ErrTokenExpired},
		{"bad signature", sign(base(time.Now().Add(time.Hour)), "other-secret"), ErrTokenInvalid},
		{"wrong audience", sign(wrongAudience, "unit-secret"), ErrTokenInvalid},
		{"garbage", "not-a-token", ErrTokenInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := JwtValidate(tc.token)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestJwtSecretRequiredInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("API_SECRET", "")

	t.Setenv("GO_ENV", "development")
	if err := CheckJwtSecret(); err != nil {
		t.Fatalf("development should fall back to the local secret: %v", err)
	}
	token, err := JwtGenerate(7, "user")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	t.Setenv("GO_ENV", "production")
	if err := CheckJwtSecret(); !errors.Is(err, ErrJwtSecretMissing) {
		t.Fatalf("CheckJwtSecret = %v", err)
	}
	if _, err := JwtGenerate(7, "user"); !errors.Is(err, ErrJwtSecretMissing) {
		t.Fatalf("JwtGenerate = %v", err)
	}
	if _, err := JwtValidate(token); !errors.Is(err, ErrJwtSecretMissing) {
		t.Fatalf("token signed with the local secret must not validate: %v", err)
	}

	t.Setenv("JWT_SECRET", "prod-secret")
	if err := CheckJwtSecret(); err != nil {
		t.Fatalf("configured secret: %v", err)
	}
}
