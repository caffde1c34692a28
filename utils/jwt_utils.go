package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// DecodeToken čita claim-ove iz tokena bez provere potpisa.
// Tajni ključ za potpisivanje nikada ne napušta server, pa klijent
// token koristi samo kao izvor podataka za prikaz.
func DecodeToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims)
	if err != nil {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// TokenExpiry returns the token expiration time, or the zero time when
// the token carries no exp claim.
func TokenExpiry(tokenStr string) (time.Time, error) {
	claims, err := DecodeToken(tokenStr)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
