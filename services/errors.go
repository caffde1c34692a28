package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials: server odbio prijavu.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired: refresh nije uspeo ili refresh token ne
	// postoji; sesija je već obrisana kada se ova greška vrati.
	ErrSessionExpired = errors.New("session expired")

	ErrNotFound = errors.New("not found")
)

// APIError je ne-2xx odgovor servera van auth protokola. Takve greške
// se ne ponavljaju automatski nego idu korisniku na prikaz.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}
