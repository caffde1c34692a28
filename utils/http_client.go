package utils

import (
	"net/http"
	"time"
)

// NewHTTPClient pravi deljeni HTTP klijent za pozive ka API-ju.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
	}
}
