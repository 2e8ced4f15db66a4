package webclient

import (
	"net/http"
	"time"
)

// Config controls the net/http backed WebClient.
type Config struct {
	// Timeout bounds a single request. Zero leaves requests unbounded.
	Timeout time.Duration

	// Headers are added to every request unless the request sets the same key.
	Headers http.Header
}
