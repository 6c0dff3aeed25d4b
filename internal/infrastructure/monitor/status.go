package monitor

import "time"

// Status is the last probe result, served by the health endpoint.
type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Buffer     bool      `json:"buffer"`
	BufferSize int       `json:"buffer_size"`
	LastCheck  time.Time `json:"last_check"`
}

// Healthy reports whether the service can take writes, directly or buffered.
func (s Status) Healthy() bool {
	return s.PostgreSQL || s.Buffer
}
