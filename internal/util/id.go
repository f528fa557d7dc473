// Package util provides small shared helpers for VitaShop.
package util

import "github.com/google/uuid"

// NewRequestID generates a random identifier for correlating an outbound
// API request with its log lines.
func NewRequestID() string {
	return uuid.NewString()
}
