package widget

import (
	"context"
	"errors"
	"net/http"

	"github.com/maddielabs/maddie/internal/doozer"
)

// User-visible strings surfaced by the widget. Raw provider errors never
// reach the UI.
const (
	rateLimitedMessage = "Too many requests. Please wait a moment before sending another message."
	authFailedMessage  = "Authentication failed. Please check your API credentials."
	unavailableMessage = "Our support system is temporarily unavailable. Please try again later."
	timeoutMessage     = "Request timed out. Please check your connection and try again."
	genericMessage     = "Something went wrong. Please try again."
)

// userMessage converts a send failure into the single string shown to the
// user.
func userMessage(err error) string {
	var te *doozer.TransportError
	if errors.As(err, &te) {
		switch {
		case te.Status == http.StatusTooManyRequests:
			return rateLimitedMessage
		case te.Status == http.StatusUnauthorized:
			return authFailedMessage
		case te.Status >= 500:
			return unavailableMessage
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutMessage
	}
	return genericMessage
}
