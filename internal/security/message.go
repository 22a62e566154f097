// Package security provides input validation and sanitization for chat
// messages before they are stored or sent to the agent API.
//
// No filter is perfect; the deny-list catches common injection patterns
// and sanitization neutralizes markup, but defense in depth on the agent
// side is still expected.
package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the maximum accepted message length in characters.
const MaxMessageLength = 1000

// ErrInvalidMessage indicates a message failed validation and must not be
// sent. Validation failures are local: they never reach the network.
var ErrInvalidMessage = errors.New("invalid message")

// dangerousPatterns is the deny-list applied to every outgoing message.
// Matches reject the message outright rather than attempting repair.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),      // script tag injection
	regexp.MustCompile(`(?i)javascript:`),  // javascript: URIs
	regexp.MustCompile(`(?i)on\w+\s*=`),    // inline event handlers
	regexp.MustCompile(`\$\{.*\}`),         // template injection
	regexp.MustCompile(`(?i)eval\s*\(`),    // eval calls
}

// ValidateMessage reports whether text is legal to send: non-empty after
// trimming, at most MaxMessageLength characters, and free of dangerous
// patterns. Length counts characters, not bytes, so multi-byte text is not
// penalized. Pure function, no side effects.
func ValidateMessage(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return false
	}
	for _, re := range dangerousPatterns {
		if re.MatchString(text) {
			return false
		}
	}
	return true
}

// htmlEscapes lists the escape rules applied by SanitizeMessage, in order.
// The order matters: escaping "<" first means later rules never touch the
// entities it produced. Single pass only; re-sanitizing already-escaped
// text is not supported.
var htmlEscapes = []struct {
	from, to string
}{
	{"<", "&lt;"},
	{">", "&gt;"},
	{`"`, "&quot;"},
	{"'", "&#x27;"},
	{"/", "&#x2F;"},
}

// SanitizeMessage trims surrounding whitespace and escapes HTML-sensitive
// characters. Must be applied to content before it is stored or transmitted.
func SanitizeMessage(text string) string {
	out := strings.TrimSpace(text)
	for _, esc := range htmlEscapes {
		out = strings.ReplaceAll(out, esc.from, esc.to)
	}
	return out
}

// sessionIDPattern is the wire format for session identifiers:
// "session_" + millisecond timestamp + "_" + 9 alphanumerics.
var sessionIDPattern = regexp.MustCompile(`^session_\d+_[a-zA-Z0-9]{9}$`)

// ValidateSessionID reports whether id matches the session identifier
// format. Anything else is treated as an absent session.
func ValidateSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}
