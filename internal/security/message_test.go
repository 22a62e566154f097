package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"normal message", "Hello, how can I track my order?", true},
		{"empty", "", false},
		{"whitespace only", "   \t\n  ", false},
		{"exactly max length", strings.Repeat("a", MaxMessageLength), true},
		{"over max length", strings.Repeat("a", MaxMessageLength+1), false},
		{"script tag", `hi <script>alert(1)</script>`, false},
		{"script tag mixed case", `hi <ScRiPt>alert(1)</script>`, false},
		{"javascript uri", "click javascript:alert(1)", false},
		{"event handler", `<img onerror= "x">`, false},
		{"event handler no space", "onload=init()", false},
		{"template injection", "${process.env.SECRET}", false},
		{"eval call", "eval (payload)", false},
		{"eval as word is fine", "how do I evaluate this?", true},
		{"unicode content", "訂單在哪裡？", true},
		{"multi-byte at max length", strings.Repeat("訂", MaxMessageLength), true},
		{"multi-byte over max length", strings.Repeat("訂", MaxMessageLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ValidateMessage(tt.message))
		})
	}
}

func TestSanitizeMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"trims whitespace", "  hello  ", "hello"},
		{"div wrapper", "<div>Hi</div>", "&lt;div&gt;Hi&lt;&#x2F;div&gt;"},
		{"quotes", `say "hi" to 'them'`, "say &quot;hi&quot; to &#x27;them&#x27;"},
		{"slashes", "a/b/c", "a&#x2F;b&#x2F;c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SanitizeMessage(tt.message))
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "session_1712345678901_a1b2c3d4e", true},
		{"missing suffix", "session_123", false},
		{"short suffix", "session_123_abc", false},
		{"long suffix", "session_123_abcdefghij", false},
		{"non-alphanumeric suffix", "session_123_abc-def-g", false},
		{"wrong prefix", "sess_123_abcdefghi", false},
		{"empty", "", false},
		{"trailing garbage", "session_123_abcdefghi!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ValidateSessionID(tt.id))
		})
	}
}
