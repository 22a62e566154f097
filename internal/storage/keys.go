package storage

// Storage keys shared across components. Kept wire-compatible with the
// browser build of the widget so a migrated state file keeps working.
const (
	KeyConversation     = "chat_conversation"
	KeySessionID        = "chat_session_id"
	KeySessionTimestamp = "chat_session_timestamp"
	KeyRateLimit        = "chat_rate_limit"
)
