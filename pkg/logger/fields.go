package logger

// Standard field names for consistent logging.
const (
	FieldService   = "service"
	FieldOperation = "operation"
	FieldUserID    = "user_id"
	FieldChatID    = "chat_id"
	FieldSeasonID  = "season_id"
	FieldSessionID = "session_id"
)
