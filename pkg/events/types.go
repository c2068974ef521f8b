package events

// Bus event types.
const (
	UserRegistered       = "USER_REGISTERED"
	UserLogin            = "USER_LOGIN"
	PasswordResetRequest = "PASSWORD_RESET_REQUESTED"
	PasswordReset        = "PASSWORD_RESET"
	CaseAnalyzed         = "CASE_ANALYZED"
	DocumentsDescribed   = "DOCUMENTS_DESCRIBED"
	AudioTranscribed     = "AUDIO_TRANSCRIBED"
	SessionDeleted       = "SESSION_DELETED"
	MessagePersistFailed = "MESSAGE_PERSIST_FAILED"
)

// Feed event types pushed to websocket subscribers.
const (
	FeedSessionCreated       = "session.created"
	FeedSessionUpdated       = "session.updated"
	FeedSessionDeleted       = "session.deleted"
	FeedMessageAppended      = "message.appended"
	FeedMessagePersistFailed = "message.persist_failed"
	FeedDocumentPanel        = "intake.document_panel"
)
