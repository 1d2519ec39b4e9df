package config

const (
	// MaxChatTitleLength is the maximum length for chat titles set by rename.
	MaxChatTitleLength = 255

	// SessionTitlePreviewLength is how many characters of the first query
	// become the title of a new chat session.
	SessionTitlePreviewLength = 40

	// ResearchTitlePreviewLength is how many characters of a research query
	// become the default research title.
	ResearchTitlePreviewLength = 50

	// VoicenoteTitlePreviewLength is how many transcript characters become a
	// voice note title when the model suggests none.
	VoicenoteTitlePreviewLength = 50

	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6

	// Phone numbers must have this many digits after removing whitespace.
	MinPhoneDigits = 10
	MaxPhoneDigits = 15

	// MaxUploadBytes caps multipart uploads (audio recordings, documents).
	MaxUploadBytes = 25 << 20

	// MaxAttachmentBytes caps a single chat attachment.
	MaxAttachmentBytes = 10 << 20

	// MaxJSONBodyBytes caps JSON request bodies. Chat messages carry their
	// attachments base64 encoded, so this leaves room for several.
	MaxJSONBodyBytes = 48 << 20
)
