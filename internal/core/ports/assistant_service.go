package ports

// AssistantReply is one answer of the multilingual assistant.
type AssistantReply struct {
	Lang   string `json:"lang"`
	Intent string `json:"intent"`
	Text   string `json:"text"`
}

// AssistantService answers from static per-language message tables.
type AssistantService interface {
	// Language picks a supported language from an explicit code or an
	// Accept-Language header value.
	Language(code, acceptLanguage string) string
	Messages(lang string) map[string]string
	Reply(lang, message string) AssistantReply
}
