package api

// MessageRequest is the body of POST /api/message.
type MessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse reports the outcome of a chat-triggered review run.
type MessageResponse struct {
	Response       string `json:"response"`
	Path           string `json:"path"`
	Window         string `json:"window"`
	NotesProcessed int    `json:"notes_processed"`
	FailedEntries  int    `json:"failed_entries"`
}

// errResponse is the uniform error body.
type errResponse struct {
	Error string `json:"error"`
}
