// Package types holds the API surface shared between the CLI handlers and
// the HTTP client implementation.
package types

// ConversationAPI is the client-side view of the SenAI backend. Methods
// return either a plain result body or an "Error:"-prefixed sentinel
// string; they never return Go errors. Callers detect failure with
// errorhandler.IsErrorResult.
type ConversationAPI interface {
	// CheckHealth returns the raw /health response body.
	CheckHealth() string

	// SendMessage posts one chat turn and returns the assistant's reply.
	SendMessage(message, sessionID string) string

	// GetConversations lists stored turns, optionally filtered by session.
	GetConversations(sessionID string) string

	// CreateTask registers a background task on the backend.
	CreateTask(name, description string) string

	// GetTasks lists all tasks.
	GetTasks() string

	// GetTask fetches one task by ID.
	GetTask(id int) string

	// UpdateTask sets a task's status and optional result text.
	UpdateTask(id int, status, result string) string

	SetBaseURL(baseURL string)
	BaseURL() string
	SetAPIKey(key string)
	APIKey() string
}

// Task is the display shape of one /tasks element.
type Task struct {
	ID          int    `json:"id"`
	TaskName    string `json:"task_name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Result      string `json:"result"`
}

// ConversationTurn is the display shape of one /conversations element.
type ConversationTurn struct {
	SessionID   string `json:"session_id"`
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
	CreatedAt   string `json:"created_at"`
}

// Health is the decoded /health response used for display.
type Health struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}
