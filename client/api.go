package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tranvanmanh9325/SenAI/errorhandler"
	"github.com/tranvanmanh9325/SenAI/jsonparser"
)

type chatRequest struct {
	UserMessage string `json:"user_message"`
	SessionID   string `json:"session_id,omitempty"`
}

type taskRequest struct {
	TaskName    string `json:"task_name"`
	Description string `json:"description,omitempty"`
}

// NewSessionID mints the opaque identifier correlating one conversation.
// There is no server-side allocation step; the ID only needs to be unique
// per client run.
func NewSessionID() string {
	return fmt.Sprintf("session_%d", time.Now().UnixMilli())
}

// CheckHealth returns the raw /health response body.
func (c *Client) CheckHealth() string {
	return c.Get("/health")
}

// ModelName extracts the active model name from a /health response body:
// the nested llm.model field, falling back to a top-level model field.
func ModelName(healthJSON string) string {
	if model := jsonparser.GetNestedString(healthJSON, "llm.model", ""); model != "" {
		return model
	}
	return jsonparser.GetString(healthJSON, "model", "")
}

// SendMessage posts one chat turn and returns the assistant's reply, an
// "Error:"-prefixed string, or the raw body when the response has neither
// an ai_response nor a detail field.
func (c *Client) SendMessage(message, sessionID string) string {
	payload, err := json.Marshal(chatRequest{UserMessage: message, SessionID: sessionID})
	if err != nil {
		c.errors.LogError(errorhandler.ErrorInfo{
			Category:         errorhandler.CategoryJSON,
			Severity:         errorhandler.SeverityError,
			Message:          "Failed to build chat request body",
			Context:          "client.SendMessage",
			TechnicalDetails: err.Error(),
		})
		return "Error: Failed to send message - " + err.Error()
	}

	response := c.Post("/conversations", string(payload))
	if errorhandler.IsErrorResult(response) {
		c.errors.Log(errorhandler.CategoryNetwork, errorhandler.SeverityError,
			"Failed to send message: "+response, "client.SendMessage")
		return response
	}

	if aiResponse := jsonparser.GetString(response, "ai_response", ""); aiResponse != "" {
		return aiResponse
	}
	if detail := jsonparser.GetString(response, "detail", ""); detail != "" {
		c.errors.Log(errorhandler.CategoryNetwork, errorhandler.SeverityError,
			"Backend returned error detail: "+detail, "client.SendMessage")
		return "Error: " + detail
	}
	// No recognizable field: hand the raw body back so the caller can see
	// what the backend actually said.
	return response
}

// GetConversations lists stored turns, filtered to one session when
// sessionID is non-empty.
func (c *Client) GetConversations(sessionID string) string {
	endpoint := "/conversations"
	if sessionID != "" {
		endpoint += "?session_id=" + sessionID
	}
	return c.Get(endpoint)
}

// CreateTask registers a background task on the backend.
func (c *Client) CreateTask(name, description string) string {
	payload, err := json.Marshal(taskRequest{TaskName: name, Description: description})
	if err != nil {
		c.errors.LogError(errorhandler.ErrorInfo{
			Category:         errorhandler.CategoryJSON,
			Severity:         errorhandler.SeverityError,
			Message:          "Failed to build task request body",
			Context:          "client.CreateTask",
			TechnicalDetails: err.Error(),
		})
		return "Error: Failed to create task - " + err.Error()
	}

	result := c.Post("/tasks", string(payload))
	if errorhandler.IsErrorResult(result) {
		c.errors.Log(errorhandler.CategoryNetwork, errorhandler.SeverityError,
			"Failed to create task: "+result, "client.CreateTask")
	}
	return result
}

// GetTasks lists all tasks.
func (c *Client) GetTasks() string {
	return c.Get("/tasks")
}

// GetTask fetches one task by ID.
func (c *Client) GetTask(id int) string {
	return c.Get("/tasks/" + strconv.Itoa(id))
}

// UpdateTask sets a task's status and optional result via query
// parameters, as the backend's task endpoint expects.
func (c *Client) UpdateTask(id int, status, result string) string {
	endpoint := "/tasks/" + strconv.Itoa(id) + "?status=" + status
	if result != "" {
		endpoint += "&result=" + encodeTaskResult(result)
	}
	return c.Put(endpoint, "")
}

// encodeTaskResult escapes exactly the characters the task endpoint was
// built against: space, ampersand, equals, plus. Widening the table would
// change what the server stores for inputs that already round-trip.
func encodeTaskResult(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ':
			b.WriteString("%20")
		case '&':
			b.WriteString("%26")
		case '=':
			b.WriteString("%3D")
		case '+':
			b.WriteString("%2B")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
