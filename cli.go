package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/tranvanmanh9325/SenAI/client"
	"github.com/tranvanmanh9325/SenAI/config"
	"github.com/tranvanmanh9325/SenAI/errorhandler"
	"github.com/tranvanmanh9325/SenAI/jsonparser"
	"github.com/tranvanmanh9325/SenAI/types"
)

var (
	userLabel      = color.New(color.FgCyan, color.Bold)
	assistantLabel = color.New(color.FgGreen, color.Bold)
	errorText      = color.New(color.FgRed)
	dimText        = color.New(color.Faint)
)

// apiError turns a sentinel result into a printed user-facing message and
// a Go error for cobra's exit handling.
func apiError(operation, result string) error {
	errorText.Fprintln(os.Stderr, errorhandler.UserFriendlyMessage(errorhandler.ErrorInfo{
		Category: errorhandler.CategoryNetwork,
		Severity: errorhandler.SeverityWarning,
		Message:  result,
	}))
	return fmt.Errorf("%s: %s", operation, result)
}

// HandleChat runs the interactive chat session.
func HandleChat(api types.ConversationAPI, quiet bool, normal bool) error {
	sessionID := client.NewSessionID()

	health := api.CheckHealth()
	if errorhandler.IsErrorResult(health) {
		return apiError("health check", health)
	}

	if !quiet || normal {
		model := client.ModelName(health)
		if model == "" {
			model = "unknown model"
		}
		fmt.Printf("Connected to %s (%s)\n", api.BaseURL(), model)
	}
	dimText.Printf("Session %s - /new for a fresh session, /quit or Ctrl+D to exit\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		userLabel.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return scanner.Err()
		case "/new":
			sessionID = client.NewSessionID()
			dimText.Printf("Session %s\n", sessionID)
			continue
		}

		reply := api.SendMessage(line, sessionID)
		if errorhandler.IsErrorResult(reply) {
			errorText.Println(errorhandler.UserFriendlyMessage(errorhandler.ErrorInfo{
				Category: errorhandler.CategoryNetwork,
				Severity: errorhandler.SeverityWarning,
				Message:  reply,
			}))
			continue
		}

		assistantLabel.Print("senai> ")
		fmt.Println(reply)
	}

	return scanner.Err()
}

// HandleSend sends one message and prints the reply.
func HandleSend(api types.ConversationAPI, message, sessionID string, quiet bool) error {
	if sessionID == "" {
		sessionID = client.NewSessionID()
	}

	reply := api.SendMessage(message, sessionID)
	if errorhandler.IsErrorResult(reply) {
		return apiError("send", reply)
	}

	fmt.Println(reply)
	if !quiet {
		dimText.Printf("(session %s)\n", sessionID)
	}
	return nil
}

// HandleHealth checks the backend and reports status and model.
func HandleHealth(api types.ConversationAPI, quiet bool, normal bool) error {
	if !quiet || normal {
		fmt.Printf("Checking %s...\n", api.BaseURL())
	}

	body := api.CheckHealth()
	if errorhandler.IsErrorResult(body) {
		return apiError("health check", body)
	}

	status := jsonparser.GetString(body, "status", "unknown")
	fmt.Printf("Status: %s\n", status)
	if model := client.ModelName(body); model != "" {
		fmt.Printf("Model: %s\n", model)
	}
	return nil
}

// HandleConversations lists stored conversation turns.
func HandleConversations(api types.ConversationAPI, sessionID string, quiet bool, normal bool) error {
	body := api.GetConversations(sessionID)
	if errorhandler.IsErrorResult(body) {
		return apiError("conversations", body)
	}

	turns := jsonparser.ParseArray(body)
	if len(turns) == 0 {
		fmt.Println("No conversations stored.")
		return nil
	}

	if !quiet || normal {
		fmt.Printf("%d turns:\n", len(turns))
	}
	for _, turn := range turns {
		session := jsonparser.FieldString(turn, "session_id", "?")
		created := jsonparser.FieldString(turn, "created_at", "")
		user := jsonparser.FieldString(turn, "user_message", "")
		ai := jsonparser.FieldString(turn, "ai_response", "")

		dimText.Printf("[%s] %s\n", session, created)
		userLabel.Print("you> ")
		fmt.Println(user)
		assistantLabel.Print("senai> ")
		fmt.Println(ai)
		fmt.Println()
	}
	return nil
}

// HandleTaskCreate registers a background task.
func HandleTaskCreate(api types.ConversationAPI, name, description string, quiet bool) error {
	result := api.CreateTask(name, description)
	if errorhandler.IsErrorResult(result) {
		return apiError("task create", result)
	}

	id := jsonparser.GetInt(result, "id", -1)
	status := jsonparser.GetString(result, "status", "pending")
	if quiet {
		fmt.Println(id)
	} else {
		fmt.Printf("Task %d created (%s)\n", id, status)
	}
	return nil
}

// HandleTaskList prints all tasks.
func HandleTaskList(api types.ConversationAPI, quiet bool, normal bool) error {
	body := api.GetTasks()
	if errorhandler.IsErrorResult(body) {
		return apiError("task list", body)
	}

	tasks := jsonparser.ParseArray(body)
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	for _, task := range tasks {
		id := jsonparser.FieldInt(task, "id", -1)
		name := jsonparser.FieldString(task, "task_name", "")
		status := jsonparser.FieldString(task, "status", "")
		fmt.Printf("%4d  %-10s  %s\n", id, status, name)
	}
	return nil
}

// HandleTaskGet prints one task in full.
func HandleTaskGet(api types.ConversationAPI, id int, quiet bool) error {
	body := api.GetTask(id)
	if errorhandler.IsErrorResult(body) {
		return apiError("task get", body)
	}

	fmt.Printf("ID:          %d\n", jsonparser.GetInt(body, "id", id))
	fmt.Printf("Name:        %s\n", jsonparser.GetString(body, "task_name", ""))
	fmt.Printf("Status:      %s\n", jsonparser.GetString(body, "status", ""))
	if description := jsonparser.GetString(body, "description", ""); description != "" {
		fmt.Printf("Description: %s\n", description)
	}
	if result := jsonparser.GetString(body, "result", ""); result != "" {
		fmt.Printf("Result:      %s\n", result)
	}
	return nil
}

// HandleTaskUpdate sets a task's status and optional result.
func HandleTaskUpdate(api types.ConversationAPI, id int, status, result string, quiet bool) error {
	body := api.UpdateTask(id, status, result)
	if errorhandler.IsErrorResult(body) {
		return apiError("task update", body)
	}

	if !quiet {
		fmt.Printf("Task %d updated: %s\n", id, jsonparser.GetString(body, "status", status))
	}
	return nil
}

// HandleConfigShow prints the stored settings with the key masked.
func HandleConfigShow(path string, runtime *Config) error {
	stored := config.Load(path)

	fmt.Printf("Config file: %s\n", path)
	fmt.Printf("baseUrl:         %s\n", stored.BaseURL)
	fmt.Printf("apiKey:          %s\n", maskKey(stored.APIKey))
	fmt.Printf("ctrlEnterToSend: %t\n", stored.CtrlEnterToSend)
	fmt.Println()
	fmt.Printf("Effective base URL: %s\n", runtime.BaseURL)
	fmt.Printf("Effective API key:  %s\n", maskKey(runtime.APIKey))
	return nil
}

// HandleConfigSet stores one setting, preserving the others.
func HandleConfigSet(path, key, value string) error {
	stored := config.Load(path)

	switch key {
	case "baseUrl":
		stored.BaseURL = value
	case "apiKey":
		stored.APIKey = value
	case "ctrlEnterToSend":
		stored.CtrlEnterToSend = value == "true" || value == "1"
	default:
		return fmt.Errorf("unknown setting %q (known: baseUrl, apiKey, ctrlEnterToSend)", key)
	}

	if err := config.Save(path, stored); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("%s saved.\n", key)
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return key[:2] + strings.Repeat("*", len(key)-4) + key[len(key)-2:]
}
