package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tranvanmanh9325/SenAI/client"
	"github.com/tranvanmanh9325/SenAI/config"
	"github.com/tranvanmanh9325/SenAI/errorhandler"
	"github.com/tranvanmanh9325/SenAI/jsonparser"
	"github.com/tranvanmanh9325/SenAI/types"
)

// POSIX-compliant exit codes
const (
	ExitSuccess      = 0   // Successful completion
	ExitGeneralError = 1   // General error
	ExitMisuse       = 2   // Misuse of shell command
	ExitSIGINT       = 130 // Terminated by Ctrl+C (128 + 2)
	ExitSIGTERM      = 143 // Terminated by SIGTERM (128 + 15)
)

// Build-time variables set via ldflags
var (
	Version   string = "v0.1.0"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
	BuildMode string = "dev"
)

// Config holds the resolved CLI configuration.
type Config struct {
	// Output modes - QUIET IS DEFAULT
	Quiet   bool
	Verbose bool
	Normal  bool

	// Backend
	BaseURL string
	APIKey  string

	// File logging support
	LogFile    string
	ErrorLog   string
	ConfigFile string
}

const (
	PROGRAM_NAME = "senai"
)

var (
	logger     *zap.Logger
	rootConfig = &Config{}
	errHandler *errorhandler.Handler

	// Client cache for connection reuse across subcommands
	cachedClient    types.ConversationAPI
	cachedClientKey string
)

// Root command
var rootCmd = &cobra.Command{
	Use:   PROGRAM_NAME,
	Short: "SenAI - chat client for the SenAI backend",
	Long: `SenAI - chat client for the SenAI backend

Talk to a local LLM backend: interactive chat, one-shot messages,
conversation history, and background task management.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		initLogger(rootConfig.Verbose, rootConfig.Quiet && !rootConfig.Normal, rootConfig.LogFile)

		// Setup signal handling
		setupSignalHandling()

		// Error log sink shared by the client and the JSON layer
		errHandler = errorhandler.New(rootConfig.ErrorLog, logger)
		jsonparser.SetHandler(errHandler)

		// Fill unset values from the settings file and environment
		resolveSettings()

		// Log startup
		logger.Info("Application starting",
			zap.String("version", Version),
			zap.String("build_mode", BuildMode),
			zap.String("build_time", BuildTime),
			zap.String("git_commit", GitCommit),
			zap.String("base_url", rootConfig.BaseURL))

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if errHandler != nil {
			errHandler.Close()
		}
	},
}

// Chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the SenAI backend.

Each session gets its own ID so the backend keeps conversation context.

COMMANDS INSIDE THE SESSION:
  /new     start a fresh session
  /quit    exit (Ctrl+D also works)

EXAMPLES:
  senai chat
  senai chat --base-url http://remote:8000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return HandleChat(getCachedClient(rootConfig), rootConfig.Quiet, rootConfig.Normal)
	},
}

// Send command
var sendCmd = &cobra.Command{
	Use:   "send MESSAGE",
	Short: "Send a single message and print the reply",
	Long: `Send one message to the backend and print the assistant's reply.

A session ID can be supplied to continue an earlier conversation;
otherwise a fresh one is minted.

EXAMPLES:
  senai send "Summarize the meeting notes"
  senai send --session session_1755000000000 "And the action items?"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		return HandleSend(getCachedClient(rootConfig), args[0], sessionID, rootConfig.Quiet)
	},
}

// Health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend availability",
	Long: `Check backend availability and show the active model.

EXAMPLES:
  senai health`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return HandleHealth(getCachedClient(rootConfig), rootConfig.Quiet, rootConfig.Normal)
	},
}

// Conversations command
var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List stored conversation turns",
	Long: `List conversation turns stored by the backend, optionally filtered
to one session.

EXAMPLES:
  senai conversations
  senai conversations --session session_1755000000000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		return HandleConversations(getCachedClient(rootConfig), sessionID, rootConfig.Quiet, rootConfig.Normal)
	},
}

// Task command group
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage background tasks",
	Long: `Manage background tasks on the backend.

EXAMPLES:
  senai task create "index docs" --description "rebuild the search index"
  senai task list
  senai task get 3
  senai task update 3 done --result "42 files indexed"`,
}

var taskCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		return HandleTaskCreate(getCachedClient(rootConfig), args[0], description, rootConfig.Quiet)
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return HandleTaskList(getCachedClient(rootConfig), rootConfig.Quiet, rootConfig.Normal)
	},
}

var taskGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("task ID must be a number: %q", args[0])
		}
		return HandleTaskGet(getCachedClient(rootConfig), id, rootConfig.Quiet)
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update ID STATUS",
	Short: "Update a task's status and result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("task ID must be a number: %q", args[0])
		}
		result, _ := cmd.Flags().GetString("result")
		return HandleTaskUpdate(getCachedClient(rootConfig), id, args[1], result, rootConfig.Quiet)
	},
}

// Config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change stored settings",
	Long: `Show or change settings stored in ` + config.FileName + `.

EXAMPLES:
  senai config show
  senai config set baseUrl http://remote:8000
  senai config set apiKey my-secret`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return HandleConfigShow(configFilePath(), rootConfig)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Store one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return HandleConfigSet(configFilePath(), args[0], args[1])
	},
}

// Enhanced logger with file support and quiet mode default
func initLogger(verbose, quiet bool, logFile string) {
	var outputPaths, errorPaths []string

	if logFile != "" {
		logDir := filepath.Dir(logFile)
		if logDir != "." && logDir != "" {
			os.MkdirAll(logDir, 0755)
		}

		outputPaths = []string{logFile}
		errorPaths = []string{logFile}

		// In verbose mode, also output to stderr
		if verbose {
			outputPaths = append(outputPaths, "stderr")
			errorPaths = append(errorPaths, "stderr")
		}
	} else if !quiet {
		outputPaths = []string{"stderr"}
		errorPaths = []string{"stderr"}
	} else {
		// Quiet mode: only errors to stderr
		outputPaths = []string{}
		errorPaths = []string{"stderr"}
	}

	var cfg zap.Config

	if verbose {
		cfg = zap.Config{
			Level:       zap.NewAtomicLevelAt(zap.DebugLevel),
			Development: true,
			Encoding:    "console",
			EncoderConfig: zapcore.EncoderConfig{
				TimeKey:        "T",
				LevelKey:       "L",
				NameKey:        "N",
				CallerKey:      "C",
				MessageKey:     "M",
				StacktraceKey:  "S",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeLevel:    zapcore.CapitalColorLevelEncoder,
				EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
				EncodeDuration: zapcore.StringDurationEncoder,
				EncodeCaller:   zapcore.ShortCallerEncoder,
			},
			OutputPaths:      outputPaths,
			ErrorOutputPaths: errorPaths,
		}
	} else if quiet {
		cfg = zap.Config{
			Level:       zap.NewAtomicLevelAt(zap.WarnLevel),
			Development: false,
			Encoding:    "json",
			EncoderConfig: zapcore.EncoderConfig{
				TimeKey:     "timestamp",
				LevelKey:    "level",
				MessageKey:  "message",
				LineEnding:  zapcore.DefaultLineEnding,
				EncodeLevel: zapcore.LowercaseLevelEncoder,
				EncodeTime:  zapcore.ISO8601TimeEncoder,
			},
			OutputPaths:      outputPaths,
			ErrorOutputPaths: errorPaths,
		}
	} else {
		cfg = zap.Config{
			Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
			Development: false,
			Encoding:    "json",
			EncoderConfig: zapcore.EncoderConfig{
				TimeKey:        "ts",
				LevelKey:       "level",
				NameKey:        "logger",
				CallerKey:      "caller",
				MessageKey:     "msg",
				StacktraceKey:  "stacktrace",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeTime:     zapcore.EpochTimeEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
				EncodeCaller:   zapcore.ShortCallerEncoder,
			},
			OutputPaths:      outputPaths,
			ErrorOutputPaths: errorPaths,
		}
	}

	var err error
	logger, err = cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: failed to initialize logger: %v\n", PROGRAM_NAME, err)
		os.Exit(ExitGeneralError)
	}

	if logFile != "" && !quiet {
		fmt.Printf("Logging to: %s\n", logFile)
	}
}

// Signal handling
func setupSignalHandling() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received signal, shutting down gracefully", zap.String("signal", sig.String()))

		logger.Sync()
		if errHandler != nil {
			errHandler.Close()
		}

		switch sig {
		case os.Interrupt:
			os.Exit(ExitSIGINT)
		case syscall.SIGTERM:
			os.Exit(ExitSIGTERM)
		default:
			os.Exit(ExitGeneralError)
		}
	}()
}

func configFilePath() string {
	if rootConfig.ConfigFile != "" {
		return rootConfig.ConfigFile
	}
	return config.DefaultPath()
}

// resolveSettings fills configuration not supplied by flags or environment
// from the settings file and the .env search. Flags and environment win.
func resolveSettings() {
	stored := config.Load(configFilePath())

	if rootConfig.BaseURL == "" {
		rootConfig.BaseURL = stored.BaseURL
	}
	if rootConfig.BaseURL == "" {
		rootConfig.BaseURL = client.DefaultBaseURL
	}

	if rootConfig.APIKey == "" {
		rootConfig.APIKey = config.LoadAPIKey()
	}
	if rootConfig.APIKey == "" {
		rootConfig.APIKey = stored.APIKey
	}
}

// getCachedClient returns the cached client when the backend settings have
// not changed, creating a new one otherwise.
func getCachedClient(cfg *Config) types.ConversationAPI {
	configKey := cfg.BaseURL + "|" + cfg.APIKey

	if cachedClient != nil && cachedClientKey == configKey {
		logger.Debug("Using cached client", zap.String("base_url", cfg.BaseURL))
		return cachedClient
	}

	logger.Debug("Creating client", zap.String("base_url", cfg.BaseURL))
	cachedClient = client.New(cfg.BaseURL, cfg.APIKey, errHandler, logger)
	cachedClientKey = configKey
	return cachedClient
}

// exitWithError prints the failure and terminates with the given code.
func exitWithError(err error, exitCode int) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", PROGRAM_NAME, err)
	if logger != nil {
		logger.Error("Application error", zap.Error(err), zap.Int("exit_code", exitCode))
		logger.Sync()
	}
	os.Exit(exitCode)
}

func init() {
	// Environment defaults; flags override below
	rootConfig.Quiet = true // DEFAULT TO QUIET MODE
	rootConfig.BaseURL = os.Getenv("SENAI_BASE_URL")
	rootConfig.APIKey = os.Getenv(config.EnvAPIKey)
	rootConfig.LogFile = os.Getenv("SENAI_LOG_FILE")

	// Add persistent flags
	rootCmd.PersistentFlags().BoolVarP(&rootConfig.Quiet, "quiet", "q", true, "Quiet mode (DEFAULT - minimal CLI output)")
	rootCmd.PersistentFlags().BoolVar(&rootConfig.Normal, "normal", false, "Normal mode (show standard output)")
	rootCmd.PersistentFlags().BoolVarP(&rootConfig.Verbose, "verbose", "v", false, "Verbose mode (detailed output + debug info)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.LogFile, "log-file", rootConfig.LogFile, "Log to specified file (auto-creates directory)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.ErrorLog, "error-log", "", "Error log file (default: senai.log beside the executable)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.BaseURL, "base-url", rootConfig.BaseURL, "Backend base URL (or set SENAI_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.APIKey, "api-key", rootConfig.APIKey, "Backend API key (or set API_KEY / .env)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.ConfigFile, "config", "", "Configuration file path")

	// Command flags
	sendCmd.Flags().String("session", "", "Session ID to continue")
	conversationsCmd.Flags().String("session", "", "Only show turns for this session")
	taskCreateCmd.Flags().String("description", "", "Task description")
	taskUpdateCmd.Flags().String("result", "", "Result text to store with the task")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(conversationsCmd)
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskGetCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	rootCmd.AddCommand(taskCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(docsCmd)

	// Customize version template
	rootCmd.SetVersionTemplate(`{{.Use}} {{.Version}}
Built: ` + BuildTime + `
Commit: ` + GitCommit + `
Mode: ` + BuildMode + `
POSIX Compliant: Yes
`)
}
