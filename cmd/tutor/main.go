package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dutch-tutor/internal/config"
	"dutch-tutor/internal/logging"
)

var (
	verbose   bool
	langFlag  string
	storeFlag string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Dutch language tutor backed by an LLM",
	Long: `tutor teaches Dutch (Nederlands) with explanations in English or Spanish.
It remembers your sessions, vocabulary and topics between runs.

Run without arguments to start the interactive chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envErr := godotenv.Load(".env")

		var err error
		cfg, err = config.New()
		if err != nil {
			return err
		}
		if storeFlag != "" {
			cfg.StoreBackend = config.StoreBackend(storeFlag)
		}
		if langFlag != "" {
			cfg.TeachingLanguage = langFlag
		}

		logFile := cfg.LogFile
		if logFile == "" && isInteractive(cmd) {
			// keep the chat screen free of log lines
			logFile = "logs/tutor.log"
		}
		logger, err = logging.New(logging.Options{
			Level:       cfg.LogLevel,
			Development: cfg.LogDevelopment,
			File:        logFile,
			Verbose:     verbose,
		})
		if err != nil {
			return err
		}
		if envErr != nil {
			logger.Debug(".env file not loaded", zap.Error(envErr))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runChat,
}

func isInteractive(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "chat"
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "Explanation language until one is chosen (English, Spanish)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "Storage backend: file, sqlite or memory")

	historyCmd.Flags().IntVarP(&historyCount, "number", "n", 10, "Number of exchanges to show (0 for all)")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(chatCmd, telegramCmd, progressCmd, clearCmd, langCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
