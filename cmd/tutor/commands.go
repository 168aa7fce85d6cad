package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dutch-tutor/internal/locale"
	"dutch-tutor/internal/scheduler"
	"dutch-tutor/internal/storage"
	"dutch-tutor/internal/telegram"
	"dutch-tutor/internal/terminal"
	"dutch-tutor/internal/tutor"
)

var (
	historyCount int
	clearYes     bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the tutor",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.newTutor(terminal.NewRenderer(os.Stdout, true), true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := terminal.NewInput(filepath.Join(filepath.Dir(cfg.StoreFilePath), "input_history"))
	defer in.Close()

	return terminal.NewChat(t, a.kv, in, os.Stdout, logger.Named("terminal")).Run(ctx)
}

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Serve the tutor through a Telegram bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.TelegramBotToken == "" {
			return errors.New("TELEGRAM_BOT_TOKEN is not set")
		}
		if cfg.TelegramOwnerID == 0 {
			return errors.New("TELEGRAM_OWNER_ID is not set")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		api, err := telegram.NewAPI(cfg.TelegramBotToken)
		if err != nil {
			return fmt.Errorf("connect to telegram: %w", err)
		}
		log := logger.Named("telegram")
		// private chat IDs equal user IDs
		r := telegram.NewRenderer(api, cfg.TelegramOwnerID, cfg.MessageParseMode, log)
		t, err := a.newTutor(r, true)
		if err != nil {
			return err
		}
		bot := telegram.New(api, api, t, cfg.TelegramOwnerID, log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.ReminderCron != "" {
			sched := scheduler.New(cfg.ReminderCron, cfg.ReminderLocation(), logger.Named("scheduler"))
			sched.SetJob(func(ctx context.Context) error {
				bot.SendReminder()
				return nil
			})
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		bot.Start(ctx)
		return nil
	},
}

// stdoutRenderer prints tutor output for the one-shot subcommands.
func stdoutRenderer() tutor.Renderer {
	return tutor.RendererFunc(func(role tutor.Role, text string) {
		if role == tutor.RoleUser {
			return
		}
		fmt.Println(text)
	})
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show learning progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		t, err := a.newTutor(stdoutRenderer(), false)
		if err != nil {
			return err
		}
		fmt.Println(t.ProgressText())
		if info := t.SessionInfo(); info != "" {
			fmt.Println()
			fmt.Println(info)
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all learning progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		t, err := a.newTutor(stdoutRenderer(), false)
		if err != nil {
			return err
		}
		if !clearYes {
			fmt.Print(t.ClearConfirmation() + " [y/N] ")
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Println(locale.TextsFor(t.Language()).ClearCanceled)
				return nil
			}
		}
		return t.ClearProgress()
	},
}

var langCmd = &cobra.Command{
	Use:   "lang [name]",
	Short: "Show or set the explanation language",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		t, err := a.newTutor(stdoutRenderer(), false)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Println(t.Language())
			return nil
		}
		l, ok := locale.Parse(args[0])
		if !ok {
			return fmt.Errorf("unsupported language %q", args[0])
		}
		changed, err := t.SetLanguage(l)
		if err != nil {
			return err
		}
		if !changed {
			fmt.Println(l)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the most recent journaled exchanges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JournalFilePath == "" {
			return errors.New("JOURNAL_FILE_PATH is empty, no journal is kept")
		}
		rec, err := storage.NewFileRecorder(cfg.JournalFilePath)
		if err != nil {
			return err
		}
		events, err := rec.LoadInteractions()
		if err != nil {
			return fmt.Errorf("read journal: %w", err)
		}
		for _, ev := range storage.Last(events, historyCount) {
			fmt.Printf("%s [%s]\n> %s\n%s\n\n",
				ev.Timestamp.Local().Format("2006-01-02 15:04"), ev.Language, ev.UserMessage, ev.AssistantResponse)
		}
		logger.Debug("journal printed", zap.Int("total", len(events)))
		return nil
	},
}
