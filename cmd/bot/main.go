package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homework-bot/internal/config"
	"homework-bot/internal/db"
	"homework-bot/internal/logger"
	"homework-bot/internal/notifier"
	"homework-bot/internal/poller"
	"homework-bot/internal/practicum"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Set at build time via ldflags, e.g. -ldflags "-X main.version=1.0.0".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const getMeTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "homework-bot",
	Short: "Telegram notifications for homework review status",
	Long: `homework-bot polls the Practicum homework statuses API and sends a
Telegram message whenever the review status of your latest homework changes.

Required environment (or .env file):
  PRACTICUM_TOKEN   Practicum API OAuth token
  TELEGRAM_TOKEN    Telegram bot token
  TELEGRAM_CHAT_ID  numeric chat id to notify`,
	SilenceUsage: true,
	RunE:         runBot,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("homework-bot %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "path to the .env file with credentials")
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to an optional YAML settings file")
	rootCmd.Flags().Int64("from", 0, "initial from_date cursor (unix seconds, default now)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig exits the process with a CRITICAL line when credentials are
// missing, before anything touches the network.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger) {
	envFile, _ := cmd.Flags().GetString("env-file")
	settingsFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(envFile, settingsFile)
	if err != nil {
		critical(err.Error())
	}

	l, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		critical("Failed to init logger", zap.Error(err))
	}

	return cfg, l
}

// critical logs at CRITICAL on stdout and exits. Used before the configured
// logger exists.
func critical(msg string, fields ...zap.Field) {
	zap.New(logger.NewCore(zapcore.AddSync(os.Stdout), zapcore.DebugLevel)).Fatal(msg, fields...)
}

// newBot builds the Telegram client without requiring Telegram to answer at
// startup. getMe is attempted once so the username can be logged; when it
// fails the bot still starts and delivery errors surface per message.
func newBot(token, apiURL string, l *zap.Logger) (*gotgbot.Bot, error) {
	b, err := gotgbot.NewBot(token, &gotgbot.BotOpts{
		DisableTokenCheck: true,
		BotClient: &gotgbot.BaseBotClient{
			Client: http.Client{},
			DefaultRequestOpts: &gotgbot.RequestOpts{
				Timeout: gotgbot.DefaultTimeout,
				APIURL:  apiURL,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	me, err := b.GetMe(&gotgbot.GetMeOpts{RequestOpts: &gotgbot.RequestOpts{
		Timeout: getMeTimeout,
		APIURL:  apiURL,
	}})
	if err != nil {
		l.Warn("Telegram is unreachable, starting anyway", zap.Error(err))
		b.User = gotgbot.User{Id: b.User.Id, IsBot: true}
		return b, nil
	}

	b.User = *me
	return b, nil
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, l := loadConfig(cmd)
	defer func() { _ = l.Sync() }()

	b, err := newBot(cfg.TelegramToken, cfg.TelegramAPIURL, l)
	if err != nil {
		l.Fatal("Failed to create bot", zap.Error(err))
	}

	api := practicum.NewClient(cfg.Endpoint, cfg.PracticumToken, cfg.RequestTimeout.Duration(), l)
	defer api.Close()

	opts := []poller.Option{
		poller.WithLogger(l),
		poller.WithPeriod(cfg.RetryPeriod.Duration()),
	}

	if from, _ := cmd.Flags().GetInt64("from"); from > 0 {
		opts = append(opts, poller.WithCursor(from))
	}

	if cfg.MongoDBURI != "" {
		database, err := db.Connect(cfg)
		if err != nil {
			l.Fatal("Failed to connect to DB", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = database.Close(ctx)
		}()
		opts = append(opts, poller.WithJournal(database, cfg.TelegramChatID))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fields := []zap.Field{zap.Duration("retry_period", cfg.RetryPeriod.Duration())}
	if b.User.Username != "" {
		fields = append(fields, zap.String("username", b.User.Username))
	}
	l.Info("Bot started", fields...)

	p := poller.New(api, notifier.NewTelegram(b, cfg.TelegramChatID, l), opts...)
	return p.Run(ctx)
}
