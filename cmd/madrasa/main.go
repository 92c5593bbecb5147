package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/madrasa-panel/madrasa/internal/handler"
	appI18n "github.com/madrasa-panel/madrasa/internal/i18n"
	"github.com/madrasa-panel/madrasa/internal/llm"
	"github.com/madrasa-panel/madrasa/internal/llm/prompts"
	"github.com/madrasa-panel/madrasa/internal/model"
	"github.com/madrasa-panel/madrasa/internal/realtime"
	"github.com/madrasa-panel/madrasa/internal/report"
	"github.com/madrasa-panel/madrasa/internal/scheduler"
	"github.com/madrasa-panel/madrasa/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "madrasa",
		Short: "Madrasa student panel: daily hifz reports and performance alerts",
		PersistentPreRun: func(*cobra.Command, []string) {
			loadDotEnv()
		},
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd(), importStudentsCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `madrasa --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// loadDotEnv reads .env from the working directory when present.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading .env", "error", err)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "madrasa.db", "SQLite database path")
	f.StringP("lang", "l", "en", "UI and alert language (en, ur)")
	f.String("admin-password", "", "Initial admin password (or set MADRASA_ADMIN_PASSWORD)")
	f.Bool("secure-cookies", true, "Set Secure flag on cookies")
	f.StringSlice("allowed-origins", nil, "Origins allowed to open the alert websocket (default: same host)")
	f.StringSliceP("students", "s", nil, "Roster JSON files to import on start (repeatable)")
	f.String("session-cleanup", "@hourly", "Cron schedule for removing expired login sessions")
	f.String("llm-url", "", "OpenAI-compatible API base URL for progress summaries (empty disables)")
	f.String("llm-key", "", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("summary-variant", string(prompts.PromptStandard), "Summary tone (gentle, standard, strict)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export students and their daily reports as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "madrasa.db", "SQLite database path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func importStudentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-students FILE...",
		Short: "Import roster JSON files into the database",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImportStudents,
	}
	f := cmd.Flags()
	f.String("db", "madrasa.db", "SQLite database path")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("MADRASA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("madrasa")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/madrasa")
	v.AddConfigPath("/etc/madrasa")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	// Open database.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Seed default admin user if no users exist.
	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if err := importRosters(db, v.GetStringSlice("students")); err != nil {
		return fmt.Errorf("import students: %w", err)
	}

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	summarizer := newSummarizer(v)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(v.GetStringSlice("allowed-origins"))
	go hub.Run(ctx)

	sched := scheduler.New()
	if err := sched.AddSessionCleanup(v.GetString("session-cleanup"), db); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	sched.Start()

	svc := report.New(db, db, hub, report.WithTranslator(appI18n.NewTranslator(lang)))

	cfg := model.ServerConfig{
		Lang:           lang,
		SecureCookies:  v.GetBool("secure-cookies"),
		AllowedOrigins: v.GetStringSlice("allowed-origins"),
	}
	var sum handler.Summarizer
	if summarizer != nil {
		sum = summarizer
	}
	h := handler.New(db, svc, hub, sum, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"secure_cookies", cfg.SecureCookies,
		"allowed_origins", cfg.AllowedOrigins,
		"summaries", summarizer != nil,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	sched.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newSummarizer returns the LLM client, or nil when summaries are disabled or
// the endpoint does not answer.
func newSummarizer(v *viper.Viper) *llm.Client {
	url := v.GetString("llm-url")
	if url == "" {
		slog.Info("progress summaries disabled: no --llm-url")
		return nil
	}

	variant := strings.ToLower(strings.TrimSpace(v.GetString("summary-variant")))
	if !prompts.IsValidVariant(variant) {
		slog.Warn("invalid summary-variant, using standard", "variant", variant)
		variant = string(prompts.PromptStandard)
	}
	client, err := llm.New(url, v.GetString("llm-key"), v.GetString("llm-model"), variant)
	if err != nil {
		slog.Warn("progress summaries disabled", "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Warn("progress summaries disabled: LLM health check failed", "url", url, "error", err)
		return nil
	}
	slog.Info("LLM endpoint OK", "url", url, "model", v.GetString("llm-model"), "variant", variant)
	return client
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	results, err := db.ExportAllStudents(cmd.Context())
	if err != nil {
		return fmt.Errorf("export students: %w", err)
	}

	export := model.ReportExport{
		GeneratedAt: time.Now().UTC(),
		NumStudents: len(results),
		Students:    results,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

func runImportStudents(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return importRosters(db, args)
}

func seedAdmin(db *store.Store, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or MADRASA_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
