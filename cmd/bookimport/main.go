// Command bookimport previews a spreadsheet of books in the terminal and
// sends it to the import server once confirmed.
package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/bookimport/internal/config"
	"github.com/JonMunkholm/bookimport/internal/logging"
	"github.com/JonMunkholm/bookimport/internal/preview"
)

func main() {
	// A missing .env is fine; the environment is used as-is.
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "bookimport:", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bookimport: open log file:", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := logging.New(logFile, cfg.LogLevel, "text")
	slog.SetDefault(logger)

	client, err := preview.NewClient(cfg.APIURL,
		preview.WithAPIKey(cfg.APIKey),
		preview.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bookimport:", err)
		os.Exit(1)
	}
	logger.Info("client started", "upload_url", client.UploadURL())

	form := preview.NewForm(client, logger)
	if _, err := tea.NewProgram(preview.NewModel(form, cfg.Timeout)).Run(); err != nil {
		logger.Error("program error", "error", err)
		fmt.Fprintln(os.Stderr, "bookimport:", err)
		os.Exit(1)
	}
}
