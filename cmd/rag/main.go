package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"engagerag/internal/app"
	"engagerag/internal/config"
	"engagerag/internal/domain"
	"engagerag/internal/history"
	"engagerag/internal/logger"
	"engagerag/internal/tui"
)

const batchSession = "cli"

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var batch bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/engagerag/config.yaml if not provided)")
	flag.BoolVar(&batch, "batch", false, "Answer the questions given as arguments (or one per stdin line) and exit")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// the TUI owns the terminal, so only batch mode logs to stderr
	lg := logger.Discard()
	if batch {
		lg = logger.New(cfg.Log)
	}

	a, err := app.Build(cfg, lg, nil)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer a.Close()

	if batch {
		if err := runBatch(context.Background(), a, cfg.History.MaxEntries, flag.Args(), lg); err != nil {
			log.Fatal(err)
		}
		return
	}

	if _, err := tea.NewProgram(tui.New(a.Engine)).Run(); err != nil {
		log.Fatal(err)
	}
}

func runBatch(ctx context.Context, a *app.App, maxEntries int, args []string, lg *logrus.Logger) error {
	hist := history.NewMemory(maxEntries)
	defer hist.Close()

	ask := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" {
			return
		}
		prior, err := hist.Recent(ctx, batchSession)
		if err != nil {
			lg.WithError(err).Warn("read history")
		}
		answer := a.Engine.Answer(ctx, q, history.Prior(prior, maxEntries))
		fmt.Printf("> %s\n%s\n\n", q, answer)
		if err := hist.Append(ctx, batchSession, domain.UserSaid(q), domain.AssistantSaid(answer)); err != nil {
			lg.WithError(err).Warn("append history")
		}
	}

	if len(args) > 0 {
		for _, q := range args {
			ask(q)
		}
		return nil
	}
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if tui.IsExit(sc.Text()) {
			break
		}
		ask(sc.Text())
	}
	return sc.Err()
}
