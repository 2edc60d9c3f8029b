// Command terminal is the interactive trading terminal: a command bar with
// fuzzy suggestions, function routing, and the Launchpad workspace grid.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"marketterm/internal/backend"
	"marketterm/internal/command"
	"marketterm/internal/config"
	"marketterm/internal/launchpad"
	"marketterm/internal/localstore"
	"marketterm/internal/session"
	"marketterm/internal/suggest"
	"marketterm/internal/util"
)

func main() {
	cfgPath := os.Getenv("MARKETTERM_CONFIG")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns stdout, so logs go to a file.
	logPath := cfg.Logging.Path
	if logPath == "" {
		logPath = fmt.Sprintf("/tmp/marketterm-%s.log", time.Now().Format("2006-01-02"))
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(logFile, cfg.Logging.Level, "text")

	store, err := localstore.Open(cfg.Storage.StatePath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening state database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := backend.NewClient(cfg.Backend.BaseURL, logger)
	stream := backend.NewQuoteStream(cfg.Backend.StreamURL, logger)

	sess := session.NewStore()
	history := suggest.NewHistory(store, logger)
	instCache := suggest.NewInstrumentCache(store, logger)
	ranker := suggest.NewRanker(history, instCache)
	searcher := suggest.NewSearcher(client, instCache, logger)
	executor := command.NewExecutor(sess, logger)

	layouts, activeID := launchpad.LoadLocal(store)
	pad := launchpad.NewStore(layouts, activeID, logger)
	bridge := launchpad.NewBridge(pad, store, client, cfg.Sync.Debounce(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go bridge.Run(ctx)
	go stream.Run(ctx)

	app := newApp(ctx, appDeps{
		logger:   logger,
		sess:     sess,
		history:  history,
		ranker:   ranker,
		searcher: searcher,
		executor: executor,
		pad:      pad,
		bridge:   bridge,
		stream:   stream,
		cancel:   cancel,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
