package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jask/bdhub/internal/catalog"
	"github.com/jask/bdhub/internal/config"
	"github.com/jask/bdhub/internal/database"
	"github.com/jask/bdhub/internal/database/repository"
	"github.com/jask/bdhub/internal/games"
	"github.com/jask/bdhub/internal/history"
	"github.com/jask/bdhub/internal/hub"
	"github.com/jask/bdhub/internal/lifecycle"
	"github.com/jask/bdhub/internal/logging"
	"github.com/jask/bdhub/internal/metrics"
	"github.com/jask/bdhub/internal/route"
	"github.com/jask/bdhub/internal/router"
	"github.com/jask/bdhub/internal/shell"
	"github.com/jask/bdhub/internal/tui"
)

var errUnknownGame = errors.New("unknown game")

func gameConfig(cfg config.Config) games.Config {
	return games.Config{NoteShooterRound: cfg.Games.NoteShooter.Round, Seed: cfg.Games.Seed}
}

func aliasTable(cfg config.Config, ids []string) (route.AliasTable, error) {
	pairs := cfg.Hub.Aliases
	if len(pairs) == 0 {
		pairs = games.Aliases()
	}
	aliases, err := route.NewAliasTable(pairs)
	if err != nil {
		return route.AliasTable{}, fmt.Errorf("hub.aliases: %w", err)
	}
	if err := aliases.Validate(ids); err != nil {
		return route.AliasTable{}, fmt.Errorf("hub.aliases: %w", err)
	}
	return aliases, nil
}

// buildRegistry builds a private registry for commands that only read the
// catalog.
func buildRegistry(cfg config.Config) (*hub.Registry, route.AliasTable, error) {
	reg, err := hub.NewRegistry(games.Catalog(gameConfig(cfg))...)
	if err != nil {
		return nil, route.AliasTable{}, fmt.Errorf("build catalog: %w", err)
	}
	aliases, err := aliasTable(cfg, reg.IDs())
	if err != nil {
		return nil, route.AliasTable{}, err
	}
	return reg, aliases, nil
}

type locationStore interface {
	LastLocation(ctx context.Context) (string, bool, error)
}

// startLocation picks where the session opens: an explicit game, then the
// configured path, then the saved location when resuming.
func startLocation(ctx context.Context, cfg config.Config, gameID string, reg *hub.Registry, aliases route.AliasTable, states locationStore, log *zap.Logger) (string, error) {
	if gameID != "" {
		id := aliases.Reverse(gameID)
		if _, ok := reg.Find(id); !ok {
			return "", fmt.Errorf("%w %q (see `bdhub list`)", errUnknownGame, gameID)
		}
		return route.Synthesize(route.ModuleRoute(id), aliases), nil
	}
	if cfg.Hub.StartPath != "" {
		return cfg.Hub.StartPath, nil
	}
	if cfg.History.Resume && states != nil {
		loc, ok, err := states.LastLocation(ctx)
		if err != nil {
			log.Warn("load last location", zap.Error(err))
		} else if ok {
			return loc, nil
		}
	}
	return route.Root, nil
}

func runHub(ctx context.Context, cfg config.Config, gameID string) error {
	log, err := logging.NewOrNop(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		OutputPaths: []string{cfg.Log.Path},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "bdhub: logging disabled: %v\n", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.OpenAndMigrate(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	plays := repository.NewPlayRepo(db)
	states := repository.NewStateRepo(db)

	if err := hub.Init(games.Catalog(gameConfig(cfg))...); err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	reg := hub.Default()
	aliases, err := aliasTable(cfg, reg.IDs())
	if err != nil {
		return err
	}

	start, err := startLocation(ctx, cfg, gameID, reg, aliases, states, log)
	if err != nil {
		return err
	}

	pump := tui.NewPump()
	region := lifecycle.NewRegion(pump.Redraw)
	m := metrics.New()

	r, err := router.New(router.Options{
		Registry: reg,
		Aliases:  aliases,
		History:  history.NewStack(start),
		Content:  region,
		Catalog: func(descs []hub.Descriptor, onSelect func(string)) lifecycle.View {
			return catalog.Render(descs, onSelect)
		},
		Logger:  log,
		Metrics: m,
	})
	if err != nil {
		return err
	}
	sh, err := shell.New(shell.Options{
		Router:   r,
		Registry: reg,
		Content:  region,
		Recorder: plays,
		Metrics:  m,
		Logger:   log,
		OnFailure: func(id string, err error) {
			pump.Send(tui.StatusMsg{Text: fmt.Sprintf("%s failed: %v", id, err), IsErr: true})
		},
	})
	if err != nil {
		return err
	}
	r.OnChange(sh.Dispatch)
	r.Start()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := tui.New(tui.Options{Title: cfg.Hub.Title, Router: r, Shell: sh, Content: region, Logger: log})
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))

	log.Info("hub started", zap.String("location", r.Location()), zap.Int("games", reg.Len()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sh.Run(gctx) })
	g.Go(func() error { return pump.Run(gctx, program.Send) })
	if cfg.Metrics.Addr != "" {
		g.Go(func() error { return m.Serve(gctx, cfg.Metrics.Addr) })
	}
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	err = g.Wait()

	if cfg.History.Resume {
		if serr := states.SaveLocation(context.Background(), r.Location()); serr != nil {
			log.Warn("save last location", zap.Error(serr))
		}
	}
	log.Info("hub stopped", zap.Error(err))
	return err
}
