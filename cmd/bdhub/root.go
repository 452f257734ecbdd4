package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jask/bdhub/internal/config"
	"github.com/jask/bdhub/internal/database"
	"github.com/jask/bdhub/internal/database/repository"
	"github.com/jask/bdhub/internal/games"
	"github.com/jask/bdhub/internal/route"
	"github.com/jask/bdhub/internal/theme"
	"github.com/jask/bdhub/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bdhub",
		Short:         "bdhub: a terminal hub of BanG Dream mini-games",
		Long:          "bdhub opens a catalog of mini-games and runs one at a time. Pick a game from the catalog, or jump straight in with `bdhub play <id>`.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runHub(cmd.Context(), cfg, "")
		},
	}

	pf := root.PersistentFlags()
	pf.String("path", "", "Location to open, e.g. ./shoot")
	pf.String("title", "", "Hub title shown in the header")
	pf.String("db", "", "Path to the sqlite database")
	pf.Bool("resume", true, "Reopen the last location from the previous session")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("log-file", "", "Log file path")
	pf.String("metrics-addr", "", "Serve prometheus metrics on this address, e.g. :9090")
	pf.Uint64("seed", 0, "Seed for the random games (0 picks one)")

	root.AddCommand(newPlayCmd(), newListCmd(), newHistoryCmd(), newConfigCmd(), newVersionCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <game-id>",
		Short: "Start the hub with a game already running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runHub(cmd.Context(), cfg, args[0])
		},
	}
}

var (
	headerCellStyle = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the games and the location that opens each one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, aliases, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, reg.Len())
			for _, d := range reg.List() {
				source := ""
				if d.Source != nil {
					source = d.Source.Name
				}
				rows = append(rows, []string{
					d.ID,
					d.Title,
					route.Synthesize(route.ModuleRoute(d.ID), aliases),
					strings.Join(d.Tags, ", "),
					source,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "TITLE", "LOCATION", "TAGS", "SOURCE"}, rows))
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent plays and per-game totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := database.OpenAndMigrate(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			plays := repository.NewPlayRepo(db)
			recent, err := plays.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load plays: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(recent) == 0 {
				fmt.Fprintln(out, "No plays yet.")
				return nil
			}
			rows := make([][]string, 0, len(recent))
			for _, p := range recent {
				took := "-"
				if p.EndedAt != nil {
					took = p.Duration().String()
				}
				detail := ""
				if p.Error != nil {
					detail = *p.Error
				}
				rows = append(rows, []string{
					p.StartedAt.Local().Format("2006-01-02 15:04"),
					p.ModuleID,
					p.Outcome,
					took,
					detail,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"STARTED", "GAME", "OUTCOME", "DURATION", "ERROR"}, rows))

			stats, err := plays.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("load stats: %w", err)
			}
			statRows := make([][]string, 0, len(stats))
			for _, s := range stats {
				statRows = append(statRows, []string{
					s.ModuleID,
					fmt.Sprint(s.Plays),
					fmt.Sprint(s.Failures),
					s.LastPlay.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"GAME", "PLAYS", "FAILURES", "LAST PLAYED"}, statRows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of plays to show")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(cfg.Hub.Aliases) == 0 {
				cfg.Hub.Aliases = games.Aliases()
			}
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print where the config file is read from",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.Path())
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
