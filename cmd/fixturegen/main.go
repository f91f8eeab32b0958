package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/derekprior/fixturegen/internal/config"
	"github.com/derekprior/fixturegen/internal/excel"
	"github.com/derekprior/fixturegen/internal/schedule"
	"github.com/derekprior/fixturegen/internal/tournament"
	"github.com/derekprior/fixturegen/internal/validator"
)

const (
	defaultConfigFile = "config.yaml"
	configEnv         = "FIXTURES_CONFIG"
	seedEnv           = "FIXTURES_SEED"
)

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if p := os.Getenv(configEnv); p != "" {
		return p, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory, set %s or pass --config", defaultConfigFile, configEnv)
}

// resolveSeed picks the shuffle seed: the flag, then the environment, then
// the config file. ok is false when none is set and the run should be random.
func resolveSeed(flagSeed int64, flagSet bool, cfg *config.Config) (seed int64, ok bool, err error) {
	if flagSet {
		return flagSeed, true, nil
	}
	if s := os.Getenv(seedEnv); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("invalid %s %q: %w", seedEnv, s, err)
		}
		return seed, true, nil
	}
	if cfg.Tournament.Seed != 0 {
		return cfg.Tournament.Seed, true, nil
	}
	return 0, false, nil
}

// defaultOutputPath names the workbook after the tournament.
func defaultOutputPath(name string) string {
	s := slug.Make(name)
	if s == "" {
		s = "fixtures"
	}
	return s + ".xlsx"
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "fixturegen",
		Short: "Tournament fixture generator",
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log scheduling decisions to stderr")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate and validate fixtures",
	}

	var configFile string
	scheduleCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: $"+configEnv+" or config.yaml in current directory)")

	var outputFile string
	var seed int64
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate fixtures from a config file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runGenerate(configPath, outputFile, seed, cmd.Flags().Changed("seed"), logger)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output Excel file path (default: <tournament-name>.xlsx)")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "Seed for reproducible fixtures (default: $"+seedEnv+" or tournament.seed)")

	validateCmd := &cobra.Command{
		Use:          "validate <fixtures.xlsx>",
		Short:        "Validate a fixtures workbook against config rules",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runValidate(configPath, args[0])
		},
	}

	scheduleCmd.AddCommand(generateCmd, validateCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# Tournament Configuration
# ========================
# This file defines the parameters for generating tournament fixtures.

tournament:
  name: "Spring Cup"

  # One of: round_robin, double_round_robin, single_elimination,
  # double_elimination, group_knockout
  format: round_robin

  start_date: "2026-03-02"
  end_date: "2026-04-30"

  # Optional. A fixed seed reproduces the same fixtures on every run.
  # seed: 42

# Teams and their home venues. Venues are shared when two teams name the
# same one. Team names must be unique.
teams:
  - {name: Lions, venue: Riverside Park}
  - {name: Tigers, venue: North Oval}
  - {name: Bears, venue: Riverside Park}
  - {name: Wolves, venue: Green Lane}

# Teams can also be listed in a plain text file, one "Team, Venue" per line.
# The path is relative to this file.
# teams_file: teams.txt

# Group stage settings, used by group_knockout only.
groups:
  size: 4       # Teams per group; the team count must divide evenly
  advance: 2    # Teams from each group that reach the knockout

# Top 4 playoffs run after round_robin and double_round_robin leagues.
# List the four teams in finishing order.
playoffs:
  enabled: false
  top4: [Lions, Tigers, Bears, Wolves]

rules:
  min_rest_days: 2             # Full days a team rests between matches
  weekday_matches_limit: 1     # Matches per weekday across all venues
  weekend_matches_limit: 2     # Matches per Saturday or Sunday across all venues
  playoff_start_gap_days: 3    # Days between the last league match and the playoffs
  playoff_window_days: 21      # Days the playoffs may span
`

func runGenerate(configPath, outputPath string, flagSeed int64, seedSet bool, logger *zap.Logger) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := []tournament.Option{tournament.WithLogger(logger)}
	seed, ok, err := resolveSeed(flagSeed, seedSet, cfg)
	if err != nil {
		return err
	}
	if ok {
		opts = append(opts, tournament.WithSeed(seed))
	}

	in := tournament.FromConfig(cfg)
	fmt.Printf("Scheduling %s (%s) for %d teams from %s to %s...\n",
		cfg.Tournament.Name, in.Format, len(in.Teams),
		in.Start.Format("2006-01-02"), in.End.Format("2006-01-02"))

	res, err := tournament.Generate(in, cfg.Rules, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("✓ %d fixtures scheduled across %d stage(s)\n", len(res.Fixtures), len(res.Stages))
	for _, s := range res.Stages {
		fmt.Printf("  %-20s %4d\n", s.Stage, len(s.Fixtures))
	}

	fmt.Println()
	for _, n := range res.Notices {
		printNotice(n)
	}

	if len(res.Fixtures) == 0 {
		return fmt.Errorf("no fixtures to save")
	}

	f, err := excel.Generate(res)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}

	if outputPath == "" {
		outputPath = defaultOutputPath(res.Name)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}

	fmt.Printf("\n✓ Fixtures saved to %s\n", outputPath)
	return nil
}

func printNotice(n schedule.Notice) {
	switch n.Severity {
	case schedule.SeveritySuccess:
		fmt.Printf("✓ %s\n", n.Message)
	case schedule.SeverityWarning, schedule.SeverityDanger:
		fmt.Printf("⚠ %s\n", n.Message)
	default:
		fmt.Printf("  %s\n", n.Message)
	}
}

func runValidate(configPath, schedulePath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	violations, err := validator.Validate(cfg, schedulePath)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	errors := 0
	warnings := 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
			fmt.Printf("✗ Row %d: %s\n", v.Row, v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ Row %d: %s\n", v.Row, v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d rule violations, %d warnings\n", errors, warnings)

	// Regenerate team sheets from master schedule
	if err := excel.UpdateTeamSheets(schedulePath, cfg.TeamNames()); err != nil {
		return fmt.Errorf("updating team sheets: %w", err)
	}
	fmt.Printf("✓ Team sheets updated in %s\n", schedulePath)

	if errors > 0 {
		return fmt.Errorf("%d constraint violations found", errors)
	}
	return nil
}
