package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/dbfill/internal/app"
	"github.com/mmrzaf/dbfill/internal/config"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/repos/configs"
	"github.com/mmrzaf/dbfill/internal/infra/repos/runs"
	"github.com/mmrzaf/dbfill/internal/infra/repos/targets"
	"github.com/mmrzaf/dbfill/internal/logging"
	"github.com/mmrzaf/dbfill/internal/validation"
)

var (
	configsDir    string
	targetsDir    string
	runsDB        string
	logLevel      string
	batchSize     int
	modulusFactor int
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "dbfill",
		Short: "Fill database tables with masked synthetic data",
	}

	rootCmd.PersistentFlags().StringVar(&configsDir, "configs-dir", cfg.ConfigsDir, "Generation configs directory")
	rootCmd.PersistentFlags().StringVar(&targetsDir, "targets-dir", cfg.TargetsDir, "Targets directory")
	rootCmd.PersistentFlags().StringVar(&runsDB, "runs-db", cfg.RunsDBDSN, "Runs database DSN (sqlite path or postgres URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", cfg.BatchSize, "Rows per INSERT statement")
	rootCmd.PersistentFlags().IntVar(&modulusFactor, "modulus-factor", cfg.ModulusFactor, "Every k-th nullable value becomes NULL")

	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(targetCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(previewCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage generation configs",
	}

	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List generation configs",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := configs.NewFileRepository(configsDir)
			list, err := repo.List()
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVERSION\tTABLES")
			for _, c := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Version, len(c.Tables))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show config details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := configs.NewFileRepository(configsDir)
			cfg, err := repo.Get(args[0])
			if err != nil {
				return err
			}

			data, _ := yaml.Marshal(cfg)
			fmt.Println(string(data))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <id|path>",
		Short: "Validate a generation config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigArg(args[0])
			if err != nil {
				return err
			}

			if err := validation.NewValidator().ValidateConfig(cfg); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}

			fmt.Printf("Config '%s' is valid\n", cfg.Name)
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, validateCmd)
	return cmd
}

func targetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage targets",
	}

	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := targets.NewFileRepository(targetsDir)
			list, err := repo.List()
			if err != nil {
				return err
			}

			redacted := targets.RedactTargets(list)
			if format == "json" {
				data, _ := json.MarshalIndent(redacted, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tKIND\tDSN")
			for _, t := range redacted {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Kind, t.DSN)
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show target details (DSN redacted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := targets.NewFileRepository(targetsDir)
			target, err := repo.Get(args[0])
			if err != nil {
				return err
			}

			data, _ := yaml.Marshal(targets.RedactTarget(target))
			fmt.Println(string(data))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <id|path>",
		Short: "Validate a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := targets.NewFileRepository(targetsDir)
			var target *domain.TargetConfig
			var err error

			if looksLikePath(args[0]) {
				target, err = repo.GetByPath(args[0])
			} else {
				target, err = repo.Get(args[0])
			}
			if err != nil {
				return err
			}

			if err := validation.NewValidator().ValidateTarget(target); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}

			fmt.Printf("Target '%s' is valid\n", target.Name)
			return nil
		},
	}

	testCmd := &cobra.Command{
		Use:   "test <id>",
		Short: "Check connectivity to a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, runRepo, err := buildService()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			latency, err := svc.TestTarget(args[0])
			if err != nil {
				fmt.Printf("Target check failed: %v\n", err)
				return err
			}
			fmt.Printf("Target '%s' reachable (%.0fms)\n", args[0], float64(latency.Milliseconds()))
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, validateCmd, testCmd)
	return cmd
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Manage runs",
	}

	var (
		configID   string
		configPath string
		targetID   string
		targetDSN  string
		targetKind string
		seed       int64
		hasSeed    bool
		overrides  []string
	)

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start a fill run",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, runRepo, err := buildService()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			req, err := buildRequest(configID, configPath, targetID, targetDSN, targetKind, overrides)
			if err != nil {
				return err
			}
			if hasSeed {
				req.Seed = &seed
			}
			req.BatchSize = batchSize
			req.ModulusFactor = modulusFactor

			run, err := svc.StartRun(req)
			if err != nil {
				return err
			}

			if run.Status != domain.RunStatusSuccess {
				fmt.Printf("Run %s failed: %s\n", run.ID, run.Error)
				return fmt.Errorf("run failed")
			}

			fmt.Printf("Run %s completed\n", run.ID)
			if run.Stats != nil {
				var stats domain.RunStats
				if err := json.Unmarshal(run.Stats, &stats); err == nil {
					fmt.Printf("Tables filled: %d (skipped %d)\n", stats.TablesFilled, stats.TablesSkipped)
					fmt.Printf("Total rows: %d\n", stats.TotalRows)
					fmt.Printf("Duration: %.2fs\n", stats.DurationSeconds)
				}
			}
			return nil
		},
	}

	startCmd.Flags().StringVar(&configID, "config", "", "Config ID")
	startCmd.Flags().StringVar(&configPath, "config-path", "", "Config file path")
	startCmd.Flags().StringVar(&targetID, "target-id", "", "Target ID")
	startCmd.Flags().StringVar(&targetDSN, "target", "", "Target DSN")
	startCmd.Flags().StringVar(&targetKind, "target-kind", "", "Target kind (required with --target)")
	startCmd.Flags().Int64VarP(&seed, "seed", "s", 0, "Seed for RNG")
	startCmd.Flags().StringSliceVar(&overrides, "rows-override", nil, "Row overrides (table=rows)")
	startCmd.PreRun = func(cmd *cobra.Command, args []string) {
		hasSeed = cmd.Flags().Changed("seed")
	}

	var limit int
	var status string
	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo := runs.New(runsDB)
			if err := runRepo.Init(); err != nil {
				return err
			}
			defer runRepo.Close()

			list, err := runRepo.List(limit, status)
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCONFIG\tTARGET\tSTATUS\tSTARTED")
			for _, r := range list {
				id := r.ID
				if len(id) > 8 {
					id = id[:8]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					id, r.ConfigName, r.TargetName, r.Status, r.StartedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo := runs.New(runsDB)
			if err := runRepo.Init(); err != nil {
				return err
			}
			defer runRepo.Close()

			run, err := runRepo.Get(args[0])
			if err != nil {
				return err
			}

			data, _ := json.MarshalIndent(run, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.AddCommand(startCmd, listCmd, showCmd)
	return cmd
}

func previewCmd() *cobra.Command {
	var (
		configID   string
		configPath string
		seed       int64
		hasSeed    bool
		overrides  []string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the INSERT statements a run would execute",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, runRepo, err := buildService()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			req, err := buildRequest(configID, configPath, "", "", "", overrides)
			if err != nil {
				return err
			}
			if hasSeed {
				req.Seed = &seed
			}
			req.BatchSize = batchSize
			req.ModulusFactor = modulusFactor

			statements, _, err := svc.Preview(req)
			if err != nil {
				return err
			}
			for _, sql := range statements {
				fmt.Println(sql)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configID, "config", "", "Config ID")
	cmd.Flags().StringVar(&configPath, "config-path", "", "Config file path")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "Seed for RNG")
	cmd.Flags().StringSliceVar(&overrides, "rows-override", nil, "Row overrides (table=rows)")
	cmd.PreRun = func(c *cobra.Command, args []string) {
		hasSeed = c.Flags().Changed("seed")
	}
	return cmd
}

func buildService() (*app.RunService, runs.Repository, error) {
	logger := logging.NewLogger(logLevel)

	runRepo := runs.New(runsDB)
	if err := runRepo.Init(); err != nil {
		return nil, nil, err
	}

	svc := app.NewRunService(
		configs.NewFileRepository(configsDir),
		targets.NewFileRepository(targetsDir),
		runRepo,
		logger,
		batchSize,
		modulusFactor,
	)
	return svc, runRepo, nil
}

func buildRequest(configID, configPath, targetID, targetDSN, targetKind string, overrides []string) (*domain.RunRequest, error) {
	req := &domain.RunRequest{}

	switch {
	case configPath != "":
		cfg, err := configs.NewFileRepository(configsDir).GetByPath(configPath)
		if err != nil {
			return nil, err
		}
		req.Config = cfg
	case configID != "":
		req.ConfigID = configID
	default:
		return nil, fmt.Errorf("either --config or --config-path required")
	}

	switch {
	case targetDSN != "":
		if targetKind == "" {
			return nil, fmt.Errorf("--target-kind required when using --target DSN")
		}
		req.Target = &domain.TargetConfig{
			ID:   "inline-target",
			Name: "inline-target",
			Kind: targetKind,
			DSN:  targetDSN,
		}
	case targetID != "":
		req.TargetID = targetID
	}

	if len(overrides) > 0 {
		req.RowOverrides = make(map[string]int64)
		for _, override := range overrides {
			parts := strings.SplitN(override, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid rows override format: %s", override)
			}
			rows, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid rows value: %s", parts[1])
			}
			req.RowOverrides[parts[0]] = rows
		}
	}

	return req, nil
}

func loadConfigArg(arg string) (*domain.GenerationConfig, error) {
	repo := configs.NewFileRepository(configsDir)
	if looksLikePath(arg) {
		return repo.GetByPath(arg)
	}
	return repo.Get(arg)
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") ||
		strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml") || strings.HasSuffix(s, ".json")
}
