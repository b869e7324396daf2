package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"checkdoc/internal/checker"
	"checkdoc/internal/config"
	"checkdoc/internal/crawler"
	"checkdoc/internal/document"
	"checkdoc/internal/git"
	"checkdoc/internal/report"
	"checkdoc/internal/ruleset"
	"checkdoc/internal/score"
	"checkdoc/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes: 0 compliant, 1 MUST violations, 2 load/parse error.
const (
	exitOK         = 0
	exitViolations = 1
	exitFatal      = 2
)

var (
	rootCmd = &cobra.Command{
		Use:   "checkdoc",
		Short: "Rule-based document compliance checker",
		Long: `checkdoc validates Markdown documents against a declarative rule set
(YAML or JSON) and reports violations as a checklist, table, diff or JSON.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logger
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	configPath  string
	rulesetPath string
	format      string
	sinceRef    string
	parallel    bool
	ruleTimeout time.Duration
	verbose     bool

	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "checkdoc.yaml", "Path to the checkdoc config file")
	rootCmd.PersistentFlags().StringVarP(&rulesetPath, "ruleset", "r", "", "Path to the rule set file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	checkCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: checklist|table|diff|json")
	checkCmd.Flags().StringVar(&sinceRef, "since", "", "Only check documents changed since the given git ref")
	checkCmd.Flags().BoolVar(&parallel, "parallel", false, "Evaluate rules in parallel")
	checkCmd.Flags().DurationVar(&ruleTimeout, "rule-timeout", 0, "Per-rule evaluation timeout")

	watchCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: checklist|table|diff|json")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadSetup resolves config, flags and the rule set shared by the commands.
func loadSetup(cmd *cobra.Command) (*config.Config, *ruleset.RuleSet) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fatal("Failed to load config %s: %v", configPath, err)
	}
	if rulesetPath != "" {
		cfg.Ruleset = rulesetPath
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = format
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Check.Parallel = parallel
	}
	if cmd.Flags().Changed("rule-timeout") {
		cfg.Check.RuleTimeout = ruleTimeout
	}

	rs, err := ruleset.Load(cfg.Ruleset)
	if err != nil {
		fatal("Failed to load rule set %s: %v", cfg.Ruleset, err)
	}
	logger.Debug("Rule set loaded",
		zap.String("name", rs.Name),
		zap.Int("rules", len(rs.Rules)))
	return cfg, rs
}

var checkCmd = &cobra.Command{
	Use:   "check [path]...",
	Short: "Check documents against a rule set",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, rs := loadSetup(cmd)

		if len(args) == 0 {
			args = []string{"."}
		}
		docs := collectDocuments(args, cfg)
		if sinceRef != "" {
			docs = filterSince(docs, sinceRef)
		}
		if len(docs) == 0 {
			fmt.Println("No documents to check.")
			return
		}

		opts := checker.Options{
			Parallel:    cfg.Check.Parallel,
			RuleTimeout: cfg.Check.RuleTimeout,
		}

		start := time.Now()
		mustViolations := 0
		for i, path := range docs {
			rep := runCheck(cmd.Context(), rs, path, opts)
			mustViolations += rep.MustViolations()

			out, err := report.Render(rep, cfg.Format)
			if err != nil {
				fatal("%v", err)
			}
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(out)
		}
		logger.Debug("Check complete",
			zap.Int("documents", len(docs)),
			zap.Int("must_violations", mustViolations),
			zap.Duration("elapsed", time.Since(start)))

		if mustViolations > 0 {
			os.Exit(exitViolations)
		}
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Validate a rule set and list its rules",
	Run: func(cmd *cobra.Command, args []string) {
		_, rs := loadSetup(cmd)

		fmt.Printf("Rule set %s", rs.Name)
		if rs.Version != "" {
			fmt.Printf(" v%s", rs.Version)
		}
		fmt.Printf(" — %d rules\n\n", len(rs.Rules))
		for _, r := range rs.Rules {
			fmt.Printf("  %-32s %-6s %-18s %s\n", r.ID, r.Severity, r.Evaluator, r.Description)
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]...",
	Short: "Re-check documents whenever they change",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, rs := loadSetup(cmd)

		if len(args) == 0 {
			args = []string{"."}
		}
		cr := crawler.NewCrawler(cfg.Check.Include)

		w, err := watch.NewWatcher(watch.Config{
			Paths: args,
			Match: func(path string) bool {
				return cr.Matches(filepath.ToSlash(filepath.Base(path)))
			},
		})
		if err != nil {
			fatal("Failed to start watcher: %v", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Watcher stopped", zap.Error(err))
			}
		}()

		opts := checker.Options{
			Parallel:    cfg.Check.Parallel,
			RuleTimeout: cfg.Check.RuleTimeout,
		}

		fmt.Printf("👀 Watching %d path(s), ruleset %s. Ctrl-C to stop.\n", len(args), rs.Name)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				if ev.Removed {
					continue
				}
				rep := runCheck(ctx, rs, ev.Path, opts)
				out, err := report.Render(rep, cfg.Format)
				if err != nil {
					fatal("%v", err)
				}
				fmt.Printf("\n--- %s @ %s ---\n", ev.Path, time.Now().Format(time.TimeOnly))
				fmt.Print(out)
			}
		}
	},
}

// runCheck parses, checks and scores one document. Parse failures are fatal.
func runCheck(ctx context.Context, rs *ruleset.RuleSet, path string, opts checker.Options) *score.ComplianceReport {
	doc, err := document.ParseFile(path)
	if err != nil {
		fatal("%v", err)
	}
	violations, err := checker.Check(ctx, rs, doc, opts)
	if err != nil {
		fatal("Check failed for %s: %v", path, err)
	}
	return score.Score(rs, doc, violations)
}

// collectDocuments expands the path arguments into document paths: files are
// taken as-is, directories are crawled with the configured include globs.
func collectDocuments(args []string, cfg *config.Config) []string {
	cr := crawler.NewCrawler(cfg.Check.Include)

	var docs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			fatal("Cannot read %s: %v", arg, err)
		}
		if !info.IsDir() {
			docs = append(docs, arg)
			continue
		}
		if err := cr.ScanDir(arg, func(path string) {
			docs = append(docs, path)
		}); err != nil {
			fatal("Failed to scan %s: %v", arg, err)
		}
	}
	return docs
}

// filterSince keeps only documents touched since the given git ref.
func filterSince(docs []string, ref string) []string {
	changed, err := git.ChangedFiles(ref)
	if err != nil {
		fatal("Failed to resolve --since %s: %v", ref, err)
	}
	set := make(map[string]bool, len(changed))
	for _, p := range changed {
		set[filepath.Clean(p)] = true
	}

	var out []string
	for _, doc := range docs {
		if set[filepath.Clean(doc)] {
			out = append(out, doc)
		}
	}
	return out
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(exitFatal)
}
