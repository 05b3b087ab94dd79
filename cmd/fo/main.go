package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"fo-go/internal/app"
	"fo-go/internal/config"
	"fo-go/internal/fo"
)

const version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps expected failures (bad input, missing paths, lock refusal)
// to 1 and anything unexpected to 2.
func exitCode(err error) int {
	switch {
	case errors.Is(err, fo.ErrNotFound),
		errors.Is(err, fo.ErrInvalidArgument),
		errors.Is(err, fo.ErrAccessDenied):
		return 1
	case errors.Is(err, fo.ErrStorage):
		return 2
	}
	return 1
}

// loadConfig reads the config file, falling back to defaults when no config
// file exists yet. It also applies the color policy for this terminal.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	var cfg *config.Config
	if _, err := os.Stat(defaults["config_path"]); err == nil {
		cfg, err = config.ReadFromFile(defaults["config_path"], defaults["base_dir"])
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		cfg = config.Default(defaults["base_dir"])
	}

	if !cfg.UseColors || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
	return cfg, nil
}

// newApp loads the config and creates a wired App. The caller must defer
// a.Close(). operation identifies the CLI command being run.
func newApp(cmd *cobra.Command, operation string) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.New(cfg, operation, verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing: %w", err)
	}
	return a, nil
}

// confirm prompts for a yes/no answer on stdin. Skipped (always true) when
// the config disables confirmations or --yes was given.
func confirm(cmd *cobra.Command, cfg *config.Config, prompt string) bool {
	yes, _ := cmd.Flags().GetBool("yes")
	if yes || !cfg.ConfirmActions {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// writeOutput prints s to stdout, or to the file named by the -o flag.
func writeOutput(cmd *cobra.Command, s string) error {
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		fmt.Println(s)
		return nil
	}
	if err := os.WriteFile(out, []byte(s+"\n"), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	fmt.Printf("Written to %s\n", out)
	return nil
}

var (
	categoryColor = color.New(color.FgCyan)
	warnColor     = color.New(color.FgYellow)
	okColor       = color.New(color.FgGreen)
)

var rootCmd = &cobra.Command{
	Use:     "fo",
	Short:   "File organization and cleanup tool",
	Version: version,
}

// sort command
var sortCmd = &cobra.Command{
	Use:   "sort DIRECTORY",
	Short: "Sort files into category directories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		dimension, _ := cmd.Flags().GetString("by")

		a, err := newApp(cmd, "Sort")
		if err != nil {
			return err
		}
		defer a.Close()

		if dimension == "" {
			dimension = a.Config().DefaultDimension
		}

		groups, err := a.Manager().Sort(args[0], dimension, recursive, dryRun)
		if err != nil {
			return err
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		fmt.Printf("Files sorted by %s:\n", dimension)
		for category, files := range groups {
			fmt.Printf("  %s: %d file(s)\n", categoryColor.Sprint(category), len(files))
			if verbose {
				for _, f := range files {
					fmt.Printf("    - %s\n", f)
				}
			}
		}
		if dryRun {
			warnColor.Println("Dry run: no files were moved.")
		}
		return nil
	},
}

// rename command
var renameCmd = &cobra.Command{
	Use:   "rename DIRECTORY PATTERN REPLACEMENT",
	Short: "Batch-rename files with a regular expression",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		a, err := newApp(cmd, "RenameBatch")
		if err != nil {
			return err
		}
		defer a.Close()

		renamed, err := a.Manager().RenameBatch(args[0], args[1], args[2], recursive, dryRun)
		if err != nil {
			return err
		}

		if len(renamed) == 0 {
			fmt.Println("No file names matched.")
			return nil
		}
		fmt.Printf("Renamed %d file(s):\n", len(renamed))
		for oldPath, newPath := range renamed {
			fmt.Printf("  %s -> %s\n", oldPath, newPath)
		}
		if dryRun {
			warnColor.Println("Dry run: no files were renamed.")
		}
		return nil
	},
}

// move command
var moveCmd = &cobra.Command{
	Use:   "move DIRECTORY",
	Short: "Move files matching rules to destinations",
	Long: `Move files matching rules to destination directories.

Each --rule takes the form PATTERN=DESTINATION, where PATTERN is a regular
expression matched against file names. Rules are tried in the given order;
the first match wins.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		rawRules, _ := cmd.Flags().GetStringArray("rule")

		if len(rawRules) == 0 {
			return fmt.Errorf("no rules given; use --rule PATTERN=DESTINATION")
		}
		rules := make([]fo.MoveRule, 0, len(rawRules))
		for _, r := range rawRules {
			pattern, dest, ok := strings.Cut(r, "=")
			if !ok || dest == "" {
				return fmt.Errorf("malformed rule %q; expected PATTERN=DESTINATION", r)
			}
			rules = append(rules, fo.MoveRule{Pattern: pattern, Destination: dest})
		}

		a, err := newApp(cmd, "MoveByRules")
		if err != nil {
			return err
		}
		defer a.Close()

		moved, err := a.Manager().MoveByRules(args[0], rules, recursive, dryRun)
		if err != nil {
			return err
		}

		for dest, files := range moved {
			fmt.Printf("  %s: %d file(s)\n", categoryColor.Sprint(dest), len(files))
		}
		if dryRun {
			warnColor.Println("Dry run: no files were moved.")
		}
		return nil
	},
}

// duplicates command
var duplicatesCmd = &cobra.Command{
	Use:   "duplicates DIRECTORY...",
	Short: "Find files with identical content",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd, "FindDuplicates")
		if err != nil {
			return err
		}
		defer a.Close()

		groups, err := a.Manager().FindDuplicates(args)
		if err != nil {
			return err
		}

		if asJSON {
			return writeOutput(cmd, renderDuplicatesJSON(groups))
		}
		if len(groups) == 0 {
			return writeOutput(cmd, "No duplicates found.")
		}

		var b strings.Builder
		for fp, paths := range groups {
			fmt.Fprintf(&b, "%s (%d files):\n", fp[:12], len(paths))
			for _, p := range paths {
				fmt.Fprintf(&b, "  %s\n", p)
			}
		}
		return writeOutput(cmd, strings.TrimRight(b.String(), "\n"))
	},
}

// clean command
var cleanCmd = &cobra.Command{
	Use:   "clean DIRECTORY",
	Short: "Delete temporary or stale files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		temp, _ := cmd.Flags().GetBool("temp")
		oldDays, _ := cmd.Flags().GetInt("old")

		if !temp && oldDays < 0 {
			return fmt.Errorf("nothing to clean; use --temp and/or --old DAYS")
		}

		a, err := newApp(cmd, "Clean")
		if err != nil {
			return err
		}
		defer a.Close()

		if !dryRun && !confirm(cmd, a.Config(), fmt.Sprintf("Delete files under %s?", args[0])) {
			fmt.Println("Aborted.")
			return nil
		}

		var removed []string
		if temp {
			files, err := a.Manager().CleanTempFiles(args[0], recursive, dryRun)
			if err != nil {
				return err
			}
			removed = append(removed, files...)
		}
		if oldDays >= 0 {
			files, err := a.Manager().CleanOldFiles(args[0], oldDays, recursive, dryRun)
			if err != nil {
				return err
			}
			removed = append(removed, files...)
		}

		verb := "Deleted"
		if dryRun {
			verb = "Would delete"
		}
		fmt.Printf("%s %d file(s)\n", verb, len(removed))
		for _, f := range removed {
			fmt.Printf("  %s\n", f)
		}
		return nil
	},
}

// report command
var reportCmd = &cobra.Command{
	Use:   "report DIRECTORY",
	Short: "Report file statistics for a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		asJSON, _ := cmd.Flags().GetBool("json")
		human, _ := cmd.Flags().GetBool("human")

		a, err := newApp(cmd, "GenerateReport")
		if err != nil {
			return err
		}
		defer a.Close()

		format := fo.ReportText
		if asJSON {
			format = fo.ReportJSON
		}
		out, err := a.Manager().GenerateReport(args[0], recursive, format, human)
		if err != nil {
			return err
		}
		return writeOutput(cmd, out)
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded actions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "ActionHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		if limit < 0 {
			limit = a.Config().HistoryLimit
		}
		entries, err := a.Manager().ActionHistory(limit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No actions recorded.")
			return nil
		}
		for _, e := range entries {
			dest := e.Destination
			if e.Kind == fo.KindDelete {
				dest = "-"
			}
			fmt.Printf("#%d  %-6s  %s  %s -> %s\n",
				e.ID, e.Kind, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Source, dest)
		}
		return nil
	},
}

// undo command
var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Reverse the most recent actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		all, _ := cmd.Flags().GetBool("all")
		if all {
			count = 0 // everything
		}

		a, err := newApp(cmd, "Undo")
		if err != nil {
			return err
		}
		defer a.Close()

		what := fmt.Sprintf("last %d action(s)", count)
		if all {
			what = "all recorded actions"
		}
		if !confirm(cmd, a.Config(), fmt.Sprintf("Undo %s?", what)) {
			fmt.Println("Aborted.")
			return nil
		}

		result, err := a.Manager().Undo(count)
		if err != nil {
			return err
		}

		if len(result.Outcomes) == 0 {
			fmt.Println("Nothing to undo.")
			return nil
		}
		for _, o := range result.Outcomes {
			switch {
			case o.Restored:
				okColor.Printf("restored  %s\n", o.Entry.Source)
			default:
				warnColor.Printf("failed    %s: %v\n", o.Entry.Source, o.Err)
			}
		}
		if !result.Succeeded {
			return fmt.Errorf("no actions could be undone")
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		cfg := config.Default(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return err
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Store: %s\n", cfg.DBPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		for _, key := range []string{"db_path", "log_dir", "default_sort_dimension", "history_limit", "use_colors", "confirm_actions"} {
			value, _ := cfg.Get(key)
			fmt.Printf("%-24s %s\n", key, value)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		value, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Update one configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.WriteToFile(defaults["config_path"], cfg); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

func renderDuplicatesJSON(groups map[string][]string) string {
	out, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(sortCmd)
	sortCmd.Flags().StringP("by", "c", "", "Sort dimension: type, size, or date (default from config)")
	sortCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	sortCmd.Flags().Bool("dry-run", false, "Preview without moving files")

	rootCmd.AddCommand(renameCmd)
	renameCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	renameCmd.Flags().Bool("dry-run", false, "Preview without renaming files")

	rootCmd.AddCommand(moveCmd)
	moveCmd.Flags().StringArray("rule", nil, "Move rule PATTERN=DESTINATION (repeatable)")
	moveCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	moveCmd.Flags().Bool("dry-run", false, "Preview without moving files")

	rootCmd.AddCommand(duplicatesCmd)
	duplicatesCmd.Flags().Bool("json", false, "JSON output")
	duplicatesCmd.Flags().StringP("output", "o", "", "Write output to file instead of stdout")

	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Bool("temp", false, "Delete temporary files")
	cleanCmd.Flags().Int("old", -1, "Delete files older than DAYS days")
	cleanCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	cleanCmd.Flags().Bool("dry-run", false, "Preview without deleting files")
	cleanCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	reportCmd.Flags().Bool("json", false, "JSON output")
	reportCmd.Flags().Bool("human", false, "Human-readable sizes")
	reportCmd.Flags().StringP("output", "o", "", "Write output to file instead of stdout")

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", -1, "Maximum number of actions to show (0 = all, default from config)")

	rootCmd.AddCommand(undoCmd)
	undoCmd.Flags().IntP("count", "n", 1, "Number of actions to undo")
	undoCmd.Flags().Bool("all", false, "Undo all recorded actions")
	undoCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
