package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/tidyup/internal/version"
	"github.com/arthur-debert/tidyup/pkg/config"
	"github.com/arthur-debert/tidyup/pkg/filesystem"
	"github.com/arthur-debert/tidyup/pkg/logging"
	"github.com/arthur-debert/tidyup/pkg/organizer"
	"github.com/arthur-debert/tidyup/pkg/rules"
	"github.com/arthur-debert/tidyup/pkg/types"
)

var (
	verbosity        int
	dryRun           bool
	inPlace          bool
	archiveOlderThan int
	minSizeMB        int
	datePrefixing    string
	dedupEnabled     bool
	deleteDuplicates bool
	assumeYes        bool
	configPath       string
	rulesPath        string

	rootCmd = &cobra.Command{
		Use:   "tidyup <directory>",
		Short: "Organize the files in a directory by their types",
		Long: `tidyup runs a one-shot, non-recursive pass over a directory's immediate
children, moving each file into a category folder resolved from its extension
or from prioritized custom rules. It can deduplicate by content hash, archive
old files, and prefix filenames with dates.`,
		Example: "  tidyup ~/Downloads --archive-older-than 30 --dedup",
		Args:    cobra.ExactArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runOrganize,
	}
)

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Simulate the organization without making changes")
	rootCmd.Flags().BoolVar(&inPlace, "in-place", false, "Apply rules without re-categorizing files (useful for pre-organized folders)")
	rootCmd.Flags().IntVar(&archiveOlderThan, "archive-older-than", 0, "Archive files older than the given number of days")
	rootCmd.Flags().IntVar(&minSizeMB, "min-size-mb", 0, "Only organize files larger than the given size in MB")
	rootCmd.Flags().StringVar(&datePrefixing, "date-prefixing", "", "Prefix files with their 'modified' or 'created' date (YYYY-MM-DD_)")
	rootCmd.Flags().BoolVar(&dedupEnabled, "dedup", false, "Enable deduplication based on file content hash")
	rootCmd.Flags().BoolVar(&deleteDuplicates, "delete-duplicates", false, "Delete duplicate files instead of skipping them (use with --dedup)")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the delete-duplicates confirmation prompt")
	rootCmd.Flags().StringVar(&configPath, "config", "config.json", "Path to the extension-to-category map")
	rootCmd.Flags().StringVar(&rulesPath, "rules", "rules.json", "Path to the custom rule file")

	rootCmd.AddCommand(versionCmd)
}

func runOrganize(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger("cmd")

	// A missing or malformed category map is fatal before any file is touched.
	categories, err := config.LoadCategoryMap(configPath)
	if err != nil {
		return err
	}

	fsys := filesystem.NewOS()
	ruleList := rules.Load(fsys, rulesPath)

	opts := types.Options{
		SourceDir:            args[0],
		DryRun:               dryRun,
		InPlace:              inPlace,
		MinSizeMB:            minSizeMB,
		ArchiveOlderThanDays: archiveOlderThan,
		DatePrefix:           datePrefixing,
		Dedup:                dedupEnabled,
		DeleteDuplicates:     deleteDuplicates,
	}

	// Destructive deduplication gets one synchronous confirmation gate
	// before the pass starts; declining downgrades to skip-duplicates.
	if opts.Dedup && opts.DeleteDuplicates && !assumeYes && !opts.DryRun {
		confirmed, err := pterm.DefaultInteractiveConfirm.
			WithDefaultValue(false).
			Show("Deleting duplicate files is irreversible. Proceed?")
		if err != nil || !confirmed {
			opts.DeleteDuplicates = false
			logger.Info().Msg("Duplicate deletion disabled by user, duplicates will be skipped instead")
		} else {
			logger.Info().Msg("Duplicate deletion confirmed")
		}
	}

	org, err := organizer.New(fsys, opts, categories, ruleList)
	if err != nil {
		return err
	}

	runStats, err := org.Run()
	if err != nil {
		return err
	}

	report := runStats.Report()
	log.Info().Msg(report)

	pterm.DefaultSection.Println("Run summary")
	fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tidyup version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}
