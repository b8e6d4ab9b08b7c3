package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/recipekit/recipekit/internal/version"
	"github.com/recipekit/recipekit/pkg/config"
	"github.com/recipekit/recipekit/pkg/executor"
	"github.com/recipekit/recipekit/pkg/handlers"
	"github.com/recipekit/recipekit/pkg/logging"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
	"github.com/recipekit/recipekit/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errTasksFailed signals a completed run with one or more Failed tasks;
// main maps it to a non-zero exit without printing it as an error.
var errTasksFailed = fmt.Errorf("one or more tasks failed")

const defaultRecipe = "txAdminRecipe.yaml"

var (
	verbosity  int
	dryRun     bool
	outputRoot string

	rootCmd = &cobra.Command{
		Use:   "recipekit [recipe]",
		Short: "Replicate a recipe's folder structure on local disk",
		Long: `recipekit reads a txAdmin-style recipe file describing provisioning
actions (repository clones, file downloads, archive extraction, path
moves and removals) and deterministically replicates the resulting
folder structure under an output directory. Database actions are
recognized but never executed.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE:          runRecipe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Report would-be actions without touching disk or network")
	rootCmd.Flags().StringVarP(&outputRoot, "output", "o", "./output", "Output directory for the replicated tree")

	rootCmd.AddCommand(versionCmd)
}

func runRecipe(cmd *cobra.Command, args []string) error {
	recipePath := defaultRecipe
	if len(args) == 1 {
		recipePath = args[0]
	}

	cfg, err := config.Load(filepath.Dir(recipePath))
	if err != nil {
		return err
	}

	// Parse and schema errors abort here: nothing has been mutated yet,
	// and a document that fails to load is not worth partial execution.
	rec, err := recipe.Load(recipePath)
	if err != nil {
		return err
	}

	ctx, err := run.NewContext(outputRoot, cfg, verbosity > 0, dryRun)
	if err != nil {
		return err
	}

	set := handlers.NewSet(handlers.NewExecGitCloner(cfg), handlers.NewHTTPFetcher(cfg))
	report := executor.New(set, ui.NewConsoleProgress(dryRun)).Run(rec, ctx)

	fmt.Fprint(cmd.OutOrStdout(), ui.RenderReport(report, ui.DetectFormat(os.Stdout)))

	if report.ExitCode() != 0 {
		return errTasksFailed
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("recipekit version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}
