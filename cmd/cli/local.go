package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/gitutil"
	"github.com/sevigo/code-council/internal/wire"
)

var (
	localRepo string
	localBase string
	localHead string
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Review the changes between two revisions of a local repository",
	Long: `Review the changes between two revisions of a local git repository.

The repository's .code-council.yml is read from the working tree.

Examples:
  council-cli local --base main
  council-cli local --repo ../app --base v1.2.0 --head feature/login`,
	Args: cobra.NoArgs,
	RunE: runLocal,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	localCmd.Flags().StringVar(&localRepo, "repo", ".", "Path to the git repository")
	localCmd.Flags().StringVar(&localBase, "base", "main", "Base revision")
	localCmd.Flags().StringVar(&localHead, "head", "HEAD", "Head revision")
	rootCmd.AddCommand(localCmd)
}

func runLocal(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	timer := newStepTimer(3, verbose)

	timer.step("Initializing council")
	council, cleanup, err := wire.InitializeCouncil(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize council: %w", err)
	}
	defer cleanup()
	timer.done()

	timer.step("Computing diff")
	git := gitutil.NewClient(council.Logger)
	repo, err := git.Open(localRepo)
	if err != nil {
		return err
	}
	files, err := git.ChangedFiles(repo, localBase, localHead)
	if err != nil {
		return err
	}

	repoCfg, err := config.LoadRepoConfig(localRepo)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		timer.info("No .code-council.yml, using defaults")
	case err != nil:
		warnColor.Printf("Ignoring repository config: %v\n", err)
	}
	timer.info("%s..%s: %d changed files", localBase, localHead, len(files))
	timer.done()

	timer.step("Running agents")
	report, err := council.Runner.Review(ctx, council.Generators.ForRepo(repoCfg), files, repoCfg)
	if err != nil {
		return fmt.Errorf("failed to run review: %w", err)
	}
	timer.done()

	return emitReport(report)
}
