package cmd

import (
	"fmt"

	"github.com/conneroisu/stegtext/internal/services"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a stegtext configuration in a directory",
	Long: `Write a default .stegtext.yml into the directory (the current one when
omitted).

With --wordlists the built-in morse vocabularies are exported to
wordlists/short.txt and wordlists/long.txt and the configuration points at
them, ready for editing. Combine with 'stegtext serve --watch' to pick up
edits without a restart.

Examples:
  stegtext init
  stegtext init ./project --wordlists
  stegtext init --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initWordLists bool
	initForce     bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initWordLists, "wordlists", false, "Export the built-in word lists as editable files")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) > 0 {
		projectDir = args[0]
	}

	result, err := services.NewInitService().InitProject(services.InitOptions{
		ProjectDir: projectDir,
		WordLists:  initWordLists,
		Force:      initForce,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", result.ConfigPath)
	for _, path := range result.WordLists {
		fmt.Fprintf(out, "Created %s\n", path)
	}
	return nil
}
