package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lance13c/todrec/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a todrec config in the project",
	Long: `Write .todrec/config.yaml with the default settings into the project
directory (--project). Edit it while 'todrec record' runs: show_highlight
is applied live.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite an existing config")
}

func runInit(cmd *cobra.Command, args []string) error {
	projectDir, _ := rootCmd.PersistentFlags().GetString("project")
	force, _ := cmd.Flags().GetBool("force")

	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory: %w", err)
	}

	loader := config.NewLoader(absDir)
	path := loader.GetConfigPath()
	if loader.IsInitialized() && !force {
		return fmt.Errorf("a todrec config already applies to %s; use --force to write %s", absDir, path)
	}

	if err := loader.Save(config.DefaultConfig(), path); err != nil {
		return err
	}

	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", ok.Render("✓"), path)
	return nil
}
