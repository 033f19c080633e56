package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lance13c/todrec/internal/config"
	"github.com/lance13c/todrec/internal/logging"
)

var cfgFile string

// todrecConfig is the loaded configuration; configPath is empty when the
// defaults are in use
var (
	todrecConfig *config.Config
	configPath   string
	configErr    error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "todrec",
	Short: "todrec - record browser interactions as replayable actions",
	Long: `todrec drives a Chrome tab, captures what you do in it and writes each
interaction as a semantic action (click, fill, select, press, select-text)
with a stable CSS selector, ready for test code generation.

Use 'todrec record' to start a session and 'todrec selector' to try the
selector generator on a saved page.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	logging.GetLogger().Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .todrec/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().StringP("project", "p", ".", "project directory")
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	startTime := time.Now()
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	projectDir, _ := rootCmd.PersistentFlags().GetString("project")

	if err := logging.Initialize(projectDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize logging: %v\n", err)
	} else {
		logging.RedirectStandardLog()
	}

	var loader *config.Loader
	if cfgFile != "" {
		loader = config.NewFileLoader(cfgFile)
	} else {
		loader = config.NewLoader(projectDir)
	}

	todrecConfig, configErr = loader.Load()
	if configErr != nil {
		logging.Error("Failed to load config: %v", configErr)
		return
	}
	configPath = loader.Path()

	if level := todrecConfig.Recorder.LogLevel; level != "" {
		if lv, err := logging.ParseLevel(level); err == nil {
			logging.GetLogger().SetLevel(lv)
		} else {
			logging.Warn("ignoring log level: %v", err)
		}
	}
	if verbose {
		logging.GetLogger().SetLevel(logging.DEBUG)
	}

	if configPath != "" {
		logging.Info("Using config %s", configPath)
	}
	logging.Debug("Config init took %v", time.Since(startTime))
}

// loadedConfig returns a copy of the configuration for one command run
func loadedConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	if todrecConfig == nil {
		return config.DefaultConfig(), nil
	}
	cfg := *todrecConfig
	return &cfg, nil
}
