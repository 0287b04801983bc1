package main

import (
	"fmt"

	"github.com/anakievah/pdb/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigResponse is the response for config show.
type ConfigResponse struct {
	Root       string `json:"root"`
	MetaFile   string `json:"meta_file"`
	DataDir    string `json:"data_dir"`
	LogLevel   string `json:"log_level"`
	LogFormat  string `json:"log_format"`
	Timing     bool   `json:"timing"`
	GlobalPath string `json:"global_config"`
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long: `Inspect the effective configuration.

Settings come from, in increasing precedence:
  built-in defaults
  the global config file ($XDG_CONFIG_HOME/pdb/config.yml)
  a .env file in the current directory
  PDB_* environment variables (PDB_ROOT, PDB_META_FILE, PDB_DATA_DIR,
    PDB_LOG_LEVEL, PDB_LOG_FORMAT, PDB_TIMING)
  command-line flags`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if humanOutput {
		// Same layout as the global config file
		data, err := yaml.Marshal(cfg)
		if err != nil {
			exitWithError(ExitError, "encoding config: %v", err)
		}
		fmt.Printf("# %s\n%s", config.GlobalConfigPath(), data)
		return nil
	}

	outputJSON(ConfigResponse{
		Root:       cfg.Root,
		MetaFile:   cfg.MetaFile,
		DataDir:    cfg.DataDir,
		LogLevel:   cfg.LogLevel,
		LogFormat:  cfg.LogFormat,
		Timing:     cfg.Timing,
		GlobalPath: config.GlobalConfigPath(),
	})
	return nil
}
