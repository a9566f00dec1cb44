package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cacheDir string
	verbose  bool
)

// cfg is the single viper instance every QUILLPM_* environment override
// flows through, regardless of which command's flag it backs.
var cfg = viper.New()

var rootCmd = &cobra.Command{
	Use:   "quillpm",
	Short: "Dependency lock and resolution core for Quill projects",
	Long: `quillpm resolves a Quill project's git dependencies into a
reproducible quill.lock, fetching sources on demand and exposing a flat
file list to Quill's code generator.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", defaultCacheDir(), "repository cache root")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cfg.SetEnvPrefix("quillpm")
	cfg.AutomaticEnv()
	bindFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache-dir"))

	rootCmd.AddCommand(newLockCmd())
	rootCmd.AddCommand(newPathsCmd())
}

// bindFlag ties a viper key to a flag, the same cobra+viper combination
// reglet-dev-reglet's and invowk-invowk's root commands use, so a
// QUILLPM_<KEY> environment variable overrides the flag's default without
// overriding an explicit command-line value.
func bindFlag(key string, flag *pflag.Flag) {
	if err := cfg.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// initConfig resolves cache-dir once QUILLPM_CACHE_DIR/--cache-dir have
// both had a chance to apply, and sets the logging level.
func initConfig() error {
	cacheDir = cfg.GetString("cache_dir")

	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	return nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quillpm-cache"
	}
	return home + "/.cache/quillpm"
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
