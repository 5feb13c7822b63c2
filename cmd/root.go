package cmd

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonandersen/backspread/internal/config"
)

var Version = "dev"

var (
	// jsonOutput controls whether output is formatted as JSON
	jsonOutput bool
	envFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "backspread",
	Short: "Put ratio backspread ticket builder",
	Long: `Builds option trade tickets for ratio spreads from live market data.

The ticket command picks the expiration closest to the target DTE, the
OTM contract nearest the target price and the put spread nearest the
target price, then prints the legs with premiums and protection.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(envFile); err != nil {
			return err
		}
		setupLogging(logLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of .env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error); defaults to LOG_LEVEL")
}

// GetJSONMode returns whether JSON output mode is enabled.
func GetJSONMode() bool {
	return jsonOutput
}

// setupLogging sends logs to stderr at the flag level, falling back to
// LOG_LEVEL and then info.
func setupLogging(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
