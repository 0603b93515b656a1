package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onflow/flow-blocksync/cmd/util/cmd/common"
)

// envPrefix prefixes the environment variables overriding flags, e.g.
// BLOCKSYNC_DATADIR for --datadir.
const envPrefix = "BLOCKSYNC"

var (
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "util",
	Short: "utility commands for inspecting block storage",
	// runtime errors are not caused by wrong usage
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := zerolog.ParseLevel(viper.GetString("loglevel"))
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		zerolog.SetGlobalLevel(lvl)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "loglevel", "info", "log level (panic, fatal, error, warn, info, debug)")
	common.InitDataDirFlag(rootCmd)
	common.InitBackendFlag(rootCmd)

	rootCmd.AddCommand(writeGenesisCmd)
	rootCmd.AddCommand(readBlockCmd)
	rootCmd.AddCommand(readAncestorsCmd)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	err := viper.BindPFlags(rootCmd.PersistentFlags())
	if err != nil {
		log.Fatal().Err(err).Msg("could not bind flags")
	}
}
