package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/MixinNetwork/boomerang-go/config"
	"github.com/MixinNetwork/boomerang-go/logging"
)

var logger = logging.MustGetLogger("main")

var configPath string

var mainCmd = &cobra.Command{
	Use:           "boomerang",
	Short:         "Boomerang credential issuer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func loadConfig() (*config.Config, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logging.SetLevel(conf.LogLevel); err != nil {
		return nil, err
	}
	return conf, nil
}

func main() {
	mainCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")

	mainCmd.AddCommand(serveCmd())
	mainCmd.AddCommand(issueCmd())
	mainCmd.AddCommand(selftestCmd())

	if err := mainCmd.Execute(); err != nil {
		logger.Errorf("%+v", err)
		os.Exit(1)
	}
}
