package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/streamweave/console/pkg/cli"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	rootCmd := cli.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
