package main

import (
	"os"

	"docsynth/internal/cli"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := cli.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
