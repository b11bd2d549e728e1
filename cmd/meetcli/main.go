package main

import (
	"os"

	"github.com/xiaot623/meetagent/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
