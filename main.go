package main

import (
	"fmt"
	"os"

	"github.com/oakwood-commons/trainctl/cmd"
	"github.com/oakwood-commons/trainctl/pkg/logger"
	"github.com/oakwood-commons/trainctl/pkg/settings"
)

func main() {
	run := settings.NewCliParams()
	exitCode := 0
	if err := cmd.Execute(run); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitCode = 1
	}

	logger.Sync()
	if err := run.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "close log file:", err)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
