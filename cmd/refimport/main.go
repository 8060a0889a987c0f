package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"skyline/opsboard/internal/logging"
	"skyline/opsboard/internal/services"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitBlocked = 2
)

func main() {
	root := &cobra.Command{
		Use:           "refimport",
		Short:         "Validate and commit customer and aircraft reference data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd(), newCommitCmd(), newRulesCmd(), newTokenCmd())

	err := root.ExecuteContext(context.Background())
	logging.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, services.ErrCommitBlocked) {
			os.Exit(exitBlocked)
		}
		os.Exit(exitFailure)
	}
	os.Exit(exitOK)
}
