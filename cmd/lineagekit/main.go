package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineagekit/internal/cli"
	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
)

// Exit codes beyond 0 and 1.
const (
	exitUsage       = 2   // bad arguments, config or input files
	exitUnavailable = 69  // backend unreachable or rate limited (EX_UNAVAILABLE)
	exitInterrupted = 130 // SIGINT
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		code := exitCode(err)
		if code != exitInterrupted {
			fmt.Fprintln(os.Stderr, lkerr.UserMessage(err))
		}
		os.Exit(code)
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	preRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if preRun != nil {
			return preRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// exitCode maps err to the process exit status, so scripts can tell a
// mistyped entity id from an unreachable backend.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	switch lkerr.GetCode(err) {
	case lkerr.ErrCodeInvalidInput, lkerr.ErrCodeInvalidEntity, lkerr.ErrCodeInvalidDirection,
		lkerr.ErrCodeInvalidFormat, lkerr.ErrCodeInvalidConfig, lkerr.ErrCodeFileNotFound:
		return exitUsage
	case lkerr.ErrCodeNetwork, lkerr.ErrCodeTimeout, lkerr.ErrCodeRateLimited:
		return exitUnavailable
	}
	return 1
}
