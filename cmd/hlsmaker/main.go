package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"hlsmaker/internal/services"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	cmd.SetArgs(argv)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return services.ExitOK
	}

	var failure *validationFailure
	switch {
	case errors.As(err, &failure):
		for _, verr := range failure.errs {
			fmt.Fprintf(stderr, "error: %s\n", verr.Error())
		}
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "interrupted")
	default:
		fmt.Fprintln(stderr, err)
	}
	return services.ExitCode(err)
}
