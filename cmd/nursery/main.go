// Command nursery runs the plant-nursery simulation: it grows stock day by
// day, sells orders, and saves or restores the nursery state.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:])
	stop()
	exitFunc(code)
}

func run(ctx context.Context, args []string) int {
	root := newRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
