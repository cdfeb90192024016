// Command rota plans the next days of an hourly rota from a workbook or plan
// file and prints them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runCommand(ctx, newRootCmd()); err != nil {
		stop()
		os.Exit(1)
	}
}
