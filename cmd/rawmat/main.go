// Package main is the entrypoint of the raw material estimator CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shubhamr/rawmat/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		jobType  = flag.String("type", "SOS", "Job type: SOS, Carry Bag, V-Bottom, Thumb Cut, Square Cut")
		jobName  = flag.String("name", "", "Job name (optional)")
		customer = flag.String("customer", "", "Customer name")
		email    = flag.String("email", "", "Customer email address")
		mobile   = flag.String("mobile", "", "Customer mobile number")
		width    = flag.String("width", "", "Bag width in inches")
		bottom   = flag.String("bottom", "", "Bag bottom gusset in inches")
		height   = flag.String("height", "", "Bag height in inches")
		gsm      = flag.String("gsm", "", "Paper grammage")
		quantity = flag.Int64("quantity", 0, "Number of bags")
		colors   = flag.String("colors", "", "Comma separated printing colors")
		dryRun   = flag.Bool("dry-run", false, "Estimate without recording a job")
		history  = flag.Bool("history", false, "List every recorded job")
		format   = flag.String("format", "text", "Output format: text, json")
		help     = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	// Create command configuration
	config := commands.Config{
		JobType:        *jobType,
		JobName:        *jobName,
		CustomerName:   *customer,
		CustomerEmail:  *email,
		CustomerMobile: *mobile,
		Width:          *width,
		Bottom:         *bottom,
		Height:         *height,
		GSM:            *gsm,
		Quantity:       *quantity,
		Colors:         *colors,
		DryRun:         *dryRun,
		History:        *history,
		Format:         *format,
		Help:           *help,
	}

	// Create and execute command
	cmd := commands.NewEstimateCommand(config)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
