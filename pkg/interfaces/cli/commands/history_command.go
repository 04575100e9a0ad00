package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/shubhamr/rawmat/pkg/infrastructure/config"
	"github.com/shubhamr/rawmat/pkg/interfaces/cli/output"
)

// HistoryCommand lists every recorded job
type HistoryCommand struct {
	config Config
	appCfg *config.Config
}

// NewHistoryCommand creates a new history command
func NewHistoryCommand(cfg Config, appCfg *config.Config) *HistoryCommand {
	return &HistoryCommand{config: cfg, appCfg: appCfg}
}

// Execute runs the history command
func (c *HistoryCommand) Execute(ctx context.Context) error {
	store, closeStore, err := buildStore(c.appCfg)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("reading record store: %w", err)
	}

	return output.RenderHistory(os.Stdout, records, output.Config{Format: c.config.Format})
}
