package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	appservices "github.com/shubhamr/rawmat/pkg/application/services"
	"github.com/shubhamr/rawmat/pkg/domain/entities"
	"github.com/shubhamr/rawmat/pkg/domain/repositories"
	"github.com/shubhamr/rawmat/pkg/domain/services"
	"github.com/shubhamr/rawmat/pkg/infrastructure/config"
	"github.com/shubhamr/rawmat/pkg/infrastructure/repositories/csv"
	"github.com/shubhamr/rawmat/pkg/infrastructure/repositories/memory"
	"github.com/shubhamr/rawmat/pkg/infrastructure/repositories/sheet"
	"github.com/shubhamr/rawmat/pkg/infrastructure/repositories/sqlite"
	"github.com/shubhamr/rawmat/pkg/interfaces/cli/output"
)

// Config holds configuration for the estimate command. The numeric
// dimensions arrive as raw flag strings; parsing them is part of the
// input boundary and reports type mismatches like any other
// validation failure.
type Config struct {
	JobType        string
	JobName        string
	CustomerName   string
	CustomerEmail  string
	CustomerMobile string
	Width          string
	Bottom         string
	Height         string
	GSM            string
	Quantity       int64
	Colors         string
	DryRun         bool
	History        bool
	Format         string
	Help           bool
}

// EstimateCommand handles the estimation workflow from the CLI
type EstimateCommand struct {
	config Config
}

// NewEstimateCommand creates a new estimate command with the given configuration
func NewEstimateCommand(config Config) *EstimateCommand {
	return &EstimateCommand{config: config}
}

// Execute runs the estimate command
func (c *EstimateCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	appCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if c.config.History {
		return NewHistoryCommand(c.config, appCfg).Execute(ctx)
	}

	params, err := c.parseParameters()
	if err != nil {
		return err
	}

	service, closeStore, err := buildService(appCfg)
	if err != nil {
		return err
	}
	defer closeStore()

	outputCfg := output.Config{Format: c.config.Format}

	if c.config.DryRun {
		layout, lines, err := service.Preview(ctx, params)
		if err != nil {
			return err
		}
		return output.RenderEstimate(os.Stdout, layout, lines, outputCfg)
	}

	record, err := service.EstimateAndRecord(ctx, params)
	if err != nil {
		return err
	}
	return output.RenderRecord(os.Stdout, record, outputCfg)
}

// parseParameters converts the raw flag values into JobParameters
func (c *EstimateCommand) parseParameters() (entities.JobParameters, error) {
	jobType, err := entities.ParseJobType(c.config.JobType)
	if err != nil {
		return entities.JobParameters{}, err
	}

	width, err := services.ParseDecimalField("width", c.config.Width)
	if err != nil {
		return entities.JobParameters{}, err
	}
	bottom, err := services.ParseDecimalField("bottom", c.config.Bottom)
	if err != nil {
		return entities.JobParameters{}, err
	}
	height, err := services.ParseDecimalField("height", c.config.Height)
	if err != nil {
		return entities.JobParameters{}, err
	}
	gsm, err := services.ParseDecimalField("gsm", c.config.GSM)
	if err != nil {
		return entities.JobParameters{}, err
	}

	var colors []string
	if c.config.Colors != "" {
		for _, color := range strings.Split(c.config.Colors, ",") {
			colors = append(colors, strings.TrimSpace(color))
		}
	}

	return entities.JobParameters{
		JobType:        jobType,
		JobName:        c.config.JobName,
		CustomerName:   c.config.CustomerName,
		CustomerEmail:  c.config.CustomerEmail,
		CustomerMobile: c.config.CustomerMobile,
		WidthIn:        width,
		BottomIn:       bottom,
		HeightIn:       height,
		GSM:            gsm,
		Quantity:       c.config.Quantity,
		Colors:         colors,
	}, nil
}

// buildService assembles the estimation service from configuration.
// The returned closer releases the store when it holds resources.
func buildService(appCfg *config.Config) (*appservices.EstimateService, func() error, error) {
	if appCfg.Rules.MachinesCSV == "" {
		return nil, nil, fmt.Errorf("RAWMAT_MACHINES_CSV is not configured; the machine size table is required")
	}

	loader := csv.NewLoader()
	machines, err := loader.LoadMachineTable(appCfg.Rules.MachinesCSV)
	if err != nil {
		return nil, nil, err
	}

	rules := entities.DefaultMaterialRules()
	if appCfg.Rules.RulesCSV != "" {
		if rules, err = loader.LoadMaterialRules(appCfg.Rules.RulesCSV); err != nil {
			return nil, nil, err
		}
	}

	estimator, err := services.NewEstimator(machines, rules)
	if err != nil {
		return nil, nil, err
	}
	validator := services.NewValidator(entities.NewRangeTable(entities.DefaultValidationRanges()))

	store, closeStore, err := buildStore(appCfg)
	if err != nil {
		return nil, nil, err
	}

	service := appservices.NewEstimateServiceWithConfig(validator, estimator, store, appservices.EstimateConfig{
		NumberFormat: services.NumberFormat{SequenceWidth: appCfg.Numbering.SequenceWidth},
	})
	return service, closeStore, nil
}

// buildStore opens the configured record store backend
func buildStore(appCfg *config.Config) (repositories.RecordStore, func() error, error) {
	noop := func() error { return nil }

	switch appCfg.Store.Driver {
	case "sheet":
		if appCfg.Store.BackupDir != "" {
			return sheet.NewRecordStoreWithBackup(appCfg.Store.Path, appCfg.Store.BackupDir), noop, nil
		}
		return sheet.NewRecordStore(appCfg.Store.Path), noop, nil
	case "sqlite":
		store, err := sqlite.Open(appCfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "memory":
		return memory.NewRecordStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", appCfg.Store.Driver)
	}
}

// showHelp displays the help message
func (c *EstimateCommand) showHelp() {
	fmt.Printf(`Raw Material Estimator - BOM estimation for paper bag jobs

USAGE:
    rawmat -type <job type> -width <in> -bottom <in> -height <in> -gsm <n> -quantity <n> \
           -customer <name> -email <addr> -mobile <number> [options]
    rawmat -history                        # List recorded jobs

OPTIONS:
    -type <t>         Job type: SOS, "Carry Bag", V-Bottom, "Thumb Cut", "Square Cut"
    -name <s>         Job name (optional)
    -customer <s>     Customer name
    -email <s>        Customer email
    -mobile <s>       Customer mobile number
    -width <in>       Bag width in inches
    -bottom <in>      Bag bottom gusset in inches
    -height <in>      Bag height in inches
    -gsm <n>          Paper grammage
    -quantity <n>     Number of bags
    -colors <list>    Comma separated printing colors, e.g. "Red,Blue"
    -dry-run          Estimate without recording a job
    -history          List every recorded job
    -format <fmt>     Output format: text, json (default: text)
    -help             Show this help message

ENVIRONMENT (also read from a .env file):
    RAWMAT_STORE_DRIVER     sheet | sqlite | memory (default: sheet)
    RAWMAT_STORE_PATH       Backing file of the record store (default: jobs.csv)
    RAWMAT_BACKUP_DIR       Mirror directory for the sheet store (optional)
    RAWMAT_MACHINES_CSV     Cylinder and paper roll size table (required)
    RAWMAT_RULES_CSV        Material rules table override (optional)
    RAWMAT_SEQUENCE_WIDTH   Job number zero padding (default: 7)

EXAMPLES:
    # Record an estimation for a printed SOS bag run
    rawmat -type SOS -width 10 -bottom 5 -height 12 -gsm 100 -quantity 10000 \
           -customer "Acme Packaging" -email buyer@acme.example -mobile 9876543210 \
           -colors "Red,Black"

    # Preview without persisting
    rawmat -type "Carry Bag" -width 12 -bottom 6 -height 16 -gsm 120 -quantity 25000 \
           -customer "Acme Packaging" -email buyer@acme.example -mobile 9876543210 -dry-run

    # Show history as JSON
    rawmat -history -format json
`)
}
