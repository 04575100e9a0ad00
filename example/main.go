package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	appservices "github.com/shubhamr/rawmat/pkg/application/services"
	"github.com/shubhamr/rawmat/pkg/domain/entities"
	"github.com/shubhamr/rawmat/pkg/domain/services"
	"github.com/shubhamr/rawmat/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	// Machine sizes that would normally come from the machines CSV
	machines, err := entities.NewMachineTable(
		[]decimal.Decimal{
			decimal.NewFromInt(350),
			decimal.NewFromInt(400),
			decimal.NewFromInt(450),
		},
		[]decimal.Decimal{
			decimal.NewFromInt(700),
			decimal.NewFromInt(760),
			decimal.NewFromInt(790),
			decimal.NewFromInt(800),
		},
	)
	if err != nil {
		fmt.Printf("❌ Machine table: %v\n", err)
		return
	}

	estimator, err := services.NewEstimator(machines, entities.DefaultMaterialRules())
	if err != nil {
		fmt.Printf("❌ Estimator: %v\n", err)
		return
	}
	validator := services.NewValidator(entities.NewRangeTable(entities.DefaultValidationRanges()))

	store := memory.NewRecordStore()
	service := appservices.NewEstimateService(validator, estimator, store)

	params := entities.JobParameters{
		JobType:        entities.SOS,
		JobName:        "Festival bags",
		CustomerName:   "Acme Packaging",
		CustomerEmail:  "buyer@acme.example",
		CustomerMobile: "9876543210",
		WidthIn:        decimal.NewFromInt(10),
		BottomIn:       decimal.NewFromInt(5),
		HeightIn:       decimal.NewFromInt(12),
		GSM:            decimal.NewFromInt(100),
		Quantity:       10000,
		Colors:         []string{"Red", "Black"},
	}

	fmt.Println("📦 Estimating raw material for a printed SOS bag run...")
	record, err := service.EstimateAndRecord(ctx, params)
	if err != nil {
		fmt.Printf("❌ Estimation failed: %v\n", err)
		return
	}

	fmt.Printf("Job Number: %s\n", record.JobNumber)
	fmt.Printf("Cylinder: %s mm, Paper Roll: %s mm\n",
		record.Layout.CylinderMM, record.Layout.PaperRollMM)
	for _, line := range record.Lines {
		fmt.Printf("  %-12s %10s %s\n", line.Material, line.Quantity, line.Unit)
	}

	// A second run gets the next sequential number
	record2, err := service.EstimateAndRecord(ctx, params)
	if err != nil {
		fmt.Printf("❌ Estimation failed: %v\n", err)
		return
	}
	fmt.Printf("Next Job Number: %s\n", record2.JobNumber)
}
