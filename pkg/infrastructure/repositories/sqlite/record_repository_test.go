package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
	"github.com/shubhamr/rawmat/pkg/domain/repositories"
)

func openTestStore(t *testing.T) *RecordStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(t *testing.T, number entities.JobNumber) *entities.JobRecord {
	t.Helper()
	params := entities.JobParameters{
		JobType:        entities.VBottom,
		JobName:        "Grocery bags",
		CustomerName:   "Acme Packaging",
		CustomerEmail:  "buyer@acme.example",
		CustomerMobile: "9876543210",
		WidthIn:        decimal.RequireFromString("10"),
		BottomIn:       decimal.RequireFromString("5"),
		HeightIn:       decimal.RequireFromString("12"),
		GSM:            decimal.RequireFromString("100"),
		Quantity:       10000,
		Colors:         []string{"Red", "Black"},
	}
	layout := entities.WebLayout{
		WebHeightMM:    decimal.RequireFromString("393.7"),
		WebWidthMM:     decimal.RequireFromString("787.4"),
		CylinderMM:     decimal.NewFromInt(400),
		PaperRollMM:    decimal.NewFromInt(790),
		UnitWeightG:    decimal.RequireFromString("31.6"),
		FinishWeightKG: decimal.NewFromInt(316),
	}

	paper, err := entities.NewBOMLine(entities.MaterialPaper, decimal.RequireFromString("336.17"), "kg", 1)
	require.NoError(t, err)
	ink, err := entities.NewBOMLine(entities.MaterialInk, decimal.RequireFromString("3.16"), "kg", 4)
	require.NoError(t, err)

	record, err := entities.NewJobRecord(number, params, layout,
		[]entities.BOMLine{*paper, *ink},
		time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	return record
}

func TestRecordStore_AppendRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	original := sampleRecord(t, "25-26_0000001")
	require.NoError(t, store.Append(ctx, original))

	records, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, original.JobNumber, got.JobNumber)
	assert.Equal(t, entities.VBottom, got.Parameters.JobType)
	assert.Equal(t, original.Parameters.CustomerMobile, got.Parameters.CustomerMobile)
	assert.True(t, got.Parameters.GSM.Equal(original.Parameters.GSM))
	assert.Equal(t, original.Parameters.Colors, got.Parameters.Colors)
	assert.True(t, got.Layout.UnitWeightG.Equal(original.Layout.UnitWeightG))
	assert.True(t, got.CreatedAt.Equal(original.CreatedAt))

	require.Len(t, got.Lines, 2)
	assert.Equal(t, entities.MaterialPaper, got.Lines[0].Material)
	assert.Equal(t, 1, got.Lines[0].Position)
	assert.Equal(t, entities.MaterialInk, got.Lines[1].Material)
	assert.True(t, got.Lines[1].Quantity.Equal(decimal.RequireFromString("3.16")))
}

func TestRecordStore_ReadAllPreservesAppendOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	numbers := []entities.JobNumber{"25-26_0000003", "25-26_0000001", "25-26_0000002"}
	for _, number := range numbers {
		require.NoError(t, store.Append(ctx, sampleRecord(t, number)))
	}

	records, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, number := range numbers {
		assert.Equal(t, number, records[i].JobNumber)
	}
}

func TestRecordStore_RejectsDuplicateJobNumber(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleRecord(t, "25-26_0000001")))

	err := store.Append(ctx, sampleRecord(t, "25-26_0000001"))
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrDuplicateJobNumber)
}

func TestRecordStore_DuplicateLeavesNoPartialRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleRecord(t, "25-26_0000001")))
	require.Error(t, store.Append(ctx, sampleRecord(t, "25-26_0000001")))

	// The failed transaction must not leave orphaned BOM lines.
	records, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Len(t, records[0].Lines, 2)
}

func TestRecordStore_ReopenSeesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, sampleRecord(t, "25-26_0000001")))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entities.JobNumber("25-26_0000001"), records[0].JobNumber)
}
