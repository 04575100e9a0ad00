// Package sqlite persists job records to an embedded SQLite database.
// It is the transactional swap-in for the spreadsheet-file adapter:
// the job number primary key replaces the read-then-verify duplicate
// check with a real constraint, preserving the same store contract.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
	"github.com/shubhamr/rawmat/pkg/domain/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS job_records (
	job_number       TEXT PRIMARY KEY,
	job_type         TEXT NOT NULL,
	job_name         TEXT NOT NULL,
	customer_name    TEXT NOT NULL,
	customer_email   TEXT NOT NULL,
	customer_mobile  TEXT NOT NULL,
	width_in         TEXT NOT NULL,
	bottom_in        TEXT NOT NULL,
	height_in        TEXT NOT NULL,
	gsm              TEXT NOT NULL,
	quantity         INTEGER NOT NULL,
	colors           TEXT NOT NULL,
	web_height_mm    TEXT NOT NULL,
	web_width_mm     TEXT NOT NULL,
	cylinder_mm      TEXT NOT NULL,
	paper_roll_mm    TEXT NOT NULL,
	unit_weight_g    TEXT NOT NULL,
	finish_weight_kg TEXT NOT NULL,
	created_at       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS job_bom_lines (
	job_number TEXT NOT NULL REFERENCES job_records(job_number),
	position   INTEGER NOT NULL,
	material   TEXT NOT NULL,
	quantity   TEXT NOT NULL,
	unit       TEXT NOT NULL,
	PRIMARY KEY (job_number, position)
);`

const colorSeparator = ";"

// RecordStore is the SQLite-backed record store adapter
type RecordStore struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema
func Open(path string) (*RecordStore, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	return &RecordStore{db: db}, nil
}

// Close releases the database handle
func (s *RecordStore) Close() error {
	return s.db.Close()
}

// Verify interface compliance
var _ repositories.RecordStore = (*RecordStore)(nil)

// Append inserts one record and its BOM lines in a single transaction
func (s *RecordStore) Append(ctx context.Context, record *entities.JobRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning append transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO job_records (
			job_number, job_type, job_name, customer_name, customer_email,
			customer_mobile, width_in, bottom_in, height_in, gsm, quantity,
			colors, web_height_mm, web_width_mm, cylinder_mm, paper_roll_mm,
			unit_weight_g, finish_weight_kg, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(record.JobNumber),
		record.Parameters.JobType.String(),
		record.Parameters.JobName,
		record.Parameters.CustomerName,
		record.Parameters.CustomerEmail,
		record.Parameters.CustomerMobile,
		record.Parameters.WidthIn.String(),
		record.Parameters.BottomIn.String(),
		record.Parameters.HeightIn.String(),
		record.Parameters.GSM.String(),
		record.Parameters.Quantity,
		strings.Join(record.Parameters.Colors, colorSeparator),
		record.Layout.WebHeightMM.String(),
		record.Layout.WebWidthMM.String(),
		record.Layout.CylinderMM.String(),
		record.Layout.PaperRollMM.String(),
		record.Layout.UnitWeightG.String(),
		record.Layout.FinishWeightKG.String(),
		record.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("job number %s already recorded: %w",
				record.JobNumber, repositories.ErrDuplicateJobNumber)
		}
		return fmt.Errorf("inserting record %s: %w", record.JobNumber, err)
	}

	for _, line := range record.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO job_bom_lines (job_number, position, material, quantity, unit)
			VALUES (?, ?, ?, ?, ?)`,
			string(record.JobNumber), line.Position, string(line.Material),
			line.Quantity.String(), line.Unit,
		)
		if err != nil {
			return fmt.Errorf("inserting BOM line %s for %s: %w", line.Material, record.JobNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record %s: %w", record.JobNumber, err)
	}
	return nil
}

// ReadAll returns a snapshot of every record in append order
func (s *RecordStore) ReadAll(ctx context.Context) ([]*entities.JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT job_number, job_type, job_name, customer_name, customer_email,
		       customer_mobile, width_in, bottom_in, height_in, gsm, quantity,
		       colors, web_height_mm, web_width_mm, cylinder_mm, paper_roll_mm,
		       unit_weight_g, finish_weight_kg, created_at
		FROM job_records ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []*entities.JobRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	for _, record := range records {
		lines, err := s.readLines(ctx, record.JobNumber)
		if err != nil {
			return nil, err
		}
		record.Lines = lines
	}
	return records, nil
}

func (s *RecordStore) readLines(ctx context.Context, number entities.JobNumber) ([]entities.BOMLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, material, quantity, unit
		FROM job_bom_lines WHERE job_number = ? ORDER BY position`,
		string(number))
	if err != nil {
		return nil, fmt.Errorf("querying BOM lines for %s: %w", number, err)
	}
	defer rows.Close()

	var lines []entities.BOMLine
	for rows.Next() {
		var (
			position    int
			material    string
			quantityStr string
			unit        string
		)
		if err := rows.Scan(&position, &material, &quantityStr, &unit); err != nil {
			return nil, fmt.Errorf("scanning BOM line for %s: %w", number, err)
		}
		quantity, err := decimal.NewFromString(quantityStr)
		if err != nil {
			return nil, fmt.Errorf("invalid BOM quantity %q for %s", quantityStr, number)
		}
		lines = append(lines, entities.BOMLine{
			Material: entities.Material(material),
			Quantity: quantity,
			Unit:     unit,
			Position: position,
		})
	}
	return lines, rows.Err()
}

func scanRecord(rows *sql.Rows) (*entities.JobRecord, error) {
	var (
		number, jobTypeStr, jobName, customerName, customerEmail, customerMobile string
		widthStr, bottomStr, heightStr, gsmStr, colorsStr                        string
		webHeightStr, webWidthStr, cylinderStr, rollStr, unitWStr, finishStr     string
		createdAtStr                                                             string
		quantity                                                                 int64
	)

	err := rows.Scan(&number, &jobTypeStr, &jobName, &customerName, &customerEmail,
		&customerMobile, &widthStr, &bottomStr, &heightStr, &gsmStr, &quantity,
		&colorsStr, &webHeightStr, &webWidthStr, &cylinderStr, &rollStr,
		&unitWStr, &finishStr, &createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	jobType, err := entities.ParseJobType(jobTypeStr)
	if err != nil {
		return nil, err
	}

	parse := func(name, value string) (decimal.Decimal, error) {
		parsed, err := decimal.NewFromString(value)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid %s %q for %s", name, value, number)
		}
		return parsed, nil
	}

	params := entities.JobParameters{
		JobType:        jobType,
		JobName:        jobName,
		CustomerName:   customerName,
		CustomerEmail:  customerEmail,
		CustomerMobile: customerMobile,
		Quantity:       quantity,
	}
	if params.WidthIn, err = parse("width_in", widthStr); err != nil {
		return nil, err
	}
	if params.BottomIn, err = parse("bottom_in", bottomStr); err != nil {
		return nil, err
	}
	if params.HeightIn, err = parse("height_in", heightStr); err != nil {
		return nil, err
	}
	if params.GSM, err = parse("gsm", gsmStr); err != nil {
		return nil, err
	}
	if colorsStr != "" {
		params.Colors = strings.Split(colorsStr, colorSeparator)
	}

	var layout entities.WebLayout
	if layout.WebHeightMM, err = parse("web_height_mm", webHeightStr); err != nil {
		return nil, err
	}
	if layout.WebWidthMM, err = parse("web_width_mm", webWidthStr); err != nil {
		return nil, err
	}
	if layout.CylinderMM, err = parse("cylinder_mm", cylinderStr); err != nil {
		return nil, err
	}
	if layout.PaperRollMM, err = parse("paper_roll_mm", rollStr); err != nil {
		return nil, err
	}
	if layout.UnitWeightG, err = parse("unit_weight_g", unitWStr); err != nil {
		return nil, err
	}
	if layout.FinishWeightKG, err = parse("finish_weight_kg", finishStr); err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q for %s", createdAtStr, number)
	}

	return &entities.JobRecord{
		JobNumber:  entities.JobNumber(number),
		Parameters: params,
		Layout:     layout,
		CreatedAt:  createdAt,
	}, nil
}
