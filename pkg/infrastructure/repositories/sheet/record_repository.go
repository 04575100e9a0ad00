// Package sheet persists job records to a shared spreadsheet file,
// one CSV row per record. The format has no native locking, so
// consistency comes from the read-verify-rewrite-rename discipline:
// every append re-reads the sheet, rejects duplicate job numbers, and
// replaces the file atomically via a rename. Writers within one
// process are serialized by a store mutex; across processes a lock
// file taken for the read-verify-rename window keeps a second writer
// from rewriting the sheet over an append it never saw.
package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
	"github.com/shubhamr/rawmat/pkg/domain/repositories"
)

var header = []string{
	"job_number", "job_type", "job_name", "customer_name", "customer_email",
	"customer_mobile", "width_in", "bottom_in", "height_in", "gsm", "quantity",
	"colors", "web_height_mm", "web_width_mm", "cylinder_mm", "paper_roll_mm",
	"unit_weight_g", "finish_weight_kg", "bom", "created_at",
}

const (
	listSeparator = ";"
	bomFieldSep   = "|"
	timeLayout    = time.RFC3339Nano

	lockRetryInterval = 10 * time.Millisecond
	lockStaleAfter    = 30 * time.Second
)

// RecordStore is the spreadsheet-file record store adapter. The file
// handle is acquired per call and always released before returning.
type RecordStore struct {
	path      string
	backupDir string

	// mu serializes appends within this process; without it two
	// writers can pass the duplicate verify on the same snapshot and
	// the later rename drops the earlier record.
	mu sync.Mutex
}

// NewRecordStore creates a store over the sheet file at path. The
// file is created on first append; a missing file reads as empty.
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

// NewRecordStoreWithBackup additionally mirrors the sheet into
// backupDir after every successful append
func NewRecordStoreWithBackup(path, backupDir string) *RecordStore {
	return &RecordStore{path: path, backupDir: backupDir}
}

// Verify interface compliance
var _ repositories.RecordStore = (*RecordStore)(nil)

// ReadAll returns a snapshot of every record in the sheet
func (s *RecordStore) ReadAll(ctx context.Context) ([]*entities.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.readSheet()
}

// Append durably adds one record. The sheet is rewritten to a
// temporary file and renamed into place, so a failed append leaves
// the existing records untouched.
func (s *RecordStore) Append(ctx context.Context, record *entities.JobRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquireLock(ctx); err != nil {
		return err
	}
	defer s.releaseLock()

	// Final existence check immediately before the write. This is
	// the duplicate safety net for concurrent number generation.
	existing, err := s.readSheet()
	if err != nil {
		return err
	}
	for _, rec := range existing {
		if rec.JobNumber == record.JobNumber {
			return fmt.Errorf("job number %s already recorded: %w",
				record.JobNumber, repositories.ErrDuplicateJobNumber)
		}
	}

	row, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", record.JobNumber, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".rawmat-sheet-*")
	if err != nil {
		return fmt.Errorf("creating temporary sheet in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if err := writeSheet(tmp, existing, row); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing sheet %s: %w", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing sheet %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing sheet %s: %w", s.path, err)
	}

	// Mirror before the rename: if the backup copy cannot be kept,
	// the append fails with the record visible nowhere.
	if s.backupDir != "" {
		if err := s.writeBackup(tmpName); err != nil {
			os.Remove(tmpName)
			return err
		}
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing sheet %s: %w", s.path, err)
	}
	return nil
}

// acquireLock takes the cross-process append lock: a sibling lock
// file created with O_EXCL. Contenders poll until the holder removes
// it; a lock older than lockStaleAfter is treated as left behind by a
// crashed writer and broken.
func (s *RecordStore) acquireLock(ctx context.Context) error {
	lockPath := s.path + ".lock"
	for {
		lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return lock.Close()
		}
		if !os.IsExist(err) {
			return fmt.Errorf("acquiring sheet lock %s: %w", lockPath, err)
		}
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
			os.Remove(lockPath)
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (s *RecordStore) releaseLock() {
	os.Remove(s.path + ".lock")
}

func (s *RecordStore) readSheet() ([]*entities.JobRecord, error) {
	file, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening sheet %s: %w", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if !headerMatches(rows[0]) {
		return nil, fmt.Errorf("sheet %s header mismatch. Expected: %v, Got: %v", s.path, header, rows[0])
	}

	var records []*entities.JobRecord
	for i, row := range rows[1:] {
		record, err := decodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", s.path, i+2, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *RecordStore) writeBackup(from string) error {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return fmt.Errorf("creating backup directory %s: %w", s.backupDir, err)
	}

	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("opening sheet copy for backup: %w", err)
	}
	defer src.Close()

	backupPath := filepath.Join(s.backupDir, filepath.Base(s.path))
	dst, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("creating backup %s: %w", backupPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(backupPath)
		return fmt.Errorf("writing backup %s: %w", backupPath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("closing backup %s: %w", backupPath, err)
	}
	return nil
}

func writeSheet(w io.Writer, existing []*entities.JobRecord, newRow []string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, record := range existing {
		row, err := encodeRecord(record)
		if err != nil {
			return err
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	if err := writer.Write(newRow); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func headerMatches(actual []string) bool {
	if len(actual) != len(header) {
		return false
	}
	for i, col := range header {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}
	return true
}

func encodeRecord(record *entities.JobRecord) ([]string, error) {
	for _, color := range record.Parameters.Colors {
		if strings.ContainsAny(color, listSeparator+bomFieldSep) {
			return nil, fmt.Errorf("color %q contains a reserved separator", color)
		}
	}

	bomParts := make([]string, len(record.Lines))
	for i, line := range record.Lines {
		if strings.ContainsAny(string(line.Material), listSeparator+bomFieldSep) ||
			strings.ContainsAny(line.Unit, listSeparator+bomFieldSep) {
			return nil, fmt.Errorf("BOM line %s contains a reserved separator", line.Material)
		}
		bomParts[i] = strings.Join([]string{
			strconv.Itoa(line.Position),
			string(line.Material),
			line.Quantity.String(),
			line.Unit,
		}, bomFieldSep)
	}

	return []string{
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
		strconv.FormatInt(record.Parameters.Quantity, 10),
		strings.Join(record.Parameters.Colors, listSeparator),
		record.Layout.WebHeightMM.String(),
		record.Layout.WebWidthMM.String(),
		record.Layout.CylinderMM.String(),
		record.Layout.PaperRollMM.String(),
		record.Layout.UnitWeightG.String(),
		record.Layout.FinishWeightKG.String(),
		strings.Join(bomParts, listSeparator),
		record.CreatedAt.Format(timeLayout),
	}, nil
}

func decodeRecord(row []string) (*entities.JobRecord, error) {
	if len(row) != len(header) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(header), len(row))
	}

	jobType, err := entities.ParseJobType(row[1])
	if err != nil {
		return nil, err
	}

	widthIn, err := parseDecimalColumn("width_in", row[6])
	if err != nil {
		return nil, err
	}
	bottomIn, err := parseDecimalColumn("bottom_in", row[7])
	if err != nil {
		return nil, err
	}
	heightIn, err := parseDecimalColumn("height_in", row[8])
	if err != nil {
		return nil, err
	}
	gsm, err := parseDecimalColumn("gsm", row[9])
	if err != nil {
		return nil, err
	}
	quantity, err := strconv.ParseInt(row[10], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %s", row[10])
	}

	var colors []string
	if row[11] != "" {
		colors = strings.Split(row[11], listSeparator)
	}

	layout := entities.WebLayout{}
	layoutColumns := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"web_height_mm", row[12], &layout.WebHeightMM},
		{"web_width_mm", row[13], &layout.WebWidthMM},
		{"cylinder_mm", row[14], &layout.CylinderMM},
		{"paper_roll_mm", row[15], &layout.PaperRollMM},
		{"unit_weight_g", row[16], &layout.UnitWeightG},
		{"finish_weight_kg", row[17], &layout.FinishWeightKG},
	}
	for _, col := range layoutColumns {
		value, err := parseDecimalColumn(col.name, col.value)
		if err != nil {
			return nil, err
		}
		*col.dst = value
	}

	lines, err := decodeBOM(row[18])
	if err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(timeLayout, row[19])
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %s", row[19])
	}

	params := entities.JobParameters{
		JobType:        jobType,
		JobName:        row[2],
		CustomerName:   row[3],
		CustomerEmail:  row[4],
		CustomerMobile: row[5],
		WidthIn:        widthIn,
		BottomIn:       bottomIn,
		HeightIn:       heightIn,
		GSM:            gsm,
		Quantity:       quantity,
		Colors:         colors,
	}

	return entities.NewJobRecord(entities.JobNumber(row[0]), params, layout, lines, createdAt)
}

func decodeBOM(encoded string) ([]entities.BOMLine, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty BOM column")
	}

	parts := strings.Split(encoded, listSeparator)
	lines := make([]entities.BOMLine, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(part, bomFieldSep)
		if len(fields) != 4 {
			return nil, fmt.Errorf("malformed BOM segment: %q", part)
		}
		position, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid BOM position: %s", fields[0])
		}
		quantity, err := parseDecimalColumn("bom quantity", fields[2])
		if err != nil {
			return nil, err
		}
		line, err := entities.NewBOMLine(entities.Material(fields[1]), quantity, fields[3], position)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

func parseDecimalColumn(name, value string) (decimal.Decimal, error) {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", name, value)
	}
	return parsed, nil
}
