package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	// Format is "text" or "json"
	Format string
}

// RenderRecord writes one job record in the configured format
func RenderRecord(w io.Writer, record *entities.JobRecord, config Config) error {
	switch config.Format {
	case "", "text":
		renderRecordText(w, record)
		return nil
	case "json":
		return renderJSON(w, recordToDTO(record))
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// RenderEstimate writes a layout and BOM without a job number, for
// preview runs that persist nothing
func RenderEstimate(w io.Writer, layout entities.WebLayout, lines []entities.BOMLine, config Config) error {
	switch config.Format {
	case "", "text":
		renderLayoutText(w, layout)
		renderBOMText(w, lines)
		return nil
	case "json":
		return renderJSON(w, estimateDTO{
			Layout: layoutToDTO(layout),
			BOM:    linesToDTO(lines),
		})
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// RenderHistory writes every record as a summary table or JSON array
func RenderHistory(w io.Writer, records []*entities.JobRecord, config Config) error {
	switch config.Format {
	case "", "text":
		renderHistoryText(w, records)
		return nil
	case "json":
		dtos := make([]recordDTO, len(records))
		for i, record := range records {
			dtos[i] = recordToDTO(record)
		}
		return renderJSON(w, dtos)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func renderRecordText(w io.Writer, record *entities.JobRecord) {
	fmt.Fprintf(w, "📋 Job %s\n", record.JobNumber)
	fmt.Fprintf(w, "===============================\n\n")
	fmt.Fprintf(w, "Created:   %s\n", record.CreatedAt.Format("02/01/2006 15:04:05"))
	fmt.Fprintf(w, "Job Type:  %s\n", record.Parameters.JobType)
	if record.Parameters.JobName != "" {
		fmt.Fprintf(w, "Job Name:  %s\n", record.Parameters.JobName)
	}
	fmt.Fprintf(w, "Customer:  %s <%s> %s\n",
		record.Parameters.CustomerName,
		record.Parameters.CustomerEmail,
		record.Parameters.CustomerMobile)
	fmt.Fprintf(w, "Bag:       %s x %s x %s in, %s gsm, qty %d\n",
		record.Parameters.WidthIn,
		record.Parameters.BottomIn,
		record.Parameters.HeightIn,
		record.Parameters.GSM,
		record.Parameters.Quantity)
	if len(record.Parameters.Colors) > 0 {
		fmt.Fprintf(w, "Printing:  %s\n", strings.Join(record.Parameters.Colors, ", "))
	} else {
		fmt.Fprintf(w, "Printing:  No\n")
	}
	fmt.Fprintln(w)

	renderLayoutText(w, record.Layout)
	renderBOMText(w, record.Lines)
}

func renderLayoutText(w io.Writer, layout entities.WebLayout) {
	fmt.Fprintf(w, "🛠  Web Layout\n")
	fmt.Fprintf(w, "%-18s %12s\n", "Web Height (mm)", layout.WebHeightMM)
	fmt.Fprintf(w, "%-18s %12s\n", "Web Width (mm)", layout.WebWidthMM)
	fmt.Fprintf(w, "%-18s %12s\n", "Cylinder (mm)", layout.CylinderMM)
	fmt.Fprintf(w, "%-18s %12s\n", "Paper Roll (mm)", layout.PaperRollMM)
	fmt.Fprintf(w, "%-18s %12s\n", "Unit Weight (g)", layout.UnitWeightG)
	fmt.Fprintf(w, "%-18s %12s\n", "Finish Wt (kg)", layout.FinishWeightKG)
	fmt.Fprintln(w)
}

func renderBOMText(w io.Writer, lines []entities.BOMLine) {
	fmt.Fprintf(w, "📦 Bill of Materials\n")
	fmt.Fprintf(w, "%-15s %12s %-6s\n", "Material", "Quantity", "Unit")
	fmt.Fprintf(w, "%-15s %12s %-6s\n", "---------------", "------------", "------")
	for _, line := range lines {
		fmt.Fprintf(w, "%-15s %12s %-6s\n", line.Material, line.Quantity, line.Unit)
	}
	fmt.Fprintln(w)
}

func renderHistoryText(w io.Writer, records []*entities.JobRecord) {
	fmt.Fprintf(w, "📚 Job History (%d records)\n", len(records))
	fmt.Fprintf(w, "%-16s %-11s %-20s %-10s %-12s\n",
		"Job Number", "Job Type", "Customer", "Quantity", "Created")
	fmt.Fprintf(w, "%-16s %-11s %-20s %-10s %-12s\n",
		"----------------", "-----------", "--------------------", "----------", "------------")
	for _, record := range records {
		fmt.Fprintf(w, "%-16s %-11s %-20s %-10d %-12s\n",
			record.JobNumber,
			record.Parameters.JobType,
			record.Parameters.CustomerName,
			record.Parameters.Quantity,
			record.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintln(w)
}

func renderJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// DTOs keep the wire format independent of the entity structs

type recordDTO struct {
	JobNumber      string    `json:"job_number"`
	JobType        string    `json:"job_type"`
	JobName        string    `json:"job_name,omitempty"`
	CustomerName   string    `json:"customer_name"`
	CustomerEmail  string    `json:"customer_email"`
	CustomerMobile string    `json:"customer_mobile"`
	WidthIn        string    `json:"width_in"`
	BottomIn       string    `json:"bottom_in"`
	HeightIn       string    `json:"height_in"`
	GSM            string    `json:"gsm"`
	Quantity       int64     `json:"quantity"`
	Colors         []string  `json:"colors,omitempty"`
	Layout         layoutDTO `json:"layout"`
	BOM            []lineDTO `json:"bom"`
	CreatedAt      time.Time `json:"created_at"`
}

type layoutDTO struct {
	WebHeightMM    string `json:"web_height_mm"`
	WebWidthMM     string `json:"web_width_mm"`
	CylinderMM     string `json:"cylinder_mm"`
	PaperRollMM    string `json:"paper_roll_mm"`
	UnitWeightG    string `json:"unit_weight_g"`
	FinishWeightKG string `json:"finish_weight_kg"`
}

type lineDTO struct {
	Material string `json:"material"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Position int    `json:"position"`
}

type estimateDTO struct {
	Layout layoutDTO `json:"layout"`
	BOM    []lineDTO `json:"bom"`
}

func recordToDTO(record *entities.JobRecord) recordDTO {
	return recordDTO{
		JobNumber:      string(record.JobNumber),
		JobType:        record.Parameters.JobType.String(),
		JobName:        record.Parameters.JobName,
		CustomerName:   record.Parameters.CustomerName,
		CustomerEmail:  record.Parameters.CustomerEmail,
		CustomerMobile: record.Parameters.CustomerMobile,
		WidthIn:        record.Parameters.WidthIn.String(),
		BottomIn:       record.Parameters.BottomIn.String(),
		HeightIn:       record.Parameters.HeightIn.String(),
		GSM:            record.Parameters.GSM.String(),
		Quantity:       record.Parameters.Quantity,
		Colors:         record.Parameters.Colors,
		Layout:         layoutToDTO(record.Layout),
		BOM:            linesToDTO(record.Lines),
		CreatedAt:      record.CreatedAt,
	}
}

func layoutToDTO(layout entities.WebLayout) layoutDTO {
	return layoutDTO{
		WebHeightMM:    layout.WebHeightMM.String(),
		WebWidthMM:     layout.WebWidthMM.String(),
		CylinderMM:     layout.CylinderMM.String(),
		PaperRollMM:    layout.PaperRollMM.String(),
		UnitWeightG:    layout.UnitWeightG.String(),
		FinishWeightKG: layout.FinishWeightKG.String(),
	}
}

func linesToDTO(lines []entities.BOMLine) []lineDTO {
	dtos := make([]lineDTO, len(lines))
	for i, line := range lines {
		dtos[i] = lineDTO{
			Material: string(line.Material),
			Quantity: line.Quantity.String(),
			Unit:     line.Unit,
			Position: line.Position,
		}
	}
	return dtos
}
