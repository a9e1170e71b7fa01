package rolodex

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rolodexdb/rolodex/pkg/core"
)

// DumpFormat represents the format for data export.
type DumpFormat string

const (
	// DumpFormatJSON exports one indented JSON document with metadata.
	DumpFormatJSON DumpFormat = "json"
	// DumpFormatJSONL exports one JSON object per line.
	DumpFormatJSONL DumpFormat = "jsonl"
	// DumpFormatCSV exports one row per person, children as JSON cells.
	DumpFormatCSV DumpFormat = "csv"
)

// ParseDumpFormat maps a user-supplied format name onto a DumpFormat.
func ParseDumpFormat(name string) (DumpFormat, error) {
	switch name {
	case "json":
		return DumpFormatJSON, nil
	case "jsonl", "ndjson":
		return DumpFormatJSONL, nil
	case "csv":
		return DumpFormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json, jsonl or csv)", name)
	}
}

// DumpStats provides statistics about the export operation.
type DumpStats struct {
	People    int `json:"people"`
	Addresses int `json:"addresses"`
	Emails    int `json:"emails"`
}

// ExportMetadata describes the envelope of a JSON export.
type ExportMetadata struct {
	Version    string  `json:"version"`
	Backend    Backend `json:"backend"`
	Count      int     `json:"count"`
	SizeMB     float64 `json:"sizeMb"`
	ExportedAt string  `json:"exportedAt"`
}

// Dump exports all stored aggregates to w in the specified format.
func (db *DB) Dump(ctx context.Context, w io.Writer, format DumpFormat) (*DumpStats, error) {
	read, err := db.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DumpStats{People: len(read.People)}
	for _, p := range read.People {
		stats.Addresses += len(p.Addresses)
		stats.Emails += len(p.Emails)
	}

	switch format {
	case DumpFormatJSON:
		err = dumpJSON(w, db.backend, read)
	case DumpFormatJSONL:
		err = dumpJSONL(w, read.People)
	case DumpFormatCSV:
		err = dumpCSV(w, read.People)
	default:
		err = fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, core.WrapError("dump", err)
	}
	return stats, nil
}

// dumpJSON writes one indented document: a metadata envelope followed by
// every aggregate.
func dumpJSON(w io.Writer, backend Backend, read core.ReadResult) error {
	export := struct {
		Metadata ExportMetadata `json:"metadata"`
		People   []*core.Person `json:"people"`
	}{
		Metadata: ExportMetadata{
			Version:    "1.0",
			Backend:    backend,
			Count:      len(read.People),
			SizeMB:     read.SizeMB,
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
		},
		People: read.People,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// dumpJSONL writes one JSON object per line, no envelope.
func dumpJSONL(w io.Writer, people []*core.Person) error {
	encoder := json.NewEncoder(w)
	for _, p := range people {
		if err := encoder.Encode(p); err != nil {
			return fmt.Errorf("failed to encode person %d: %w", p.ID, err)
		}
	}
	return nil
}

// dumpCSV writes one row per person; the child collections ride along as
// JSON strings in their own cells.
func dumpCSV(w io.Writer, people []*core.Person) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "first_name", "last_name", "phone", "addresses", "emails"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range people {
		addrJSON, _ := json.Marshal(p.Addresses)
		emailJSON, _ := json.Marshal(p.Emails)
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.FirstName,
			p.LastName,
			p.Phone,
			string(addrJSON),
			string(emailJSON),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
