// Package export writes the admin catalog to files for reporting and backup.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/shopdesk/internal/imagelist"
	"github.com/lehigh-university-libraries/shopdesk/internal/models"
)

// Format is an export file format
type Format string

const (
	FormatParquet Format = "parquet"
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists every supported format
var Formats = []Format{FormatParquet, FormatYAML, FormatJSON, FormatCSV}

// ParseFormat accepts a format name or a file extension such as ".yml"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "parquet":
		return FormatParquet, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from the output file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ProductRow is a flattened product record
type ProductRow struct {
	ID          string   `json:"id" yaml:"id" parquet:"id"`
	Title       string   `json:"title" yaml:"title" parquet:"title"`
	Category    string   `json:"category" yaml:"category" parquet:"category"`
	OriginPrice float64  `json:"origin_price" yaml:"origin_price" parquet:"origin_price"`
	Price       float64  `json:"price" yaml:"price" parquet:"price"`
	Unit        string   `json:"unit" yaml:"unit" parquet:"unit"`
	Description string   `json:"description" yaml:"description" parquet:"description"`
	Content     string   `json:"content" yaml:"content" parquet:"content"`
	Enabled     bool     `json:"enabled" yaml:"enabled" parquet:"enabled"`
	ImageURL    string   `json:"image_url" yaml:"image_url" parquet:"image_url"`
	Images      []string `json:"images" yaml:"images" parquet:"images,list"`
}

var csvHeader = []string{
	"id", "title", "category", "origin_price", "price", "unit",
	"description", "content", "enabled", "image_url", "images",
}

// Rows flattens products. Empty gallery slots are dropped.
func Rows(products []models.Product) []ProductRow {
	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, ProductRow{
			ID:          p.ID,
			Title:       p.Title,
			Category:    p.Category,
			OriginPrice: p.OriginPrice,
			Price:       p.Price,
			Unit:        p.Unit,
			Description: p.Description,
			Content:     p.Content,
			Enabled:     p.Enabled(),
			ImageURL:    p.ImageURL,
			Images:      imagelist.Submission(p.ImagesURL),
		})
	}
	return rows
}

// Write encodes products to w in the given format
func Write(w io.Writer, format Format, products []models.Product) error {
	rows := Rows(products)

	switch format {
	case FormatParquet:
		if err := parquet.Write(w, rows); err != nil {
			return fmt.Errorf("failed to write parquet: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
	case FormatCSV:
		return writeCSV(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

func writeCSV(w io.Writer, rows []ProductRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.ID,
			r.Title,
			r.Category,
			strconv.FormatFloat(r.OriginPrice, 'f', -1, 64),
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			r.Unit,
			r.Description,
			r.Content,
			strconv.FormatBool(r.Enabled),
			r.ImageURL,
			strings.Join(r.Images, " "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteFile writes products to path, creating parent directories
func WriteFile(path string, format Format, products []models.Product) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if format == FormatParquet {
		if err := parquet.WriteFile(path, Rows(products)); err != nil {
			return fmt.Errorf("failed to write parquet file: %w", err)
		}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		if err := Write(f, format, products); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
	}

	slog.Info("Exported catalog", "path", path, "format", format, "products", len(products))
	return nil
}

// ReadParquet loads rows previously written with FormatParquet
func ReadParquet(path string) ([]ProductRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[ProductRow](pf)
	defer reader.Close()

	records := make([]ProductRow, 0, pf.NumRows())
	batch := make([]ProductRow, 64)
	for {
		n, err := reader.Read(batch)
		records = append(records, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return records, nil
}
