package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/shopdesk/internal/models"
)

func sampleProducts() []models.Product {
	return []models.Product{
		{
			ID:          "p1",
			Title:       "Lamp",
			Category:    "home",
			OriginPrice: 1200,
			Price:       999.5,
			Unit:        "pc",
			IsEnabled:   1,
			ImageURL:    "http://img/main.png",
			ImagesURL:   []string{"http://img/a.png", "", "http://img/b.png"},
		},
		{
			ID:       "p2",
			Title:    "Chair, oak",
			Category: "home",
			Price:    50,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"parquet", FormatParquet, false},
		{".yml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{".json", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("Expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleProducts())
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Enabled)
	assert.False(t, rows[1].Enabled)
	if diff := cmp.Diff([]string{"http://img/a.png", "http://img/b.png"}, rows[0].Images); diff != "" {
		t.Errorf("images mismatch (-want +got):\n%s", diff)
	}
	assert.NotNil(t, rows[1].Images)
}

func TestWriteJSONAndYAML(t *testing.T) {
	expected := Rows(sampleProducts())

	var jsonBuf bytes.Buffer
	require.NoError(t, Write(&jsonBuf, FormatJSON, sampleProducts()))
	var fromJSON []ProductRow
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	if diff := cmp.Diff(expected, fromJSON, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("json rows mismatch (-want +got):\n%s", diff)
	}

	var yamlBuf bytes.Buffer
	require.NoError(t, Write(&yamlBuf, FormatYAML, sampleProducts()))
	var fromYAML []ProductRow
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	if diff := cmp.Diff(expected, fromYAML, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("yaml rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleProducts()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "999.5", records[1][4])
	assert.Equal(t, "true", records[1][8])
	assert.Equal(t, "http://img/a.png http://img/b.png", records[1][10])
	assert.Equal(t, "Chair, oak", records[2][1])
}

func TestWriteFileParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "catalog.parquet")
	require.NoError(t, WriteFile(path, FormatParquet, sampleProducts()))

	rows, err := ReadParquet(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Lamp", rows[0].Title)
	assert.Equal(t, 999.5, rows[0].Price)
	assert.Equal(t, []string{"http://img/a.png", "http://img/b.png"}, rows[0].Images)
	assert.Equal(t, "p2", rows[1].ID)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
