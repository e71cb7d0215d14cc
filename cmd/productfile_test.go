package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lehigh-university-libraries/shopdesk/internal/imagelist"
	"github.com/lehigh-university-libraries/shopdesk/internal/productform"
)

func TestParseImageEdit(t *testing.T) {
	tests := []struct {
		input    string
		expected imageEdit
		wantErr  bool
	}{
		{"0=http://a", imageEdit{index: 0, url: "http://a"}, false},
		{"2=", imageEdit{index: 2, url: ""}, false},
		{"1=http://x?a=b", imageEdit{index: 1, url: "http://x?a=b"}, false},
		{"http://a", imageEdit{}, true},
		{"one=http://a", imageEdit{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseImageEdit(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestFormEditsApply(t *testing.T) {
	tests := []struct {
		name     string
		start    []string
		edits    formEdits
		expected []string
		wantErr  error
	}{
		{
			name:     "append to empty gallery",
			edits:    formEdits{appendURLs: []string{"a", "b"}},
			expected: []string{"a", "b", ""},
		},
		{
			name:     "set last slot grows",
			start:    []string{"a", ""},
			edits:    formEdits{setImages: []string{"1=b"}},
			expected: []string{"a", "b", ""},
		},
		{
			name:     "clearing drops trailing blank",
			start:    []string{"a", "b", ""},
			edits:    formEdits{setImages: []string{"1="}},
			expected: []string{"a", ""},
		},
		{
			name:     "remove then append",
			start:    []string{"a", "b"},
			edits:    formEdits{removeLast: 1, appendURLs: []string{"c"}},
			expected: []string{"a", "c", ""},
		},
		{
			name:    "append past capacity",
			start:   []string{"a", "b", "c", "d", "e"},
			edits:   formEdits{appendURLs: []string{"f"}},
			wantErr: errAtCapacity,
		},
		{
			name:    "set out of range",
			start:   []string{"a"},
			edits:   formEdits{setImages: []string{"3=x"}},
			wantErr: imagelist.ErrIndexOutOfRange,
		},
		{
			name:    "unknown field",
			edits:   formEdits{fields: []string{"colour=red"}},
			wantErr: productform.ErrUnknownField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := productform.New(productform.ModeEdit)
			form.Images = imagelist.New(tt.start...)

			err := tt.edits.apply(form)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, form.Images.Slots()); diff != "" {
				t.Errorf("slots mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormEditsSetsFields(t *testing.T) {
	form := productform.New(productform.ModeEdit)
	edits := formEdits{fields: []string{"title=Desk lamp", "price=1200", "is_enabled=true"}}
	if err := edits.apply(form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	product, err := form.Payload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Title != "Desk lamp" || product.Price != 1200 || product.IsEnabled != 1 {
		t.Errorf("unexpected payload: %+v", product)
	}
}

func TestLoadProductForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lamp.yaml")
	content := `title: Lamp
category: home
origin_price: 1500
price: 1200
unit: pc
is_enabled: 1
imageUrl: http://img/main.png
imagesUrl:
  - http://img/1.png
  - http://img/2.png
  - http://img/3.png
  - http://img/4.png
  - http://img/5.png
  - http://img/6.png
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	form, err := loadProductForm(path, productform.ModeCreate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if form.Title != "Lamp" || form.Price != "1200" || !form.Enabled {
		t.Errorf("unexpected form: %+v", form)
	}
	if form.Images.Len() != imagelist.MaxSlots {
		t.Errorf("Expected %d slots, got %d", imagelist.MaxSlots, form.Images.Len())
	}

	if _, err := loadProductForm(filepath.Join(t.TempDir(), "missing.yaml"), productform.ModeCreate); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	tbl := newTable("ID", "TITLE")
	tbl.addRow("p1", "Lamp")
	tbl.addRow("p22", "Desk")
	tbl.render(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "p22") || !strings.Contains(lines[2], "Desk") {
		t.Errorf("unexpected row: %q", lines[2])
	}
}
