package productform

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lehigh-university-libraries/shopdesk/internal/models"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"create", ModeCreate, false},
		{" Edit ", ModeEdit, false},
		{"delete", ModeDelete, false},
		{"archive", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMode) {
					t.Fatalf("Expected ErrUnknownMode, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, mode)
			}
		})
	}
}

func TestPayloadConvertsFormValues(t *testing.T) {
	f := New(ModeCreate)
	for field, value := range map[string]string{
		"title":        "Oolong",
		"category":     "tea",
		"origin_price": "300",
		"price":        "249.5",
		"unit":         "box",
		"is_enabled":   "true",
		"imageUrl":     "http://main",
	} {
		if err := f.Set(field, value); err != nil {
			t.Fatalf("Set(%s): %v", field, err)
		}
	}

	f.Images.Append()
	_ = f.Images.SetAt(0, "http://a")
	_ = f.Images.SetAt(1, "http://b")

	got, err := f.Payload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.Product{
		Title:       "Oolong",
		Category:    "tea",
		OriginPrice: 300,
		Price:       249.5,
		Unit:        "box",
		IsEnabled:   1,
		ImageURL:    "http://main",
		ImagesURL:   []string{"http://a", "http://b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPayloadBlankPricesAreZero(t *testing.T) {
	got, err := New(ModeCreate).Payload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Price != 0 || got.OriginPrice != 0 {
		t.Errorf("Expected zero prices, got %v/%v", got.OriginPrice, got.Price)
	}
	if got.IsEnabled != 0 {
		t.Errorf("Expected disabled, got %d", got.IsEnabled)
	}
	if got.ImagesURL == nil || len(got.ImagesURL) != 0 {
		t.Errorf("Expected empty non-nil images, got %#v", got.ImagesURL)
	}
}

func TestPayloadInvalidPrice(t *testing.T) {
	f := New(ModeCreate)
	_ = f.Set("price", "cheap")

	if _, err := f.Payload(); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("Expected ErrInvalidPrice, got %v", err)
	}
}

func TestSetRejectsUnknownField(t *testing.T) {
	f := New(ModeCreate)
	if err := f.Set("stock", "3"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}
	if err := f.Set("is_enabled", "maybe"); err == nil {
		t.Error("Expected error for invalid boolean")
	}
}

func TestFromProductRoundTripsPayload(t *testing.T) {
	p := models.Product{
		ID:          "p1",
		Title:       "Cup",
		OriginPrice: 80,
		Price:       60,
		IsEnabled:   1,
		ImagesURL:   []string{"http://a", "http://b"},
	}

	f := FromProduct(ModeEdit, p)
	if f.Price != "60" {
		t.Errorf("Expected price text 60, got %q", f.Price)
	}

	got, err := f.Payload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		form    *Form
		wantErr error
	}{
		{"create needs no id", New(ModeCreate), nil},
		{"edit needs id", New(ModeEdit), ErrMissingID},
		{"delete needs id", New(ModeDelete), ErrMissingID},
		{"edit with id", FromProduct(ModeEdit, models.Product{ID: "p1"}), nil},
		{"unknown mode", New(Mode("archive")), ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Check()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFormJSONKeepsImageSlots(t *testing.T) {
	f := FromProduct(ModeEdit, models.Product{ID: "p1", ImagesURL: []string{"http://a"}})
	f.Images.Append()

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Form
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff([]string{"http://a", ""}, decoded.Images.Slots()); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}
}
