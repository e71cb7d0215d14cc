// Package productform holds the state of the product create/edit/delete form.
package productform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/shopdesk/internal/imagelist"
	"github.com/lehigh-university-libraries/shopdesk/internal/models"
)

// Mode selects what submitting the form does
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
	ModeDelete Mode = "delete"
)

var (
	ErrUnknownMode  = errors.New("unknown form mode")
	ErrUnknownField = errors.New("unknown form field")
	ErrInvalidPrice = errors.New("invalid price")
	ErrMissingID    = errors.New("product id is required")
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCreate, ModeEdit, ModeDelete:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Verb names the API action for log and status messages
func (m Mode) Verb() string {
	switch m {
	case ModeEdit:
		return "update"
	case ModeDelete:
		return "delete"
	default:
		return "create"
	}
}

// Form is the product being edited. Prices are kept as the raw text the user
// typed and only converted to numbers by Payload.
type Form struct {
	Mode        Mode            `json:"mode"`
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	OriginPrice string          `json:"origin_price"`
	Price       string          `json:"price"`
	Unit        string          `json:"unit"`
	Description string          `json:"description"`
	Content     string          `json:"content"`
	Enabled     bool            `json:"is_enabled"`
	ImageURL    string          `json:"imageUrl"`
	Images      *imagelist.List `json:"imagesUrl"`
}

// New returns a blank form
func New(mode Mode) *Form {
	return &Form{
		Mode:   mode,
		Images: imagelist.New(),
	}
}

// FromProduct opens a form over an existing product record
func FromProduct(mode Mode, p models.Product) *Form {
	return &Form{
		Mode:        mode,
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		OriginPrice: formatPrice(p.OriginPrice),
		Price:       formatPrice(p.Price),
		Unit:        p.Unit,
		Description: p.Description,
		Content:     p.Content,
		Enabled:     p.Enabled(),
		ImageURL:    p.ImageURL,
		Images:      imagelist.New(p.ImagesURL...),
	}
}

// Check reports whether the form can be submitted in its mode
func (f *Form) Check() error {
	switch f.Mode {
	case ModeCreate:
		return nil
	case ModeEdit, ModeDelete:
		if f.ID == "" {
			return fmt.Errorf("%w to %s", ErrMissingID, f.Mode.Verb())
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, f.Mode)
	}
}

// Set changes one field by its JSON name. is_enabled accepts any value
// strconv.ParseBool understands.
func (f *Form) Set(field, value string) error {
	switch field {
	case "title":
		f.Title = value
	case "category":
		f.Category = value
	case "origin_price":
		f.OriginPrice = value
	case "price":
		f.Price = value
	case "unit":
		f.Unit = value
	case "description":
		f.Description = value
	case "content":
		f.Content = value
	case "imageUrl":
		f.ImageURL = value
	case "is_enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid is_enabled value %q: %w", value, err)
		}
		f.Enabled = enabled
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// Payload builds the product record sent to the catalog API
func (f *Form) Payload() (models.Product, error) {
	originPrice, err := parsePrice("origin_price", f.OriginPrice)
	if err != nil {
		return models.Product{}, err
	}
	price, err := parsePrice("price", f.Price)
	if err != nil {
		return models.Product{}, err
	}

	enabled := 0
	if f.Enabled {
		enabled = 1
	}

	images := []string{}
	if f.Images != nil {
		images = f.Images.ToSubmission()
	}

	return models.Product{
		ID:          f.ID,
		Title:       f.Title,
		Category:    f.Category,
		OriginPrice: originPrice,
		Price:       price,
		Unit:        f.Unit,
		Description: f.Description,
		Content:     f.Content,
		IsEnabled:   enabled,
		ImageURL:    f.ImageURL,
		ImagesURL:   images,
	}, nil
}

// parsePrice treats blank input as zero
func parsePrice(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidPrice, field, s)
	}
	return v, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
