package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/shopdesk/internal/imagelist"
	"github.com/lehigh-university-libraries/shopdesk/internal/models"
	"github.com/lehigh-university-libraries/shopdesk/internal/productform"
)

// loadProductForm reads a product YAML file into a form. Gallery images
// beyond the slot limit are dropped with a warning.
func loadProductForm(path string, mode productform.Mode) (*productform.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read product file: %w", err)
	}

	var product models.Product
	if err := yaml.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to parse product file %s: %w", path, err)
	}
	if len(product.ImagesURL) > imagelist.MaxSlots {
		slog.Warn("Too many gallery images, keeping the first ones",
			"file", path, "images", len(product.ImagesURL), "max", imagelist.MaxSlots)
	}
	return productform.FromProduct(mode, product), nil
}

// imageEdit is one --set-image flag value
type imageEdit struct {
	index int
	url   string
}

// parseImageEdit parses "index=url". An empty url clears the slot.
func parseImageEdit(s string) (imageEdit, error) {
	idx, url, ok := strings.Cut(s, "=")
	if !ok {
		return imageEdit{}, fmt.Errorf("invalid image edit %q: expected index=url", s)
	}
	index, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return imageEdit{}, fmt.Errorf("invalid image index in %q: %w", s, err)
	}
	return imageEdit{index: index, url: strings.TrimSpace(url)}, nil
}

// parseFieldEdit parses "field=value"
func parseFieldEdit(s string) (string, string, error) {
	field, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(field) == "" {
		return "", "", fmt.Errorf("invalid field edit %q: expected field=value", s)
	}
	return strings.TrimSpace(field), value, nil
}

// formEdits are the changes requested by "products edit"
type formEdits struct {
	fields     []string
	setImages  []string
	appendURLs []string
	removeLast int
}

var errAtCapacity = errors.New("no free image slot")

// apply runs field edits, then removals, then slot edits, then appends
func (e formEdits) apply(form *productform.Form) error {
	for _, raw := range e.fields {
		field, value, err := parseFieldEdit(raw)
		if err != nil {
			return err
		}
		if err := form.Set(field, value); err != nil {
			return err
		}
	}

	for i := 0; i < e.removeLast; i++ {
		form.Images.RemoveLast()
	}

	for _, raw := range e.setImages {
		edit, err := parseImageEdit(raw)
		if err != nil {
			return err
		}
		if err := form.Images.SetAt(edit.index, edit.url); err != nil {
			return fmt.Errorf("image %d: %w", edit.index, err)
		}
	}

	for _, url := range e.appendURLs {
		// A trailing blank slot left by an earlier edit is reused
		last := form.Images.Len() - 1
		if last < 0 || form.Images.At(last) != "" {
			if !form.Images.Append() {
				return fmt.Errorf("%w for %s (max %d)", errAtCapacity, url, imagelist.MaxSlots)
			}
			last = form.Images.Len() - 1
		}
		if err := form.Images.SetAt(last, url); err != nil {
			return err
		}
	}
	return nil
}
