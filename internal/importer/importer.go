package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"eshop/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryEnsurer interface {
	EnsureByName(ctx context.Context, name string) (*domain.Category, error)
}

// CSVImporter reads catalog CSV files with the columns
// name,description,price,category,image_url and upserts products by
// (category, name). Missing categories are created.
type CSVImporter struct {
	reader       *csv.Reader
	productRepo  ProductWriter
	categoryRepo CategoryEnsurer
	categories   map[string]string
}

func NewCSVImporter(r io.Reader, repo ProductWriter, categoryRepo CategoryEnsurer) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:       csvr,
		productRepo:  repo,
		categoryRepo: categoryRepo,
		categories:   make(map[string]string),
	}
}

var requiredHeaders = []string{"name", "price", "category"}

// Run imports every row and returns the number of products written. It stops
// at the first invalid row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return 0, fmt.Errorf("missing column %q", h)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		p, category, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if err := i.save(ctx, p, category); err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p domain.Product, category string) error {
	key := strings.ToLower(category)
	categoryID, ok := i.categories[key]
	if !ok {
		c, err := i.categoryRepo.EnsureByName(ctx, category)
		if err != nil {
			return fmt.Errorf("ensure category %q: %w", category, err)
		}
		categoryID = c.ID
		i.categories[key] = categoryID
	}
	p.CategoryID = categoryID

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Name, err)
	}
	return nil
}

func parseRow(record []string, index map[string]int) (domain.Product, string, error) {
	p := domain.Product{
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		ImageURL:    pick(record, index, "image_url"),
	}
	category := pick(record, index, "category")

	switch {
	case p.Name == "":
		return p, "", fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case len([]rune(p.Name)) > domain.MaxProductNameLen:
		return p, "", fmt.Errorf("%w: name exceeds %d characters", domain.ErrInvalidInput, domain.MaxProductNameLen)
	case len([]rune(p.Description)) > domain.MaxProductDescriptionLen:
		return p, "", fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidInput, domain.MaxProductDescriptionLen)
	case category == "":
		return p, "", fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	case len([]rune(category)) > domain.MaxCategoryNameLen:
		return p, "", fmt.Errorf("%w: category exceeds %d characters", domain.ErrInvalidInput, domain.MaxCategoryNameLen)
	}

	price, err := domain.ParseMoney(strings.TrimPrefix(pick(record, index, "price"), "$"))
	if err != nil {
		return p, "", fmt.Errorf("%w: price: %v", domain.ErrInvalidInput, err)
	}
	if err := domain.CheckPrice(price); err != nil {
		return p, "", err
	}
	p.Price = price
	if p.ImageURL == "" {
		p.ImageURL = domain.PlaceholderImageURL
	}
	return p, category, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
