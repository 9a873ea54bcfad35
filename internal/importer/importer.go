// Package importer loads a product catalog from a CSV export into the
// products table, so a store can be onboarded from its previous system.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"enterprise-pos/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV rows and inserts/updates products.
// Expected headers: name, barcode, sku, description, price, cost, stock,
// min_stock. price and cost are decimal currency amounts, e.g. "29.99".
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

// Run parses CSV rows and upserts products keyed by SKU.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("missing required header: name")
	}
	if _, ok := index["price"]; !ok {
		return 0, errors.New("missing required header: price")
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		product, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if product == nil {
			continue
		}

		if _, err := i.productRepo.Upsert(ctx, *product); err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func parseRow(record []string, index map[string]int) (*domain.Product, error) {
	get := func(key string) string {
		i, ok := index[key]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := get("name")
	if name == "" {
		return nil, nil // blank row
	}

	priceCents, err := parseCents(get("price"))
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	costCents := int64(0)
	if v := get("cost"); v != "" {
		if costCents, err = parseCents(v); err != nil {
			return nil, fmt.Errorf("cost: %w", err)
		}
	}

	stock := 0
	if v := get("stock"); v != "" {
		if stock, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("stock: %w", err)
		}
	}
	minStock := 10
	if v := get("min_stock"); v != "" {
		if minStock, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("min_stock: %w", err)
		}
	}

	return &domain.Product{
		Name:          name,
		Barcode:       get("barcode"),
		SKU:           get("sku"),
		Description:   get("description"),
		PriceCents:    priceCents,
		CostCents:     costCents,
		StockQuantity: stock,
		MinStockLevel: minStock,
		IsActive:      true,
	}, nil
}

// parseCents converts a decimal currency string ("29.99", "30", "30.5")
// into integer cents without going through binary floating point.
func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if units < 0 {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	switch len(frac) {
	case 0:
		return units * 100, nil
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, fmt.Errorf("too many decimal places in %q", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return units*100 + cents, nil
}
