package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"storefront-backend/internal/domains/product/model"
)

// ExportToExcel builds a spreadsheet of the products matching the filter.
// Pagination is capped so a single export stays bounded.
func (s *productService) ExportToExcel(ctx context.Context, filter *model.ListProductsFilter) (*excelize.File, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	products, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Products"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Slug", "Price", "Category ID", "Active", "Image URL", "Created At"}
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for rowIdx, p := range products {
		row := rowIdx + 2
		categoryID := ""
		if p.CategoryID != nil {
			categoryID = p.CategoryID.String()
		}
		imageURL := ""
		if p.ImageURL != nil {
			imageURL = *p.ImageURL
		}
		values := []interface{}{
			p.ID.String(),
			p.Name,
			p.Slug,
			p.Price.StringFixed(2),
			categoryID,
			p.IsActive,
			imageURL,
			p.CreatedAt.Format(time.RFC3339),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f, nil
}
