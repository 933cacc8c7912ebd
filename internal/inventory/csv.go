package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/aldenmeer/gridline/internal/server"
	"github.com/aldenmeer/gridline/internal/services"
	"github.com/aldenmeer/gridline/internal/session"
	"github.com/aldenmeer/gridline/pkg/grid"
	"github.com/aldenmeer/gridline/pkg/models"
)

// csvHeaders returns the CSV column headers.
func csvHeaders() []string {
	return []string{"sku", "name", "category", "status", "quantity", "unit_price"}
}

// csvColumnCount is the number of columns in the CSV format.
const csvColumnCount = 6

// itemToCSVRow converts an item to a CSV row (matching csvHeaders order).
func itemToCSVRow(i models.Item) []string {
	return []string{
		i.SKU,
		i.Name,
		string(i.Category),
		string(i.Status),
		strconv.Itoa(i.Quantity),
		strconv.FormatFloat(i.UnitPrice, 'f', 2, 64),
	}
}

// csvRowToItem parses a CSV row into an Item. Returns error for invalid data.
func csvRowToItem(row []string) (models.Item, error) {
	if len(row) < csvColumnCount {
		return models.Item{}, fmt.Errorf("expected %d columns, got %d", csvColumnCount, len(row))
	}
	r := row[:csvColumnCount]

	var i models.Item
	i.SKU = r[0]
	i.Name = r[1]
	if i.SKU == "" || i.Name == "" {
		return models.Item{}, errors.New("sku and name are required")
	}

	i.Category = models.ItemCategory(r[2])
	if i.Category == "" {
		i.Category = models.CategoryOther
	} else if !validCategory(r[2]) {
		return models.Item{}, fmt.Errorf("unknown category %q", r[2])
	}

	i.Status = models.ItemStatus(r[3])
	if i.Status == "" {
		i.Status = models.ItemStatusInStock
	} else if !validStatus(r[3]) {
		return models.Item{}, fmt.Errorf("unknown status %q", r[3])
	}

	if r[4] != "" {
		n, err := strconv.Atoi(r[4])
		if err != nil {
			return models.Item{}, fmt.Errorf("invalid quantity: %w", err)
		}
		i.Quantity = n
	}
	if r[5] != "" {
		p, err := strconv.ParseFloat(r[5], 64)
		if err != nil {
			return models.Item{}, fmt.Errorf("invalid unit_price: %w", err)
		}
		i.UnitPrice = p
	}

	return i, nil
}

// handleExportItems streams the session's current grid view as CSV. The
// export honors the stored filter and sort but ignores paging.
func (m *Module) handleExportItems(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	view := session.Get[services.GridView](sess)

	rows, err := m.source.Fetch(r.Context(), grid.Query[models.Item]{
		Sort:   view.Sort,
		Filter: view.Filter(),
	})
	if err != nil {
		m.respondFetchError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders()); err != nil {
		m.logger.Error("csv write failed", zap.Error(err))
		return
	}
	for _, item := range rows {
		if err := cw.Write(itemToCSVRow(item)); err != nil {
			m.logger.Error("csv write failed", zap.Error(err))
			return
		}
	}
	cw.Flush()
}

// handleImportItems creates items from an uploaded CSV. Rows with a
// duplicate SKU are skipped; malformed rows abort the import.
func (m *Module) handleImportItems(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	cr := csv.NewReader(r.Body)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		server.BadRequest(w, "empty or invalid CSV", r.URL.Path)
		return
	}
	if len(header) < csvColumnCount || header[0] != "sku" {
		server.BadRequest(w, "unexpected CSV header", r.URL.Path)
		return
	}

	created, skipped := 0, 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			server.BadRequest(w, fmt.Sprintf("line %d: %v", line, err), r.URL.Path)
			return
		}

		item, err := csvRowToItem(row)
		if err != nil {
			server.BadRequest(w, fmt.Sprintf("line %d: %v", line, err), r.URL.Path)
			return
		}

		if err := m.items.Create(r.Context(), &item); err != nil {
			if errors.Is(err, services.ErrAlreadyExists) {
				skipped++
				continue
			}
			m.logger.Error("import item failed", zap.String("sku", item.SKU), zap.Error(err))
			server.InternalError(w, "import failed", r.URL.Path)
			return
		}
		created++
	}

	m.logger.Info("CSV import finished", zap.Int("created", created), zap.Int("skipped", skipped))
	writeJSON(w, map[string]int{"created": created, "skipped": skipped})
}
