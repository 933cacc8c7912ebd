package inventory

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenmeer/gridline/pkg/models"
)

func TestCSVRowRoundTrip(t *testing.T) {
	in := models.Item{
		SKU:       "BOLT-M8",
		Name:      "M8 bolt",
		Category:  models.CategoryHardware,
		Status:    models.ItemStatusLowStock,
		Quantity:  42,
		UnitPrice: 0.35,
	}

	out, err := csvRowToItem(itemToCSVRow(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCSVRowToItemRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		row  []string
	}{
		{"too short", []string{"SKU-1", "thing"}},
		{"missing sku", []string{"", "thing", "hardware", "in_stock", "1", "1.00"}},
		{"bad category", []string{"SKU-1", "thing", "widgets", "in_stock", "1", "1.00"}},
		{"bad status", []string{"SKU-1", "thing", "hardware", "plentiful", "1", "1.00"}},
		{"bad quantity", []string{"SKU-1", "thing", "hardware", "in_stock", "lots", "1.00"}},
		{"bad price", []string{"SKU-1", "thing", "hardware", "in_stock", "1", "cheap"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := csvRowToItem(tt.row)
			assert.Error(t, err)
		})
	}
}

func TestCSVRowToItemDefaults(t *testing.T) {
	item, err := csvRowToItem([]string{"SKU-1", "thing", "", "", "", ""})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOther, item.Category)
	assert.Equal(t, models.ItemStatusInStock, item.Status)
}

func TestExportExcludesArchivedItems(t *testing.T) {
	h := newTestHarness(t)

	rec, _ := h.do(t, nil, "GET", "/api/v1/inventory/items/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, csvHeaders(), rows[0])

	skus := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		skus = append(skus, row[0])
	}
	assert.Contains(t, skus, "FUSE-5A")
	assert.NotContains(t, skus, "LEGACY-RELAY")
}

func TestExportHonorsViewFilter(t *testing.T) {
	h := newTestHarness(t)

	rec, cookie := h.do(t, nil, "PUT", "/api/v1/inventory/view",
		viewRequest{Category: "consumables"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = h.do(t, cookie, "GET", "/api/v1/inventory/items/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	for _, row := range rows[1:] {
		assert.Equal(t, "consumables", row[2], "sku %s", row[0])
	}
}

func TestImportCreatesAndSkipsDuplicates(t *testing.T) {
	h := newTestHarness(t)
	cookie := h.login(t)

	body := strings.Join([]string{
		strings.Join(csvHeaders(), ","),
		"NEW-SKU-1,New thing one,hardware,in_stock,10,1.50",
		"NEW-SKU-2,New thing two,tooling,low_stock,2,19.99",
		"FUSE-5A,Duplicate of seeded fuse,electrical,in_stock,5,0.80",
	}, "\n")

	req := httptest.NewRequest("POST", "/api/v1/inventory/items/import", strings.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 2, result["created"])
	assert.Equal(t, 1, result["skipped"])

	rec, _ = h.do(t, cookie, "GET", "/api/v1/inventory/items?sort=sku", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "NEW-SKU-1")
}

func TestImportRequiresLogin(t *testing.T) {
	h := newTestHarness(t)

	req := httptest.NewRequest("POST", "/api/v1/inventory/items/import",
		strings.NewReader("sku,name,category,status,quantity,unit_price\n"))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestImportRejectsMalformedRow(t *testing.T) {
	h := newTestHarness(t)
	cookie := h.login(t)

	body := "sku,name,category,status,quantity,unit_price\nBAD-1,thing,hardware,in_stock,not-a-number,1.00\n"
	req := httptest.NewRequest("POST", "/api/v1/inventory/items/import", strings.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
