package transfer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughcrm/internal/domain"
)

func sampleOrders() []domain.Order {
	return []domain.Order{
		{
			ID:          101,
			Customer:    domain.Customer{Name: "Alice", Email: "alice@example.com"},
			Products:    []domain.Product{{Name: "Laptop"}, {Name: "Mouse"}},
			OrderDate:   time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC),
			TotalAmount: decimal.RequireFromString("1019.5"),
		},
		{
			ID:          102,
			Customer:    domain.Customer{Name: "Bob", Email: "bob@example.com"},
			Products:    []domain.Product{{Name: "Pen"}},
			OrderDate:   time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC),
			TotalAmount: decimal.RequireFromString("1.5"),
		},
	}
}

func TestReadCustomers(t *testing.T) {
	data := "name,email,phone\nAlice,alice@example.com,+1234567890\nBob,bob@example.com,\n"
	inputs, err := ReadCustomers(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "Alice", inputs[0].Name)
	assert.Equal(t, "+1234567890", inputs[0].Phone)
	assert.Equal(t, "bob@example.com", inputs[1].Email)
	assert.Empty(t, inputs[1].Phone)
}

func TestWriteOrdersCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, FormatCSV, sampleOrders()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,order_date,customer_name,customer_email,products,total_amount", lines[0])
	assert.Equal(t, "101,2024-05-02 10:30:00,Alice,alice@example.com,Laptop; Mouse,1019.50", lines[1])
	assert.Equal(t, "102,2024-05-03 09:00:00,Bob,bob@example.com,Pen,1.50", lines[2])
}

func TestWriteOrdersXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, FormatXLSX, sampleOrders()))

	xlsx, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "id", xlsx.GetCellValue("Sheet1", "A1"))
	assert.Equal(t, "total_amount", xlsx.GetCellValue("Sheet1", "F1"))
	assert.Equal(t, "101", xlsx.GetCellValue("Sheet1", "A2"))
	assert.Equal(t, "Laptop; Mouse", xlsx.GetCellValue("Sheet1", "E2"))
	assert.Equal(t, "1.50", xlsx.GetCellValue("Sheet1", "F3"))
}

func TestWriteOrdersUnknownFormat(t *testing.T) {
	assert.Error(t, WriteOrders(&bytes.Buffer{}, "pdf", nil))
	assert.Equal(t, "text/csv; charset=utf-8", ContentType(FormatCSV))
}
