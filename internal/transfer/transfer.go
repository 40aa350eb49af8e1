// Package transfer moves CRM records in and out of CSV and XLSX files.
package transfer

import (
	"fmt"
	"io"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/domain"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ContentType returns the mime type of an export format
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ReadCustomers decodes a CSV with a name,email,phone header into creation inputs.
func ReadCustomers(r io.Reader) ([]crm.CustomerInput, error) {
	var inputs []crm.CustomerInput
	if err := gocsv.Unmarshal(r, &inputs); err != nil {
		return nil, errors.Wrap(err, "read customers csv")
	}
	return inputs, nil
}

// OrderRow is the flat export form of an order
type OrderRow struct {
	ID            string `csv:"id"`
	OrderDate     string `csv:"order_date"`
	CustomerName  string `csv:"customer_name"`
	CustomerEmail string `csv:"customer_email"`
	Products      string `csv:"products"`
	TotalAmount   string `csv:"total_amount"`
}

var orderHeader = []string{"id", "order_date", "customer_name", "customer_email", "products", "total_amount"}

func (r OrderRow) values() []string {
	return []string{r.ID, r.OrderDate, r.CustomerName, r.CustomerEmail, r.Products, r.TotalAmount}
}

// OrderRows flattens orders, products are joined with "; "
func OrderRows(orders []domain.Order) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		names := make([]string, 0, len(o.Products))
		for _, p := range o.Products {
			names = append(names, p.Name)
		}
		rows = append(rows, OrderRow{
			ID:            fmt.Sprintf("%d", o.ID),
			OrderDate:     o.OrderDate.Format("2006-01-02 15:04:05"),
			CustomerName:  o.Customer.Name,
			CustomerEmail: o.Customer.Email,
			Products:      strings.Join(names, "; "),
			TotalAmount:   o.TotalAmount.StringFixed(2),
		})
	}
	return rows
}

// WriteOrdersCSV writes the orders as CSV with a header row
func WriteOrdersCSV(w io.Writer, orders []domain.Order) error {
	rows := OrderRows(orders)
	return errors.Wrap(gocsv.Marshal(&rows, w), "write orders csv")
}

// WriteOrdersXLSX writes the orders to the first sheet of a workbook
func WriteOrdersXLSX(w io.Writer, orders []domain.Order) error {
	const sheet = "Sheet1"
	xlsx := excelize.NewFile()
	for col, title := range orderHeader {
		xlsx.SetCellValue(sheet, axis(col, 1), title)
	}
	for i, row := range OrderRows(orders) {
		for col, v := range row.values() {
			xlsx.SetCellValue(sheet, axis(col, i+2), v)
		}
	}
	return errors.Wrap(xlsx.Write(w), "write orders xlsx")
}

// WriteOrders dispatches on format
func WriteOrders(w io.Writer, format string, orders []domain.Order) error {
	switch format {
	case FormatCSV, "":
		return WriteOrdersCSV(w, orders)
	case FormatXLSX:
		return WriteOrdersXLSX(w, orders)
	default:
		return errors.Errorf("unsupported export format %q", format)
	}
}

// axis converts a zero based column and a one based row to a cell name like "B3".
// Exports never exceed 26 columns.
func axis(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}
