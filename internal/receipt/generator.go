// Package receipt renders paid orders as printable PDF receipts.
package receipt

import (
	"bytes"
	"fmt"
	"image/png"

	"dinehub/internal/models"

	"github.com/signintech/gopdf"
)

type PDFGenerator struct {
	fontPath string
}

func NewPDFGenerator(fontPath string) *PDFGenerator {
	if fontPath == "" {
		fontPath = "./fonts/DejaVuSans.ttf"
	}
	return &PDFGenerator{fontPath: fontPath}
}

// Generate renders a receipt for one order. The optional QR code points the
// guest back at their order tracking page.
func (g *PDFGenerator) Generate(order models.OrderWithItems, qrCode []byte) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	err := pdf.AddTTFFont("dejavu", g.fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	err = pdf.SetFont("dejavu", "", 14)
	if err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}

	addHeader(pdf, order.Order)

	pdf.SetY(90)
	addLineItems(pdf, order.Items)

	pdf.SetY(pdf.GetY() + 10)
	addTotals(pdf, order.Order)

	if len(qrCode) > 0 {
		pdf.SetY(pdf.GetY() + 20)
		addQRCode(pdf, qrCode)
	}

	pdf.SetY(760)
	addFooter(pdf)

	var buf bytes.Buffer
	err = pdf.Write(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func addHeader(pdf *gopdf.GoPdf, order models.Order) {
	pdf.SetX(40)
	pdf.SetY(30)
	pdf.Cell(nil, "RECEIPT")
	pdf.Br(20)
	pdf.SetX(40)
	pdf.Cell(nil, "Order: "+order.OrderID)
	pdf.Br(20)
	pdf.SetX(40)
	pdf.Cell(nil, "Placed: "+order.CreatedAt.Format("2006-01-02 15:04"))
}

func addLineItems(pdf *gopdf.GoPdf, items []models.OrderItem) {
	for _, item := range items {
		name := item.Name
		if item.SizeLabel != "" {
			name += " (" + item.SizeLabel + ")"
		}
		pdf.SetX(40)
		pdf.Cell(nil, fmt.Sprintf("%dx %s", item.Quantity, name))
		pdf.SetX(400)
		pdf.Cell(nil, formatMinorUnits(item.LineTotal))
		pdf.Br(18)
		if item.Modifiers != "" {
			pdf.SetX(55)
			pdf.Cell(nil, "+ "+item.Modifiers)
			pdf.Br(18)
		}
	}
}

func addTotals(pdf *gopdf.GoPdf, order models.Order) {
	rows := []struct {
		Label string
		Value int64
	}{
		{"Subtotal", order.Subtotal},
		{"Discount", -order.DiscountAmount},
		{"Tax", order.Tax},
		{"Service charge", order.ServiceCharge},
		{"Total", order.Total},
	}

	for _, row := range rows {
		if row.Label == "Discount" && order.DiscountAmount == 0 {
			continue
		}
		pdf.SetX(40)
		pdf.Cell(nil, row.Label)
		pdf.SetX(400)
		pdf.Cell(nil, formatMinorUnits(row.Value))
		pdf.Br(18)
	}
}

func addQRCode(pdf *gopdf.GoPdf, qrCode []byte) {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		pdf.Cell(nil, "Failed to load QR code")
		return
	}

	rect := &gopdf.Rect{W: 100, H: 100}
	err = pdf.ImageFrom(img, 40, pdf.GetY(), rect)
	if err != nil {
		pdf.Cell(nil, "Failed to draw QR code")
	}
}

func addFooter(pdf *gopdf.GoPdf) {
	pdf.SetX(40)
	pdf.Cell(nil, "Thank you for dining with us.")
}

// formatMinorUnits renders cents as a decimal amount.
func formatMinorUnits(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
