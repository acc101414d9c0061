package invoice

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"dropship-hub/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// OrderPDF renders a one-page A4 invoice. The QR code carries trackURL,
// or the order id when trackURL is empty.
func OrderPDF(order models.Order, shopName, trackURL string) ([]byte, error) {
	payload := trackURL
	if payload == "" {
		payload = order.ID.Hex()
	}
	qrPNG, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+order.ID.Hex(), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, shopName)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Invoice #"+order.ID.Hex())
	pdf.Ln(6)
	pdf.Cell(0, 7, "Date: "+order.CreatedAt.Format("02 Jan 2006"))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Status: "+order.Status)
	pdf.Ln(10)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 12, 35, 35, false, imageOpts, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 7, "Deliver to")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	for _, line := range []string{
		order.Delivery.Name,
		order.Delivery.Phone,
		strings.TrimSpace(order.Delivery.Address + ", " + order.Delivery.District),
	} {
		if strings.Trim(line, ", ") == "" {
			continue
		}
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(6)

	widths := []float64{80, 25, 20, 25, 30}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range []string{"Item", "Size", "Qty", "Price", "Subtotal"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, it := range order.Items {
		name := it.Name
		if it.Color != "" {
			name += " (" + it.Color + ")"
		}
		pdf.CellFormat(widths[0], 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, it.Size, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, money(it.Subtotal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	labelW := widths[0] + widths[1] + widths[2] + widths[3]
	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", order.Subtotal},
		{"Delivery", order.DeliveryCharge},
		{"Total", order.Total},
	}
	for _, row := range totals {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(labelW, 7, row.label, "1", 0, "R", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(widths[4], 7, money(row.value), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Paid via %s from %s (Txn %s)", order.Payment.Method, order.Payment.Number, order.Payment.TransactionID))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// ReferralLink is the sign-up URL that carries a referral code
func ReferralLink(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/register?ref=" + url.QueryEscape(code)
}

// ReferralQR encodes the referral link as a PNG
func ReferralQR(baseURL, code string, size int) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("referral code is empty")
	}
	return qrcode.Encode(ReferralLink(baseURL, code), qrcode.Medium, size)
}
