package infra

// pdf.go — closure report PDF generation using go-pdf/fpdf.
// Renders a finalized Z closure as a one-page A5 summary for the back office:
// range covered, sales totals, payment-method breakdown, voids, and drawer
// reconciliation when a session was in scope.
//
// The output file is saved to storagePath/closure_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/Waesta/Wapos-sub001/internal/model"
)

// GenerateClosurePDF renders a ReportClosure summary PDF.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the absolute path to the generated file.
func GenerateClosurePDF(closure *model.ReportClosure, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("closure_%s.pdf", closure.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Wapos Register Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	title := fmt.Sprintf("%s report — register %s", closureTypeLabel(closure.ClosureType), closure.RegisterCode)
	pdf.CellFormat(contentW, 6, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Generated: %s", closure.GeneratedAt.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Range: %s  to  %s",
		closure.RangeStart.Format("2006-01-02 15:04:05"),
		closure.RangeEnd.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	if closure.ResetApplied {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "FINALIZED — baseline advanced", "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Sales ────────────────────────────────────────────────────────────────
	sales := closure.Totals.Sales
	sectionHeader(pdf, contentW, "Sales")
	amountLine(pdf, contentW, "Transactions", decimal.NewFromInt(sales.Count), false)
	amountLine(pdf, contentW, "Subtotal", sales.Subtotal, false)
	amountLine(pdf, contentW, "Tax", sales.Tax, false)
	amountLine(pdf, contentW, "Discount", sales.Discount.Neg(), false)
	amountLine(pdf, contentW, "Total", sales.Total, true)
	amountLine(pdf, contentW, "Amount paid", sales.AmountPaid, false)
	amountLine(pdf, contentW, "Change given", sales.ChangeGiven, false)
	pdf.Ln(2)

	// ── Payments ─────────────────────────────────────────────────────────────
	sectionHeader(pdf, contentW, "Payments")
	if len(closure.Totals.Payments) == 0 {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 5, "no activity in range", "", 1, "L", false, 0, "")
	}
	for _, p := range closure.Totals.Payments {
		label := fmt.Sprintf("%s (%d)", p.Method, p.Count)
		amountLine(pdf, contentW, label, p.TotalAmount, false)
	}
	pdf.Ln(2)

	// ── Voids ────────────────────────────────────────────────────────────────
	sectionHeader(pdf, contentW, "Voids")
	amountLine(pdf, contentW, fmt.Sprintf("Voided (%d)", closure.Totals.Voids.Count), closure.Totals.Voids.Total, false)
	pdf.Ln(2)

	// ── Drawer ───────────────────────────────────────────────────────────────
	if d := closure.Totals.Drawer; d != nil {
		sectionHeader(pdf, contentW, "Drawer")
		amountLine(pdf, contentW, "Cash received", d.CashReceived, false)
		amountLine(pdf, contentW, "Change given", d.ChangeGiven.Neg(), false)
		amountLine(pdf, contentW, "Expected drawer cash", d.ExpectedDrawerCash, true)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}

func sectionHeader(pdf *fpdf.Fpdf, w float64, title string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(w, 6, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
}

func amountLine(pdf *fpdf.Fpdf, w float64, label string, amount decimal.Decimal, bold bool) {
	if bold {
		pdf.SetFont("Helvetica", "B", 8)
	} else {
		pdf.SetFont("Helvetica", "", 8)
	}
	pdf.CellFormat(w*0.6, 5, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(w*0.4, 5, amount.StringFixed(2), "", 1, "R", false, 0, "")
}

func closureTypeLabel(t string) string {
	switch t {
	case model.ClosureX:
		return "X"
	case model.ClosureY:
		return "Y"
	case model.ClosureZ:
		return "Z"
	default:
		return t
	}
}
