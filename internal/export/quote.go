/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export produces customer-facing quote documents from a drawn
// layout and its calculation result.
package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"fencestudio/internal/catalog"
	"fencestudio/internal/domain"
	"fencestudio/internal/geometry"
)

// Company identifies the issuing business on the quote header.
type Company struct {
	Name    string
	Tagline string
	Contact string
	License string
}

// DefaultCompany is the built-in letterhead.
func DefaultCompany() Company {
	return Company{
		Name:    "H&J Fence Supply",
		Tagline: "Professional Fence Installation & Supply",
		Contact: "123 Main Street, Dallas, TX 75201 | (555) 123-4567 | info@hjfencesupply.com",
		License: "License #TX123456",
	}
}

// Customer is the quote recipient.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Quote bundles everything the document needs.
type Quote struct {
	Number   string
	Date     time.Time
	Company  Company
	Customer Customer
	StyleID  string
	ColorID  string
	Segments []domain.Segment
	Result   domain.CalcResult
}

// Unit prices for the material breakdown table.
const (
	panelUnitPrice    = 45.0
	postUnitPrice     = 25.0
	hardwareUnitPrice = 8.0
	gateUnitPrice     = 150.0
)

// QuoteFileName derives a stable PDF filename for a quote.
func QuoteFileName(q Quote) string {
	customer := strings.ReplaceAll(q.Customer.Name, " ", "_")
	if customer == "" {
		customer = "Customer"
	}
	return fmt.Sprintf("Quote_%s_%s_%s.pdf", q.Number, customer, q.Date.Format("20060102_150405"))
}

// WriteQuotePDF renders the quote document to w.
func WriteQuotePDF(w io.Writer, q Quote) error {
	if q.Number == "" {
		q.Number = "QUOTE-001"
	}
	if q.Date.IsZero() {
		q.Date = time.Now()
	}
	if q.Company == (Company{}) {
		q.Company = DefaultCompany()
	}

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetTitle(fmt.Sprintf("%s — Fence Installation Quote", q.Company.Name), false)
	pdf.SetAuthor(q.Company.Name, false)
	pdf.SetMargins(54, 54, 54)
	pdf.AddPage()

	writeHeader(pdf, q)
	writeCustomerInfo(pdf, q.Customer)
	writeProjectSummary(pdf, q)
	writeMaterialBreakdown(pdf, q.Result)
	writeCostBreakdown(pdf, q.Result)
	writeDiagram(pdf, q.Segments)
	writeTerms(pdf, q.Company)

	return pdf.Output(w)
}

// SaveQuotePDF writes the document to path.
func SaveQuotePDF(path string, q Quote) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create quote: %w", err)
	}
	if err := WriteQuotePDF(f, q); err != nil {
		_ = f.Close()
		return fmt.Errorf("write quote: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close quote: %w", err)
	}
	return nil
}

func writeHeader(pdf *gofpdf.Fpdf, q Quote) {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 24, strings.ToUpper(q.Company.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 14, q.Company.Tagline, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 12, q.Company.Contact, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 12, q.Company.License, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 18, fmt.Sprintf("FENCE INSTALLATION QUOTE #%s", q.Number), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	valid := q.Date.AddDate(0, 0, 30)
	pdf.CellFormat(0, 14, fmt.Sprintf("Quote Date: %s | Valid Until: %s",
		q.Date.Format("January 2, 2006"), valid.Format("January 2, 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(8)
}

func sectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(34, 85, 140)
	pdf.CellFormat(0, 18, title, "B", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
}

func keyValueRow(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(170, 14, key, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 14, value, "", 1, "L", false, 0, "")
}

func writeCustomerInfo(pdf *gofpdf.Fpdf, c Customer) {
	sectionHeader(pdf, "CUSTOMER INFORMATION")
	keyValueRow(pdf, "Customer Name:", orNA(c.Name))
	keyValueRow(pdf, "Email:", orNA(c.Email))
	keyValueRow(pdf, "Phone:", orNA(c.Phone))
	keyValueRow(pdf, "Project Address:", orNA(c.Address))
	pdf.Ln(8)
}

func writeProjectSummary(pdf *gofpdf.Fpdf, q Quote) {
	sectionHeader(pdf, "PROJECT SUMMARY")
	style := q.StyleID
	if st, ok := catalog.StyleByID(q.StyleID); ok {
		style = st.Name
	}
	colorName := q.ColorID
	if c, ok := catalog.ColorByID(q.ColorID); ok {
		colorName = c.Name
	}
	m := q.Result.Measurements
	keyValueRow(pdf, "Fence Style:", orNA(style))
	keyValueRow(pdf, "Fence Color:", orNA(colorName))
	keyValueRow(pdf, "Total Length:", fmt.Sprintf("%.1f feet", m.TotalLengthFt))
	keyValueRow(pdf, "Number of Sections:", fmt.Sprintf("%d", m.SegmentCount))
	keyValueRow(pdf, "Number of Gates:", fmt.Sprintf("%d", m.GateCount))
	keyValueRow(pdf, "Estimated Installation Time:", installationTime(m.TotalLengthFt, m.GateCount))
	pdf.Ln(8)
}

// installationTime estimates working days at 50 ft/day plus half a day per
// gate.
func installationTime(totalLengthFt float64, gates int) string {
	days := totalLengthFt/50 + float64(gates)*0.5
	if days < 1 {
		return "1 day"
	}
	if days < 2 {
		return "1-2 days"
	}
	return fmt.Sprintf("%d-%d days", int(days), int(days)+1)
}

type materialRow struct {
	item        string
	description string
	qty         int
	unit        string
	price       float64
}

func writeMaterialBreakdown(pdf *gofpdf.Fpdf, res domain.CalcResult) {
	sectionHeader(pdf, "MATERIAL BREAKDOWN")

	rows := []materialRow{
		{"Fence Panels", "High-quality fence panels with UV protection", res.Materials.Panels, "ea", panelUnitPrice},
		{"Fence Posts", "Heavy-duty fence posts with concrete footings", res.Materials.Posts, "ea", postUnitPrice},
		{"Hardware Kit", "Stainless steel brackets and fasteners", res.Materials.Hardware, "set", hardwareUnitPrice},
	}
	if res.Materials.Gates > 0 {
		rows = append(rows, materialRow{"Gate Assembly", "Complete gate assembly with hinges and latch", res.Materials.Gates, "ea", gateUnitPrice})
	}

	widths := []float64{90, 210, 50, 40, 55, 60}
	headers := []string{"Item", "Description", "Qty", "Unit", "Unit Price", "Total"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(34, 85, 140)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 16, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)

	var subtotal float64
	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		total := float64(r.qty) * r.price
		subtotal += total
		cells := []string{
			r.item, r.description, fmt.Sprintf("%d", r.qty), r.unit,
			fmt.Sprintf("$%.2f", r.price), fmt.Sprintf("$%.2f", total),
		}
		aligns := []string{"L", "L", "C", "C", "R", "R"}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 16, c, "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 16, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(widths[4], 16, "Subtotal:", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 16, fmt.Sprintf("$%.2f", subtotal), "1", 1, "R", false, 0, "")
	pdf.Ln(8)
}

func writeCostBreakdown(pdf *gofpdf.Fpdf, res domain.CalcResult) {
	sectionHeader(pdf, "COST BREAKDOWN")

	costRow := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(300, 14, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(150, 14, value, "", 1, "R", false, 0, "")
	}

	c := res.Cost
	costRow("Materials & Supplies", fmt.Sprintf("$%.2f", c.MaterialCost), false)
	costRow("Labor & Installation", fmt.Sprintf("$%.2f", c.LaborCost), false)
	costRow("Gates & Hardware", fmt.Sprintf("$%.2f", c.GateCost), false)
	pdf.Ln(4)
	costRow("TOTAL PROJECT COST", fmt.Sprintf("$%.2f", c.TotalCost), true)
	if res.TotalLengthFt > 0 {
		costRow("Cost Per Foot", fmt.Sprintf("$%.2f", c.CostPerFoot), false)
	}
	if res.Fallback {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 12, "Estimate computed offline; final pricing confirmed on contract.", "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 12, "Payment Terms: 50% deposit required to begin work, remaining balance due upon completion. We accept cash, check, and major credit cards.", "", "L", false)
	pdf.Ln(8)
}

// writeDiagram draws the layout scaled into a fixed box, gates dashed.
func writeDiagram(pdf *gofpdf.Fpdf, segments []domain.Segment) {
	if len(segments) == 0 {
		return
	}
	paths := make([][]domain.Point, 0, len(segments))
	for _, s := range segments {
		paths = append(paths, s.Path)
	}
	bounds, ok := geometry.Bounds(paths...)
	if !ok || bounds.W <= 0 && bounds.H <= 0 {
		return
	}

	sectionHeader(pdf, "LAYOUT DIAGRAM")

	const boxW, boxH = 480.0, 180.0
	x0 := pdf.GetX()
	y0 := pdf.GetY()
	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(x0, y0, boxW, boxH, "D")

	scale := math.Min(boxW/math.Max(bounds.W, 1), boxH/math.Max(bounds.H, 1)) * 0.9
	offX := x0 + (boxW-bounds.W*scale)/2 - bounds.X*scale
	offY := y0 + (boxH-bounds.H*scale)/2 - bounds.Y*scale

	pdf.SetDrawColor(40, 40, 40)
	pdf.SetLineWidth(1.2)
	for _, s := range segments {
		if s.IsGate {
			pdf.SetDashPattern([]float64{4, 3}, 0)
		}
		for i := 0; i+1 < len(s.Path); i++ {
			pdf.Line(
				s.Path[i].X*scale+offX, s.Path[i].Y*scale+offY,
				s.Path[i+1].X*scale+offX, s.Path[i+1].Y*scale+offY)
		}
		if s.IsGate {
			pdf.SetDashPattern([]float64{}, 0)
		}
	}
	pdf.SetY(y0 + boxH + 12)
}

func writeTerms(pdf *gofpdf.Fpdf, co Company) {
	sectionHeader(pdf, "TERMS & CONDITIONS")
	terms := []string{
		"1. Quote Validity: This quote is valid for 30 days from the date above.",
		"2. Payment Terms: 50% deposit required before work begins, balance due upon completion.",
		"3. Materials: All materials are covered by manufacturer warranty. Labor warranty is 2 years.",
		"4. Timeline: Installation typically begins within 1-2 weeks of signed contract and deposit.",
		"5. Permits: Customer is responsible for obtaining any required permits unless otherwise specified.",
		"6. Site Preparation: Customer must mark all underground utilities before installation begins.",
		"7. Weather: Installation may be delayed due to weather conditions beyond our control.",
		"8. Changes: Any changes to the scope of work must be approved in writing and may affect pricing.",
	}
	pdf.SetFont("Helvetica", "", 8)
	for _, t := range terms {
		pdf.MultiCell(0, 11, t, "", "L", false)
	}
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(160, 14, "Customer Signature:", "", 0, "L", false, 0, "")
	pdf.CellFormat(180, 14, strings.Repeat("_", 30), "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 14, "Date:", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 14, strings.Repeat("_", 12), "", 1, "L", false, 0, "")
	pdf.Ln(8)
	pdf.CellFormat(160, 14, co.Name+" Representative:", "", 0, "L", false, 0, "")
	pdf.CellFormat(180, 14, strings.Repeat("_", 30), "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 14, "Date:", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 14, strings.Repeat("_", 12), "", 1, "L", false, 0, "")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
