package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets and fixed documents into PDF bytes.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Certificate describes the content of a training certificate page.
type Certificate struct {
	Number       string
	EventName    string
	Participant  string
	Location     string
	PeriodLabel  string
	IssuedAtText string
}

// RenderCertificate creates a landscape certificate page.
func (e *PDFExporter) RenderCertificate(cert Certificate) ([]byte, error) {
	if cert.Participant == "" || cert.EventName == "" {
		return nil, fmt.Errorf("certificate requires participant and event")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 30, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 24)
	pdf.CellFormat(0, 14, "CERTIFICADO", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 8, "Certificamos que", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, cert.Participant, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 8, "participou do evento", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 15)
	pdf.CellFormat(0, 10, cert.EventName, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	if cert.PeriodLabel != "" {
		pdf.CellFormat(0, 7, cert.PeriodLabel, "", 1, "C", false, 0, "")
	}
	if cert.Location != "" {
		pdf.CellFormat(0, 7, cert.Location, "", 1, "C", false, 0, "")
	}

	pdf.Ln(12)
	pdf.SetFont("Arial", "", 9)
	if cert.Number != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Certificado nº %s", cert.Number), "", 1, "C", false, 0, "")
	}
	if cert.IssuedAtText != "" {
		pdf.CellFormat(0, 6, cert.IssuedAtText, "", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// Receipt describes a PPE delivery receipt.
type Receipt struct {
	Title          string
	DocumentNumber string
	Employee       string
	Technician     string
	DeliveredAt    string
	Items          Dataset
}

// RenderReceipt creates a portrait delivery receipt with an item table and a
// signature line.
func (e *PDFExporter) RenderReceipt(r Receipt) ([]byte, error) {
	if len(r.Items.Headers) == 0 {
		return nil, fmt.Errorf("receipt requires item headers")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	title := r.Title
	if title == "" {
		title = "Recibo de entrega de EPI"
	}
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Documento: %s", r.DocumentNumber), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Funcionário: %s", r.Employee), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Técnico responsável: %s", r.Technician), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Data de entrega: %s", r.DeliveredAt), "", 1, "", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	colWidth := 180.0 / float64(len(r.Items.Headers))
	for _, header := range r.Items.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range r.Items.Rows {
		for _, header := range r.Items.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(20)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "_________________________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Assinatura do funcionário", "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
