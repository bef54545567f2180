package services

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

// Landscape A4 layout in millimetres
const (
	pdfMargin      = 10.0
	pdfLine        = 5.5
	pdfImageMaxW   = 105.0
	pdfImageMaxH   = 170.0 // page height less margins and the label line
	pdfMMPerPixel  = 25.4 / 96
	pdfUTF8Family  = "DejaVu"
	pdfCoreFamily  = "Arial"
	pdfFontBody    = 10.0
	pdfFontTitle   = 16.0
	pdfFontHeading = 14.0
)

var (
	pdfInfoWidths   = []float64{53, 141}
	pdfPeopleWidths = []float64{97, 97}
	pdfTallyWidths  = []float64{48.5, 48.5, 48.5, 48.5}
	pdfDetailWidths = []float64{25, 35, 53, 53, 28}
)

type pdfRenderer struct {
	fontPath string
	compress bool
}

func newPDFRenderer(fontPath string) *pdfRenderer {
	return &pdfRenderer{fontPath: fontPath, compress: true}
}

// pdfWriter draws report blocks on one document
type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
	images int
}

func (r *pdfRenderer) render(data *ReportData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin+2)

	w := &pdfWriter{pdf: pdf}
	r.setupFont(w)
	pdf.AddPage()

	w.title(labelTitle, pdfFontTitle)
	w.title(fmt.Sprintf(labelCompany, data.Company), pdfFontHeading)
	pdf.Ln(3)

	w.table(pdfInfoWidths, nil, [][]string{
		{labelDepartment, data.General.Department},
		{labelPerson, data.General.Person},
		{labelAuditTime, data.General.AuditTime},
		{labelAddress, data.General.Address},
	})
	pdf.Ln(4)

	if data.HasParticipants() {
		w.title(labelParticipants, pdfFontHeading)
		if len(data.CompanyParticipants) > 0 {
			w.table(pdfPeopleWidths, []string{labelFullName, labelPosition}, peopleRows(data.CompanyParticipants))
		}
		pdf.Ln(3)
		w.title(labelAuditors, pdfFontHeading)
		if len(data.Auditors) > 0 {
			w.table(pdfPeopleWidths, []string{labelFullName, labelPosition}, peopleRows(data.Auditors))
		}
		pdf.Ln(5)
	}

	for _, frame := range data.Frames {
		w.title(fmt.Sprintf(labelFrame, frame.FrameID), pdfFontHeading)
		w.table(pdfTallyWidths, resultHeaders(), [][]string{tallyRow(frame.Tally)})
		pdf.Ln(3)

		for i, f := range frame.Findings {
			w.text(fmt.Sprintf(labelItem, i+1))
			w.table(pdfDetailWidths, detailHeaders, [][]string{detailRow(f.AuditNote)})
			w.evidence(f)
			pdf.Ln(2)
		}
		pdf.Ln(5)
	}

	w.text(data.Generated())

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// setupFont registers the UTF-8 font when available. Without it the core
// font is used and Vietnamese text is folded to ASCII.
func (r *pdfRenderer) setupFont(w *pdfWriter) {
	if r.fontPath != "" {
		if _, err := os.Stat(r.fontPath); err == nil {
			w.pdf.AddUTF8Font(pdfUTF8Family, "", r.fontPath)
			w.pdf.AddUTF8Font(pdfUTF8Family, "B", r.fontPath)
			w.family, w.tr = pdfUTF8Family, func(s string) string { return s }
			return
		}
		logger.Warn("Report font not found, falling back to core font", "path", r.fontPath)
	}
	w.family, w.tr = pdfCoreFamily, foldASCII
}

func (w *pdfWriter) title(s string, size float64) {
	w.pdf.SetFont(w.family, "B", size)
	w.pdf.CellFormat(0, size*0.6, w.tr(s), "", 1, "C", false, 0, "")
	w.pdf.Ln(1)
}

func (w *pdfWriter) text(s string) {
	w.pdf.SetFont(w.family, "", pdfFontBody)
	w.pdf.MultiCell(0, pdfLine, w.tr(s), "", "L", false)
}

// table draws an optional grey header row followed by rows, every row as
// tall as its longest wrapped cell.
func (w *pdfWriter) table(widths []float64, header []string, rows [][]string) {
	if header != nil {
		w.pdf.SetFont(w.family, "B", pdfFontBody)
		w.row(widths, header, true)
	}
	w.pdf.SetFont(w.family, "", pdfFontBody)
	for _, r := range rows {
		w.row(widths, r, false)
	}
}

func (w *pdfWriter) row(widths []float64, cells []string, header bool) {
	pdf := w.pdf
	texts := make([]string, len(cells))
	lines := 1
	for i, c := range cells {
		texts[i] = w.tr(c)
		if n := len(pdf.SplitText(texts[i], widths[i])); n > lines {
			lines = n
		}
	}
	height := float64(lines) * pdfLine
	w.ensureRoom(height)

	left, _, _, _ := pdf.GetMargins()
	x, y := left, pdf.GetY()
	style, align := "D", "L"
	if header {
		pdf.SetFillColor(211, 211, 211)
		style, align = "FD", "C"
	}
	for i, t := range texts {
		pdf.Rect(x, y, widths[i], height, style)
		pdf.SetXY(x, y)
		pdf.MultiCell(widths[i], pdfLine, t, "", align, false)
		x += widths[i]
	}
	pdf.SetXY(left, y+height)
}

// ensureRoom starts a new page unless height fits below the cursor
func (w *pdfWriter) ensureRoom(height float64) {
	_, pageH := w.pdf.GetPageSize()
	_, _, _, bottom := w.pdf.GetMargins()
	if w.pdf.GetY()+height > pageH-bottom {
		w.pdf.AddPage()
	}
}

func (w *pdfWriter) evidence(f ReportFinding) {
	switch {
	case f.Image != nil:
		w.text(labelEvidenceImage)
		w.images++
		name := "evidence-" + strconv.Itoa(w.images)
		opts := gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
		w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(f.Image.JPEG))
		width, height := fitBox(f.Image.Width, f.Image.Height, pdfMMPerPixel, pdfImageMaxW, pdfImageMaxH)
		w.ensureRoom(height)
		w.pdf.ImageOptions(name, w.pdf.GetX(), w.pdf.GetY(), width, height, true, opts, 0, "")
	case f.ImageError != "":
		w.text(f.ImageError)
	}
}

func peopleRows(people []models.Participant) [][]string {
	rows := make([][]string, 0, len(people))
	for _, p := range people {
		rows = append(rows, []string{p.FullName, p.Position})
	}
	return rows
}

func resultHeaders() []string {
	out := make([]string, len(models.Results))
	for i, r := range models.Results {
		out[i] = string(r)
	}
	return out
}

func tallyRow(t models.Tally) []string {
	out := make([]string, len(models.Results))
	for i, r := range models.Results {
		out[i] = strconv.Itoa(t.Count(r))
	}
	return out
}

func detailRow(n models.AuditNote) []string {
	return []string{n.Clause, n.ClauseName, n.Requirements, n.Evidence, string(n.Result)}
}

// foldASCII strips Vietnamese diacritics and replaces anything the core
// fonts cannot show.
func foldASCII(s string) string {
	s = strings.NewReplacer("đ", "d", "Đ", "D").Replace(s)
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(folder, s); err == nil {
		s = out
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || (r >= 0x20 && r < 0x7f) {
			return r
		}
		return '?'
	}, s)
}
