package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/common/units"
	"github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/gomutex/godocx/wml/stypes"
)

// Landscape A4 in twips; evidence photos are capped in inches
const (
	docxPageW        = 16838
	docxPageH        = 11906
	docxImageMaxW    = 4.0
	docxImageMaxH    = 5.5
	docxInchPerPx    = 1.0 / 96
	docxTableStyle   = "TableGrid"
	docxSectionLevel = 2
)

// docxWriter appends report blocks to a godocx document. godocx embeds
// pictures from files, so evidence JPEGs are staged in a temp dir.
type docxWriter struct {
	doc    *docx.RootDoc
	tmp    string
	images int
}

func renderDOCX(data *ReportData) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}
	landscape(doc)

	w := &docxWriter{doc: doc}
	defer w.cleanup()

	if err := w.title(labelTitle, 0); err != nil {
		return nil, err
	}
	if err := w.title(fmt.Sprintf(labelCompany, data.Company), 1); err != nil {
		return nil, err
	}

	if err := w.title(labelGeneral, docxSectionLevel); err != nil {
		return nil, err
	}
	w.table(nil, [][]string{
		{labelDepartment, data.General.Department},
		{labelPerson, data.General.Person},
		{labelAuditTime, data.General.AuditTime},
		{labelAddress, data.General.Address},
	})

	if data.HasParticipants() {
		if err := w.title(labelParticipants, docxSectionLevel); err != nil {
			return nil, err
		}
		if len(data.CompanyParticipants) > 0 {
			w.table([]string{labelFullName, labelPosition}, peopleRows(data.CompanyParticipants))
		}
		if err := w.title(labelAuditors, docxSectionLevel); err != nil {
			return nil, err
		}
		if len(data.Auditors) > 0 {
			w.table([]string{labelFullName, labelPosition}, peopleRows(data.Auditors))
		}
	}

	for _, frame := range data.Frames {
		if err := w.title(fmt.Sprintf(labelFrame, frame.FrameID), docxSectionLevel); err != nil {
			return nil, err
		}
		w.table(resultHeaders(), [][]string{tallyRow(frame.Tally)})
		doc.AddEmptyParagraph()

		for i, f := range frame.Findings {
			doc.AddEmptyParagraph().AddText(fmt.Sprintf(labelItem, i+1)).Bold(true)
			w.table(detailHeaders, [][]string{detailRow(f.AuditNote)})
			if err := w.evidence(f); err != nil {
				return nil, err
			}
			doc.AddEmptyParagraph()
		}
	}

	doc.AddParagraph(data.Generated())

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return buf.Bytes(), nil
}

// landscape turns the template's final section into landscape A4
func landscape(doc *docx.RootDoc) {
	body := doc.Document.Body
	if body.SectPr == nil {
		body.SectPr = ctypes.NewSectionProper()
	}
	width, height := uint64(docxPageW), uint64(docxPageH)
	body.SectPr.PageSize = &ctypes.PageSize{Width: &width, Height: &height, Orient: stypes.PageOrientLandscape}
}

// title adds a heading; level 0 is the centred document title
func (w *docxWriter) title(text string, level uint) error {
	p, err := w.doc.AddHeading(text, level)
	if err != nil {
		return fmt.Errorf("heading %q: %w", text, err)
	}
	if level <= 1 {
		p.Justification(stypes.JustificationCenter)
	}
	return nil
}

func (w *docxWriter) table(header []string, rows [][]string) {
	tbl := w.doc.AddTable()
	tbl.Style(docxTableStyle)
	if header != nil {
		row := tbl.AddRow()
		for _, h := range header {
			p := row.AddCell().AddEmptyPara()
			p.Justification(stypes.JustificationCenter)
			p.AddText(h).Bold(true)
		}
	}
	for _, cells := range rows {
		row := tbl.AddRow()
		for _, c := range cells {
			writeLines(row.AddCell().AddEmptyPara(), c)
		}
	}
}

// writeLines keeps multi-line evidence readable by turning newlines into
// breaks
func writeLines(p *docx.Paragraph, text string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		r := p.AddText(line)
		if i < len(lines)-1 {
			r.AddBreak(nil)
		}
	}
}

func (w *docxWriter) evidence(f ReportFinding) error {
	switch {
	case f.Image != nil:
		w.doc.AddParagraph(labelEvidenceImage)
		path, err := w.stage(f.Image.JPEG)
		if err != nil {
			return err
		}
		width, height := fitBox(f.Image.Width, f.Image.Height, docxInchPerPx, docxImageMaxW, docxImageMaxH)
		if _, err := w.doc.AddPicture(path, units.Inch(width), units.Inch(height)); err != nil {
			return fmt.Errorf("embed evidence: %w", err)
		}
	case f.ImageError != "":
		w.doc.AddParagraph(f.ImageError)
	}
	return nil
}

// stage writes one JPEG where AddPicture can read it
func (w *docxWriter) stage(jpeg []byte) (string, error) {
	if w.tmp == "" {
		dir, err := os.MkdirTemp("", "auditnote-docx-")
		if err != nil {
			return "", fmt.Errorf("stage evidence: %w", err)
		}
		w.tmp = dir
	}
	w.images++
	path := filepath.Join(w.tmp, fmt.Sprintf("evidence-%d.jpg", w.images))
	if err := os.WriteFile(path, jpeg, 0o600); err != nil {
		return "", fmt.Errorf("stage evidence: %w", err)
	}
	return path, nil
}

func (w *docxWriter) cleanup() {
	if w.tmp != "" {
		os.RemoveAll(w.tmp)
	}
}
