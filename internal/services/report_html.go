package services

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

//go:embed templates/reports/*.html
var reportTemplates embed.FS

var reportTemplate = template.Must(template.ParseFS(reportTemplates, "templates/reports/audit_report.html"))

type reportLabels struct {
	Title, Department, Person, AuditTime, Address string
	Participants, Auditors, FullName, Position    string
	EvidenceImage                                 string
}

var htmlLabels = reportLabels{
	Title:         labelTitle,
	Department:    labelDepartment,
	Person:        labelPerson,
	AuditTime:     labelAuditTime,
	Address:       labelAddress,
	Participants:  labelParticipants,
	Auditors:      labelAuditors,
	FullName:      labelFullName,
	Position:      labelPosition,
	EvidenceImage: labelEvidenceImage,
}

type htmlFinding struct {
	ReportFinding
	Heading  string
	ImageSrc template.URL
}

type htmlFrame struct {
	Heading  string
	Results  []string
	Counts   []string
	Findings []htmlFinding
}

type htmlReport struct {
	*ReportData
	L             reportLabels
	CompanyLine   string
	DetailHeaders []string
	HTMLFrames    []htmlFrame
}

func renderHTML(data *ReportData) ([]byte, error) {
	view := htmlReport{
		ReportData:    data,
		L:             htmlLabels,
		CompanyLine:   fmt.Sprintf(labelCompany, data.Company),
		DetailHeaders: detailHeaders,
	}
	for _, f := range data.Frames {
		hf := htmlFrame{
			Heading: fmt.Sprintf(labelFrame, f.FrameID),
			Results: resultHeaders(),
			Counts:  tallyRow(f.Tally),
		}
		for i, finding := range f.Findings {
			item := htmlFinding{ReportFinding: finding, Heading: fmt.Sprintf(labelItem, i+1)}
			if finding.Image != nil {
				item.ImageSrc = template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(finding.Image.JPEG))
			}
			hf.Findings = append(hf.Findings, item)
		}
		view.HTMLFrames = append(view.HTMLFrames, hf)
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// renderWkhtmltopdf prints the HTML report to a landscape PDF
func renderWkhtmltopdf(data *ReportData, binPath string) ([]byte, error) {
	html, err := renderHTML(data)
	if err != nil {
		return nil, err
	}

	if binPath != "" {
		wkhtmltopdf.SetPath(binPath)
	}
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationLandscape)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}
