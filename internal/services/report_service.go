package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/repository"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

// Report formats
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

var reportContentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatHTML: "text/html; charset=utf-8",
}

// Report labels shared by every renderer
const (
	labelTitle         = "BÁO CÁO ĐÁNH GIÁ ISO"
	labelCompany       = "Công ty: %s"
	labelGeneral       = "Thông tin chung"
	labelDepartment    = "Bộ phận được đánh giá:"
	labelPerson        = "Người đối ứng:"
	labelAuditTime     = "Thời gian đánh giá:"
	labelAddress       = "Địa chỉ:"
	labelParticipants  = "THÀNH VIÊN THAM GIA"
	labelAuditors      = "ĐÁNH GIÁ VIÊN"
	labelFullName      = "Họ và tên"
	labelPosition      = "Chức vụ"
	labelFrame         = "FRAME %s"
	labelItem          = "Điều mục %d:"
	labelEvidenceImage = "Hình ảnh bằng chứng:"
	labelImageError    = "[Không thể hiển thị hình ảnh: %s]"
	labelGenerated     = "Báo cáo được xuất ngày: %s"

	generatedLayout = "02/01/2006 15:04:05"
	fileStampLayout = "20060102_150405"
)

var detailHeaders = []string{
	"Điều khoản",
	"Tên điều khoản",
	"Các yêu cầu Tiêu chuẩn/Chuẩn mực đánh giá",
	"Bằng chứng đánh giá",
	"Kết quả đánh giá",
}

// GeneralInfo is taken from the first finding of the report
type GeneralInfo struct {
	Department string
	Person     string
	AuditTime  string
	Address    string
}

// EvidenceImage is a fetched photo re-encoded as JPEG
type EvidenceImage struct {
	JPEG   []byte
	Width  int
	Height int
}

// ReportFinding is one detail block
type ReportFinding struct {
	models.AuditNote
	Image      *EvidenceImage
	ImageError string
}

// ReportFrame is one frame section: tally first, then findings
type ReportFrame struct {
	FrameID  string
	Tally    models.Tally
	Findings []ReportFinding
}

// ReportData is everything a renderer needs
type ReportData struct {
	Company             string
	General             GeneralInfo
	CompanyParticipants []models.Participant
	Auditors            []models.Participant
	Frames              []ReportFrame
	GeneratedAt         time.Time
}

// HasParticipants reports whether the participants section is rendered
func (d *ReportData) HasParticipants() bool {
	return len(d.CompanyParticipants) > 0 || len(d.Auditors) > 0
}

// Generated is the footer line
func (d *ReportData) Generated() string {
	return fmt.Sprintf(labelGenerated, d.GeneratedAt.Format(generatedLayout))
}

// ExportFile is a rendered report
type ExportFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// DataURL returns the file as a download link target
func (f *ExportFile) DataURL() string {
	return DataURL(f.Data)
}

type ReportService struct {
	notes        repository.NoteRepository
	participants repository.ParticipantRepository
	fetcher      *evidenceFetcher
	cfg          *config.Config
	now          func() time.Time
}

func NewReportService(notes repository.NoteRepository, participants repository.ParticipantRepository, cfg *config.Config) *ReportService {
	return &ReportService{
		notes:        notes,
		participants: participants,
		fetcher:      newEvidenceFetcher(cfg.ImageFetchTimeout),
		cfg:          cfg,
		now:          time.Now,
	}
}

// Collect reads the persisted findings of company, optionally narrowed to
// one frame. Frames keep the order in which they first appear.
func (s *ReportService) Collect(ctx context.Context, company, frameID string) (*ReportData, error) {
	filter := repository.NoteFilter{Company: company, FrameID: frameID}
	notes, err := s.notes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, ErrNoData
	}
	participants, err := s.participants.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	first := notes[0]
	data := &ReportData{
		Company: company,
		General: GeneralInfo{
			Department: first.Department,
			Person:     first.Person,
			AuditTime:  first.AuditTime,
			Address:    first.Address,
		},
		GeneratedAt: s.now(),
	}
	for _, p := range participants {
		switch p.Role {
		case models.RoleCompany:
			data.CompanyParticipants = append(data.CompanyParticipants, p)
		case models.RoleAuditor:
			data.Auditors = append(data.Auditors, p)
		}
	}
	for _, g := range groupByFrame(notes) {
		frame := ReportFrame{FrameID: g.FrameID, Tally: g.Tally}
		for _, n := range g.Notes {
			frame.Findings = append(frame.Findings, ReportFinding{AuditNote: n})
		}
		data.Frames = append(data.Frames, frame)
	}
	return data, nil
}

// Export renders the report in format
func (s *ReportService) Export(ctx context.Context, company, frameID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	contentType, ok := reportContentTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	data, err := s.Collect(ctx, company, frameID)
	if err != nil {
		return nil, err
	}
	if format != FormatXLSX {
		s.attachImages(ctx, data)
	}

	var out []byte
	switch format {
	case FormatPDF:
		out, err = s.renderPDF(data)
	case FormatDOCX:
		out, err = renderDOCX(data)
	case FormatXLSX:
		out, err = renderXLSX(data)
	case FormatHTML:
		out, err = renderHTML(data)
	}
	if err != nil {
		logger.Error("Report render failed", "company", company, "format", format, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExportRender, err)
	}

	return &ExportFile{
		FileName:    ReportFileName(company, format, data.GeneratedAt),
		ContentType: contentType,
		Data:        out,
	}, nil
}

// UseLocalFiles reads evidence that local resolves from disk instead of
// over HTTP
func (s *ReportService) UseLocalFiles(local LocalFiles) {
	s.fetcher.local = local
}

func (s *ReportService) renderPDF(data *ReportData) ([]byte, error) {
	if s.cfg.PDFEngine == config.PDFEngineWkhtmltopdf {
		return renderWkhtmltopdf(data, s.cfg.WkhtmltopdfPath)
	}
	return newPDFRenderer(s.cfg.ReportFontPath).render(data)
}

// attachImages fetches every evidence photo once. Failures are recorded on
// the finding and rendered inline.
func (s *ReportService) attachImages(ctx context.Context, data *ReportData) {
	type fetched struct {
		img *EvidenceImage
		err error
	}
	seen := make(map[string]fetched)
	for fi := range data.Frames {
		findings := data.Frames[fi].Findings
		for i := range findings {
			url := strings.TrimSpace(findings[i].ImageURL)
			if url == "" {
				continue
			}
			r, ok := seen[url]
			if !ok {
				r.img, r.err = s.fetcher.Fetch(ctx, url)
				seen[url] = r
				if r.err != nil {
					logger.Warn("Evidence image unavailable for report", "url", url, "error", r.err)
				}
			}
			if r.err != nil {
				findings[i].ImageError = fmt.Sprintf(labelImageError, r.err)
				continue
			}
			findings[i].Image = r.img
		}
	}
}

// ReportFileName builds bao_cao_danh_gia_iso_<company>_<YYYYMMDD_HHMMSS>.<ext>
func ReportFileName(company, ext string, at time.Time) string {
	safe := strings.ReplaceAll(company, " ", "_")
	return fmt.Sprintf("bao_cao_danh_gia_iso_%s_%s.%s", safe, at.Format(fileStampLayout), ext)
}

// DataURL encodes data as an octet-stream data URL
func DataURL(data []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
}
