package services

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/repository"
	"github.com/auditnote/auditnote-api/internal/storage"
)

type reportFixture struct {
	svc   *ReportService
	repos *repository.Repositories
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	repos, _ := newTestRepos(t)
	svc := NewReportService(repos.Note, repos.Participant, newTestConfig())
	svc.now = func() time.Time { return fixedNow }
	return &reportFixture{svc: svc, repos: repos}
}

func (f *reportFixture) addNote(t *testing.T, frameID, clause string, result models.Result, imageURL string) {
	t.Helper()
	require.NoError(t, f.repos.Note.Append(context.Background(), models.AuditNote{
		Company:    "Acme",
		Address:    "1 Le Loi",
		Department: "Kỹ thuật",
		Person:     "Trần B",
		AuditTime:  "2024-05-06 09:00",
		FrameID:    frameID,
		PanelID:    "1",
		Clause:     clause,
		ClauseName: "Energy review",
		Evidence:   "Báo cáo năng lượng",
		ImageURL:   imageURL,
		Result:     result,
		Auditor:    "a@example.com",
		Timestamp:  "2024-05-06 09:10:00",
	}))
}

func (f *reportFixture) addParticipants(t *testing.T, frameID string) {
	t.Helper()
	require.NoError(t, f.repos.Participant.AppendAll(context.Background(), []models.Participant{
		{Company: "Acme", FrameID: frameID, FullName: "Trần B", Position: "QA", Role: models.RoleCompany},
		{Company: "Acme", FrameID: frameID, FullName: "Nguyễn Văn A", Position: "Trưởng đoàn", Role: models.RoleAuditor},
	}))
}

func pngServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.RGBA{B: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReportService_CollectSingleFinding(t *testing.T) {
	f := newReportFixture(t)
	f.addNote(t, "1", "6.3", models.ResultPI, "")
	f.addParticipants(t, "1")

	data, err := f.svc.Collect(context.Background(), "Acme", "")
	require.NoError(t, err)

	assert.Equal(t, GeneralInfo{Department: "Kỹ thuật", Person: "Trần B", AuditTime: "2024-05-06 09:00", Address: "1 Le Loi"}, data.General)
	require.Len(t, data.Frames, 1)
	assert.Equal(t, models.Tally{PI: 1}, data.Frames[0].Tally)
	assert.Equal(t, "", data.Frames[0].Findings[0].ImageURL)
	require.Len(t, data.CompanyParticipants, 1)
	require.Len(t, data.Auditors, 1)
	assert.Equal(t, "Nguyễn Văn A", data.Auditors[0].FullName)
	assert.Equal(t, "Báo cáo được xuất ngày: 06/05/2024 09:30:00", data.Generated())
}

func TestReportService_CollectKeepsFrameOrder(t *testing.T) {
	f := newReportFixture(t)
	f.addNote(t, "2", "4.1", models.ResultCM, "")
	f.addNote(t, "1", "4.2", models.ResultNCA, "")
	f.addNote(t, "2", "4.3", models.ResultNCB, "")

	data, err := f.svc.Collect(context.Background(), "Acme", "")
	require.NoError(t, err)
	require.Len(t, data.Frames, 2)
	assert.Equal(t, "2", data.Frames[0].FrameID)
	assert.Len(t, data.Frames[0].Findings, 2)
	assert.Equal(t, "1", data.Frames[1].FrameID)
	assert.False(t, data.HasParticipants())

	data, err = f.svc.Collect(context.Background(), "Acme", "1")
	require.NoError(t, err)
	require.Len(t, data.Frames, 1)
	assert.Equal(t, models.Tally{NCA: 1}, data.Frames[0].Tally)
}

func TestReportService_ExportWithoutDataReturnsErrNoData(t *testing.T) {
	f := newReportFixture(t)
	f.addNote(t, "1", "6.3", models.ResultPI, "")

	_, err := f.svc.Export(context.Background(), "Other", "", FormatPDF)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = f.svc.Export(context.Background(), "Acme", "9", FormatHTML)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestReportService_ExportRejectsUnknownFormat(t *testing.T) {
	f := newReportFixture(t)
	f.addNote(t, "1", "6.3", models.ResultPI, "")

	_, err := f.svc.Export(context.Background(), "Acme", "", "odt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReportService_ExportPDF(t *testing.T) {
	f := newReportFixture(t)
	f.addNote(t, "1", "6.3", models.ResultPI, "")
	f.addParticipants(t, "1")

	file, err := f.svc.Export(context.Background(), "Acme", "", " PDF ")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "bao_cao_danh_gia_iso_Acme_20240506_093000.pdf", file.FileName)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))

	data, err := f.svc.Collect(context.Background(), "Acme", "")
	require.NoError(t, err)
	r := newPDFRenderer("")
	r.compress = false
	out, err := r.render(data)
	require.NoError(t, err)
	assert.Contains(t, string(out), "FRAME 1")
	assert.Contains(t, string(out), "Ky thuat", "core font output is folded to ASCII")

	var shown []string
	for _, m := range pdfTextOps.FindAllStringSubmatch(string(out), -1) {
		shown = append(shown, m[1])
	}
	assert.True(t, containsRun(shown, []string{"NCA", "NCB", "PI", "CM", "0", "0", "1", "0"}),
		"tally table cells in order, got %v", shown)
}

var (
	pdfTextOps  = regexp.MustCompile(`\(([^()]*)\) ?Tj`)
	docxTextRun = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
)

// containsRun reports whether want appears in got as a contiguous run
func containsRun(got, want []string) bool {
	for i := 0; i+len(want) <= len(got); i++ {
		match := true
		for j := range want {
			if got[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestReportService_ImageFailureRendersInlineMarker(t *testing.T) {
	srv := pngServer(t)
	f := newReportFixture(t)
	f.addNote(t, "1", "6.3", models.ResultPI, srv.URL+"/missing.png")
	f.addNote(t, "1", "6.4", models.ResultCM, srv.URL+"/ok.png")

	data, err := f.svc.Collect(context.Background(), "Acme", "")
	require.NoError(t, err)
	f.svc.attachImages(context.Background(), data)

	findings := data.Frames[0].Findings
	assert.Nil(t, findings[0].Image)
	assert.Equal(t, "[Không thể hiển thị hình ảnh: HTTP 404]", findings[0].ImageError)
	require.NotNil(t, findings[1].Image)
	assert.Equal(t, 40, findings[1].Image.Width)
	assert.Equal(t, 20, findings[1].Image.Height)
	assert.Empty(t, findings[1].ImageError)

	file, err := f.svc.Export(context.Background(), "Acme", "", FormatHTML)
	require.NoError(t, err)
	html := string(file.Data)
	assert.Contains(t, html, "Không thể hiển thị hình ảnh: HTTP 404")
	assert.Contains(t, html, "data:image/jpeg;base64,")

	pdf, err := f.svc.Export(context.Background(), "Acme", "", FormatPDF)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf.Data)
}

func TestReportService_LocalEvidenceReadFromDisk(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 10))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	// nothing listens on this address, so only a disk read can succeed
	local, err := storage.NewLocalStorage(t.TempDir(), "http://127.0.0.1:1")
	require.NoError(t, err)
	url, err := local.Upload(context.Background(), storage.Media{Name: "photo.png", MIMEType: "image/png", Data: buf.Bytes()})
	require.NoError(t, err)

	f := newReportFixture(t)
	f.svc.UseLocalFiles(local)
	f.addNote(t, "1", "6.3", models.ResultPI, url)

	data, err := f.svc.Collect(context.Background(), "Acme", "")
	require.NoError(t, err)
	f.svc.attachImages(context.Background(), data)

	finding := data.Frames[0].Findings[0]
	assert.Empty(t, finding.ImageError)
	require.NotNil(t, finding.Image)
	assert.Equal(t, 30, finding.Image.Width)
}

func TestReportService_ExportHTML(t *testing.T) {
	f := newReportFixture(t)
	f.addNote(t, "1", "6.3", models.ResultPI, "")
	f.addParticipants(t, "1")

	file, err := f.svc.Export(context.Background(), "Acme", "", FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", file.ContentType)

	html := string(file.Data)
	for _, want := range []string{
		"BÁO CÁO ĐÁNH GIÁ ISO", "Công ty: Acme", "THÀNH VIÊN THAM GIA",
		"ĐÁNH GIÁ VIÊN", "FRAME 1", "Điều mục 1:", "Kỹ thuật",
	} {
		assert.Contains(t, html, want)
	}
}

func TestReportService_ExportDOCX(t *testing.T) {
	srv := pngServer(t)
	f := newReportFixture(t)
	f.addNote(t, "1", "6.3", models.ResultPI, srv.URL+"/ok.png")
	f.addParticipants(t, "1")

	file, err := f.svc.Export(context.Background(), "Acme", "", FormatDOCX)
	require.NoError(t, err)
	assert.Equal(t, "bao_cao_danh_gia_iso_Acme_20240506_093000.docx", file.FileName)

	zr, err := zip.NewReader(bytes.NewReader(file.Data), int64(len(file.Data)))
	require.NoError(t, err)

	parts := map[string]string{}
	for _, zf := range zr.File {
		rc, err := zf.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		parts[zf.Name] = string(b)
	}

	require.Contains(t, parts, "[Content_Types].xml")
	require.Contains(t, parts, "word/media/image1.jpg")
	doc := parts["word/document.xml"]
	for _, want := range []string{
		labelTitle, "Công ty: Acme", "Thông tin chung", "Kỹ thuật",
		labelParticipants, labelAuditors, "Nguyễn Văn A",
		"FRAME 1", "Điều mục 1:", "Energy review", labelEvidenceImage,
	} {
		assert.Contains(t, doc, want)
	}
	assert.Contains(t, doc, `w:orient="landscape"`)
	assert.Contains(t, doc, "r:embed=")
	assert.Contains(t, parts["word/_rels/document.xml.rels"], "media/image1.jpg")
	assert.Contains(t, parts["[Content_Types].xml"], "image/jpeg")

	var cells []string
	for _, m := range docxTextRun.FindAllStringSubmatch(doc, -1) {
		cells = append(cells, m[1])
	}
	assert.True(t, containsRun(cells, []string{"NCA", "NCB", "PI", "CM", "0", "0", "1", "0"}),
		"tally table cells in order, got %v", cells)
}

func TestReportService_ExportXLSX(t *testing.T) {
	f := newReportFixture(t)
	f.addNote(t, "1", "6.3", models.ResultPI, "https://drive.google.com/uc?export=view&id=abc")
	f.addNote(t, "2", "7.1", models.ResultNCA, "")

	file, err := f.svc.Export(context.Background(), "Acme", "", FormatXLSX)
	require.NoError(t, err)

	x, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer x.Close()

	assert.Equal(t, []string{summarySheet, detailSheet}, x.GetSheetList())

	rows, err := x.GetRows(detailSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, detailSheetHeaders, rows[0])
	assert.Equal(t, "6.3", rows[1][2])
	assert.Equal(t, "PI", rows[1][6])
	assert.Equal(t, "https://drive.google.com/uc?export=view&id=abc", rows[1][7])

	title, err := x.GetCellValue(summarySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, labelTitle, title)
}

func TestReportFileName(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "bao_cao_danh_gia_iso_Cong_ty_ABC_20240102_030405.docx", ReportFileName("Cong ty ABC", "docx", at))
}

func TestDataURL(t *testing.T) {
	url := (&ExportFile{Data: []byte("hi")}).DataURL()
	assert.True(t, strings.HasPrefix(url, "data:application/octet-stream;base64,"))
	assert.Equal(t, "data:application/octet-stream;base64,aGk=", url)
}

func TestFoldASCII(t *testing.T) {
	assert.Equal(t, "BAO CAO DANH GIA ISO", foldASCII("BÁO CÁO ĐÁNH GIÁ ISO"))
	assert.Equal(t, "Dieu muc 1:", foldASCII("Điều mục 1:"))
}

func TestFitBox(t *testing.T) {
	w, h := fitBox(2000, 1000, 1, 500, 500)
	assert.Equal(t, 500.0, w)
	assert.Equal(t, 250.0, h)

	w, h = fitBox(100, 50, 1, 500, 500)
	assert.Equal(t, 100.0, w)
	assert.Equal(t, 50.0, h)

	w, h = fitBox(100, 800, 1, 500, 400)
	assert.Equal(t, 50.0, w)
	assert.Equal(t, 400.0, h)

	w, h = fitBox(0, 0, 1, 500, 400)
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 400.0, h)

	_, h = fitBox(400, 3200, pdfMMPerPixel, pdfImageMaxW, pdfImageMaxH)
	assert.InDelta(t, pdfImageMaxH, h, 0.001)
}

func TestReportService_TallEvidenceFitsOnePage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 2000))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	f := newReportFixture(t)
	f.addNote(t, "1", "6.3", models.ResultPI, "")
	data, err := f.svc.Collect(context.Background(), "Acme", "")
	require.NoError(t, err)
	data.Frames[0].Findings[0].Image = &EvidenceImage{JPEG: buf.Bytes(), Width: 100, Height: 2000}

	r := newPDFRenderer("")
	r.compress = false
	out, err := r.render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	_, err = renderDOCX(data)
	require.NoError(t, err)
}
