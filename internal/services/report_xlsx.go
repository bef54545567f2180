package services

import (
	"fmt"

	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Tổng hợp"
	detailSheet  = "Chi tiết"
)

var detailSheetHeaders = []string{
	"Frame", "Panel", "Điều khoản", "Tên điều khoản",
	"Các yêu cầu Tiêu chuẩn/Chuẩn mực đánh giá", "Bằng chứng đánh giá",
	"Kết quả đánh giá", "Hình ảnh", "Đánh giá viên", "Thời điểm",
}

// renderXLSX writes a summary sheet and a flat detail sheet. Images stay as
// links in the detail sheet.
func renderXLSX(data *ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(detailSheet); err != nil {
		return nil, err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})

	s := &xlsxSheet{f: f, name: summarySheet, row: 1}
	s.put(titleStyle, labelTitle)
	s.put(titleStyle, fmt.Sprintf(labelCompany, data.Company))
	s.row++

	s.put(headerStyle, labelGeneral)
	s.put(0, labelDepartment, data.General.Department)
	s.put(0, labelPerson, data.General.Person)
	s.put(0, labelAuditTime, data.General.AuditTime)
	s.put(0, labelAddress, data.General.Address)
	s.row++

	if data.HasParticipants() {
		s.put(headerStyle, labelParticipants)
		s.put(headerStyle, labelFullName, labelPosition)
		for _, r := range peopleRows(data.CompanyParticipants) {
			s.put(0, r...)
		}
		s.row++
		s.put(headerStyle, labelAuditors)
		s.put(headerStyle, labelFullName, labelPosition)
		for _, r := range peopleRows(data.Auditors) {
			s.put(0, r...)
		}
		s.row++
	}

	for _, frame := range data.Frames {
		s.put(titleStyle, fmt.Sprintf(labelFrame, frame.FrameID))
		s.put(headerStyle, resultHeaders()...)
		counts := make([]interface{}, 0, len(models.Results))
		for _, r := range models.Results {
			counts = append(counts, frame.Tally.Count(r))
		}
		s.putValues(0, counts)
		s.row++
	}
	s.put(0, data.Generated())
	_ = f.SetColWidth(summarySheet, "A", "D", 32)

	d := &xlsxSheet{f: f, name: detailSheet, row: 1}
	d.put(headerStyle, detailSheetHeaders...)
	for _, frame := range data.Frames {
		for _, n := range frame.Findings {
			d.put(wrapStyle,
				n.FrameID, n.PanelID, n.Clause, n.ClauseName, n.Requirements,
				n.Evidence, string(n.Result), n.ImageURL, n.Auditor, n.Timestamp)
		}
	}
	_ = f.SetColWidth(detailSheet, "A", "D", 14)
	_ = f.SetColWidth(detailSheet, "E", "F", 48)
	_ = f.SetColWidth(detailSheet, "G", "J", 20)
	_ = f.SetPanes(detailSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xlsxSheet writes consecutive rows starting at column A
type xlsxSheet struct {
	f    *excelize.File
	name string
	row  int
}

func (s *xlsxSheet) put(style int, cells ...string) {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	s.putValues(style, values)
}

func (s *xlsxSheet) putValues(style int, values []interface{}) {
	start, _ := excelize.CoordinatesToCellName(1, s.row)
	_ = s.f.SetSheetRow(s.name, start, &values)
	if style != 0 && len(values) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(values), s.row)
		_ = s.f.SetCellStyle(s.name, start, end, style)
	}
	s.row++
}
