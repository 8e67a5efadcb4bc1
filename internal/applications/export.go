package applications

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"recruit-backend/internal/jobs"
	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/telemetry"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{
	"Applicant", "Email", "Status", "Applied", "Expected Salary",
	"Notice Period", "Relocate", "Rating", "Screening Score", "Tags", "Resume",
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Export renders the applications of a job as an XLSX workbook for its owner
// or an admin. It returns the suggested file name and the workbook bytes.
func (s *Service) Export(ctx context.Context, actor policy.Actor, jobID string) (string, []byte, error) {
	job, err := s.Jobs.Load(ctx, jobID)
	if err != nil {
		return "", nil, err
	}
	if !policy.CanMutateJob(actor, job.PostedBy).Allowed {
		return "", nil, apperr.Forbidden("Not authorized to export applications for this job")
	}
	apps, err := s.Repo.ListByJob(ctx, job.ID)
	if err != nil {
		return "", nil, err
	}
	data, err := s.workbook(ctx, job, apps)
	if err != nil {
		return "", nil, apperr.Internal("Failed to build export", err)
	}
	return exportFileName(job), data, nil
}

func (s *Service) workbook(ctx context.Context, job jobs.Job, apps []Application) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Applications"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(sheet, "A", "B", 28)
	_ = f.SetColWidth(sheet, "C", "K", 16)

	for i, app := range apps {
		name, email := s.contact(ctx, app.ApplicantID)
		row := []any{
			name,
			email,
			app.Status,
			app.CreatedAt.Format("2006-01-02"),
			optionalFloat(app.ExpectedSalary),
			app.NoticePeriod,
			yesNo(app.WillingToRelocate),
			optionalInt(app.Rating),
			screeningCell(app),
			strings.Join(app.Tags, ", "),
			resumeCell(app),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if len(apps) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), len(apps)+1)
		_ = f.AutoFilter(sheet, "A1:"+last, []excelize.AutoFilterOptions{})
	}
	_ = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	_ = f.SetDocProps(&excelize.DocProperties{Title: job.Title + " applications"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) contact(ctx context.Context, userID string) (string, string) {
	if s.Applicants == nil {
		return userID, ""
	}
	name, email, err := s.Applicants.Contact(ctx, userID)
	if err != nil {
		telemetry.Warn("applications.export_contact_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return userID, ""
	}
	return name, email
}

func exportFileName(job jobs.Job) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(job.Title), "-"), "-")
	if base == "" {
		base = "job"
	}
	return fmt.Sprintf("%s-applications.xlsx", base)
}

func optionalFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func optionalInt(v int) any {
	if v == 0 {
		return ""
	}
	return v
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func screeningCell(app Application) any {
	if app.AIScreeningScore == nil {
		return app.ScreeningStatus
	}
	return app.AIScreeningScore.Overall
}

func resumeCell(app Application) string {
	if app.Resume == nil {
		return ""
	}
	return app.Resume.FileName
}
