package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/jobs"
	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/services"
	"github.com/auditnote/auditnote-api/internal/session"
	"github.com/auditnote/auditnote-api/internal/sheets"
	"github.com/auditnote/auditnote-api/internal/storage"
)

// readPassword is a test seam for term.ReadPassword
var readPassword = term.ReadPassword

func (a *application) tablesCommand() *cobra.Command {
	tables := &cobra.Command{
		Use:   "tables",
		Short: "Manage the Auditors, Notes and Participants tables",
	}
	tables.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create missing tables and repair their header rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			for _, s := range sheets.Schemas() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.Name, strings.Join(s.Header, ","))
			}
			return nil
		},
	})
	return tables
}

func (a *application) auditorCommand() *cobra.Command {
	auditor := &cobra.Command{
		Use:   "auditor",
		Short: "Manage auditor accounts",
	}

	var in services.RegisterInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Register an auditor account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				pw, err := promptPassword(cmd)
				if err != nil {
					return err
				}
				in.Password, in.Confirm = pw[0], pw[1]
			} else if in.Confirm == "" {
				in.Confirm = in.Password
			}

			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			worker := jobs.NewWorker(1)
			defer worker.Shutdown()

			auth := services.NewAuthService(ws.repos.Auditor, session.NewStore(), services.NewEmailService(ws.cfg), worker, ws.cfg)
			id, err := auth.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created auditor %s (%s)\n", id.Email, id.FullName)
			return nil
		},
	}
	create.Flags().StringVar(&in.Email, "email", "", "Auditor email (required)")
	create.Flags().StringVar(&in.FullName, "fullname", "", "Full name (required)")
	create.Flags().StringVar(&in.Position, "position", "", "Position (required)")
	create.Flags().StringVar(&in.Password, "password", "", "Password; prompted when omitted")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("fullname")
	_ = create.MarkFlagRequired("position")

	var output string
	list := &cobra.Command{
		Use:   "list",
		Short: "List auditor accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			auditors, err := ws.repos.Auditor.List(cmd.Context())
			if err != nil {
				return err
			}
			if auditors == nil {
				auditors = []models.Auditor{}
			}
			l := listing{headers: []string{"EMAIL", "FULL NAME", "POSITION", "LAST LOGIN"}, value: auditors}
			for _, au := range auditors {
				l.rows = append(l.rows, []string{au.Email, au.FullName, au.Position, au.LastLogin})
			}
			return render(cmd.OutOrStdout(), output, l)
		},
	}
	list.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, json or yaml")

	auditor.AddCommand(create, list)
	return auditor
}

// promptPassword reads the password and its confirmation. Piped input is
// read line by line; a terminal is read without echo.
func promptPassword(cmd *cobra.Command) ([2]string, error) {
	var out [2]string
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(cmd.InOrStdin())
		for i := range out {
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return out, errors.New("password is required")
			}
			out[i] = strings.TrimRight(line, "\r\n")
		}
		return out, nil
	}

	for i, prompt := range []string{"Password: ", "Confirm password: "} {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		pw, err := readPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return out, err
		}
		out[i] = string(pw)
	}
	return out, nil
}

func (a *application) reviewCommand() *cobra.Command {
	review := &cobra.Command{
		Use:   "review",
		Short: "Browse persisted findings",
	}

	var output string
	companies := &cobra.Command{
		Use:   "companies",
		Short: "List audited companies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			names, err := auditService(ws).ListCompanies(cmd.Context())
			if err != nil {
				return err
			}
			if names == nil {
				names = []string{}
			}
			l := listing{headers: []string{"COMPANY"}, value: names}
			for _, n := range names {
				l.rows = append(l.rows, []string{n})
			}
			return render(cmd.OutOrStdout(), output, l)
		},
	}
	companies.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, json or yaml")

	var company, framesOutput string
	frames := &cobra.Command{
		Use:   "frames",
		Short: "List the frames of a company with their result tallies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			summaries, err := auditService(ws).ListFrames(cmd.Context(), company)
			if err != nil {
				return err
			}
			l := listing{
				headers: []string{"FRAME", "DEPARTMENT", "PERSON", "AUDIT TIME", "FINDINGS", "NCA", "NCB", "PI", "CM"},
				value:   summaries,
			}
			for _, s := range summaries {
				l.rows = append(l.rows, []string{
					s.FrameID, s.Department, s.Person, s.AuditTime, strconv.Itoa(s.Findings),
					strconv.Itoa(s.Tally.NCA), strconv.Itoa(s.Tally.NCB), strconv.Itoa(s.Tally.PI), strconv.Itoa(s.Tally.CM),
				})
			}
			return render(cmd.OutOrStdout(), framesOutput, l)
		},
	}
	frames.Flags().StringVar(&company, "company", "", "Company name (required)")
	frames.Flags().StringVarP(&framesOutput, "output", "o", outputTable, "Output format: table, json or yaml")
	_ = frames.MarkFlagRequired("company")

	review.AddCommand(companies, frames)
	return review
}

func auditService(ws *workspace) *services.AuditService {
	return services.NewAuditService(ws.repos.Note, ws.repos.Participant, session.NewStore(), nil)
}

func (a *application) reportCommand() *cobra.Command {
	report := &cobra.Command{
		Use:   "report",
		Short: "Render audit reports",
	}

	var company, frameID, format, out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Render a company report (pdf, docx, xlsx or html) to disk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			reports := services.NewReportService(ws.repos.Note, ws.repos.Participant, ws.cfg)
			if ws.cfg.ImageHost == config.ImageHostLocal {
				local, err := storage.NewLocalStorage(ws.cfg.StoragePath, ws.cfg.PublicBaseURL)
				if err != nil {
					return err
				}
				reports.UseLocalFiles(local)
			}
			file, err := reports.Export(cmd.Context(), company, frameID, format)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = file.FileName
			} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				path = filepath.Join(path, file.FileName)
			}
			if err := os.WriteFile(path, file.Data, 0644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(file.Data))
			return nil
		},
	}
	export.Flags().StringVar(&company, "company", "", "Company name (required)")
	export.Flags().StringVar(&frameID, "frame", "", "Only this frame")
	export.Flags().StringVar(&format, "format", services.FormatPDF, "pdf, docx, xlsx or html")
	export.Flags().StringVarP(&out, "out", "O", "", "Output file or directory; defaults to the report file name")
	_ = export.MarkFlagRequired("company")

	report.AddCommand(export)
	return report
}
