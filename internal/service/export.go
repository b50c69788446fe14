package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pymetra/registration/internal/model"
	"github.com/pymetra/registration/internal/repository"
	"github.com/pymetra/registration/internal/service/remote"
)

// CSVHeader is the fixed column order of the CSV export
var CSVHeader = []string{
	"ID", "Full Name", "Email", "Geographic Area", "Main Sector",
	"CV File Name", "CV File Path", "Language", "Registered At", "Status",
}

const exportTimeLayout = "02/01/2006 15:04:05"

// SheetsExport is the spreadsheet-ready export
type SheetsExport struct {
	TotalRecords int      `json:"total_records"`
	Headers      []string `json:"headers"`
	Data         [][]any  `json:"data"`
	Instructions []string `json:"instructions"`
}

type ExportService struct {
	repo repository.RegistrationRepository
}

func NewExportService(repo repository.RegistrationRepository) *ExportService {
	return &ExportService{repo: repo}
}

// CSVRow formats a registration in CSVHeader order
func CSVRow(reg *model.Registration) []string {
	return []string{
		reg.ID,
		reg.FullName,
		reg.Email,
		reg.GeographicArea,
		reg.MainSector,
		reg.Filename(),
		reg.FilePath(),
		reg.Language,
		reg.CreatedAt.Format(exportTimeLayout),
		reg.Status,
	}
}

// WriteCSV writes the header and up to limit newest registrations, returning the row count
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer, limit int) (int, error) {
	registrations, err := s.repo.Latest(ctx, ClampLimit(limit, MaxListLimit))
	if err != nil {
		return 0, fmt.Errorf("list registrations: %w", err)
	}
	if err := EncodeCSV(w, registrations); err != nil {
		return 0, err
	}
	return len(registrations), nil
}

// EncodeCSV writes exactly one header row followed by one row per registration
func EncodeCSV(w io.Writer, registrations []*model.Registration) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, reg := range registrations {
		if err := cw.Write(CSVRow(reg)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SheetsData returns registrations in the spreadsheet row format for a manual import
func (s *ExportService) SheetsData(ctx context.Context, limit int) (*SheetsExport, error) {
	registrations, err := s.repo.Latest(ctx, ClampLimit(limit, MaxListLimit))
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	data := make([][]any, 0, len(registrations))
	for _, reg := range registrations {
		data = append(data, remote.SheetRow(reg))
	}

	return &SheetsExport{
		TotalRecords: len(registrations),
		Headers:      remote.SheetHeaders,
		Data:         data,
		Instructions: []string{
			"Open the registrations spreadsheet",
			"Select cell A2 of the first sheet",
			"Paste the rows of data, one registration per row",
		},
	}, nil
}
