package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pymetra/registration/internal/model"
)

func TestEncodeCSV(t *testing.T) {
	path := "20250101_000000_ana_x_com_cv.pdf"
	name := "cv, final.pdf"
	registrations := []*model.Registration{
		{
			ID: "1", FullName: `Ana "La" Ruiz`, Email: "ana@x.com", GeographicArea: "Madrid",
			MainSector: "Retail", Language: "es", CVFilename: &name, CVFilePath: &path,
			Status: "pending", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			ID: "2", FullName: "Joan", Email: "joan@x.com", GeographicArea: "Barcelona",
			MainSector: "Energy", Language: "ca", Status: "contacted",
			CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, registrations))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{
		"1", `Ana "La" Ruiz`, "ana@x.com", "Madrid", "Retail",
		"cv, final.pdf", path, "es", "02/01/2025 03:04:05", "pending",
	}, rows[1])
	assert.Equal(t, "", rows[2][5], "missing file name stays empty")
	assert.Len(t, rows[2], len(CSVHeader))
}

func TestEncodeCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExportService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedRegistration(t, f, "a", []byte("cv"), "")
	seedRegistration(t, f, "b", nil, "drive-b")

	svc := NewExportService(f.repo)

	var buf bytes.Buffer
	n, err := svc.WriteCSV(ctx, &buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	export, err := svc.SheetsData(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, export.TotalRecords)
	require.Len(t, export.Data, 1)
	assert.Len(t, export.Data[0], len(export.Headers))
	assert.Equal(t, "ES", export.Data[0][5])
	assert.Equal(t, "Pending", export.Data[0][6])
}
