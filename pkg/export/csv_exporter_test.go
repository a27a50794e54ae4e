package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	out, err := exporter.Render(Sheet{
		Title:   "Attendance",
		Headers: []string{"Date", "Student", "Status"},
		Rows: [][]string{
			{"2026-08-10", "Meera Nair", "present"},
			{"2026-08-10", "Vikram Shah"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Date,Student,Status", lines[0])
	require.Equal(t, "2026-08-10,Meera Nair,present", lines[1])
	// Short rows are padded to the header width.
	require.Equal(t, "2026-08-10,Vikram Shah,", lines[2])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Sheet{})
	require.Error(t, err)
}
