package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSheet() Sheet {
	return Sheet{
		Title:   "Attendance 2026-03-02 09:00",
		Headers: []string{"Student", "Email", "Status", "Notes"},
		Rows: [][]string{
			{"Alice", "alice@example.com", "PRESENT", ""},
			{"Bob", "bob@example.com"},
		},
	}
}

func TestRenderCSVPadsShortRows(t *testing.T) {
	data, err := RenderCSV(testSheet())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Email,Status,Notes", lines[0])
	assert.Equal(t, "Bob,bob@example.com,,", lines[2])
}

func TestRenderCSVRequiresHeaders(t *testing.T) {
	_, err := RenderCSV(Sheet{})
	assert.Error(t, err)
}

func TestRenderPDFProducesDocument(t *testing.T) {
	data, err := RenderPDF(testSheet())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderPDFRequiresHeaders(t *testing.T) {
	_, err := RenderPDF(Sheet{})
	assert.Error(t, err)
}
