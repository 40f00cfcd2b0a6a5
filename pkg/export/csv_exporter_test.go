package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	data, err := exporter.Render(Dataset{
		Headers: []string{"name", "status"},
		Rows: []map[string]string{
			{"name": "Broca", "status": "aberta"},
			{"name": "Serra", "status": "concluida"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "name,status\nBroca,aberta\nSerra,concluida\n", string(data))
}

func TestCSVExporterMissingColumns(t *testing.T) {
	exporter := NewCSVExporter()

	data, err := exporter.Render(Dataset{
		Headers: []string{"name", "status"},
		Rows:    []map[string]string{{"name": "Broca"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "name,status\nBroca,\n", string(data))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}
