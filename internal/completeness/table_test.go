package completeness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youcodecowboy/disco-grid-sub000/internal/contract"
)

func TestLoadTable(t *testing.T) {
	table, err := LoadTable("testdata/table.yaml")
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.True(t, table[1].Required)
	assert.Equal(t, "Certifications held", table[1].Description)

	e := New(table)
	c := patched(t, contract.NewAt("k", t0), "company.name", "Acme")
	r := e.Analyze(c)
	assert.Equal(t, 50, r.PercentComplete)
	assert.Equal(t, []string{"compliance.certifications"}, paths(r.MissingRequired))

	f, ok := e.Requirement("company.website")
	require.True(t, ok)
	assert.False(t, f.Required)
}

func TestLoadTable_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "absent.yaml")},
		{"bad yaml", write("bad.yaml", "fields: [")},
		{"empty", write("empty.yaml", "fields: []")},
		{"no path", write("nopath.yaml", "fields:\n  - required: true\n")},
		{"duplicate", write("dup.yaml", "fields:\n  - path: a.b\n  - path: a.b\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTable(tt.path)
			assert.Error(t, err)
		})
	}
}
