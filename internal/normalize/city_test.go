package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCityTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
Gaziantep:
  country: Turkey
  timezone: Europe/Istanbul
london:
  country: UK
  timezone: Europe/London
`), 0o644))

	table, err := LoadCityTable(path)
	require.NoError(t, err)

	info, ok := table.Lookup("GAZIANTEP")
	require.True(t, ok)
	assert.Equal(t, "Turkey", info.Country)

	info, ok = table.Lookup("London")
	require.True(t, ok)
	assert.Equal(t, "UK", info.Country, "file entries override built-ins")

	assert.Equal(t, DefaultCityTable().Len()+1, table.Len())
}

func TestLoadCityTable_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadCityTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::not yaml::\n\t- ["), 0o644))
	_, err = LoadCityTable(path)
	assert.Error(t, err)
}

func TestCityTable_NilSafe(t *testing.T) {
	t.Parallel()
	var table *CityTable
	_, ok := table.Lookup("Paris")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
}
