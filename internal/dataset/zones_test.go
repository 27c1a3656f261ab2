package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipulse/pkg/contracts/domain"
)

func writeZoneFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "taxi_zone_lookup.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadZones(t *testing.T) {
	path := writeZoneFile(t, t.TempDir(),
		"LocationID,Borough,Zone,service_zone\n"+
			"132,Queens,JFK Airport,Airports\n"+
			"236,Manhattan,Upper East Side North,Yellow Zone\n")

	zones, err := LoadZones(path, discardLogger())
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, domain.Zone{LocationID: 132, Borough: "Queens", Zone: "JFK Airport"}, zones[0])
	assert.Equal(t, domain.Zone{LocationID: 236, Borough: "Manhattan", Zone: "Upper East Side North"}, zones[1])
}

func TestLoadZones_ReorderedColumns(t *testing.T) {
	path := writeZoneFile(t, t.TempDir(),
		"Zone,LocationID,Borough\n"+
			"JFK Airport,132,Queens\n")

	zones, err := LoadZones(path, discardLogger())
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, int32(132), zones[0].LocationID)
	assert.Equal(t, "JFK Airport", zones[0].Zone)
}

func TestLoadZones_MissingColumn(t *testing.T) {
	path := writeZoneFile(t, t.TempDir(),
		"LocationID,Borough\n132,Queens\n")

	_, err := LoadZones(path, discardLogger())
	assert.ErrorIs(t, err, ErrZoneHeader)
}

func TestLoadZones_SkipsBadLocationID(t *testing.T) {
	path := writeZoneFile(t, t.TempDir(),
		"LocationID,Borough,Zone\n"+
			"N/A,Unknown,NV\n"+
			"132,Queens,JFK Airport\n")

	zones, err := LoadZones(path, discardLogger())
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, int32(132), zones[0].LocationID)
}

func TestLoadZones_FileMissing(t *testing.T) {
	_, err := LoadZones(filepath.Join(t.TempDir(), "nope.csv"), discardLogger())
	assert.Error(t, err)
}

func TestLoaderLoadZones(t *testing.T) {
	dir := t.TempDir()
	writeZoneFile(t, dir,
		"LocationID,Borough,Zone\n132,Queens,JFK Airport\n")

	loader := NewLoader(dir, testTripFile, testZoneFile, discardLogger())
	zones, err := loader.LoadZones(context.Background())
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "JFK Airport", zones[0].Zone)
}

func TestLoaderLoadZones_Missing(t *testing.T) {
	loader := NewLoader(t.TempDir(), testTripFile, testZoneFile, discardLogger())
	_, err := loader.LoadZones(context.Background())
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}
