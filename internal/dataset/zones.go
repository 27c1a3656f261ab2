package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"taxipulse/pkg/contracts/domain"
)

// ErrZoneHeader reports a zone lookup CSV whose header is missing one of
// the required columns.
var ErrZoneHeader = errors.New("dataset: zone lookup header invalid")

// zone lookup columns the enrichment joins need. The TLC file also carries
// service_zone, which is ignored.
var zoneColumns = []string{"LocationID", "Borough", "Zone"}

// LoadZones reads the zone lookup CSV. Column order is taken from the
// header, so a reordered or extended file still loads. Rows with a
// non-numeric LocationID are skipped with a warning rather than failing
// the whole lookup.
func LoadZones(path string, logger *slog.Logger) ([]domain.Zone, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zone lookup: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read zone lookup header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range zoneColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrZoneHeader, name)
		}
	}

	var zones []domain.Zone
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read zone lookup row: %w", err)
		}
		line++

		id, err := strconv.ParseInt(strings.TrimSpace(record[index["LocationID"]]), 10, 32)
		if err != nil {
			logger.Warn("skipping zone row with bad LocationID",
				slog.Int("line", line),
				slog.String("value", record[index["LocationID"]]))
			continue
		}
		zones = append(zones, domain.Zone{
			LocationID: int32(id),
			Borough:    strings.TrimSpace(record[index["Borough"]]),
			Zone:       strings.TrimSpace(record[index["Zone"]]),
		})
	}
	return zones, nil
}

// ResolveZones probes the same directories as the trip loader for the zone
// lookup file.
func (l *Loader) ResolveZones() (string, error) {
	return l.resolve(l.zoneFile)
}

// LoadZones resolves and reads the zone lookup configured on the loader.
func (l *Loader) LoadZones(ctx context.Context) ([]domain.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.ResolveZones()
	if err != nil {
		return nil, err
	}
	return LoadZones(path, l.logger)
}
