package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"

	"taxipulse/pkg/contracts/domain"
)

var (
	// ErrDatasetNotFound reports that no trip file exists at any probed path.
	ErrDatasetNotFound = errors.New("dataset: trip file not found")
	// ErrSchemaViolation reports that the trip file is missing a required
	// column or carries it with the wrong physical type.
	ErrSchemaViolation = errors.New("dataset: trip file schema violation")
)

const readBatchSize = 65536

// tripRow mirrors the subset of the TLC yellow-trip Parquet schema the
// dashboard consumes. Every column is optional at the source; the reader
// prunes the file to just these columns.
type tripRow struct {
	PickupDatetime  *int64   `parquet:"name=tpep_pickup_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	DropoffDatetime *int64   `parquet:"name=tpep_dropoff_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	PULocationID    *int32   `parquet:"name=PULocationID, type=INT32, repetitiontype=OPTIONAL"`
	DOLocationID    *int32   `parquet:"name=DOLocationID, type=INT32, repetitiontype=OPTIONAL"`
	PaymentType     *int64   `parquet:"name=payment_type, type=INT64, repetitiontype=OPTIONAL"`
	TripDistance    *float64 `parquet:"name=trip_distance, type=DOUBLE, repetitiontype=OPTIONAL"`
	FareAmount      *float64 `parquet:"name=fare_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// requiredColumns maps the columns the pipeline needs to the physical type
// each must carry in the file footer.
var requiredColumns = map[string]parquet.Type{
	"tpep_pickup_datetime":  parquet.Type_INT64,
	"tpep_dropoff_datetime": parquet.Type_INT64,
	"PULocationID":          parquet.Type_INT32,
	"DOLocationID":          parquet.Type_INT32,
	"payment_type":          parquet.Type_INT64,
	"trip_distance":         parquet.Type_DOUBLE,
	"fare_amount":           parquet.Type_DOUBLE,
}

// Loader reads trip rows from a monthly Parquet file. The file name is
// fixed per deployment; the directory is probed in order, so a file kept
// next to the binary works the same as one in the configured data dir.
type Loader struct {
	tripFile   string
	zoneFile   string
	searchDirs []string
	logger     *slog.Logger
}

// NewLoader builds a loader probing dataDir first, then its parent.
func NewLoader(dataDir, tripFile, zoneFile string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		tripFile:   tripFile,
		zoneFile:   zoneFile,
		searchDirs: []string{dataDir, filepath.Dir(dataDir)},
		logger:     logger.With(slog.String("component", "dataset")),
	}
}

// Resolve returns the path of the first probed location holding the trip
// file, or ErrDatasetNotFound.
func (l *Loader) Resolve() (string, error) {
	return l.resolve(l.tripFile)
}

func (l *Loader) resolve(fileName string) (string, error) {
	for _, dir := range l.searchDirs {
		path := filepath.Join(dir, fileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s not in %v", ErrDatasetNotFound, fileName, l.searchDirs)
}

// LoadTrips reads every row of the trip file into raw trips. The context is
// checked between read batches so a canceled startup does not finish a
// multi-million row scan.
func (l *Loader) LoadTrips(ctx context.Context) ([]domain.RawTrip, error) {
	path, err := l.Resolve()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	l.logger.InfoContext(ctx, "loading trip file", slog.String("path", path))

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open trip file: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(tripRow), 4)
	if err != nil {
		return nil, fmt.Errorf("read trip file footer: %w", err)
	}
	defer pr.ReadStop()

	if err := validateSchema(pr.Footer.Schema); err != nil {
		return nil, err
	}

	total := int(pr.GetNumRows())
	trips := make([]domain.RawTrip, 0, total)
	for read := 0; read < total; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := readBatchSize
		if remaining := total - read; remaining < batch {
			batch = remaining
		}
		rows := make([]tripRow, batch)
		if err := pr.Read(&rows); err != nil {
			return nil, fmt.Errorf("read trip rows at offset %d: %w", read, err)
		}
		for i := range rows {
			trips = append(trips, rows[i].toRaw())
		}
		read += batch
	}

	l.logger.InfoContext(ctx, "trip file loaded",
		slog.Int("rows", len(trips)),
		slog.Duration("elapsed", time.Since(start)))
	return trips, nil
}

func validateSchema(schema []*parquet.SchemaElement) error {
	types := make(map[string]parquet.Type, len(schema))
	for _, el := range schema {
		if el.Type != nil {
			types[el.Name] = *el.Type
		}
	}
	for name, want := range requiredColumns {
		got, ok := types[name]
		if !ok {
			return fmt.Errorf("%w: missing column %s", ErrSchemaViolation, name)
		}
		if got != want {
			return fmt.Errorf("%w: column %s has type %s, want %s",
				ErrSchemaViolation, name, got, want)
		}
	}
	return nil
}

func (r *tripRow) toRaw() domain.RawTrip {
	raw := domain.RawTrip{
		PULocationID: r.PULocationID,
		DOLocationID: r.DOLocationID,
		TripDistance: r.TripDistance,
		FareAmount:   r.FareAmount,
	}
	if r.PickupDatetime != nil {
		t := time.UnixMicro(*r.PickupDatetime).UTC()
		raw.PickupTime = &t
	}
	if r.DropoffDatetime != nil {
		t := time.UnixMicro(*r.DropoffDatetime).UTC()
		raw.DropoffTime = &t
	}
	if r.PaymentType != nil {
		p := int32(*r.PaymentType)
		raw.PaymentType = &p
	}
	return raw
}
