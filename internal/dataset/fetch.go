package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// Fetcher downloads the trip file and zone lookup from the TLC public
// bucket into the data directory. It exists for first-run setups; the
// server itself never fetches.
type Fetcher struct {
	client  *http.Client
	baseURL string
	dataDir string
	logger  *slog.Logger
}

// DefaultBaseURL is the TLC CloudFront distribution serving the public
// trip record files.
const DefaultBaseURL = "https://d37ci6vzurychx.cloudfront.net"

// NewFetcher builds a fetcher writing into dataDir. An empty baseURL
// selects the TLC bucket.
func NewFetcher(dataDir, baseURL string, logger *slog.Logger) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: 10 * time.Minute},
		baseURL: baseURL,
		dataDir: dataDir,
		logger:  logger.With(slog.String("component", "fetcher")),
	}
}

// FetchMonth downloads the given month's trip file and the zone lookup in
// parallel, skipping any file already present. Month is formatted
// YYYY-MM, matching the bucket's file naming.
func (f *Fetcher) FetchMonth(ctx context.Context, month string) error {
	if err := os.MkdirAll(f.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	downloads := map[string]string{
		fmt.Sprintf("yellow_tripdata_%s.parquet", month): fmt.Sprintf("%s/trip-data/yellow_tripdata_%s.parquet", f.baseURL, month),
		"taxi_zone_lookup.csv":                           f.baseURL + "/misc/taxi_zone_lookup.csv",
	}

	g, ctx := errgroup.WithContext(ctx)
	for name, url := range downloads {
		g.Go(func() error {
			return f.download(ctx, url, filepath.Join(f.dataDir, name))
		})
	}
	return g.Wait()
}

// download writes the response to a temp file in the target directory and
// renames it into place, so a partial download never masquerades as a
// complete dataset.
func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		f.logger.InfoContext(ctx, "file already present, skipping",
			slog.String("path", dest))
		return nil
	}

	start := time.Now()
	f.logger.InfoContext(ctx, "downloading", slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("finalize %s: %w", dest, err)
	}

	f.logger.InfoContext(ctx, "download complete",
		slog.String("path", dest),
		slog.Int64("bytes", written),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
