package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolvePaths pins the executable directory and absolutizes the
// configured directories against it. Paths resolve relative to the
// executable, never the current working directory, so the server behaves
// the same whether launched from a shell or a service manager. Absolute
// configured paths are kept as-is.
func ResolvePaths(p PathsConfig) (PathsConfig, error) {
	if p.ExecutableDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return p, fmt.Errorf("failed to get executable path: %w", err)
		}
		exe, err = filepath.EvalSymlinks(exe)
		if err != nil {
			return p, fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}
		p.ExecutableDir = filepath.Dir(exe)
	}

	p.DataDir = absolutize(p.ExecutableDir, p.DataDir, "data")
	p.WebDir = absolutize(p.ExecutableDir, p.WebDir, "web")
	p.LogsDir = absolutize(p.ExecutableDir, p.LogsDir, "logs")
	return p, nil
}

// EnsureDirectories creates the data and logs directories if missing. The
// web directory is shipped with the binary and is not created here.
func (p PathsConfig) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func absolutize(base, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
