package linker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
)

// DiskWriter persists generated bundles to the filesystem.
type DiskWriter struct {
	// Perm is the mode of written files; 0644 when zero.
	Perm os.FileMode
}

// WriteAssets creates dir if needed and writes every asset into it. It
// returns the written file names, sorted.
func (d DiskWriter) WriteAssets(dir string, assets map[string]string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("linker: create output dir: %w", err)
	}

	names := make([]string, 0, len(assets))
	for name := range assets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		output := filepath.Join(dir, filepath.FromSlash(name))
		log.Debug().Str("file", output).Int("bytes", len(assets[name])).Msg("writing")
		if err := d.write(output, assets[name]); err != nil {
			return nil, fmt.Errorf("linker: write %s: %w", name, err)
		}
	}
	return names, nil
}

func (d DiskWriter) write(output, code string) error {
	perm := d.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(code); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
