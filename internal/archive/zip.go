package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractZip replaces destDir with the contents of the zip archive at src
// and returns the number of files written. An archive with any entry that
// would land outside destDir is rejected and destDir is left untouched.
func ExtractZip(src, destDir string) (int, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		if r != nil {
			r.Close()
		}
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return 0, fmt.Errorf("resolve %q: %w", destDir, err)
	}

	// Every entry is checked before destDir is touched.
	targets := make([]string, len(r.File))
	for i, f := range r.File {
		if targets[i], err = entryPath(root, f.Name); err != nil {
			return 0, err
		}
	}

	if err := os.RemoveAll(destDir); err != nil {
		return 0, fmt.Errorf("clear %q: %w", destDir, err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}

	written := 0
	for i, f := range r.File {
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targets[i], 0o755); err != nil {
				return written, fmt.Errorf("mkdir %q: %w", targets[i], err)
			}
			continue
		}

		if err := extractFile(f, targets[i]); err != nil {
			return written, err
		}
		written++
	}

	return written, nil
}

func entryPath(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %q: %w", target, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %q: %w", f.Name, err)
	}
	return out.Close()
}
