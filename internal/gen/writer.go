package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes all generated files. Files without a directory are
// written to outputDir. Directories are created when missing.
func WriteFiles(files []GeneratedFile, outputDir string) error {
	for _, file := range files {
		dir := file.Dir
		if dir == "" {
			dir = outputDir
		}

		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		outputPath := filepath.Join(dir, file.Filename)

		if err := os.WriteFile(outputPath, file.Content, filePerm); err != nil {
			return fmt.Errorf("writing file %s: %w", file.Filename, err)
		}
	}

	return nil
}

// Changed returns the files whose content differs from what is on disk,
// including files that do not exist yet.
func Changed(files []GeneratedFile) ([]GeneratedFile, error) {
	var out []GeneratedFile

	for _, file := range files {
		current, err := os.ReadFile(file.Path())

		switch {
		case errors.Is(err, fs.ErrNotExist):
			out = append(out, file)
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", file.Path(), err)
		case !bytes.Equal(current, file.Content):
			out = append(out, file)
		}
	}

	return out, nil
}
