package lambdalint

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ClassInput is one class file to analyze, either a plain file or an entry
// inside a jar archive. Open returns a fresh reader for the class bytes.
type ClassInput struct {
	// Path is the file path, or the entry name for archive members.
	Path string

	// Archive is the containing jar path, "" for plain files.
	Archive string

	// Open returns a reader positioned at the start of the class bytes.
	Open func() (io.ReadCloser, error)
}

// LoaderOptions configures class discovery.
type LoaderOptions struct {
	// Paths are the inputs to scan: .class files, directories (walked
	// recursively) and .jar/.war/.zip archives.
	Paths []string
}

// LoadClasses discovers class files under the given paths.
func LoadClasses(ctx context.Context, opts LoaderOptions) ([]ClassInput, error) {
	var inputs []ClassInput

	for _, path := range opts.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		switch {
		case info.IsDir():
			dirInputs, err := loadDir(ctx, path)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, dirInputs...)
		case isArchive(path):
			jarInputs, err := loadArchive(path)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, jarInputs...)
		case strings.HasSuffix(path, ".class"):
			inputs = append(inputs, fileInput(path))
		default:
			return nil, fmt.Errorf("%s: not a class file, directory or archive", path)
		}
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no class files found under %v", opts.Paths)
	}
	return inputs, nil
}

func loadDir(ctx context.Context, root string) ([]ClassInput, error) {
	var inputs []ClassInput
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case strings.HasSuffix(path, ".class"):
			inputs = append(inputs, fileInput(path))
		case isArchive(path):
			jarInputs, err := loadArchive(path)
			if err != nil {
				return err
			}
			inputs = append(inputs, jarInputs...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return inputs, nil
}

func loadArchive(path string) ([]ClassInput, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	var inputs []ClassInput
	for _, f := range r.File {
		if !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		inputs = append(inputs, archiveInput(path, f.Name))
	}
	return inputs, nil
}

func fileInput(path string) ClassInput {
	return ClassInput{
		Path: path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

func archiveInput(archive, entry string) ClassInput {
	return ClassInput{
		Path:    entry,
		Archive: archive,
		Open: func() (io.ReadCloser, error) {
			r, err := zip.OpenReader(archive)
			if err != nil {
				return nil, err
			}
			rc, err := r.Open(entry)
			if err != nil {
				r.Close()
				return nil, err
			}
			return &archiveEntry{ReadCloser: rc, archive: r}, nil
		},
	}
}

// archiveEntry closes the containing archive together with the entry reader.
type archiveEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (e *archiveEntry) Close() error {
	err := e.ReadCloser.Close()
	if cerr := e.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

func isArchive(path string) bool {
	switch filepath.Ext(path) {
	case ".jar", ".war", ".zip":
		return true
	}
	return false
}
