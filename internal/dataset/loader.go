package dataset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// LoaderFunc turns a source path into a dataset.
type LoaderFunc func(path string) (*domain.Dataset, error)

// LoadFile reads path, fingerprints its bytes and parses it according to its
// extension. Read failures are storage errors and keep fs.ErrNotExist in their
// chain. Content failures are parsing errors.
func LoadFile(path string) (*domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read price file", err).WithContext("path", path)
	}

	var observations []domain.Observation
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", "":
		observations, err = Parse(bytes.NewReader(data))
	case ".xlsx":
		observations, err = parseWorkbookReader(bytes.NewReader(data))
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse price file", err).WithContext("path", path)
	}

	return &domain.Dataset{
		Path:         path,
		Fingerprint:  Fingerprint(data),
		LoadedAt:     time.Now().UTC(),
		Observations: observations,
	}, nil
}

// Fingerprint hashes raw file content.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}
