package records

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// FileSource reads the collection from a JSON document holding an array of
// record objects.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Name() string {
	return "file"
}

func (s *FileSource) Load(ctx context.Context) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadError(err)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, loadError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, loadError(errors.Wrapf(err, "reading %s", s.path))
	}
	if err := ctx.Err(); err != nil {
		return nil, loadError(err)
	}

	return parse(data)
}

// parse splits a JSON array document into its entries.
func parse(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, loadError(errors.New("patient data is not a JSON array"))
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, loadError(errors.Wrap(err, "parsing patient data"))
	}
	if entries == nil {
		entries = []json.RawMessage{}
	}
	return entries, nil
}

// ReadDocument parses a JSON array document from r. Used by the importer.
func ReadDocument(r io.Reader) ([]json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, loadError(err)
	}
	return parse(data)
}
