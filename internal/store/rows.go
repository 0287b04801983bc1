package store

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/anakievah/pdb/internal/table"
	"golang.org/x/crypto/blake2b"
)

// LoadRows reads all records of a table.
// A missing document yields an empty sequence.
func (s *Store) LoadRows(name string) ([]table.Record, error) {
	path := s.RowsPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []table.Record{}, nil
		}
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	rows, err := decodeRows(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptData, path, err)
	}
	return rows, nil
}

// SaveRows overwrites a table's row document, creating the data directory if needed.
func (s *Store) SaveRows(name string, rows []table.Record) error {
	if rows == nil {
		rows = []table.Record{}
	}

	data, err := marshalDocument(rows)
	if err != nil {
		return fmt.Errorf("encoding rows: %w", err)
	}

	if err := writeFileAtomic(s.RowsPath(name), data); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}

	return nil
}

// DeleteRows removes a table's row document. A missing document is not an error.
func (s *Store) DeleteRows(name string) error {
	if err := os.Remove(s.RowsPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting rows: %w", err)
	}
	return nil
}

// RowsHash computes a BLAKE2b-256 hash of a table's row document.
// A missing document hashes as empty content.
func (s *Store) RowsHash(name string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}

	f, err := os.Open(s.RowsPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return hex.EncodeToString(h.Sum(nil)), nil
		}
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// decodeRows parses a row document. Numbers must be integers and are decoded
// as int64; only string, integer and boolean values are accepted.
func decodeRows(data []byte) ([]table.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []table.Record{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after row list")
	}

	rows := make([]table.Record, 0, len(raw))
	for i, obj := range raw {
		if obj == nil {
			return nil, fmt.Errorf("row %d is not an object", i+1)
		}
		rec := make(table.Record, len(obj))
		for col, v := range obj {
			val, err := decodeValue(v)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i+1, col, err)
			}
			rec[col] = val
		}
		rows = append(rows, rec)
	}

	return rows, nil
}

func decodeValue(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number %s", x)
		}
		return n, nil
	case string, bool:
		return x, nil
	case nil:
		return nil, fmt.Errorf("null value")
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}
