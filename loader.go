package folio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadLedgerFile decodes a JSONL ledger. A missing file is an empty ledger.
func LoadLedgerFile(path string) (*Ledger, error) {
	return loadFile(path, "ledger", DecodeLedger, NewLedger)
}

// LoadMarketFile decodes a JSONL market file. A missing file is an empty
// market.
func LoadMarketFile(path string) (*Market, error) {
	return loadFile(path, "market", DecodeMarket, NewMarket)
}

// LoadTargetsFile decodes and validates a JSON target plan. Unlike ledgers,
// a target plan must exist.
func LoadTargetsFile(path string) (TargetPlan, error) {
	return loadFile(path, "target", DecodeTargetPlan, nil)
}

// loadFile opens path and decodes it. If missing is not nil, it provides the
// value of a file that does not exist.
func loadFile[T any](path, kind string, decode func(io.Reader) (T, error), missing func() T) (T, error) {
	var zero T
	f, err := os.Open(path)
	if missing != nil && errors.Is(err, fs.ErrNotExist) {
		return missing(), nil
	}
	if err != nil {
		return zero, fmt.Errorf("could not open %s file %q: %w", kind, path, err)
	}
	defer f.Close()

	v, err := decode(f)
	if err != nil {
		return zero, fmt.Errorf("could not decode %s file %q: %w", kind, path, err)
	}
	return v, nil
}

// SaveLedgerFile writes the ledger to path, creating its directory if needed.
func SaveLedgerFile(path string, ledger *Ledger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create directory for ledger %q: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not open ledger file %q for writing: %w", path, err)
	}
	if err := EncodeLedger(f, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
