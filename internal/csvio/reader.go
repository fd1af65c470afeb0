package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/payments-engine/internal/model"
)

// Reader decodes transaction records from tabular input. The first row must
// be the header; whitespace around every field is tolerated and stripped.
// Rows may omit the trailing amount column entirely.
type Reader struct {
	csv        *csv.Reader
	headerRead bool
	row        int
}

// NewReader wraps r for transaction decoding.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	return &Reader{csv: cr}
}

// Read returns the next transaction in input order, io.EOF at end of input,
// or a fatal decode error. Soft validation (amount positivity, fund
// sufficiency) is deliberately not performed here.
func (r *Reader) Read() (model.Transaction, error) {
	if !r.headerRead {
		if err := r.readHeader(); err != nil {
			return model.Transaction{}, err
		}
	}

	fields, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return model.Transaction{}, io.EOF
		}
		return model.Transaction{}, fmt.Errorf("row %d: %w", r.row+1, err)
	}
	r.row++

	return r.decode(fields)
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			// Completely empty input: no header, no records.
			return nil
		}
		return fmt.Errorf("read header: %w", err)
	}

	if len(header) == 0 || strings.TrimSpace(header[0]) != "type" {
		return fmt.Errorf("missing header row, expected columns type,client,tx,amount")
	}

	r.headerRead = true
	return nil
}

func (r *Reader) decode(fields []string) (model.Transaction, error) {
	if len(fields) < 3 {
		return model.Transaction{}, fmt.Errorf("row %d: expected at least 3 fields, got %d", r.row, len(fields))
	}

	kind, err := model.ParseKind(strings.TrimSpace(fields[0]))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("row %d: %w", r.row, err)
	}

	client, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 16)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("row %d: invalid client id %q: %w", r.row, fields[1], err)
	}

	txID, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("row %d: invalid tx id %q: %w", r.row, fields[2], err)
	}

	tx := model.Transaction{
		Kind:   kind,
		Client: uint16(client),
		TxID:   uint32(txID),
	}

	// An empty or absent amount column decodes to no amount; whether that is
	// acceptable for the transaction kind is the ledger's call, not a decode
	// failure. A present but non-numeric amount is fatal.
	if len(fields) >= 4 {
		raw := strings.TrimSpace(fields[3])
		if raw != "" {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return model.Transaction{}, fmt.Errorf("row %d: invalid amount %q: %w", r.row, raw, err)
			}
			tx.Amount = &value
		}
	}

	return tx, nil
}
