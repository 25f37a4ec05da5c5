package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"
	"payments-engine/pkg/apperror"
)

// Header column names.
const (
	ColumnType   = "type"
	ColumnClient = "client"
	ColumnTx     = "tx"
	ColumnAmount = "amount"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	errMissingColumn   = errors.New("missing header column")
	errDuplicateColumn = errors.New("duplicate header column")
	errFieldCount      = errors.New("wrong number of fields")
	errMissingAmount   = errors.New("missing amount")
	errNegativeAmount  = errors.New("negative amount")
)

// RecordReader reads transaction records from CSV input. Columns are located
// by header name, so their order is free and the amount column may be
// omitted entirely.
type RecordReader struct {
	csv     *csv.Reader
	columns map[string]int
	width   int
	empty   bool
}

// NewRecordReader reads the header row of in. Input without any rows is
// valid and yields no records.
func NewRecordReader(in io.Reader) (*RecordReader, error) {
	br := bufio.NewReader(in)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	r := &RecordReader{csv: cr}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		r.empty = true
		return r, nil
	}
	if err != nil {
		return nil, readError(err)
	}

	columns, err := parseHeader(header)
	if err != nil {
		return nil, apperror.ErrMalformedRecord(1, err)
	}
	r.columns = columns
	r.width = len(header)
	return r, nil
}

func parseHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[name]; dup {
			return nil, fmt.Errorf("%w %q", errDuplicateColumn, name)
		}
		columns[name] = i
	}
	for _, required := range []string{ColumnType, ColumnClient, ColumnTx} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w %q", errMissingColumn, required)
		}
	}
	return columns, nil
}

// Next returns the next record, or io.EOF when the input is exhausted.
// Any other error is a fatal *apperror.AppError.
func (r *RecordReader) Next() (domain.TransactionRecord, error) {
	if r.empty {
		return domain.TransactionRecord{}, io.EOF
	}

	fields, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return domain.TransactionRecord{}, io.EOF
	}
	if err != nil {
		return domain.TransactionRecord{}, readError(err)
	}

	line, _ := r.csv.FieldPos(0)
	record, err := r.parse(fields)
	if err != nil {
		return domain.TransactionRecord{}, apperror.ErrMalformedRecord(line, err)
	}
	return record, nil
}

func (r *RecordReader) parse(fields []string) (domain.TransactionRecord, error) {
	if len(fields) > r.width {
		return domain.TransactionRecord{}, fmt.Errorf("%w: got %d, header has %d", errFieldCount, len(fields), r.width)
	}

	kindText, err := r.field(fields, ColumnType)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	kind, err := domain.ParseTransactionKind(kindText)
	if err != nil {
		return domain.TransactionRecord{}, err
	}

	clientText, err := r.field(fields, ColumnClient)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	client, err := strconv.ParseUint(clientText, 10, 16)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("client %q: %w", clientText, err)
	}

	txText, err := r.field(fields, ColumnTx)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	tx, err := strconv.ParseUint(txText, 10, 32)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("tx %q: %w", txText, err)
	}

	amount, err := r.amount(fields)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	if kind.RequiresAmount() && amount == nil {
		return domain.TransactionRecord{}, fmt.Errorf("%s: %w", kind, errMissingAmount)
	}
	if !kind.RequiresAmount() {
		amount = nil
	}

	return domain.TransactionRecord{
		Kind:   kind,
		Client: domain.ClientID(client),
		Tx:     domain.TxID(tx),
		Amount: amount,
	}, nil
}

// field returns the trimmed value of a required column.
func (r *RecordReader) field(fields []string, column string) (string, error) {
	i := r.columns[column]
	if i >= len(fields) {
		return "", fmt.Errorf("%w: no %s field", errFieldCount, column)
	}
	return strings.TrimSpace(fields[i]), nil
}

// amount returns nil when the column or the value is absent.
func (r *RecordReader) amount(fields []string) (*domain.Amount, error) {
	i, ok := r.columns[ColumnAmount]
	if !ok || i >= len(fields) {
		return nil, nil
	}
	text := strings.TrimSpace(fields[i])
	if text == "" {
		return nil, nil
	}

	a, err := domain.ParseAmount(text)
	if err != nil {
		return nil, err
	}
	if a.IsNegative() {
		return nil, fmt.Errorf("%w %q", errNegativeAmount, text)
	}
	return &a, nil
}

// readError classifies a csv.Reader failure. Syntax errors are malformed
// input; anything else is an I/O failure of the underlying reader.
func readError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return apperror.ErrMalformedRecord(parseErr.StartLine, err)
	}
	return apperror.ErrInputRead(err)
}

var _ ports.RecordSource = (*RecordReader)(nil)
