package csvio

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"payments-engine/internal/core/domain"
	"payments-engine/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) ([]domain.TransactionRecord, error) {
	t.Helper()
	r, err := NewRecordReader(strings.NewReader(input))
	if err != nil {
		return nil, err
	}
	var records []domain.TransactionRecord
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

func requireAppError(t *testing.T, err error, code string) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestRecordReader_Basic(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 1.0\n" +
		"withdrawal, 2, 5, 3.0\n" +
		"dispute, 1, 1,\n" +
		"resolve, 1, 1\n" +
		"chargeback,1,1,\n"

	records, err := readAll(t, input)
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, domain.TransactionKindDeposit, records[0].Kind)
	assert.Equal(t, domain.ClientID(1), records[0].Client)
	assert.Equal(t, domain.TxID(1), records[0].Tx)
	require.NotNil(t, records[0].Amount)
	assert.Equal(t, "1.0000", records[0].Amount.String())

	assert.Equal(t, domain.TransactionKindWithdrawal, records[1].Kind)
	assert.Equal(t, "3.0000", records[1].Amount.String())

	for _, r := range records[2:] {
		assert.Nil(t, r.Amount, "%s carries no amount", r.Kind)
	}
	assert.Equal(t, domain.TransactionKindResolve, records[3].Kind)
	assert.Equal(t, domain.TransactionKindChargeback, records[4].Kind)
}

func TestRecordReader_Layouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []domain.TransactionRecord
	}{
		{
			name:  "columns in any order",
			input: "amount,tx,client,type\n2.5,7,3,deposit\n",
			want: []domain.TransactionRecord{
				{Kind: domain.TransactionKindDeposit, Client: 3, Tx: 7, Amount: amountPtr("2.5")},
			},
		},
		{
			name:  "no amount column",
			input: "type,client,tx\ndispute,3,7\n",
			want: []domain.TransactionRecord{
				{Kind: domain.TransactionKindDispute, Client: 3, Tx: 7},
			},
		},
		{
			name:  "byte order mark",
			input: "\xEF\xBB\xBFtype,client,tx,amount\ndeposit,1,1,1\n",
			want: []domain.TransactionRecord{
				{Kind: domain.TransactionKindDeposit, Client: 1, Tx: 1, Amount: amountPtr("1")},
			},
		},
		{
			name:  "crlf and blank lines",
			input: "type,client,tx,amount\r\n\r\ndeposit,1,1,1\r\n\r\n",
			want: []domain.TransactionRecord{
				{Kind: domain.TransactionKindDeposit, Client: 1, Tx: 1, Amount: amountPtr("1")},
			},
		},
		{
			name:  "trailing whitespace",
			input: "type ,client ,tx ,amount \ndeposit ,1 ,2 ,0.12345 \n",
			want: []domain.TransactionRecord{
				{Kind: domain.TransactionKindDeposit, Client: 1, Tx: 2, Amount: amountPtr("0.1234")},
			},
		},
		{
			name:  "amount on dispute is ignored",
			input: "type,client,tx,amount\ndispute,1,1,5.0\n",
			want: []domain.TransactionRecord{
				{Kind: domain.TransactionKindDispute, Client: 1, Tx: 1},
			},
		},
		{
			name:  "id bounds",
			input: "type,client,tx,amount\ndeposit,65535,4294967295,0\n",
			want: []domain.TransactionRecord{
				{Kind: domain.TransactionKindDeposit, Client: 65535, Tx: 4294967295, Amount: amountPtr("0")},
			},
		},
		{
			name:  "header only",
			input: "type,client,tx,amount\n",
			want:  nil,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := readAll(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestRecordReader_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"unknown kind", "type,client,tx,amount\ndeposit,1,1,1\nrefund,1,2,1\n", "line 3"},
		{"non-numeric amount", "type,client,tx,amount\ndeposit,1,1,abc\n", "line 2"},
		{"negative amount", "type,client,tx,amount\ndeposit,1,1,-1.0\n", "line 2"},
		{"amount out of range", "type,client,tx,amount\ndeposit,1,1,99999999999999999999\n", "line 2"},
		{"missing deposit amount", "type,client,tx,amount\ndeposit,1,1,\n", "line 2"},
		{"missing withdrawal amount", "type,client,tx\nwithdrawal,1,1\n", "line 2"},
		{"negative amount on dispute", "type,client,tx,amount\ndispute,1,1,-2\n", "line 2"},
		{"client out of range", "type,client,tx,amount\ndeposit,65536,1,1\n", "line 2"},
		{"negative client", "type,client,tx,amount\ndeposit,-1,1,1\n", "line 2"},
		{"tx out of range", "type,client,tx,amount\ndeposit,1,4294967296,1\n", "line 2"},
		{"non-integer tx", "type,client,tx,amount\ndeposit,1,1.5,1\n", "line 2"},
		{"too many fields", "type,client,tx,amount\ndeposit,1,1,1,1\n", "line 2"},
		{"too few fields", "type,client,tx,amount\ndeposit,1\n", "line 2"},
		{"missing header column", "type,client,amount\ndeposit,1,1\n", "line 1"},
		{"duplicate header column", "type,client,tx,tx\ndeposit,1,1,1\n", "line 1"},
		{"bare quote", "type,client,tx,amount\ndeposit,1,1,\"1\n", "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readAll(t, tt.input)
			require.Error(t, err)
			appErr := requireAppError(t, err, "IN_001")
			assert.Contains(t, appErr.Message, tt.line)
			assert.Equal(t, apperror.ExitDataErr, apperror.ExitCodeOf(err))
		})
	}
}

func TestRecordReader_StopsAtFirstMalformedRecord(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,1\ndeposit,2,2,x\ndeposit,3,3,1\n"

	records, err := readAll(t, input)
	require.Error(t, err)
	assert.Len(t, records, 1)
}

func TestRecordReader_ReadFailure(t *testing.T) {
	ioErr := errors.New("disk on fire")
	in := io.MultiReader(strings.NewReader("type,client,tx,amount\ndeposit,1,1,1\n"), iotest.ErrReader(ioErr))

	r, err := NewRecordReader(in)
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	requireAppError(t, err, "IN_003")
	assert.ErrorIs(t, err, ioErr)
	assert.Equal(t, apperror.ExitIOErr, apperror.ExitCodeOf(err))
}

func amountPtr(s string) *domain.Amount {
	a := domain.MustParseAmount(s)
	return &a
}
