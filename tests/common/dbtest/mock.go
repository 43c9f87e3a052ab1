//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockDBTX is a testify mock of db.DBTX.
type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgconn.CommandTag), mockArgs.Error(1)
}

func (m *MockDBTX) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	mockArgs := m.Called(ctx, query, args)
	rows, _ := mockArgs.Get(0).(pgx.Rows)
	return rows, mockArgs.Error(1)
}

func (m *MockDBTX) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgx.Row)
}

func (m *MockDBTX) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	mockArgs := m.Called(ctx, b)
	return mockArgs.Get(0).(pgx.BatchResults)
}

// Row is a pgx.Row that copies fixed values into the scan targets.
type Row struct {
	values []any
	err    error
}

func RowOf(values ...any) *Row { return &Row{values: values} }

func ErrRow(err error) *Row { return &Row{err: err} }

func (r *Row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("dbtest: scan %d targets from %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("dbtest: target %d is not a pointer", i)
		}
		if r.values[i] == nil {
			target.Elem().Set(reflect.Zero(target.Elem().Type()))
			continue
		}
		v := reflect.ValueOf(r.values[i])
		if !v.Type().AssignableTo(target.Elem().Type()) {
			return fmt.Errorf("dbtest: cannot assign %s to %s", v.Type(), target.Elem().Type())
		}
		target.Elem().Set(v)
	}
	return nil
}

// BatchResults replays one command tag or error per queued statement.
type BatchResults struct {
	Tags   []pgconn.CommandTag
	Err    error
	FailAt int
	calls  int
	Closed bool
}

func (b *BatchResults) Exec() (pgconn.CommandTag, error) {
	i := b.calls
	b.calls++
	if b.Err != nil && i == b.FailAt {
		return pgconn.CommandTag{}, b.Err
	}
	if i < len(b.Tags) {
		return b.Tags[i], nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (b *BatchResults) Query() (pgx.Rows, error) {
	return nil, fmt.Errorf("dbtest: Query not supported in batch")
}

func (b *BatchResults) QueryRow() pgx.Row {
	return ErrRow(fmt.Errorf("dbtest: QueryRow not supported in batch"))
}

func (b *BatchResults) Close() error {
	b.Closed = true
	return nil
}

// Rows is a pgx.Rows over fixed value tuples. Failure is reported by Err after the last row.
type Rows struct {
	Data    [][]any
	Failure error
	pos     int
	Closed  bool
}

func RowsOf(data ...[]any) *Rows { return &Rows{Data: data} }

func (r *Rows) Close()                                       { r.Closed = true }
func (r *Rows) Err() error                                   { return r.Failure }
func (r *Rows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *Rows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *Rows) RawValues() [][]byte                          { return nil }
func (r *Rows) Conn() *pgx.Conn                              { return nil }

func (r *Rows) Next() bool {
	if r.Closed || r.pos >= len(r.Data) {
		r.Closed = true
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	return RowOf(r.Data[r.pos-1]...).Scan(dest...)
}

func (r *Rows) Values() ([]any, error) {
	return r.Data[r.pos-1], nil
}
