package partition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	pkgerrors "github.com/2187Nick/schwab-market-depth/pkg/errors"
	mock "github.com/2187Nick/schwab-market-depth/pkg/questdb/mock"
)

func newRows(ctrl *gomock.Controller, names ...string) *mock.MockRowsInterface {
	rows := mock.NewMockRowsInterface(ctrl)
	for _, name := range names {
		name := name
		rows.EXPECT().Next().Return(true)
		rows.EXPECT().Scan(gomock.Any()).DoAndReturn(func(dest ...any) error {
			*(dest[0].(*string)) = name
			return nil
		})
	}
	rows.EXPECT().Next().Return(false)
	rows.EXPECT().Err().Return(nil)
	rows.EXPECT().Close()
	return rows
}

func TestResolver_Day(t *testing.T) {
	testCases := []struct {
		name     string
		today    string
		tables   []string
		queryErr error
		assertFn func(t *testing.T, day string, err error)
	}{
		{
			name:   "today exists",
			today:  "20250415",
			tables: []string{"book_events_20250414", "book_events_20250415"},
			assertFn: func(t *testing.T, day string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "20250415", day)
			},
		},
		{
			name:   "falls back to most recent",
			today:  "20250415",
			tables: []string{"book_events_20250410", "book_events_20250413", "book_events_20250411"},
			assertFn: func(t *testing.T, day string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "20250413", day)
			},
		},
		{
			name:   "no partitions",
			today:  "20250415",
			tables: nil,
			assertFn: func(t *testing.T, day string, err error) {
				assert.Error(t, err)
				assert.True(t, pkgerrors.HasCode(err, pkgerrors.NoPartitionError))
			},
		},
		{
			name:     "catalog query fails",
			today:    "20250415",
			queryErr: errors.New("connection refused"),
			assertFn: func(t *testing.T, day string, err error) {
				assert.Error(t, err)
				assert.False(t, pkgerrors.HasCode(err, pkgerrors.NoPartitionError))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mock.NewMockClient(ctrl)
			if tc.queryErr != nil {
				client.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.queryErr)
			} else {
				client.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(newRows(ctrl, tc.tables...), nil)
			}

			resolver := NewResolver(client)
			resolver.now = func() time.Time {
				ts, _ := time.Parse(DayLayout, tc.today)
				return ts
			}

			day, err := resolver.Day(context.Background())
			tc.assertFn(t, day, err)
		})
	}
}

func TestWriter_Day(t *testing.T) {
	t.Run("creates tables once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var statements []string
		client := mock.NewMockClient(ctrl)
		client.EXPECT().Exec(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, sql string, _ ...any) error {
				statements = append(statements, sql)
				return nil
			}).Times(2)

		start, _ := time.Parse(DayLayout, "20250415")
		writer := NewWriter(client, start)

		day, err := writer.Day(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "20250415", day)

		if assert.Len(t, statements, 2) {
			assert.Contains(t, statements[0], "book_events_20250415")
			assert.Contains(t, statements[0], "symbol SYMBOL INDEX")
			assert.Contains(t, statements[1], "top_of_book_20250415")
			assert.Contains(t, statements[1], "symbol SYMBOL INDEX")
		}

		// Second call must not re-issue DDL.
		day, err = writer.Day(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "20250415", day)
	})

	t.Run("retries failed creation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mock.NewMockClient(ctrl)
		gomock.InOrder(
			client.EXPECT().Exec(gomock.Any(), gomock.Any()).Return(errors.New("disk full")),
			client.EXPECT().Exec(gomock.Any(), gomock.Any()).Return(nil).Times(2),
		)

		writer := NewWriter(client, time.Now())

		_, err := writer.Day(context.Background())
		assert.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.StoreWriteError))

		_, err = writer.Day(context.Background())
		assert.NoError(t, err)
	})
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "book_events_20250415", BookTable("20250415"))
	assert.Equal(t, "top_of_book_20250415", TopOfBookTable("20250415"))
}
