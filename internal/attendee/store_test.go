package attendee

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var columnNames = []string{
	"barcode", "order_id", "first_name", "last_name", "email",
	"company", "job_title", "ticket_type", "printed_at", "emailed_at",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Store) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return db, mock, NewStore(db, zap.NewNop())
}

func TestList_Unprinted(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	printed := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(columnNames).
		AddRow("111", "O-1", "Ada", "Lovelace", "ada@example.com", "Engines", nil, "General", nil, nil).
		AddRow("222", nil, "Alan", "Turing", "alan@example.com", nil, "Researcher", nil, nil, printed)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendees WHERE printed_at IS NULL ORDER BY last_name, first_name, barcode")).
		WillReturnRows(rows)

	list, err := store.List(context.Background(), Filter{Unprinted: true})
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Ada Lovelace", list[0].FullName())
	assert.Equal(t, "O-1", list[0].OrderID)
	assert.Empty(t, list[0].JobTitle)
	assert.Nil(t, list[0].PrintedAt)

	assert.Empty(t, list[1].OrderID)
	assert.Equal(t, "Researcher", list[1].JobTitle)
	require.NotNil(t, list[1].EmailedAt)
	assert.True(t, printed.Equal(*list[1].EmailedAt))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_NameEmailLimit(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE (first_name || ' ' || last_name) ILIKE $1 AND email ILIKE $2 AND emailed_at IS NULL ORDER BY last_name, first_name, barcode LIMIT $3")).
		WithArgs("%ada%", `%\_x@%`, 10).
		WillReturnRows(sqlmock.NewRows(columnNames))

	list, err := store.List(context.Background(), Filter{Name: " ada ", Email: "_x@", Unemailed: true, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_QueryError(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

	_, err := store.List(context.Background(), Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGet(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendees WHERE barcode = $1")).
		WithArgs("111").
		WillReturnRows(sqlmock.NewRows(columnNames).
			AddRow("111", "O-1", "Ada", "Lovelace", "ada@example.com", "", "", "", nil, nil))

	a, err := store.Get(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", a.Email)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendees WHERE barcode = $1")).
		WithArgs("999").
		WillReturnRows(sqlmock.NewRows(columnNames))

	_, err = store.Get(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	a := Attendee{
		Barcode: "111", OrderID: "O-1", FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Company: "Engines", JobTitle: "Analyst", TicketType: "General",
	}
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (barcode) DO UPDATE SET")).
		WithArgs("111", "O-1", "Ada", "Lovelace", "ada@example.com", "Engines", "Analyst", "General").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Upsert(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_KeepsDeliveryFlags(t *testing.T) {
	assert.NotContains(t, upsertQuery, "printed_at")
	assert.NotContains(t, upsertQuery, "emailed_at")
}

func TestUpsert_Invalid(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	err := store.Upsert(context.Background(), Attendee{FirstName: "Ada"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPrintedAndEmailed(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	at := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE attendees SET printed_at = $1 WHERE barcode = $2")).
		WithArgs(at, "111").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE attendees SET emailed_at = $1 WHERE barcode = $2")).
		WithArgs(at, "111").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE attendees SET emailed_at = $1 WHERE barcode = $2")).
		WithArgs(at, "999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.MarkPrinted(context.Background(), "111", at))
	require.NoError(t, store.MarkEmailed(context.Background(), "111", at))
	assert.ErrorIs(t, store.MarkEmailed(context.Background(), "999", at), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendee(t *testing.T) {
	a := Attendee{Barcode: "111", FirstName: " Ada ", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", a.FullName())
	assert.Equal(t, "111 (Ada Lovelace)", a.Key())
	assert.NoError(t, a.Validate())

	assert.Error(t, (&Attendee{FirstName: "Ada"}).Validate())
	assert.Error(t, (&Attendee{Barcode: "1"}).Validate())
	assert.Equal(t, "1", (&Attendee{Barcode: "1"}).Key())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%ada%", likePattern("ada"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
