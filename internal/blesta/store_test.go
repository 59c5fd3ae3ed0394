package blesta

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *AESCipher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c, err := NewAESCipher("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	return NewStore(sqlx.NewDb(db, "mysql"), c), mock, c
}

// decrypts checks that an argument is the ciphertext of want.
type decrypts struct {
	c    Cipher
	want string
}

func (d decrypts) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok || s == d.want {
		return false
	}
	plain, err := d.c.Decrypt(s)
	return err == nil && plain == d.want
}

func TestStoreAddClient(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clients (id_format, id_value, user_id, client_group_id, status)")).
		WithArgs(IDFormat, int64(7), int64(3), int64(1), "active").
		WillReturnResult(sqlmock.NewResult(55, 1))

	id, err := store.AddClient(context.Background(), Client{
		IDFormat: IDFormat, IDValue: 7, UserID: 3, ClientGroupID: 1, Status: "active",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAddCreditCardEncryptsOnWrite(t *testing.T) {
	store, mock, c := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts_cc")).
		WithArgs(int64(9), "Ada", "Lovelace", "1 Main St", "Austin", "TX", "78701", "US",
			decrypts{c, "4111111111111111"}, decrypts{c, "202712"}, decrypts{c, "1111"}, "visa", "active").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := store.AddCreditCard(context.Background(), CreditCard{
		ContactID: 9, FirstName: "Ada", LastName: "Lovelace", Address1: "1 Main St", City: "Austin",
		State: "TX", Zip: "78701", Country: "US", Number: "4111111111111111", Expiration: "202712",
		Last4: "1111", Type: "visa", Status: "active",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAddFieldsEncryptsFlaggedValues(t *testing.T) {
	store, mock, c := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO module_row_meta")).
		WithArgs(int64(4), "host_name", "server1.example.com", false, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO module_row_meta")).
		WithArgs(int64(4), "password", decrypts{c, "hunter2"}, false, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.AddFields(context.Background(), FieldScope{Table: ModuleRowMeta, OwnerID: 4}, []Field{
		{Key: "host_name", Value: "server1.example.com"},
		{Key: "password", Value: "hunter2", Encrypted: true},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAddFieldsUnknownTable(t *testing.T) {
	store, _, _ := newMockStore(t)
	err := store.AddFields(context.Background(), FieldScope{Table: FieldTable(99)}, []Field{{Key: "k"}})
	assert.Error(t, err)
}

func TestStoreAddPackageWritesNameAndDescription(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO packages")).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO package_names")).
		WithArgs(int64(12), "en_us", "Starter").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO package_descriptions")).
		WithArgs(int64(12), "en_us", "<p>Small plan</p>").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.AddPackage(context.Background(), Package{
		IDFormat: IDFormat, IDValue: 3, CompanyID: 1, Status: "active",
		Name: "Starter", Description: "<p>Small plan</p>", Lang: "en_us",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreLinkInvoiceLine(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoice_lines SET service_id = ? WHERE id = ?")).
		WithArgs(int64(30), int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.LinkInvoiceLine(context.Background(), 21, 30))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWithTxCommits(t *testing.T) {
	store, mock, _ := newMockStore(t)
	now := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnResult(sqlmock.NewResult(20, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoice_lines")).
		WithArgs(int64(20), nil, "Hosting", "1", "10.0000", 1).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	err := store.WithTx(context.Background(), func(d Destination) error {
		id, err := d.AddInvoice(context.Background(), Invoice{IDFormat: IDFormat, IDValue: 1, ClientID: 2,
			DateBilled: now, DateDue: now, Status: "active", Currency: "USD"})
		if err != nil {
			return err
		}
		// nested calls join the open transaction
		return d.WithTx(context.Background(), func(d Destination) error {
			_, err := d.AddInvoiceLine(context.Background(), InvoiceLine{InvoiceID: id, Description: "Hosting",
				Qty: "1", Amount: "10.0000", Order: 1})
			return err
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWithTxRollsBackOnError(t *testing.T) {
	store, mock, _ := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WillReturnError(boom)
	mock.ExpectRollback()

	err := store.WithTx(context.Background(), func(d Destination) error {
		_, err := d.AddTransaction(context.Background(), Transaction{ClientID: 1, Amount: "5.0000", Currency: "USD"})
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCount(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM clients")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := store.Count(context.Background(), "clients")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = store.Count(context.Background(), "clients; DROP TABLE users")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
