package snowflake

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	connStr := "scheme=https;ACCOUNT=ACME-LEDGER01;HOST=acme-ledger01.snowflakecomputing.com;port=443;USER=reporter;PASSWORD=s3cret;DB=FINANCE.LEDGER;WAREHOUSE=REPORTING_WH;"

	cfg := ParseConnectionString(connStr)
	assert.Equal(t, "ACME-LEDGER01", cfg.Account)
	assert.Equal(t, "reporter", cfg.User)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "FINANCE", cfg.Database)
	assert.Equal(t, "LEDGER", cfg.Schema)
	assert.Equal(t, "REPORTING_WH", cfg.Warehouse)
}

func TestParseConnectionStringNoTrailingSemicolon(t *testing.T) {
	cfg := ParseConnectionString("ACCOUNT=test;USER=user;PASSWORD=pass;DB=mydb")
	assert.Equal(t, "test", cfg.Account)
	assert.Equal(t, "mydb", cfg.Database)
	assert.Empty(t, cfg.Schema)
}

func TestConfigDSN(t *testing.T) {
	dsn, err := Config{Account: "acme", User: "u", Password: "p", Database: "FINANCE", Schema: "LEDGER", Warehouse: "WH"}.DSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "u:p@acme")
	assert.Contains(t, dsn, "FINANCE/LEDGER")
	assert.Contains(t, dsn, "warehouse=WH")

	_, err = Config{User: "u", Password: "p"}.DSN()
	assert.Error(t, err)
}

func TestSourceFetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT PRECIO, FECHA_VENTA FROM VENTA_BOLETOS").
		WillReturnRows(sqlmock.NewRows([]string{"PRECIO", "FECHA_VENTA"}).
			AddRow("250.75", at).
			AddRow(nil, at))
	mock.ExpectQuery("SELECT MONTO, FECHA FROM GASTOS").
		WillReturnRows(sqlmock.NewRows([]string{"MONTO", "FECHA"}).AddRow(90.0, nil))

	src := NewSourceWithDB(db)
	assert.Equal(t, "snowflake", src.Name())

	rev, err := src.FetchRevenue(context.Background())
	require.NoError(t, err)
	require.Len(t, rev, 2)
	require.NotNil(t, rev[0].Value)
	assert.Equal(t, 250.75, *rev[0].Value)
	assert.Equal(t, "2024-06-01T10:00:00Z", rev[0].Timestamp)
	assert.Nil(t, rev[1].Value)

	exp, err := src.FetchExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, exp, 1)
	assert.Empty(t, exp[0].Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceKeepsTimestampOffset(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mexico := time.FixedZone("CST", -6*60*60)
	mock.ExpectQuery("SELECT MONTO, FECHA FROM GASTOS").
		WillReturnRows(sqlmock.NewRows([]string{"MONTO", "FECHA"}).
			AddRow(15.0, time.Date(2024, 3, 31, 21, 30, 0, 0, mexico)))

	exp, err := NewSourceWithDB(db).FetchExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, exp, 1)
	assert.Equal(t, "2024-03-31T21:30:00-06:00", exp[0].Timestamp, "local calendar date is preserved")
	assert.NoError(t, mock.ExpectationsWereMet())
}
