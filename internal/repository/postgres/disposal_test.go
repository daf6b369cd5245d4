package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
	"github.com/pharmacycle/pharma-cycle/internal/service/analytics"
	"github.com/pharmacycle/pharma-cycle/internal/service/partner"
)

var disposalColumns = []string{
	"id", "user_id", "name", "email", "pharmacy_id", "name", "city",
	"items", "status", "disposal_code", "created_at", "completed_at",
}

func setupDisposalRepo(t *testing.T) (*DisposalRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDisposalRepo(db), mock
}

func TestListCompleted(t *testing.T) {
	repo, mock := setupDisposalRepo(t)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT d.id, d.user_id").
		WithArgs(domain.DisposalCompleted, from, to).
		WillReturnRows(sqlmock.NewRows(disposalColumns).
			AddRow("d1", "u1", "Asha", "asha@example.com", "p1", "Apollo", "Pune",
				[]byte(`[{"medicine_name":"Crocin 500","brand":"Crocin","qty":2}]`),
				"Completed", "ABC123", created, created.Add(time.Hour)).
			AddRow("d2", "u2", "", "", nil, nil, nil,
				[]byte(`[{"medicine_name":"Allegra"}]`),
				"Completed", "XYZ789", created, nil))

	got, err := repo.ListCompleted(context.Background(), analytics.Range{From: from, To: to})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.DisposalCompleted, got[0].Status)
	require.NotNil(t, got[0].Pharmacy)
	assert.Equal(t, domain.PharmacyRef{ID: "p1", Name: "Apollo", City: "Pune"}, *got[0].Pharmacy)
	assert.Equal(t, "Asha", got[0].User.Name)
	assert.Equal(t, 2, got[0].Items[0].Quantity)
	require.NotNil(t, got[0].CompletedAt)

	assert.Nil(t, got[1].Pharmacy)
	assert.Nil(t, got[1].PharmacyID)
	assert.Nil(t, got[1].User)
	assert.Nil(t, got[1].CompletedAt)
	assert.Equal(t, "Allegra", got[1].Items[0].MedicineName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCompleted_QueryError(t *testing.T) {
	repo, mock := setupDisposalRepo(t)
	mock.ExpectQuery("SELECT d.id").WillReturnError(errors.New("connection reset"))

	_, err := repo.ListCompleted(context.Background(), analytics.Range{})
	assert.ErrorContains(t, err, "list completed disposals")
}

func TestListCompleted_BadItemsJSON(t *testing.T) {
	repo, mock := setupDisposalRepo(t)
	mock.ExpectQuery("SELECT d.id").
		WillReturnRows(sqlmock.NewRows(disposalColumns).
			AddRow("d1", "u1", "", "", nil, nil, nil, []byte(`{not json`),
				"Completed", "C1", time.Now(), nil))

	_, err := repo.ListCompleted(context.Background(), analytics.Range{})
	assert.ErrorContains(t, err, "decode items of disposal d1")
}

func TestFindByCode_NotFound(t *testing.T) {
	repo, mock := setupDisposalRepo(t)
	mock.ExpectQuery("WHERE d.disposal_code").
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, partner.ErrNotFound)
}

func TestComplete(t *testing.T) {
	repo, mock := setupDisposalRepo(t)
	at := time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE disposals SET status").
		WithArgs(domain.DisposalCompleted, at, "d1", domain.DisposalPending).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "pharmacy_id"}).AddRow("u1", "p1"))
	mock.ExpectExec("UPDATE users SET points").
		WithArgs(15, at, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE pharmacies SET disposals_verified").
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Complete(context.Background(), "d1", at, 15))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete_WithoutPharmacy(t *testing.T) {
	repo, mock := setupDisposalRepo(t)
	at := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE disposals SET status").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "pharmacy_id"}).AddRow("u1", nil))
	mock.ExpectExec("UPDATE users SET points").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Complete(context.Background(), "d1", at, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete_AlreadyCompleted(t *testing.T) {
	repo, mock := setupDisposalRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE disposals SET status").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Complete(context.Background(), "d1", time.Now(), 5)
	assert.ErrorIs(t, err, partner.ErrAlreadyCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountCompleted(t *testing.T) {
	repo, mock := setupDisposalRepo(t)
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(domain.DisposalCompleted, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := repo.CountCompleted(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestBulkInsert(t *testing.T) {
	repo, mock := setupDisposalRepo(t)
	pharmacyID := "p1"
	records := []domain.DisposalRecord{
		{UserID: "u1", PharmacyID: &pharmacyID, Status: domain.DisposalCompleted, DisposalCode: "A1",
			Items: []domain.Item{{MedicineName: "Crocin", Quantity: 1}}, CreatedAt: time.Now()},
		{UserID: "u2", Status: domain.DisposalPending, DisposalCode: "B2", CreatedAt: time.Now()},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("COPY")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := repo.BulkInsert(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotEmpty(t, records[0].ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
