package activity

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	qRecord = `(?s)^\s*INSERT\s+INTO\s+login_activity\s*\(subject_id,\s*day,\s*count\)\s*VALUES\s*\(\$1,\s*\$2,\s*1\)\s*ON\s+CONFLICT\s*\(subject_id,\s*day\)\s*DO\s+UPDATE\s+SET\s+count\s*=\s*login_activity\.count\s*\+\s*1\s*$`
	qList   = `(?s)^\s*SELECT\s+day,\s*count\s+FROM\s+login_activity\s+WHERE\s+subject_id\s*=\s*\$1\s+ORDER\s+BY\s+day\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	got := Day(time.Date(2024, 3, 10, 1, 30, 0, 0, loc))
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Day() = %v, want %v", got, want)
	}
}

func TestPostgresRecord(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	mock.ExpectExec(qRecord).
		WithArgs("s-1", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Record(context.Background(), "s-1", at); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRecord_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qRecord).WillReturnError(errors.New("db down"))

	err := repo.Record(context.Background(), "s-1", time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	d1 := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(qList).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).AddRow(d1, 2).AddRow(d2, 5))

	got, err := repo.List(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Count != 2 || got[1].Count != 5 || !got[1].Day.Equal(d2) || got[0].SubjectID != "s-1" {
		t.Fatalf("unexpected activity: %+v", got)
	}
}

func TestPostgresList_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qList).WillReturnError(errors.New("db err"))

	_, err := repo.List(context.Background(), "s-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	day2 := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	day1 := day2.Add(-24 * time.Hour)

	for _, at := range []time.Time{day2, day1, day2.Add(time.Hour), day2.Add(2 * time.Hour)} {
		if err := r.Record(ctx, "s-1", at); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}
	_ = r.Record(ctx, "s-2", day2)

	got, err := r.List(ctx, "s-1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %+v", got)
	}
	if !got[0].Day.Equal(Day(day1)) || got[0].Count != 1 {
		t.Fatalf("unexpected first day: %+v", got[0])
	}
	if !got[1].Day.Equal(Day(day2)) || got[1].Count != 3 {
		t.Fatalf("unexpected second day: %+v", got[1])
	}

	empty, err := r.List(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %+v, %v", empty, err)
	}
}
