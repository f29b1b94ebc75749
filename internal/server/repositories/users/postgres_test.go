package users

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

var fullCols = []string{"id", "username", "email", "full_name", "avatar", "cover_image", "password", "refresh_token", "created_at", "updated_at"}

func aliceRow(refresh any) *sqlmock.Rows {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(fullCols).
		AddRow("u-1", "alice", "alice@example.com", "Alice A", "http://cdn/a.png", "", "$2a$10$hash", refresh, ts, ts)
}

func TestFindByID_Found(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*username,.*refresh_token,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(aliceRow("rt-1"))

	u, err := repo.FindByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if u.Username != "alice" || u.Password != "$2a$10$hash" || u.RefreshToken != "rt-1" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByID_NullRefreshToken(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+users\s+WHERE\s+id`).WithArgs("u-1").WillReturnRows(aliceRow(nil))

	u, err := repo.FindByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if u.RefreshToken != "" {
		t.Fatalf("expected empty refresh token, got %q", u.RefreshToken)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+users\s+WHERE\s+id`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestFindPublicByID_ExcludesSecrets(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*username,\s*email,\s*full_name,\s*avatar,\s*cover_image,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	ts := time.Now()
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "username", "email", "full_name", "avatar", "cover_image", "created_at", "updated_at"}).
			AddRow("u-1", "alice", "alice@example.com", "Alice A", "http://cdn/a.png", "", ts, ts))

	u, err := repo.FindPublicByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("FindPublicByID error: %v", err)
	}
	if u.Password != "" || u.RefreshToken != "" {
		t.Fatalf("secrets leaked: %+v", u)
	}
}

func TestFindOne_Criteria(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		where    string
		args     []any
	}{
		{"both", "alice", "alice@example.com", `username\s*=\s*\$1\s+OR\s+email\s*=\s*\$2`, []any{"alice", "alice@example.com"}},
		{"username only", "alice", "", `username\s*=\s*\$1\s+LIMIT`, []any{"alice"}},
		{"email only", "", "alice@example.com", `email\s*=\s*\$1\s+LIMIT`, []any{"alice@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, _ := newRepoWithMock(t)

			args := make([]driver.Value, 0, len(tt.args))
			for _, a := range tt.args {
				args = append(args, a)
			}
			mock.ExpectQuery(`(?s)^SELECT.*FROM\s+users\s+WHERE\s+` + tt.where).
				WithArgs(args...).
				WillReturnRows(aliceRow(nil))

			u, err := repo.FindOne(context.Background(), tt.username, tt.email)
			if err != nil {
				t.Fatalf("FindOne error: %v", err)
			}
			if u.ID != "u-1" {
				t.Fatalf("unexpected user: %+v", u)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestFindOne_NoCriteria(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	_, err := repo.FindOne(context.Background(), "", "")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*email,\s*full_name,\s*avatar,\s*cover_image,\s*password\)\s*VALUES\s*\(\$1,.*\$7\)\s*RETURNING\s+created_at,\s*updated_at$`
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", "Alice A", "http://cdn/a.png", "", "$2a$10$hash").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts, ts))

	u := &models.User{Username: "alice", Email: "alice@example.com", FullName: "Alice A", Avatar: "http://cdn/a.png", Password: "$2a$10$hash"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID == "" || !got.CreatedAt.Equal(ts) {
		t.Fatalf("id/timestamps not assigned: %+v", got)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := repo.Create(context.Background(), &models.User{Username: "alice"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Username: "alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSave(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+username\s*=\s*\$2,.*WHERE\s+id\s*=\s*\$1$`
	u := &models.User{ID: "u-1", Username: "alice", Email: "alice@example.com", FullName: "Alice B", Avatar: "a", Password: "$2a$10$hash", RefreshToken: "rt"}

	t.Run("updated", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectExec(q).
			WithArgs("u-1", "alice", "alice@example.com", "Alice B", "a", "", "$2a$10$hash", "rt").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.Save(context.Background(), u); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))

		if err := repo.Save(context.Background(), u); !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("expected ErrorNotFound, got %v", err)
		}
	})
}

func TestUpdateRefreshToken(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+refresh_token\s*=\s*NULLIF\(\$2,\s*''\).*WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id,`

	t.Run("set", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("u-1", "rt-2").WillReturnRows(aliceRow("rt-2"))

		u, err := repo.UpdateRefreshToken(context.Background(), "u-1", "rt-2")
		if err != nil {
			t.Fatalf("UpdateRefreshToken error: %v", err)
		}
		if u.RefreshToken != "rt-2" {
			t.Fatalf("refresh token not returned: %+v", u)
		}
	})

	t.Run("clear", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("u-1", "").WillReturnRows(aliceRow(nil))

		u, err := repo.UpdateRefreshToken(context.Background(), "u-1", "")
		if err != nil {
			t.Fatalf("UpdateRefreshToken error: %v", err)
		}
		if u.RefreshToken != "" {
			t.Fatalf("expected cleared token, got %q", u.RefreshToken)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("nope", "").WillReturnError(sql.ErrNoRows)

		if _, err := repo.UpdateRefreshToken(context.Background(), "nope", ""); !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("expected ErrorNotFound, got %v", err)
		}
	})
}
