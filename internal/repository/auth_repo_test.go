package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"chickencoop_bridge/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockUsers(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewUserRepository(db), mock
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		hash       string
		expect     func(sqlmock.Sqlmock)
		wantID     int
		errContain string
	}{
		{
			name:     "success",
			username: "farmer",
			hash:     "h123",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("farmer", "h123").
					WillReturnResult(sqlmock.NewResult(42, 1))
			},
			wantID: 42,
		},
		{
			name:     "duplicate username",
			username: "farmer",
			hash:     "h456",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("farmer", "h456").
					WillReturnError(errors.New("UNIQUE constraint failed: users.username"))
			},
			errContain: "insert user",
		},
		{
			name:     "last insert id error",
			username: "keeper",
			hash:     "h789",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("keeper", "h789").
					WillReturnResult(sqlmock.NewErrorResult(errors.New("no last id")))
			},
			errContain: "get last insert id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockUsers(t)
			tt.expect(mock)

			id, err := repo.Create(tt.username, tt.hash)
			if tt.errContain != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContain) {
					t.Fatalf("expected error containing %q, got %v", tt.errContain, err)
				}
				if id != 0 {
					t.Fatalf("expected id=0 on error, got %d", id)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.wantID {
				t.Fatalf("id = %d, want %d", id, tt.wantID)
			}
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		expect     func(sqlmock.Sqlmock)
		want       *models.User
		errContain string
	}{
		{
			name:     "found",
			username: "farmer",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
					WithArgs("farmer").
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}).AddRow(7, "farmer", "h123"))
			},
			want: &models.User{ID: 7, Username: "farmer", PasswordHash: "h123"},
		},
		{
			name:     "not found",
			username: "missing",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
		},
		{
			name:     "query error",
			username: "keeper",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
					WithArgs("keeper").
					WillReturnError(errors.New("db query failed"))
			},
			errContain: "select user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockUsers(t)
			tt.expect(mock)

			u, err := repo.GetByUsername(tt.username)
			if tt.errContain != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContain) {
					t.Fatalf("expected error containing %q, got %v", tt.errContain, err)
				}
				if u != nil {
					t.Fatalf("expected nil user on error, got %+v", u)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want == nil {
				if u != nil {
					t.Fatalf("expected nil user, got %+v", u)
				}
				return
			}
			if u == nil || *u != *tt.want {
				t.Fatalf("user = %+v, want %+v", u, tt.want)
			}
		})
	}
}
