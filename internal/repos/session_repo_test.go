package repos_test

import (
	"database/sql"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

func TestSessionRepo_BindUserUnbind(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	r := repos.NewSessionRepo(db)

	if _, err := r.User("sid-x"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("unknown session should be anonymous, got %v", err)
	}

	u := domain.User{ID: "u-alice", Email: "alice@example.test", Name: "Alice", Role: domain.RoleSeller, Token: "tok"}
	if err := r.Bind("sid-x", u); err != nil {
		t.Fatal(err)
	}
	got, err := r.User("sid-x")
	if err != nil {
		t.Fatal(err)
	}
	if *got != u {
		t.Fatalf("want %+v, got %+v", u, *got)
	}

	if err := r.Unbind("sid-x"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.User("sid-x"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("unbound session should be anonymous, got %v", err)
	}
}
