package repository

import "testing"

func TestLastLoginDescNullsLastExprByDialect(t *testing.T) {
	cases := []struct {
		dialect string
		want    string
	}{
		{"postgres", "last_login_at DESC NULLS LAST"},
		{"postgresql", "last_login_at DESC NULLS LAST"},
		{"POSTGRES", "last_login_at DESC NULLS LAST"},
		{"sqlite", "last_login_at IS NULL, last_login_at DESC"},
		{"", "last_login_at IS NULL, last_login_at DESC"},
		{"mysql", "last_login_at IS NULL, last_login_at DESC"},
	}
	for _, c := range cases {
		got := lastLoginDescNullsLastExprByDialect(c.dialect)
		if got != c.want {
			t.Fatalf("dialect %q: got %q want %q", c.dialect, got, c.want)
		}
	}
}

func TestDBDialectNameNil(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db dialect: got %q want sqlite", got)
	}
}
