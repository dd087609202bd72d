package postgres

import (
	"database/sql"
	"testing"
	"time"
)

func TestNullHelpers(t *testing.T) {
	if v := toNullString("  "); v.Valid {
		t.Fatalf("blank name must be stored as NULL, got %+v", v)
	}
	if v := toNullString(" Bessie "); !v.Valid || v.String != "Bessie" {
		t.Fatalf("unexpected %+v", v)
	}

	if v := toNullDate(nil); v.Valid {
		t.Fatalf("nil date must be NULL")
	}

	local := time.Date(2024, 2, 10, 0, 0, 0, 0, time.FixedZone("CAT", 2*60*60))
	got := fromNullDate(sql.NullTime{Time: local, Valid: true})
	if got == nil || got.Format("2006-01-02") != "2024-02-10" || got.Location() != time.UTC {
		t.Fatalf("unexpected normalized date %v", got)
	}
	if fromNullDate(sql.NullTime{}) != nil {
		t.Fatalf("expected nil for NULL date")
	}
}
