package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("fight_id", "opponent_name").
		From("fights").
		Where(Eq("robot_id", int64(7)), Expr("outcome <> ?", "undecided")).
		OrderBy("fight_id ASC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatal(err)
	}

	want := "SELECT fight_id, opponent_name FROM fights WHERE robot_id = $1 AND outcome <> $2 ORDER BY fight_id ASC LIMIT 10"
	if sql != want {
		t.Fatalf("unexpected SQL:\n got %s\nwant %s", sql, want)
	}
	if !reflect.DeepEqual(args, []any{int64(7), "undecided"}) {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestSelectBuilder_RequiresTableAndColumns(t *testing.T) {
	t.Parallel()

	if _, _, err := Select().From("fights").ToSQL(); err == nil {
		t.Fatal("expected error without columns")
	}
	if _, _, err := Select("fight_id").ToSQL(); err == nil {
		t.Fatal("expected error without table")
	}
}

func TestInsertBuilder_WithSuffix(t *testing.T) {
	t.Parallel()

	sql, args, err := InsertInto("cron_schedules").
		Columns("job_name", "cron_expression").
		Values("scraper", "*/10 * * * *").
		Suffix("ON CONFLICT (job_name) DO UPDATE SET cron_expression = ?", "*/10 * * * *").
		ToSQL()
	if err != nil {
		t.Fatal(err)
	}

	want := "INSERT INTO cron_schedules (job_name, cron_expression) VALUES ($1, $2) ON CONFLICT (job_name) DO UPDATE SET cron_expression = $3"
	if sql != want {
		t.Fatalf("unexpected SQL:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestInsertBuilder_ValueCountMismatch(t *testing.T) {
	t.Parallel()

	if _, _, err := InsertInto("fights").Columns("a", "b").Values(1).ToSQL(); err == nil {
		t.Fatal("expected error on column/value mismatch")
	}
}

func TestUpdateBuilder(t *testing.T) {
	t.Parallel()

	sql, args, err := Update("fights").
		Set("outcome", "win").
		Set("outcome_type", "KO").
		Where(Eq("fight_id", int64(3))).
		ToSQL()
	if err != nil {
		t.Fatal(err)
	}

	want := "UPDATE fights SET outcome = $1, outcome_type = $2 WHERE fight_id = $3"
	if sql != want {
		t.Fatalf("unexpected SQL:\n got %s\nwant %s", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"win", "KO", int64(3)}) {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestDeleteBuilder_RequiresWhere(t *testing.T) {
	t.Parallel()

	if _, _, err := DeleteFrom("fights").ToSQL(); err == nil {
		t.Fatal("expected error without a where clause")
	}

	sql, args, err := DeleteFrom("fights").Where(Eq("fight_id", int64(9))).ToSQL()
	if err != nil {
		t.Fatal(err)
	}
	if sql != "DELETE FROM fights WHERE fight_id = $1" || len(args) != 1 {
		t.Fatalf("unexpected SQL %q args %#v", sql, args)
	}
}
