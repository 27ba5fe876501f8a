package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("key", "name").
		From("teams").
		Where(Eq("league_key", "nba.l.1"), In("key", Strings([]string{"a", "b"}))).
		OrderBy("key").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT key, name FROM teams WHERE league_key = $1 AND key IN ($2, $3) ORDER BY key LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "nba.l.1" || args[2] != "b" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		Key     string `db:"key"`
		Name    string `db:"name"`
		skipped string
		Ignored string `db:"-"`
	}

	query, args, err := InsertModel("players", row{Key: "nba.p.1", Name: "A"}, "ON CONFLICT (key) DO UPDATE SET "+Excluded("name"))
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO players (key, name) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "nba.p.1" || args[1] != "A" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("market_offers").
		Set("status", "REJECTED").
		SetExpr("updated_at", "?", "now").
		Where(Eq("id", "o1"), Expr("status = ?", "PENDING")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE market_offers SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != "PENDING" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	t.Run("keeps listed members", func(t *testing.T) {
		query, args, err := DeleteFrom("team_players").
			Where(Eq("team_key", "t1"), NotIn("player_key", Strings([]string{"p1"}))).
			ToSQL()
		if err != nil {
			t.Fatalf("build delete query: %v", err)
		}
		wantQuery := "DELETE FROM team_players WHERE team_key = $1 AND player_key NOT IN ($2)"
		if query != wantQuery {
			t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
		}
		if len(args) != 2 {
			t.Fatalf("unexpected args: %+v", args)
		}
	})

	t.Run("empty exclusion deletes all of the team", func(t *testing.T) {
		query, _, err := DeleteFrom("team_players").
			Where(Eq("team_key", "t1"), NotIn("player_key", nil)).
			ToSQL()
		if err != nil {
			t.Fatalf("build delete query: %v", err)
		}
		if query != "DELETE FROM team_players WHERE team_key = $1 AND 1=1" {
			t.Fatalf("unexpected query: %s", query)
		}
	})

	t.Run("refuses unconditioned delete", func(t *testing.T) {
		if _, _, err := DeleteFrom("team_players").ToSQL(); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestColumnsOf_Rejects(t *testing.T) {
	type untagged struct{ Name string }
	var nilRow *struct {
		Key string `db:"key"`
	}

	for name, model := range map[string]any{
		"nil pointer": nilRow,
		"not struct":  "players",
		"no columns":  untagged{Name: "x"},
	} {
		if _, _, err := ColumnsOf(model); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
