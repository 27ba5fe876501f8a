package payload

import (
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, sonic.UnmarshalString(raw, &v))
	return v
}

func TestField_ScansByKeyNotPosition(t *testing.T) {
	t.Parallel()

	team := decode(t, `[[{"team_key":"428.l.1.t.3"},{"team_id":"3"},[],{"name":"Hoopers"}],{"team_standings":{"rank":"2"}}]`)

	require.Equal(t, "428.l.1.t.3", String(team, "team_key"))
	require.Equal(t, "Hoopers", String(team, "name"))
	require.Equal(t, int64(3), Int(team, "team_id"))
	require.Equal(t, "2", String(Object(team, "team_standings"), "rank"))
	require.Equal(t, "", String(team, "missing"))
	require.False(t, Has(team, "missing"))
}

func TestCounted_SkipsCountSentinel(t *testing.T) {
	t.Parallel()

	v := decode(t, `{"0":{"team":"a"},"1":{"team":"b"},"count":2}`)
	items := Counted(v)
	require.Len(t, items, 2)
	require.Equal(t, "a", String(items[0], "team"))
	require.Equal(t, "b", String(items[1], "team"))
}

func TestCounted_CountBeyondKeysIsTolerated(t *testing.T) {
	t.Parallel()

	v := decode(t, `{"0":{"x":1},"count":3}`)
	require.Len(t, Counted(v), 1)
}

func TestCounted_ImplausibleCountIsClamped(t *testing.T) {
	t.Parallel()

	for _, count := range []float64{1e15, 1e300, -5} {
		v := map[string]any{"0": map[string]any{"x": 1}, "1": map[string]any{"x": 2}, "count": count}
		require.NotPanics(t, func() {
			items := Counted(v)
			if count > 0 {
				require.Len(t, items, 2)
			} else {
				require.Empty(t, items)
			}
		})
	}
}

func TestCounted_WithoutCountReadsNumericKeysInOrder(t *testing.T) {
	t.Parallel()

	v := decode(t, `{"1":{"id":"second"},"0":{"id":"first"},"coverage_type":"date"}`)
	items := Counted(v)
	require.Len(t, items, 2)
	require.Equal(t, "first", String(items[0], "id"))
}

func TestCounted_LoneObject(t *testing.T) {
	t.Parallel()

	v := decode(t, `{"id":"only"}`)
	require.Len(t, Counted(v), 1)
	require.Nil(t, Counted(nil))
	require.Nil(t, Counted("text"))
}

func TestChildren_UnwrapsItems(t *testing.T) {
	t.Parallel()

	league := decode(t, `[{"league_key":"428.l.1"},{"teams":{"0":{"team":[[{"team_key":"t1"}]]},"1":{"team":[[{"team_key":"t2"}]]},"count":2}}]`)
	teams := Children(league, "teams", "team")
	require.Len(t, teams, 2)
	require.Equal(t, "t2", String(teams[1], "team_key"))
	require.Empty(t, Children(league, "players", "player"))
}

func TestSingle_ShapeDispatch(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"array of wrapper": `[{"team_logo":{"size":"large","url":"https://img/a.png"}}]`,
		"wrapper object":   `{"team_logo":{"size":"large","url":"https://img/a.png"}}`,
		"indexed wrapper":  `{"0":{"team_logo":{"url":"https://img/a.png"}},"count":1}`,
		"direct object":    `{"url":"https://img/a.png"}`,
	}
	for name, raw := range cases {
		raw := raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := Single(decode(t, raw), "team_logo")
			require.Equal(t, "https://img/a.png", String(got, "url"))
		})
	}

	require.Nil(t, Single(decode(t, `[]`), "team_logo"))
	require.Nil(t, Single("x", "team_logo"))
}

func TestAll_CollectsAcrossFragments(t *testing.T) {
	t.Parallel()

	player := decode(t, `[[{"player_key":"p"}],{"player_points":{"total":"0"}},{"player_points":{"total":"11.5"}}]`)
	points := All(player, "player_points")
	require.Len(t, points, 2)
	require.Equal(t, 11.5, Float(points[1], "total"))
}

func TestScalarCoercion(t *testing.T) {
	t.Parallel()

	require.Equal(t, 24.3, AsFloat("24.3"))
	require.Equal(t, 0.0, AsFloat("-"))
	require.Equal(t, 0.0, AsFloat(nil))
	require.Equal(t, int64(12), AsInt(12.0))
	require.Equal(t, "12", AsString(12.0))
	require.Equal(t, "1.5", AsString(1.5))
	require.True(t, Bool(map[string]any{"is_current_login": "1"}, "is_current_login"))
	require.False(t, Bool(map[string]any{}, "is_current_login"))
}
