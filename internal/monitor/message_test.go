package monitor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/arbor/internal/bt"
	"github.com/joeycumines/arbor/internal/leaf"
)

// sampleTree returns Sequence(AlwaysSucceed, Selector(AlwaysFail, AlwaysRunning)).
func sampleTree(t *testing.T) *bt.Node[int] {
	t.Helper()
	sel, err := bt.NewSelector(leaf.AlwaysFail[int](), leaf.AlwaysRunning[int]())
	require.NoError(t, err)
	root, err := bt.NewSequence(leaf.AlwaysSucceed[int](), sel)
	require.NoError(t, err)
	return root
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	require.Equal(t, bt.Running, root.Tick(0))

	msgs := Snapshot(root)
	require.Len(t, msgs, 5)

	var types []string
	var statuses []bt.Status
	for _, m := range msgs {
		types = append(types, m.Type)
		statuses = append(statuses, m.Status)
	}
	require.Equal(t, []string{"Sequence", "AlwaysSucceed", "Selector", "AlwaysFail", "AlwaysRunning"}, types)
	require.Equal(t, []bt.Status{bt.Running, bt.Succeeded, bt.Running, bt.Failed, bt.Running}, statuses)

	require.Equal(t, root.ID(), msgs[0].ID)
	require.Equal(t, []uuid.UUID{msgs[1].ID, msgs[2].ID}, msgs[0].Children)
	require.Equal(t, []uuid.UUID{msgs[3].ID, msgs[4].ID}, msgs[2].Children)
	require.Nil(t, msgs[1].Children)

	i, err := Topology(msgs)
	require.NoError(t, err)
	require.Equal(t, 0, i)
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	root.Tick(0)
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	frame := NewFrame("sample", root, bt.TickEvent{
		Seq:     7,
		Status:  bt.Running,
		Started: started,
		Elapsed: 3 * time.Millisecond,
	})

	data, err := Encode(frame)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "running", raw["status"])
	require.Equal(t, "sample", raw["tree"])

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, frame.Tree, got.Tree)
	require.Equal(t, frame.Seq, got.Seq)
	require.Equal(t, frame.Status, got.Status)
	require.True(t, frame.Time.Equal(got.Time))
	require.Equal(t, frame.Elapsed, got.Elapsed)
	require.Equal(t, frame.Nodes, got.Nodes)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("{"))
	require.Error(t, err)

	_, err = Decode([]byte(`{"seq":1,"status":"bogus","nodes":[]}`))
	require.ErrorIs(t, err, bt.ErrUnknownStatus)

	_, err = Decode([]byte(`{"seq":1,"status":"running","nodes":[]}`))
	require.ErrorIs(t, err, ErrEmptyTopology)
}

func TestTopology_Errors(t *testing.T) {
	t.Parallel()

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	for _, tc := range []struct {
		name  string
		nodes []NodeMsg
		want  error
	}{
		{"empty", nil, ErrEmptyTopology},
		{"duplicate", []NodeMsg{{ID: a}, {ID: a}}, ErrDuplicateNode},
		{"unknown child", []NodeMsg{{ID: a, Children: []uuid.UUID{b}}}, ErrUnknownChild},
		{"two parents", []NodeMsg{
			{ID: a, Children: []uuid.UUID{c}},
			{ID: b, Children: []uuid.UUID{c}},
			{ID: c},
		}, ErrMultipleParents},
		{"two roots", []NodeMsg{{ID: a}, {ID: b}}, ErrNoRoot},
		{"all parented", []NodeMsg{
			{ID: a, Children: []uuid.UUID{b}},
			{ID: b, Children: []uuid.UUID{a}},
		}, ErrNoRoot},
		{"detached cycle", []NodeMsg{
			{ID: a},
			{ID: b, Children: []uuid.UUID{c}},
			{ID: c, Children: []uuid.UUID{b}},
		}, ErrNoRoot},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			i, err := Topology(tc.nodes)
			require.ErrorIs(t, err, tc.want)
			require.Equal(t, -1, i)
		})
	}
}

func TestTopology_RootNotFirst(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	i, err := Topology([]NodeMsg{{ID: b}, {ID: a, Children: []uuid.UUID{b}}})
	require.NoError(t, err)
	require.Equal(t, 1, i)
}
