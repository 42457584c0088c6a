package leaf

import (
	"testing"
	"time"

	"github.com/joeycumines/arbor/internal/blackboard"
	"github.com/joeycumines/arbor/internal/bt"
	"github.com/stretchr/testify/require"
)

func TestScript_Tick(t *testing.T) {
	t.Parallel()

	s, err := NewScript("Report", `
		var calls = 0;
		function tick(bb) {
			calls++;
			bb.set("calls", calls);
			if (calls < 2) return bt.running;
			return bb.get("ok") ? bt.success : bt.failure;
		}
		function reset() { calls = 0; }
	`, WithLogger(discardLogger()))
	require.NoError(t, err)
	require.Equal(t, "Report", s.TypeName())

	bb := blackboard.New(map[string]any{"ok": true})
	require.Equal(t, bt.Running, s.Tick(bb))
	require.Equal(t, bt.Succeeded, s.Tick(bb))
	require.Equal(t, int64(2), bb.Get("calls"))

	s.Reset()
	bb.Set("ok", false)
	require.Equal(t, bt.Running, s.Tick(bb))
	require.Equal(t, bt.Failed, s.Tick(bb))
	require.Equal(t, int64(2), bb.Get("calls"))
}

func TestScript_Results(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		body string
		want bt.Status
	}{
		{`return true;`, bt.Succeeded},
		{`return false;`, bt.Failed},
		{`return;`, bt.Succeeded},
		{`return null;`, bt.Succeeded},
		{`return "Succeeded";`, bt.Succeeded},
		{`return "failed";`, bt.Failed},
		{`return "paused";`, bt.Failed},
		{`return 7;`, bt.Failed},
		{`throw new Error("boom");`, bt.Failed},
	} {
		s, err := NewScript("Case", "function tick(bb) { "+tc.body+" }", WithLogger(discardLogger()))
		require.NoError(t, err)
		require.Equal(t, tc.want, s.Tick(new(blackboard.Blackboard)), tc.body)
	}
}

func TestScript_ConstructionErrors(t *testing.T) {
	t.Parallel()

	_, err := NewScript("NoTick", `var x = 1;`)
	require.ErrorIs(t, err, ErrNoTickFunction)

	_, err = NewScript("Syntax", `function tick( {`)
	require.Error(t, err)

	_, err = NewScript("Throws", `throw new Error("init");`)
	require.Error(t, err)
}

func TestScript_Timeout(t *testing.T) {
	t.Parallel()

	s, err := NewScript("Spin", `
		var spin = true;
		function tick(bb) {
			if (spin) { for (;;) {} }
			return bt.success;
		}
		function reset() { spin = false; }
	`, WithTimeout(20*time.Millisecond), WithLogger(discardLogger()))
	require.NoError(t, err)

	bb := new(blackboard.Blackboard)
	require.Equal(t, bt.Failed, s.Tick(bb))

	// the runtime stays usable after an interrupt
	s.Reset()
	require.Equal(t, bt.Succeeded, s.Tick(bb))
}

func TestScript_Log(t *testing.T) {
	t.Parallel()

	s, err := NewScript("Logs", `function tick(bb) { log("hello " + bb.len()); }`, WithLogger(discardLogger()))
	require.NoError(t, err)
	require.Equal(t, bt.Succeeded, s.Tick(new(blackboard.Blackboard)))
}
