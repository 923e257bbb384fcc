package board

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashboard/bingo-server/internal/settings"
	"github.com/flashboard/bingo-server/internal/types"
)

// memStore records the last saved settings so tests can observe
// persistence without touching the filesystem.
type memStore struct {
	saved []settings.Settings
}

func (m *memStore) Load() (settings.Settings, error) { return settings.Defaults(), nil }
func (m *memStore) Save(s settings.Settings) error {
	m.saved = append(m.saved, s)
	return nil
}

func (m *memStore) last(t *testing.T) settings.Settings {
	t.Helper()
	require.NotEmpty(t, m.saved, "nothing was saved")
	return m.saved[len(m.saved)-1]
}

func TestDispatch_MutationsRequireToken(t *testing.T) {
	r := newRig(t, nil)

	gated := []struct {
		action  string
		payload any
	}{
		{"draw", nil},
		{"undo", nil},
		{"reset", nil},
		{"call_number", types.CallNumberPayload{Number: 7}},
		{"set_calling_style", types.CallingStylePayload{CallingStyle: "manual"}},
		{"set_game_type", types.GameTypePayload{GameType: "x"}},
		{"declare_winner", nil},
		{"clear_winner", nil},
		{"set_brightness", types.BrightnessPayload{Value: 100}},
		{"set_theme", types.ThemePayload{ID: intp(2)}},
		{"set_color", types.ColorPayload{Hex: "#112233"}},
		{"set_led_test", types.LedTestPayload{Enabled: boolp(true)}},
		{"set_board_pin", types.BoardPinPayload{CurrentPin: testPin, NextPin: "9999"}},
	}
	for _, tc := range gated {
		res := r.b.Do(cmd(tc.action, "", tc.payload))
		assert.Equal(t, http.StatusUnauthorized, res.Status, tc.action)
		assert.Equal(t, "board auth required", res.Err, tc.action)
	}

	// Player-facing actions never require the token.
	seed := r.view(t).State.BoardSeed
	cardID := r.joinCard(t, seed)
	res := r.b.Do(cmd("mark_card_cell", "", types.MarkCardPayload{CardID: cardID, CellIndex: 1, Marked: true}))
	assert.True(t, res.OK)
	res = r.b.Do(cmd("get_card_state", "", types.CardIDPayload{CardID: cardID}))
	assert.True(t, res.OK)
}

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func TestDispatch_TokenExpiry(t *testing.T) {
	r := newRig(t, nil)

	res := r.b.Do(cmd("unlock_board", "", types.UnlockPayload{Pin: "0000"}))
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "invalid pin", res.Err)

	token := r.unlock(t)
	res = r.b.Do(cmd("draw", token, nil))
	require.True(t, res.OK)
	st := res.Data.(types.BoardState)
	assert.Equal(t, 74, st.Remaining)
	assert.True(t, st.GameEstablished)
	assert.True(t, st.BoardAuthValid)

	r.clock.Advance(10*time.Minute + time.Second)
	res = r.b.Do(cmd("draw", token, nil))
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "board auth required", res.Err)
}

func TestDispatch_RefreshAndLock(t *testing.T) {
	r := newRig(t, nil)
	token := r.unlock(t)

	r.clock.Advance(9 * time.Minute)
	res := r.b.Do(cmd("refresh_board_auth", token, nil))
	require.True(t, res.OK)
	next := res.Data.(types.TokenResult)
	assert.NotEqual(t, token, next.Token)
	assert.Equal(t, (10 * time.Minute).Milliseconds(), next.TTLMs)

	res = r.b.Do(cmd("draw", token, nil))
	assert.Equal(t, http.StatusUnauthorized, res.Status, "stale token dies on refresh")

	res = r.b.Do(cmd("lock_board", "", nil))
	require.True(t, res.OK)
	res = r.b.Do(cmd("draw", next.Token, nil))
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestDispatch_ResetRollsJoinCode(t *testing.T) {
	r := newRig(t, nil)
	token := r.unlock(t)
	oldSeed := r.view(t).State.BoardSeed
	r.joinCard(t, oldSeed)

	res := r.b.Do(cmd("reset", token, nil))
	require.True(t, res.OK)

	newSeed := r.view(t).State.BoardSeed
	require.NotEqual(t, oldSeed, newSeed)

	numbers := make([]int, 25)
	for i := range numbers {
		numbers[i] = i + 1
	}
	res = r.b.Do(cmd("join_card", "", types.JoinCardPayload{Pin: oldSeed, Numbers: numbers}))
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "invalid board seed", res.Err)

	r.joinCard(t, newSeed)
}

func TestDispatch_StatusMapping(t *testing.T) {
	r := newRig(t, nil)
	token := r.unlock(t)
	seed := r.view(t).State.BoardSeed

	cases := []struct {
		name    string
		prep    func(t *testing.T)
		cmd     types.Command
		status  int
		errText string
	}{
		{
			name:    "call number outside manual style",
			cmd:     cmd("call_number", token, types.CallNumberPayload{Number: 7}),
			status:  http.StatusConflict,
			errText: "not manual",
		},
		{
			name: "style locked once established",
			prep: func(t *testing.T) {
				res := r.b.Do(cmd("draw", token, nil))
				require.True(t, res.OK)
			},
			cmd:     cmd("set_calling_style", token, types.CallingStylePayload{CallingStyle: "manual"}),
			status:  http.StatusConflict,
			errText: "game established",
		},
		{
			name:    "unknown card lookup",
			cmd:     cmd("get_card_state", "", types.CardIDPayload{CardID: "ghost"}),
			status:  http.StatusNotFound,
			errText: "card not found",
		},
		{
			name:    "unknown card mark",
			cmd:     cmd("mark_card_cell", "", types.MarkCardPayload{CardID: "ghost", CellIndex: 1, Marked: true}),
			status:  http.StatusNotFound,
			errText: "card not found",
		},
		{
			name:    "unknown action",
			cmd:     cmd("bogus", "", nil),
			status:  http.StatusBadRequest,
			errText: "unknown action",
		},
		{
			name:    "short card face list",
			cmd:     cmd("join_card", "", types.JoinCardPayload{Pin: seed, Numbers: []int{1, 2, 3}}),
			status:  http.StatusBadRequest,
			errText: "numbers[25] required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.prep != nil {
				tc.prep(t)
			}
			res := r.b.Do(tc.cmd)
			assert.False(t, res.OK)
			assert.Equal(t, tc.status, res.Status)
			assert.Equal(t, tc.errText, res.Err)
		})
	}
}

func TestDispatch_CardCapacity(t *testing.T) {
	r := newRig(t, nil) // engine arena holds 4 cards
	seed := r.view(t).State.BoardSeed

	for i := 0; i < 4; i++ {
		r.joinCard(t, seed)
	}
	numbers := make([]int, 25)
	for i := range numbers {
		numbers[i] = i + 1
	}
	res := r.b.Do(cmd("join_card", "", types.JoinCardPayload{Pin: seed, Numbers: numbers}))
	assert.Equal(t, http.StatusServiceUnavailable, res.Status)
	assert.Equal(t, "card capacity reached", res.Err)
}

func TestDispatch_DisplaySettingsPersist(t *testing.T) {
	store := &memStore{}
	r := newRig(t, func(o *Options) { o.Store = store })
	token := r.unlock(t)

	res := r.b.Do(cmd("set_brightness", token, types.BrightnessPayload{Value: 42}))
	require.True(t, res.OK)
	assert.Equal(t, 42, store.last(t).Brightness)

	res = r.b.Do(cmd("set_theme", token, types.ThemePayload{ID: intp(3)}))
	require.True(t, res.OK)
	saved := store.last(t)
	assert.Equal(t, 3, saved.Theme)
	assert.Equal(t, "theme", saved.ColorMode)

	res = r.b.Do(cmd("set_color", token, types.ColorPayload{Hex: "ff8800"}))
	require.True(t, res.OK)
	saved = store.last(t)
	assert.Equal(t, "solid", saved.ColorMode)
	assert.Equal(t, "#FF8800", saved.StaticColor, "hex normalized to uppercase with #")

	res = r.b.Do(cmd("set_brightness", token, types.BrightnessPayload{Value: 300}))
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestDispatch_GameTypeChangeResetsPatternIndex(t *testing.T) {
	r := newRig(t, func(o *Options) {
		o.PatternCycle = o.Clock.NewTicker(1500 * time.Millisecond)
	})
	token := r.unlock(t)

	r.clock.Advance(1500 * time.Millisecond)
	r.view(t)
	require.Equal(t, 1, r.view(t).State.PatternIndex)

	res := r.b.Do(cmd("set_game_type", token, types.GameTypePayload{GameType: "postage_stamp"}))
	require.True(t, res.OK)
	assert.Equal(t, 0, r.view(t).State.PatternIndex)
	assert.Equal(t, "postage_stamp", r.view(t).State.GameType)
}

func TestDispatch_BoardPinRotation(t *testing.T) {
	store := &memStore{}
	r := newRig(t, func(o *Options) { o.Store = store })
	token := r.unlock(t)

	res := r.b.Do(cmd("set_board_pin", token, types.BoardPinPayload{CurrentPin: "0000", NextPin: "9999"}))
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "current pin invalid", res.Err)

	res = r.b.Do(cmd("set_board_pin", token, types.BoardPinPayload{CurrentPin: testPin, NextPin: "12"}))
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "next pin invalid", res.Err)

	res = r.b.Do(cmd("set_board_pin", token, types.BoardPinPayload{CurrentPin: testPin, NextPin: "31337"}))
	require.True(t, res.OK)
	assert.Equal(t, "31337", store.last(t).BoardPin)

	res = r.b.Do(cmd("unlock_board", "", types.UnlockPayload{Pin: testPin}))
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	res = r.b.Do(cmd("unlock_board", "", types.UnlockPayload{Pin: "31337"}))
	assert.True(t, res.OK)
}

func TestDispatch_ManualFlow(t *testing.T) {
	r := newRig(t, func(o *Options) { o.Settings.CallingStyle = "manual" })
	token := r.unlock(t)

	res := r.b.Do(cmd("draw", token, nil))
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.Equal(t, "manual mode", res.Err)

	res = r.b.Do(cmd("call_number", token, types.CallNumberPayload{Number: 42}))
	require.True(t, res.OK)
	st := res.Data.(types.BoardState)
	assert.Equal(t, 42, st.Current)
	assert.Equal(t, []int{42}, st.Called)

	res = r.b.Do(cmd("call_number", token, types.CallNumberPayload{Number: 42}))
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "already called", res.Err)

	res = r.b.Do(cmd("call_number", token, types.CallNumberPayload{Number: 76}))
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "invalid number", res.Err)
}

func TestDispatch_WinnerLifecycle(t *testing.T) {
	r := newRig(t, nil)
	token := r.unlock(t)

	res := r.b.Do(cmd("declare_winner", token, nil))
	require.True(t, res.OK)
	st := r.view(t).State
	assert.True(t, st.WinnerDeclared)
	assert.True(t, st.ManualWinnerDeclared)
	firstEvent := st.WinnerEventID

	res = r.b.Do(cmd("clear_winner", token, nil))
	require.True(t, res.OK)
	st = r.view(t).State
	assert.False(t, st.WinnerDeclared)
	assert.False(t, st.ManualWinnerDeclared)
	assert.GreaterOrEqual(t, st.WinnerEventID, firstEvent)
	assert.True(t, r.view(t).Suppressed)
}
