package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cppla/questhub/engagement"
	"github.com/cppla/questhub/models"
	"github.com/cppla/questhub/store"
)

type checkInResult struct {
	DaysCredited  int               `json:"days_credited"`
	PointsAwarded int               `json:"points_awarded"`
	Status        engagement.Status `json:"status"`
}

func seedStreak(t *testing.T, env *testEnv, address string, days int, last time.Time) {
	t.Helper()
	require.NoError(t, store.NewCheckInStore(env.db).Save(context.Background(), engagement.CheckInState{
		Address:         address,
		ConsecutiveDays: days,
		LastCheckIn:     &last,
	}, 0))
}

func TestDailyCheckIn(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := store.NewUserStore(env.db).Login(context.Background(), alice, "", env.clock)
	require.NoError(t, err)

	code, resp := env.do(http.MethodPost, "/checkin/daily", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var res checkInResult
	env.decode(resp.Data, &res)
	require.Equal(t, 1, res.DaysCredited)
	require.Equal(t, 10, res.PointsAwarded)
	require.Equal(t, 1, res.Status.ConsecutiveDays)
	require.False(t, res.Status.CanCheckIn)

	env.clock = env.clock.Add(23*time.Hour + 59*time.Minute)
	code, resp = env.do(http.MethodPost, "/checkin/daily", alice, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, 40030, resp.Code)

	env.clock = env.clock.Add(2 * time.Minute)
	code, resp = env.do(http.MethodPost, "/checkin/daily", alice, nil)
	require.Equal(t, http.StatusOK, code)
	env.decode(resp.Data, &res)
	require.Equal(t, 2, res.Status.ConsecutiveDays)

	code, resp = env.do(http.MethodGet, "/checkin/status", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var st engagement.Status
	env.decode(resp.Data, &st)
	require.Equal(t, 2, st.ConsecutiveDays)
	require.Equal(t, "Initiate", st.Level)
	require.Equal(t, 25, st.NextLevelAt)

	u, err := store.NewUserStore(env.db).Find(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, 20, u.Points)
}

func TestDailyCheckInPromotes(t *testing.T) {
	env := newTestEnv(t)
	seedStreak(t, env, bob, 24, env.clock.Add(-25*time.Hour))

	code, resp := env.do(http.MethodPost, "/checkin/daily", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var res checkInResult
	env.decode(resp.Data, &res)
	require.Equal(t, 25, res.Status.ConsecutiveDays)
	require.Equal(t, "Operative", res.Status.Level)
	require.Equal(t, 1, res.Status.MakeupAllowed)
}

func TestMakeupCreditsWholeGap(t *testing.T) {
	env := newTestEnv(t)
	seedStreak(t, env, carol, 100, env.clock.Add(-5*engagement.Day))

	code, resp := env.do(http.MethodPost, "/checkin/makeup", carol, nil)
	require.Equal(t, http.StatusOK, code)
	var res checkInResult
	env.decode(resp.Data, &res)
	require.Equal(t, 5, res.DaysCredited)
	require.Equal(t, 105, res.Status.ConsecutiveDays)
	require.Equal(t, "Prime", res.Status.Level)
	require.True(t, res.Status.LastCheckIn.Equal(env.clock))

	code, resp = env.do(http.MethodGet, "/checkin/history", carol, nil)
	require.Equal(t, http.StatusOK, code)
	var history struct {
		Items []models.CheckInLog `json:"items"`
	}
	env.decode(resp.Data, &history)
	require.Len(t, history.Items, 1)
	require.Equal(t, models.CheckInKindMakeup, history.Items[0].Kind)
	require.Equal(t, 5, history.Items[0].DaysCredited)
}

func TestMakeupWindowExpiredLeavesState(t *testing.T) {
	env := newTestEnv(t)
	last := env.clock.Add(-2 * engagement.Day)
	seedStreak(t, env, bob, 30, last)

	code, resp := env.do(http.MethodPost, "/checkin/makeup", bob, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, 40032, resp.Code)
	var detail struct {
		Level   string `json:"level"`
		Allowed int    `json:"allowed"`
		Elapsed int    `json:"elapsed"`
	}
	env.decode(resp.Data, &detail)
	require.Equal(t, "Operative", detail.Level)
	require.Equal(t, 1, detail.Allowed)
	require.Equal(t, 2, detail.Elapsed)

	state, version, err := store.NewCheckInStore(env.db).Find(context.Background(), bob)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)
	require.Equal(t, 30, state.ConsecutiveDays)
	require.True(t, state.LastCheckIn.Equal(last))
}

func TestMakeupWithoutHistory(t *testing.T) {
	env := newTestEnv(t)
	code, resp := env.do(http.MethodPost, "/checkin/makeup", dave, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, 40031, resp.Code)
}

func TestCheckInRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	code, resp := env.do(http.MethodPost, "/checkin/daily", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, 40101, resp.Code)
}
