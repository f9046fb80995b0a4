package controllers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cppla/questhub/engagement"
	"github.com/cppla/questhub/models"
	"github.com/cppla/questhub/store"
)

// seedReferralChain creates alice <- bob <- carol plus dave as an unrelated publisher.
func seedReferralChain(t *testing.T, env *testEnv) {
	t.Helper()
	users := store.NewUserStore(env.db)
	ctx := context.Background()
	for _, u := range []struct{ addr, inviter string }{
		{alice, ""}, {bob, alice}, {carol, bob}, {dave, ""},
	} {
		_, _, err := users.Login(ctx, u.addr, u.inviter, env.clock)
		require.NoError(t, err)
	}
}

func createTask(t *testing.T, env *testEnv, publisher, reward string, max int) models.Task {
	t.Helper()
	code, resp := env.do(http.MethodPost, "/tasks", publisher, map[string]interface{}{
		"title":           "<b>Retweet</b> the launch",
		"description":     "<p>share it</p><script>x()</script>",
		"reward":          reward,
		"max_completions": max,
	})
	require.Equal(t, http.StatusOK, code, resp.Message)
	var task models.Task
	env.decode(resp.Data, &task)
	return task
}

func submit(t *testing.T, env *testEnv, taskID uint, address string) (int, envelope) {
	t.Helper()
	return env.do(http.MethodPost, fmt.Sprintf("/tasks/%d/submit", taskID), address, map[string]string{"proof": "https://x.com/p/1"})
}

func TestCreateTaskValidates(t *testing.T) {
	env := newTestEnv(t)
	task := createTask(t, env, dave, "12.5", 0)
	require.Equal(t, "Retweet the launch", task.Title)
	require.NotContains(t, task.Description, "script")
	require.Equal(t, models.TaskStatusOpen, task.Status)
	require.True(t, task.Reward.Equal(decimal.RequireFromString("12.5")))

	for _, reward := range []string{"0", "-1", "abc"} {
		code, resp := env.do(http.MethodPost, "/tasks", dave, map[string]interface{}{"title": "t", "reward": reward})
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, 40062, resp.Code)
	}
}

func TestSubmitRules(t *testing.T) {
	env := newTestEnv(t)
	seedReferralChain(t, env)
	task := createTask(t, env, dave, "5", 0)

	code, resp := submit(t, env, task.ID, dave)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, 40067, resp.Code)

	code, _ = submit(t, env, task.ID, carol)
	require.Equal(t, http.StatusOK, code)

	code, resp = submit(t, env, task.ID, carol)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, 40960, resp.Code)

	code, resp = submit(t, env, 999, carol)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, 40460, resp.Code)
}

func TestApproveDistributesAlongReferralChain(t *testing.T) {
	env := newTestEnv(t)
	seedReferralChain(t, env)
	task := createTask(t, env, dave, "20", 0)

	code, resp := submit(t, env, task.ID, carol)
	require.Equal(t, http.StatusOK, code)
	var sub models.Submission
	env.decode(resp.Data, &sub)

	approvePath := fmt.Sprintf("/admin/submissions/%d/approve", sub.ID)
	code, resp = env.do(http.MethodPost, approvePath, carol, nil)
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, 40301, resp.Code)

	code, resp = env.do(http.MethodPost, approvePath, admin, nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var dist models.RewardDistribution
	env.decode(resp.Data, &dist)
	require.Equal(t, carol, dist.ParticipantAddress)
	require.Equal(t, bob, dist.DirectInviterAddress)
	require.Equal(t, alice, dist.IndirectInviterAddress)
	require.Equal(t, "20.00", dist.UserReward.StringFixed(2))
	require.Equal(t, "2.00", dist.DirectInviterReward.StringFixed(2))
	require.Equal(t, "1.00", dist.IndirectInviterReward.StringFixed(2))

	code, resp = env.do(http.MethodPost, approvePath, admin, nil)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, 40961, resp.Code)

	users := store.NewUserStore(env.db)
	for addr, want := range map[string]string{carol: "20.00", bob: "2.00", alice: "1.00", dave: "0.00"} {
		u, err := users.Find(context.Background(), addr)
		require.NoError(t, err)
		require.Equal(t, want, u.Balance.StringFixed(2), addr)
	}

	code, resp = env.do(http.MethodGet, "/rewards/summary", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var totals engagement.FormattedTotals
	env.decode(resp.Data, &totals)
	require.Equal(t, engagement.FormattedTotals{
		TaskCompletionRewards:  "0.00",
		DirectInviterRewards:   "2.00",
		IndirectInviterRewards: "0.00",
		TotalBounty:            "2.00",
	}, totals)

	code, resp = env.do(http.MethodGet, "/rewards/summary", alice, nil)
	require.Equal(t, http.StatusOK, code)
	env.decode(resp.Data, &totals)
	require.Equal(t, "1.00", totals.IndirectInviterRewards)
	require.Equal(t, "1.00", totals.TotalBounty)

	code, resp = env.do(http.MethodGet, "/rewards/records", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Items []models.RewardDistribution `json:"items"`
	}
	env.decode(resp.Data, &page)
	require.Len(t, page.Items, 1)
}

func TestApproveClosesFullTask(t *testing.T) {
	env := newTestEnv(t)
	seedReferralChain(t, env)
	task := createTask(t, env, dave, "3", 1)

	_, resp := submit(t, env, task.ID, carol)
	var first models.Submission
	env.decode(resp.Data, &first)
	_, resp = submit(t, env, task.ID, bob)
	var second models.Submission
	env.decode(resp.Data, &second)

	code, _ := env.do(http.MethodPost, fmt.Sprintf("/admin/submissions/%d/approve", first.ID), admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = env.do(http.MethodPost, fmt.Sprintf("/admin/submissions/%d/approve", second.ID), admin, nil)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, 40962, resp.Code)

	var stored models.Task
	require.NoError(t, env.db.First(&stored, task.ID).Error)
	require.Equal(t, models.TaskStatusClosed, stored.Status)
	require.Equal(t, 1, stored.Completed)

	code, _ = env.do(http.MethodPost, fmt.Sprintf("/admin/submissions/%d/reject", second.ID), admin, nil)
	require.Equal(t, http.StatusOK, code)
}

func TestSummaryWithoutRewards(t *testing.T) {
	env := newTestEnv(t)
	code, resp := env.do(http.MethodGet, "/rewards/summary", dave, nil)
	require.Equal(t, http.StatusOK, code)
	var totals engagement.FormattedTotals
	env.decode(resp.Data, &totals)
	require.Equal(t, engagement.FormattedTotals{
		TaskCompletionRewards:  "0.00",
		DirectInviterRewards:   "0.00",
		IndirectInviterRewards: "0.00",
		TotalBounty:            "0.00",
	}, totals)
}

func TestReferralsListsDirectInvitees(t *testing.T) {
	env := newTestEnv(t)
	seedReferralChain(t, env)
	code, resp := env.do(http.MethodGet, "/referrals", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Items []struct {
			Address string `json:"address"`
		} `json:"items"`
	}
	env.decode(resp.Data, &page)
	require.Len(t, page.Items, 1)
	require.Equal(t, bob, page.Items[0].Address)
}
