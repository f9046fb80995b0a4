package engagement

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0xA11CE00000000000000000000000000000000001"
	bob   = "0xB0B0000000000000000000000000000000000002"
	carol = "0xCA40100000000000000000000000000000000003"
)

func rec(task, user, direct, indirect string, u, d, i string) RewardRecord {
	return RewardRecord{
		TaskID:                 task,
		ParticipantAddress:     user,
		DirectInviterAddress:   direct,
		IndirectInviterAddress: indirect,
		UserReward:             decimal.RequireFromString(u),
		DirectInviterReward:    decimal.RequireFromString(d),
		IndirectInviterReward:  decimal.RequireFromString(i),
	}
}

func sample() []RewardRecord {
	return []RewardRecord{
		rec("1", alice, bob, carol, "10.00", "1.00", "0.50"),
		rec("2", bob, carol, "", "7.25", "0.725", "0"),
		rec("3", alice, bob, carol, "3.10", "0.31", "0.155"),
		rec("4", carol, "", "", "1.01", "0", "0"),
	}
}

func TestAggregateByRole(t *testing.T) {
	got := Aggregate(bob, sample()).Formatted()
	require.Equal(t, FormattedTotals{
		TaskCompletionRewards:  "7.25",
		DirectInviterRewards:   "1.31",
		IndirectInviterRewards: "0.00",
		TotalBounty:            "8.56",
	}, got)

	totals := Aggregate(carol, sample())
	require.True(t, totals.TaskCompletion.Equal(decimal.RequireFromString("1.01")))
	require.True(t, totals.DirectInviter.Equal(decimal.RequireFromString("0.725")))
	require.True(t, totals.IndirectInviter.Equal(decimal.RequireFromString("0.655")))
	require.True(t, totals.Total.Equal(decimal.RequireFromString("2.39")))
}

func TestAggregateUnknownAddress(t *testing.T) {
	got := Aggregate("0x0000000000000000000000000000000000000009", sample()).Formatted()
	require.Equal(t, FormattedTotals{"0.00", "0.00", "0.00", "0.00"}, got)

	require.Equal(t, FormattedTotals{"0.00", "0.00", "0.00", "0.00"}, Aggregate(alice, nil).Formatted())
}

func TestAggregateEmptyAddressIgnoresMissingInviters(t *testing.T) {
	got := Aggregate("", sample())
	require.True(t, got.Total.IsZero())
}

func TestAggregateMultiRoleRecord(t *testing.T) {
	records := []RewardRecord{rec("9", alice, alice, "", "5.00", "0.50", "0")}
	got := Aggregate(alice, records)
	require.Equal(t, "5.00", got.TaskCompletion.StringFixed(2))
	require.Equal(t, "0.50", got.DirectInviter.StringFixed(2))
	require.Equal(t, "5.50", got.Total.StringFixed(2))
}

func TestAggregateOrderIndependent(t *testing.T) {
	records := sample()
	for i := 0; i < 200; i++ {
		records = append(records, rec("bulk", alice, bob, carol, "0.10", "0.01", "0.005"))
	}
	want := Aggregate(alice, records)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]RewardRecord(nil), records...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Aggregate(alice, shuffled)
		require.True(t, want.Total.Equal(got.Total))
		require.True(t, want.TaskCompletion.Equal(got.TaskCompletion))
	}
}

func TestAggregateDoesNotDrift(t *testing.T) {
	records := make([]RewardRecord, 0, 1000)
	for i := 0; i < 1000; i++ {
		records = append(records, rec("x", alice, "", "", "0.10", "0", "0"))
	}
	got := Aggregate(alice, records)
	require.True(t, got.TaskCompletion.Equal(decimal.NewFromInt(100)), got.TaskCompletion.String())
}
