package engagement

import "github.com/shopspring/decimal"

// RewardRecord is one immutable distribution created when a task submission is approved.
// Empty inviter addresses mean the participant had no inviter at that depth.
type RewardRecord struct {
	TaskID                 string
	ParticipantAddress     string
	DirectInviterAddress   string
	IndirectInviterAddress string
	UserReward             decimal.Decimal
	DirectInviterReward    decimal.Decimal
	IndirectInviterReward  decimal.Decimal
}

// RewardTotals are the per-category sums for one address.
type RewardTotals struct {
	TaskCompletion  decimal.Decimal
	DirectInviter   decimal.Decimal
	IndirectInviter decimal.Decimal
	Total           decimal.Decimal
}

// FormattedTotals is RewardTotals rendered with two decimals.
type FormattedTotals struct {
	TaskCompletionRewards  string `json:"task_completion_rewards"`
	DirectInviterRewards   string `json:"direct_inviter_rewards"`
	IndirectInviterRewards string `json:"indirect_inviter_rewards"`
	TotalBounty            string `json:"total_bounty"`
}

// Aggregate sums every role address plays across records. A record naming the
// same address in several roles counts once per role.
func Aggregate(address string, records []RewardRecord) RewardTotals {
	t := RewardTotals{
		TaskCompletion:  decimal.Zero,
		DirectInviter:   decimal.Zero,
		IndirectInviter: decimal.Zero,
	}
	if address == "" {
		t.Total = decimal.Zero
		return t
	}
	for _, r := range records {
		if r.ParticipantAddress == address {
			t.TaskCompletion = t.TaskCompletion.Add(r.UserReward)
		}
		if r.DirectInviterAddress == address {
			t.DirectInviter = t.DirectInviter.Add(r.DirectInviterReward)
		}
		if r.IndirectInviterAddress == address {
			t.IndirectInviter = t.IndirectInviter.Add(r.IndirectInviterReward)
		}
	}
	t.Total = t.TaskCompletion.Add(t.DirectInviter).Add(t.IndirectInviter)
	return t
}

// Formatted renders the totals for display.
func (t RewardTotals) Formatted() FormattedTotals {
	return FormattedTotals{
		TaskCompletionRewards:  t.TaskCompletion.StringFixed(2),
		DirectInviterRewards:   t.DirectInviter.StringFixed(2),
		IndirectInviterRewards: t.IndirectInviter.StringFixed(2),
		TotalBounty:            t.Total.StringFixed(2),
	}
}
