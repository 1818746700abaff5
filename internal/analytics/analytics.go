// Package analytics derives dashboard statistics from a campaign's entry
// collection. Every function here is a pure function of its inputs:
// statistics are computed fresh on each load from the full set of entries,
// with no caching or incremental maintenance. Tie-breaks in the ranked
// views follow the input order (stable sorts).
package analytics

import (
	"sort"
	"time"

	"github.com/prizejet/prizejet/internal/domain"
)

// window is the trailing number of days covered by the daily time series.
const window = 14

// Summary holds the headline entry counts for a campaign.
type Summary struct {
	Total        int     `json:"total_entries"`
	Direct       int     `json:"direct_entries"`
	Referral     int     `json:"referral_entries"`
	ReferralRate float64 `json:"referral_rate"`
}

// Summarize computes total/direct/referral counts and the referral rate.
// The rate is a percentage, 0 for an empty campaign.
func Summarize(entries []domain.Entry) Summary {
	s := Summary{Total: len(entries)}
	for i := range entries {
		if !entries[i].IsReferred() {
			s.Direct++
		}
	}
	s.Referral = s.Total - s.Direct
	if s.Total > 0 {
		s.ReferralRate = float64(s.Referral) / float64(s.Total) * 100
	}
	return s
}

// DailyStat is one calendar-day bucket of the entries time series.
type DailyStat struct {
	Date      string `json:"date"` // 2006-01-02
	Entries   int    `json:"entries"`
	Referrals int    `json:"referrals"`
}

// DailyStats buckets entries into a fixed 14-day trailing window ending on
// today's calendar date. Days with no entries appear with zero counts so
// the series has no gaps; output is chronological. Entries outside the
// window are dropped.
func DailyStats(entries []domain.Entry, today time.Time) []DailyStat {
	buckets := make(map[string]*DailyStat, window)
	out := make([]DailyStat, 0, window)
	for i := window - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, DailyStat{Date: d})
	}
	for i := range out {
		buckets[out[i].Date] = &out[i]
	}

	for i := range entries {
		day := entries[i].CreatedAt.Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			continue
		}
		b.Entries++
		if entries[i].IsReferred() {
			b.Referrals++
		}
	}
	return out
}

// TopReferrer is one row of the top-referrers ranking.
type TopReferrer struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Referrals int    `json:"referrals"`
}

// TopReferrers counts, for every entry, how many other entries name it as
// their referrer, then returns the top `limit` with a non-zero count,
// sorted descending. Ties keep input order.
func TopReferrers(entries []domain.Entry, limit int) []TopReferrer {
	counts := make(map[string]int, len(entries))
	for i := range entries {
		if entries[i].IsReferred() {
			counts[*entries[i].ReferrerID]++
		}
	}

	out := make([]TopReferrer, 0, len(counts))
	for i := range entries {
		if n := counts[entries[i].ID]; n > 0 {
			out = append(out, TopReferrer{
				Name:      entries[i].Name,
				Email:     entries[i].Email,
				Referrals: n,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Referrals > out[j].Referrals })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// LeaderboardRow is one ranked participant on the public leaderboard.
type LeaderboardRow struct {
	Rank         int    `json:"rank"`
	Name         string `json:"name"`
	Points       int    `json:"points"`
	Referrals    int    `json:"referrals"`
	BonusActions int    `json:"bonus_actions"`
}

// Leaderboard ranks entries by points descending, truncated to `limit`.
// Each row also reports the entry's referral count and completed
// bonus-action count. Ties keep input order.
func Leaderboard(entries []domain.Entry, limit int) []LeaderboardRow {
	counts := make(map[string]int, len(entries))
	for i := range entries {
		if entries[i].IsReferred() {
			counts[*entries[i].ReferrerID]++
		}
	}

	ranked := make([]domain.Entry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Points > ranked[j].Points })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]LeaderboardRow, 0, len(ranked))
	for i := range ranked {
		out = append(out, LeaderboardRow{
			Rank:         i + 1,
			Name:         ranked[i].Name,
			Points:       ranked[i].Points,
			Referrals:    counts[ranked[i].ID],
			BonusActions: len(ranked[i].BonusActions),
		})
	}
	return out
}
