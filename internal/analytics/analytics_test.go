package analytics

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prizejet/prizejet/internal/domain"
)

func ref(id string) *string { return &id }

func mkEntry(id string, referrerID *string, points int, created time.Time) domain.Entry {
	return domain.Entry{
		ID:         id,
		CampaignID: "camp-1",
		Name:       "user " + id,
		Email:      id + "@example.com",
		ReferrerID: referrerID,
		Points:     points,
		IPAddress:  "203.0.113.1",
		CreatedAt:  created,
	}
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	entries := []domain.Entry{
		mkEntry("a", nil, 11, now),
		mkEntry("b", ref("a"), 1, now),
		mkEntry("c", nil, 1, now),
		mkEntry("d", ref("a"), 1, now),
	}

	s := Summarize(entries)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Direct)
	assert.Equal(t, 2, s.Referral)
	assert.Equal(t, s.Total, s.Direct+s.Referral)
	assert.InDelta(t, 50.0, s.ReferralRate, 0.001)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.ReferralRate)
}

// The worked example: A direct, B via A's code with referral_points=10.
func TestSummarizeWorkedExample(t *testing.T) {
	now := time.Now()
	entries := []domain.Entry{
		mkEntry("a", nil, 11, now),
		mkEntry("b", ref("a"), 1, now),
	}
	s := Summarize(entries)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Direct)
	assert.Equal(t, 1, s.Referral)
	assert.InDelta(t, 50.0, s.ReferralRate, 0.001)
}

func TestDailyStatsShape(t *testing.T) {
	today := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	entries := []domain.Entry{
		mkEntry("a", nil, 1, today.AddDate(0, 0, -3)),
		mkEntry("b", ref("a"), 1, today.AddDate(0, 0, -3)),
		mkEntry("c", nil, 1, today),
		// Outside the 14-day window: dropped.
		mkEntry("d", nil, 1, today.AddDate(0, 0, -20)),
	}

	stats := DailyStats(entries, today)
	require.Len(t, stats, 14)

	// Chronological, no gaps.
	for i := 1; i < len(stats); i++ {
		assert.True(t, stats[i-1].Date < stats[i].Date, "series must be chronological")
	}
	assert.Equal(t, "2026-08-18", stats[0].Date)
	assert.Equal(t, "2026-08-31", stats[13].Date)

	byDate := map[string]DailyStat{}
	for _, s := range stats {
		byDate[s.Date] = s
	}
	assert.Equal(t, 2, byDate["2026-08-28"].Entries)
	assert.Equal(t, 1, byDate["2026-08-28"].Referrals)
	assert.Equal(t, 1, byDate["2026-08-31"].Entries)
	assert.Equal(t, 0, byDate["2026-08-30"].Entries, "empty day must be zero-filled")

	total := 0
	for _, s := range stats {
		total += s.Entries
	}
	assert.Equal(t, 3, total, "out-of-window entry must not be counted")
}

func TestTopReferrers(t *testing.T) {
	now := time.Now()
	entries := []domain.Entry{
		mkEntry("a", nil, 1, now),
		mkEntry("b", nil, 1, now),
		mkEntry("c", ref("a"), 1, now),
		mkEntry("d", ref("a"), 1, now),
		mkEntry("e", ref("b"), 1, now),
		mkEntry("f", nil, 1, now), // zero referrals: excluded
	}

	top := TopReferrers(entries, 5)
	require.Len(t, top, 2)
	assert.Equal(t, "user a", top[0].Name)
	assert.Equal(t, 2, top[0].Referrals)
	assert.Equal(t, "user b", top[1].Name)
	assert.Equal(t, 1, top[1].Referrals)
}

func TestTopReferrersTruncation(t *testing.T) {
	now := time.Now()
	var entries []domain.Entry
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("r%d", i)
		entries = append(entries, mkEntry(id, nil, 1, now))
		entries = append(entries, mkEntry(id+"-child", ref(id), 1, now))
	}

	top := TopReferrers(entries, 5)
	assert.Len(t, top, 5)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Referrals, top[i].Referrals)
	}
}

func TestLeaderboard(t *testing.T) {
	now := time.Now()
	entries := []domain.Entry{
		mkEntry("a", nil, 11, now),
		mkEntry("b", ref("a"), 1, now),
		mkEntry("c", nil, 6, now),
	}
	entries[2].BonusActions = []string{"share-fb"}

	lb := Leaderboard(entries, 20)
	require.Len(t, lb, 3)
	assert.Equal(t, 1, lb[0].Rank)
	assert.Equal(t, "user a", lb[0].Name)
	assert.Equal(t, 11, lb[0].Points)
	assert.Equal(t, 1, lb[0].Referrals)
	assert.Equal(t, "user c", lb[1].Name)
	assert.Equal(t, 1, lb[1].BonusActions)
	assert.Equal(t, "user b", lb[2].Name)
}

func TestLeaderboardTruncation(t *testing.T) {
	now := time.Now()
	var entries []domain.Entry
	for i := 0; i < 30; i++ {
		entries = append(entries, mkEntry(fmt.Sprintf("e%d", i), nil, i, now))
	}

	lb := Leaderboard(entries, 20)
	require.Len(t, lb, 20)
	assert.Equal(t, 29, lb[0].Points)
	for i := 1; i < len(lb); i++ {
		assert.GreaterOrEqual(t, lb[i-1].Points, lb[i].Points)
	}
}

// Leaderboard must not reorder the caller's slice.
func TestLeaderboardDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	entries := []domain.Entry{
		mkEntry("low", nil, 1, now),
		mkEntry("high", nil, 9, now),
	}
	Leaderboard(entries, 20)
	assert.Equal(t, "low", entries[0].ID)
}

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	entries := []domain.Entry{
		mkEntry("a", nil, 11, created),
		mkEntry("b", ref("a"), 1, created),
	}
	entries[0].Name = `Alice "Al" Smith` // quoting must survive

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, entries))

	lines := strings.Split(strings.ReplaceAll(strings.TrimSpace(buf.String()), "\r", ""), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Email,Points,Referrer,Date Joined,IP Address", lines[0])
	assert.Contains(t, lines[1], "11,No,2026-08-30 09:30:00,203.0.113.1")
	assert.Contains(t, lines[2], ",Yes,")
}
