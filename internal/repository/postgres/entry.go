package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/prizejet/prizejet/internal/domain"
	"github.com/prizejet/prizejet/internal/service/entry"
)

// EntryRepo implements entry.Repository against PostgreSQL.
type EntryRepo struct{ db *sql.DB }

// NewEntryRepo creates a Postgres-backed entry repository.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

// Completed bonus actions are aggregated inline so a single round trip
// returns the full entry.
const entryColumns = `
	e.id, e.campaign_id, e.email, e.name, e.referral_code, e.referrer_id,
	e.points, COALESCE(e.ip_address,''), e.created_at,
	COALESCE((SELECT array_agg(b.action_id ORDER BY b.completed_at)
	          FROM entry_bonus_actions b WHERE b.entry_id = e.id), '{}')`

func scanEntry(row interface{ Scan(...interface{}) error }) (*domain.Entry, error) {
	e := &domain.Entry{}
	err := row.Scan(
		&e.ID, &e.CampaignID, &e.Email, &e.Name, &e.ReferralCode, &e.ReferrerID,
		&e.Points, &e.IPAddress, &e.CreatedAt,
		pq.Array(&e.BonusActions),
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EntryRepo) Get(ctx context.Context, id string) (*domain.Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM campaign_entries e WHERE e.id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, entry.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

func (r *EntryRepo) GetByReferralCode(ctx context.Context, campaignID, code string) (*domain.Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM campaign_entries e
		WHERE e.campaign_id = $1 AND e.referral_code = $2
	`, campaignID, code))
	if err == sql.ErrNoRows {
		return nil, entry.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry by referral code: %w", err)
	}
	return e, nil
}

func (r *EntryRepo) List(ctx context.Context, campaignID string, f entry.ListFilter) ([]domain.Entry, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	countQ := `SELECT COUNT(*) FROM campaign_entries WHERE campaign_id = $1`
	countArgs := []interface{}{campaignID}
	if f.Search != "" {
		countQ += ` AND (email ILIKE $2 OR name ILIKE $2)`
		countArgs = append(countArgs, "%"+f.Search+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	q := `SELECT ` + entryColumns + ` FROM campaign_entries e WHERE e.campaign_id = $1`
	args := []interface{}{campaignID}
	idx := 2
	if f.Search != "" {
		q += fmt.Sprintf(" AND (e.email ILIKE $%d OR e.name ILIKE $%d)", idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}
	q += fmt.Sprintf(" ORDER BY e.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (r *EntryRepo) ListAll(ctx context.Context, campaignID string) ([]domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM campaign_entries e
		WHERE e.campaign_id = $1
		ORDER BY e.created_at ASC
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list all entries: %w", err)
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *EntryRepo) Count(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM campaign_entries WHERE campaign_id = $1`, campaignID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (r *EntryRepo) Create(ctx context.Context, e *domain.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaign_entries
			(id, campaign_id, email, name, referral_code, referrer_id,
			 points, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.CampaignID, e.Email, e.Name, e.ReferralCode, e.ReferrerID,
		e.Points, e.IPAddress, e.CreatedAt)
	if err != nil {
		if uniqueViolation(err, constraintEntryEmail) {
			return entry.ErrDuplicateEntry
		}
		if uniqueViolation(err, constraintReferralCode) {
			return entry.ErrCodeCollision
		}
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// AddPoints is a single atomic SQL add. Two concurrent referral credits
// against the same referrer both land; there is no read-modify-write.
func (r *EntryRepo) AddPoints(ctx context.Context, id string, delta int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaign_entries SET points = points + $1 WHERE id = $2
	`, delta, id)
	if err != nil {
		return fmt.Errorf("add points: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return entry.ErrNotFound
	}
	return nil
}

func (r *EntryRepo) CompleteBonusAction(ctx context.Context, entryID, actionID string, points int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO entry_bonus_actions (entry_id, action_id, points, completed_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (entry_id, action_id) DO NOTHING
	`, entryID, actionID, points)
	if err != nil {
		return false, fmt.Errorf("record completion: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Already completed; nothing to credit.
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE campaign_entries SET points = points + $1 WHERE id = $2
	`, points, entryID); err != nil {
		return false, fmt.Errorf("credit bonus points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}
