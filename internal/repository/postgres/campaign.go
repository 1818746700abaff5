package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/prizejet/prizejet/internal/domain"
	"github.com/prizejet/prizejet/internal/service/campaign"
)

// CampaignRepo implements campaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

const campaignColumns = `
	id, owner_id, title, COALESCE(description,''), slug,
	start_date, end_date, status, prize_title, COALESCE(prize_description,''),
	num_winners, COALESCE(featured_image,''),
	entry_options, points_config, pro_features, created_at, updated_at`

func scanCampaign(row interface{ Scan(...interface{}) error }) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var entryOpts, pointsCfg, proFeat []byte
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.Slug,
		&c.StartDate, &c.EndDate, &c.Status, &c.PrizeTitle, &c.PrizeDesc,
		&c.NumWinners, &c.FeaturedImage,
		&entryOpts, &pointsCfg, &proFeat, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(entryOpts, &c.EntryOptions); err != nil {
		return nil, fmt.Errorf("decode entry_options: %w", err)
	}
	if err := json.Unmarshal(pointsCfg, &c.PointsConfig); err != nil {
		return nil, fmt.Errorf("decode points_config: %w", err)
	}
	if err := json.Unmarshal(proFeat, &c.ProFeatures); err != nil {
		return nil, fmt.Errorf("decode pro_features: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) Get(ctx context.Context, ownerID, id string) (*domain.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRowContext(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) GetBySlug(ctx context.Context, slug string) (*domain.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRowContext(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE slug = $1 AND status = 'active'
	`, slug))
	if err == sql.ErrNoRows {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign by slug: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) List(ctx context.Context, ownerID string, f campaign.ListFilter) ([]domain.Campaign, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	countQ := `SELECT COUNT(*) FROM campaigns WHERE owner_id = $1`
	countArgs := []interface{}{ownerID}
	if f.Status != "" {
		countQ += ` AND status = $2`
		countArgs = append(countArgs, f.Status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	q := `SELECT ` + campaignColumns + ` FROM campaigns WHERE owner_id = $1`
	args := []interface{}{ownerID}
	idx := 2
	if f.Status != "" {
		q += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	entryOpts, err := json.Marshal(c.EntryOptions)
	if err != nil {
		return "", fmt.Errorf("encode entry_options: %w", err)
	}
	pointsCfg, err := json.Marshal(c.PointsConfig)
	if err != nil {
		return "", fmt.Errorf("encode points_config: %w", err)
	}
	proFeat, err := json.Marshal(c.ProFeatures)
	if err != nil {
		return "", fmt.Errorf("encode pro_features: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO campaigns
			(id, owner_id, title, description, start_date, end_date, status,
			 prize_title, prize_description, num_winners,
			 entry_options, points_config, pro_features, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`, c.ID, c.OwnerID, c.Title, c.Description, c.StartDate, c.EndDate, c.Status,
		c.PrizeTitle, c.PrizeDesc, c.NumWinners, entryOpts, pointsCfg, proFeat)
	if err != nil {
		return "", fmt.Errorf("create campaign: %w", err)
	}
	return c.ID, nil
}

func (r *CampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	entryOpts, err := json.Marshal(c.EntryOptions)
	if err != nil {
		return fmt.Errorf("encode entry_options: %w", err)
	}
	pointsCfg, err := json.Marshal(c.PointsConfig)
	if err != nil {
		return fmt.Errorf("encode points_config: %w", err)
	}
	proFeat, err := json.Marshal(c.ProFeatures)
	if err != nil {
		return fmt.Errorf("encode pro_features: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET
			title = $1, description = $2, start_date = $3, end_date = $4,
			prize_title = $5, prize_description = $6, num_winners = $7,
			entry_options = $8, points_config = $9, pro_features = $10,
			updated_at = NOW()
		WHERE id = $11 AND owner_id = $12
	`, c.Title, c.Description, c.StartDate, c.EndDate,
		c.PrizeTitle, c.PrizeDesc, c.NumWinners,
		entryOpts, pointsCfg, proFeat, c.ID, c.OwnerID)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) Publish(ctx context.Context, ownerID, id, slug string) error {
	// COALESCE keeps an existing slug: publishing twice never renames the
	// public URL.
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET status = 'active', slug = COALESCE(slug, $1), updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
	`, slug, id, ownerID)
	if err != nil {
		if uniqueViolation(err, constraintCampaignSlug) {
			return campaign.ErrSlugTaken
		}
		return fmt.Errorf("publish campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM campaigns
		WHERE id = $1 AND owner_id = $2 AND status = 'draft'
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Either missing or published; look again to tell the caller which.
		var status string
		err := r.db.QueryRowContext(ctx,
			`SELECT status FROM campaigns WHERE id = $1 AND owner_id = $2`, id, ownerID,
		).Scan(&status)
		if err == sql.ErrNoRows {
			return campaign.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("delete campaign: %w", err)
		}
		return campaign.ErrNotDraft
	}
	return nil
}

func (r *CampaignRepo) SetFeaturedImage(ctx context.Context, ownerID, id, url string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET featured_image = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
	`, url, id, ownerID)
	if err != nil {
		return fmt.Errorf("set featured image: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}
