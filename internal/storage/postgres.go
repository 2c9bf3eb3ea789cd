package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"influencer-match-engine/internal/config"
	"influencer-match-engine/internal/payments"
	"influencer-match-engine/internal/scoring"
)

var (
	// ErrNotFound is returned by single-row lookups with no matching row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("already exists")
)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Postgres.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Postgres.MaxIdleConns)
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const influencerColumns = `u.id, p.niches, p.location, p.audience_size, p.engagement_rate,
       p.followers, p.avg_likes, p.avg_comments`

// GetInfluencer loads one influencer-role user with their profile sub-record.
func (s *Store) GetInfluencer(ctx context.Context, id string) (scoring.InfluencerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := s.pool.QueryRow(ctx, `
		SELECT `+influencerColumns+`
		FROM users u
		LEFT JOIN influencer_profiles p ON p.user_id = u.id
		WHERE u.id = $1 AND u.role = 'influencer'
	`, id)

	inf, err := scanInfluencer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return scoring.InfluencerProfile{}, fmt.Errorf("influencer %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return scoring.InfluencerProfile{}, fmt.Errorf("query influencer: %w", err)
	}
	return inf, nil
}

// LoadInfluencers loads every influencer-role user with their profile.
func (s *Store) LoadInfluencers(ctx context.Context) ([]scoring.InfluencerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT `+influencerColumns+`
		FROM users u
		LEFT JOIN influencer_profiles p ON p.user_id = u.id
		WHERE u.role = 'influencer'
		ORDER BY u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query influencers: %w", err)
	}
	defer rows.Close()

	var out []scoring.InfluencerProfile
	for rows.Next() {
		inf, err := scanInfluencer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan influencer: %w", err)
		}
		out = append(out, inf)
	}
	return out, rows.Err()
}

func scanInfluencer(row pgx.Row) (scoring.InfluencerProfile, error) {
	var (
		inf                   scoring.InfluencerProfile
		followers             *int64
		avgLikes, avgComments *float64
	)
	err := row.Scan(&inf.ID, &inf.Niches, &inf.Location, &inf.AudienceSize,
		&inf.EngagementRate, &followers, &avgLikes, &avgComments)
	if err != nil {
		return scoring.InfluencerProfile{}, err
	}
	if followers != nil || avgLikes != nil || avgComments != nil {
		inf.Metrics = &scoring.Metrics{
			Followers:       followers,
			AverageLikes:    avgLikes,
			AverageComments: avgComments,
		}
	}
	return inf, nil
}

const campaignColumns = `id, title, status, target_niches, target_location,
       target_audience_min, target_audience_max`

// GetCampaign loads one campaign regardless of status.
func (s *Store) GetCampaign(ctx context.Context, id string) (scoring.CampaignDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := s.pool.QueryRow(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE id = $1
	`, id)

	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return scoring.CampaignDescriptor{}, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return scoring.CampaignDescriptor{}, fmt.Errorf("query campaign: %w", err)
	}
	return c, nil
}

// LoadActiveCampaigns loads all campaigns with status 'active'.
func (s *Store) LoadActiveCampaigns(ctx context.Context) ([]scoring.CampaignDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE status = 'active'
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	var out []scoring.CampaignDescriptor
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCampaign(row pgx.Row) (scoring.CampaignDescriptor, error) {
	var (
		c        scoring.CampaignDescriptor
		min, max *int64
	)
	err := row.Scan(&c.ID, &c.Title, &c.Status, &c.TargetNiches, &c.TargetLocation, &min, &max)
	if err != nil {
		return scoring.CampaignDescriptor{}, err
	}
	if min != nil || max != nil {
		c.TargetAudienceSize = &scoring.AudienceRange{Min: min, Max: max}
	}
	return c, nil
}

// GetUserEmail looks up the email address for any user role.
func (s *Store) GetUserEmail(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var email string
	err := s.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, id).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query user email: %w", err)
	}
	return email, nil
}

// AppliedCampaignIDs returns the campaigns the influencer already applied to.
func (s *Store) AppliedCampaignIDs(ctx context.Context, influencerID string) (map[string]struct{}, error) {
	return s.idSet(ctx, `SELECT campaign_id FROM applications WHERE influencer_id = $1`, influencerID)
}

// AppliedInfluencerIDs returns the influencers with an application against
// the campaign.
func (s *Store) AppliedInfluencerIDs(ctx context.Context, campaignID string) (map[string]struct{}, error) {
	return s.idSet(ctx, `SELECT influencer_id FROM applications WHERE campaign_id = $1`, campaignID)
}

func (s *Store) idSet(ctx context.Context, query, arg string) (map[string]struct{}, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// CreateApplication inserts a submitted application. A second application by
// the same influencer to the same campaign hits the unique constraint and
// returns ErrDuplicate.
func (s *Store) CreateApplication(ctx context.Context, a Application) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO applications (id, campaign_id, influencer_id, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.CampaignID, a.InfluencerID, a.Message, a.Status, a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("application for campaign %s by %s: %w", a.CampaignID, a.InfluencerID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *Store) CreateInvitation(ctx context.Context, inv Invitation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO invitations (id, campaign_id, influencer_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, inv.ID, inv.CampaignID, inv.InfluencerID, inv.Status, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

func (s *Store) CreateNotification(ctx context.Context, n Notification) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ID, n.RecipientID, n.Type, payload, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *Store) CreatePayout(ctx context.Context, p payments.Payout) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO payouts (id, campaign_id, influencer_id, amount_cents, fee_cents, net_cents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.CampaignID, p.InfluencerID, p.AmountCents, p.FeeCents, p.NetCents, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

// UpdatePayoutStatus validates the transition against the current row under
// a row lock, then applies it. Returns the updated payout.
func (s *Store) UpdatePayoutStatus(ctx context.Context, id string, next payments.Status) (payments.Payout, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return payments.Payout{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var p payments.Payout
	err = tx.QueryRow(ctx, `
		SELECT id, campaign_id, influencer_id, amount_cents, fee_cents, net_cents, status, created_at, updated_at
		FROM payouts WHERE id = $1 FOR UPDATE
	`, id).Scan(&p.ID, &p.CampaignID, &p.InfluencerID, &p.AmountCents, &p.FeeCents, &p.NetCents,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return payments.Payout{}, fmt.Errorf("payout %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return payments.Payout{}, fmt.Errorf("query payout: %w", err)
	}

	if !payments.CanTransition(p.Status, next) {
		return payments.Payout{}, &payments.TransitionError{From: p.Status, To: next}
	}

	p.Status = next
	p.UpdatedAt = time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		UPDATE payouts SET status = $2, updated_at = $3 WHERE id = $1
	`, p.ID, p.Status, p.UpdatedAt); err != nil {
		return payments.Payout{}, fmt.Errorf("update payout: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return payments.Payout{}, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

func (s *Store) ListenChannel() string {
	return "marketplace_data_change"
}

func (s *Store) PgxPool() *pgxpool.Pool {
	if s.pool == nil {
		panic(errors.New("pgx pool is nil"))
	}
	return s.pool
}
