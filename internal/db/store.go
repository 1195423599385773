package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peermatch/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) InsertOrganizations(ctx context.Context, orgs []models.Organization) (int64, error) {
	rows := make([][]any, 0, len(orgs))
	for _, o := range orgs {
		rows = append(rows, []any{o.ID, o.Name, o.Country, o.Region})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"organizations"},
		[]string{"id", "name", "country", "region"}, pgx.CopyFromRows(rows))
}

// InsertReviewers bulk-inserts reviewer rows together with their
// normalized expertise and language records.
func (s *Store) InsertReviewers(ctx context.Context, reviewers []models.ReviewerProfile) (int64, error) {
	reviewerRows := make([][]any, 0, len(reviewers))
	var expertiseRows [][]any
	var languageRows [][]any
	for _, r := range reviewers {
		reviewerRows = append(reviewerRows, []any{
			r.ID, r.FullName, r.HomeOrganizationID, r.IsLeadQualified,
			r.ReviewsCompleted, r.YearsExperience, string(r.SelectionStatus), r.UpdatedAt,
		})
		for _, e := range r.Expertise {
			expertiseRows = append(expertiseRows, []any{r.ID, e.Area, string(e.Proficiency), e.Years})
		}
		for _, l := range r.Languages {
			languageRows = append(languageRows, []any{r.ID, l.Language, string(l.Proficiency), l.IsNative, l.CanConduct})
		}
	}

	var inserted int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"reviewers"},
			[]string{"id", "full_name", "home_organization_id", "is_lead_qualified", "reviews_completed", "years_experience", "selection_status", "updated_at"},
			pgx.CopyFromRows(reviewerRows))
		if err != nil {
			return err
		}
		inserted = n
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"reviewer_expertise"},
			[]string{"reviewer_id", "area", "proficiency", "years"},
			pgx.CopyFromRows(expertiseRows)); err != nil {
			return err
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"reviewer_languages"},
			[]string{"reviewer_id", "language", "proficiency", "is_native", "can_conduct"},
			pgx.CopyFromRows(languageRows)); err != nil {
			return err
		}
		return nil
	})
	return inserted, err
}

// InsertAvailabilitySlots preserves the input order via the position
// column; slot resolution depends on it (later slots override earlier).
func (s *Store) InsertAvailabilitySlots(ctx context.Context, slots map[string][]models.AvailabilitySlot) (int64, error) {
	var rows [][]any
	for reviewerID, list := range slots {
		for i, slot := range list {
			rows = append(rows, []any{reviewerID, i, slot.StartDate, slot.EndDate, string(slot.Type)})
		}
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"availability_slots"},
		[]string{"reviewer_id", "position", "start_date", "end_date", "availability_type"},
		pgx.CopyFromRows(rows))
}

func (s *Store) InsertConflicts(ctx context.Context, conflicts map[string][]models.ConflictOfInterest) (int64, error) {
	var rows [][]any
	for reviewerID, list := range conflicts {
		for _, c := range list {
			rows = append(rows, []any{
				c.ID, reviewerID, c.OrganizationID, string(c.Type), c.IsActive,
				c.IsVerified, c.Decision, c.Justification, c.WaiverExpiryDate, c.EndDate, c.VerificationNotes,
			})
		}
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"conflicts_of_interest"},
		[]string{"id", "reviewer_id", "organization_id", "coi_type", "is_active", "is_verified", "decision", "justification", "waiver_expiry_date", "end_date", "verification_notes"},
		pgx.CopyFromRows(rows))
}

func (s *Store) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, country, region FROM organizations ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Country, &o.Region); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListReviewers returns reviewer header rows, optionally filtered by
// selection status, expertise area, or conducted language.
func (s *Store) ListReviewers(ctx context.Context, status, expertise, language string) ([]models.ReviewerProfile, error) {
	query := `SELECT id, full_name, home_organization_id, is_lead_qualified, reviews_completed, years_experience, selection_status, updated_at FROM reviewers`
	var args []any
	var wheres []string
	if status != "" {
		args = append(args, status)
		wheres = append(wheres, fmt.Sprintf("selection_status = $%d", len(args)))
	}
	if expertise != "" {
		args = append(args, expertise)
		wheres = append(wheres, fmt.Sprintf("EXISTS (SELECT 1 FROM reviewer_expertise e WHERE e.reviewer_id = reviewers.id AND e.area = $%d)", len(args)))
	}
	if language != "" {
		args = append(args, language)
		wheres = append(wheres, fmt.Sprintf("EXISTS (SELECT 1 FROM reviewer_languages l WHERE l.reviewer_id = reviewers.id AND l.language = $%d AND l.can_conduct)", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY full_name ASC, id ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ReviewerProfile
	for rows.Next() {
		r, err := scanReviewer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetReviewer hydrates one full profile snapshot.
func (s *Store) GetReviewer(ctx context.Context, id string) (models.ReviewerProfile, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, full_name, home_organization_id, is_lead_qualified, reviews_completed, years_experience, selection_status, updated_at FROM reviewers WHERE id = $1`, id)
	r, err := scanReviewer(row)
	if err != nil {
		return models.ReviewerProfile{}, err
	}

	profiles := map[string]*models.ReviewerProfile{r.ID: &r}
	if err := s.hydrate(ctx, profiles, "WHERE reviewer_id = $1", id); err != nil {
		return models.ReviewerProfile{}, err
	}
	return r, nil
}

// LoadReviewerSnapshots hydrates every reviewer profile for the
// matching engine's candidate pool. When activeOnly is set, INACTIVE
// reviewers are excluded.
func (s *Store) LoadReviewerSnapshots(ctx context.Context, activeOnly bool) ([]models.ReviewerProfile, error) {
	query := `SELECT id, full_name, home_organization_id, is_lead_qualified, reviews_completed, years_experience, selection_status, updated_at FROM reviewers`
	if activeOnly {
		query += ` WHERE selection_status <> 'INACTIVE'`
	}
	query += ` ORDER BY id ASC`

	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var order []string
	profiles := map[string]*models.ReviewerProfile{}
	for rows.Next() {
		r, err := scanReviewer(rows)
		if err != nil {
			return nil, err
		}
		p := r
		profiles[p.ID] = &p
		order = append(order, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return []models.ReviewerProfile{}, nil
	}

	if err := s.hydrate(ctx, profiles, "", nil); err != nil {
		return nil, err
	}

	out := make([]models.ReviewerProfile, 0, len(order))
	for _, id := range order {
		out = append(out, *profiles[id])
	}
	return out, nil
}

// hydrate fills expertise, languages, slots, and conflicts for the
// given profiles. where is either empty (all reviewers) or a filter on
// reviewer_id with one argument.
func (s *Store) hydrate(ctx context.Context, profiles map[string]*models.ReviewerProfile, where string, arg any) error {
	var args []any
	if arg != nil {
		args = append(args, arg)
	}

	rows, err := s.Pool.Query(ctx, `SELECT reviewer_id, area, proficiency, years FROM reviewer_expertise `+where+` ORDER BY reviewer_id, area`, args...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var reviewerID string
		var e models.ExpertiseRecord
		var proficiency string
		if err := rows.Scan(&reviewerID, &e.Area, &proficiency, &e.Years); err != nil {
			rows.Close()
			return err
		}
		e.Proficiency = models.ProficiencyLevel(proficiency)
		if p, ok := profiles[reviewerID]; ok {
			p.Expertise = append(p.Expertise, e)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.Pool.Query(ctx, `SELECT reviewer_id, language, proficiency, is_native, can_conduct FROM reviewer_languages `+where+` ORDER BY reviewer_id, language`, args...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var reviewerID string
		var l models.LanguageSkill
		var proficiency string
		if err := rows.Scan(&reviewerID, &l.Language, &proficiency, &l.IsNative, &l.CanConduct); err != nil {
			rows.Close()
			return err
		}
		l.Proficiency = models.ProficiencyLevel(proficiency)
		if p, ok := profiles[reviewerID]; ok {
			p.Languages = append(p.Languages, l)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// Position order is load-bearing: the engine resolves overlapping
	// slots with last-slot-wins semantics.
	rows, err = s.Pool.Query(ctx, `SELECT reviewer_id, start_date, end_date, availability_type FROM availability_slots `+where+` ORDER BY reviewer_id, position ASC`, args...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var reviewerID string
		var slot models.AvailabilitySlot
		var slotType string
		if err := rows.Scan(&reviewerID, &slot.StartDate, &slot.EndDate, &slotType); err != nil {
			rows.Close()
			return err
		}
		slot.Type = models.AvailabilityType(slotType)
		if p, ok := profiles[reviewerID]; ok {
			p.AvailabilitySlots = append(p.AvailabilitySlots, slot)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.Pool.Query(ctx, `SELECT id, reviewer_id, organization_id, coi_type, is_active, is_verified, decision, justification, waiver_expiry_date, end_date, verification_notes FROM conflicts_of_interest `+where+` ORDER BY reviewer_id, id`, args...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var reviewerID string
		var c models.ConflictOfInterest
		var coiType string
		if err := rows.Scan(&c.ID, &reviewerID, &c.OrganizationID, &coiType, &c.IsActive, &c.IsVerified, &c.Decision, &c.Justification, &c.WaiverExpiryDate, &c.EndDate, &c.VerificationNotes); err != nil {
			rows.Close()
			return err
		}
		c.Type = models.COIType(coiType)
		if p, ok := profiles[reviewerID]; ok {
			p.Conflicts = append(p.Conflicts, c)
		}
	}
	rows.Close()
	return rows.Err()
}

// ApplyVerification records an admin decision on one conflict record.
func (s *Store) ApplyVerification(ctx context.Context, reviewerID, coiID string, req models.VerificationRequest) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE conflicts_of_interest
		SET decision = $1, justification = $2, waiver_expiry_date = $3, is_verified = TRUE, verified_at = $4
		WHERE id = $5 AND reviewer_id = $6`,
		string(req.Decision), req.Justification, req.WaiverExpiryDate, time.Now().UTC(), coiID, reviewerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) UpdateSelectionStatus(ctx context.Context, reviewerID string, status models.SelectionStatus) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE reviewers SET selection_status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), reviewerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanReviewer(row scannable) (models.ReviewerProfile, error) {
	var r models.ReviewerProfile
	var status string
	if err := row.Scan(&r.ID, &r.FullName, &r.HomeOrganizationID, &r.IsLeadQualified,
		&r.ReviewsCompleted, &r.YearsExperience, &status, &r.UpdatedAt); err != nil {
		return models.ReviewerProfile{}, err
	}
	r.SelectionStatus = models.SelectionStatus(status)
	return r, nil
}
