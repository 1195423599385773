package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/peermatch/backend/internal/models"
)

type ImportSummary struct {
	Organizations struct {
		Parsed   int `json:"parsed"`
		Inserted int `json:"inserted"`
		Errors   int `json:"errors"`
	} `json:"organizations"`
	Reviewers struct {
		Parsed   int `json:"parsed"`
		Inserted int `json:"inserted"`
		Errors   int `json:"errors"`
	} `json:"reviewers"`
	AvailabilitySlots struct {
		Parsed   int `json:"parsed"`
		Inserted int `json:"inserted"`
		Errors   int `json:"errors"`
	} `json:"availability_slots"`
	Conflicts struct {
		Parsed   int `json:"parsed"`
		Inserted int `json:"inserted"`
		Errors   int `json:"errors"`
	} `json:"conflicts"`
	Errors []string `json:"errors"`
}

// @Summary Import CSV data
// @Description Upload organizations, reviewers, and optional availability/conflicts CSV files
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param organizations formData file true "organizations.csv"
// @Param reviewers formData file true "reviewers.csv"
// @Param availability formData file false "availability.csv"
// @Param conflicts formData file false "conflicts.csv"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/import [post]
func (h *Handler) Import(c *gin.Context) {
	orgsFile, err := c.FormFile("organizations")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "organizations file required", nil)
		return
	}
	reviewersFile, err := c.FormFile("reviewers")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "reviewers file required", nil)
		return
	}
	availabilityFile, _ := c.FormFile("availability")
	conflictsFile, _ := c.FormFile("conflicts")

	for _, f := range []*multipart.FileHeader{orgsFile, reviewersFile, availabilityFile, conflictsFile} {
		if f != nil && !validateExt(f.Filename) {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "all files must be .csv", nil)
			return
		}
	}

	summary := ImportSummary{Errors: []string{}}
	ctx := c.Request.Context()

	orgs, errs := parseOrganizationsCSV(orgsFile)
	summary.Organizations.Parsed = len(orgs)
	summary.Organizations.Errors = len(errs)
	summary.Errors = append(summary.Errors, errs...)

	reviewers, errs := parseReviewersCSV(reviewersFile)
	summary.Reviewers.Parsed = len(reviewers)
	summary.Reviewers.Errors = len(errs)
	summary.Errors = append(summary.Errors, errs...)

	slots := map[string][]models.AvailabilitySlot{}
	if availabilityFile != nil {
		var slotCount int
		slots, slotCount, errs = parseAvailabilityCSV(availabilityFile)
		summary.AvailabilitySlots.Parsed = slotCount
		summary.AvailabilitySlots.Errors = len(errs)
		summary.Errors = append(summary.Errors, errs...)
	}

	conflicts := map[string][]models.ConflictOfInterest{}
	if conflictsFile != nil {
		var conflictCount int
		conflicts, conflictCount, errs = parseConflictsCSV(conflictsFile)
		summary.Conflicts.Parsed = conflictCount
		summary.Conflicts.Errors = len(errs)
		summary.Errors = append(summary.Errors, errs...)
	}

	if len(summary.Errors) > 0 {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "CSV validation errors", summary.Errors)
		return
	}

	err = h.Store.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `TRUNCATE organizations, reviewers, reviewer_expertise, reviewer_languages, availability_slots, conflicts_of_interest`)
		return err
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to reset tables", err.Error())
		return
	}

	inserted, err := h.Store.InsertOrganizations(ctx, orgs)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert organizations", err.Error())
		return
	}
	summary.Organizations.Inserted = int(inserted)

	inserted, err = h.Store.InsertReviewers(ctx, reviewers)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert reviewers", err.Error())
		return
	}
	summary.Reviewers.Inserted = int(inserted)

	if len(slots) > 0 {
		inserted, err = h.Store.InsertAvailabilitySlots(ctx, slots)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert availability slots", err.Error())
			return
		}
		summary.AvailabilitySlots.Inserted = int(inserted)
	}

	if len(conflicts) > 0 {
		inserted, err = h.Store.InsertConflicts(ctx, conflicts)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert conflicts", err.Error())
			return
		}
		summary.Conflicts.Inserted = int(inserted)
	}

	h.Logger.Info().
		Int("organizations", summary.Organizations.Inserted).
		Int("reviewers", summary.Reviewers.Inserted).
		Int("availability_slots", summary.AvailabilitySlots.Inserted).
		Int("conflicts", summary.Conflicts.Inserted).
		Msg("import complete")
	c.JSON(http.StatusOK, summary)
}

func validateExt(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".csv")
}

func openCSV(file *multipart.FileHeader) (*csv.Reader, io.Closer, map[string]int, error) {
	f, err := file.Open()
	if err != nil {
		return nil, nil, nil, err
	}
	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		f.Close()
		return nil, nil, nil, err
	}
	index := map[string]int{}
	for i, name := range headers {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return reader, f, index, nil
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseOrganizationsCSV(file *multipart.FileHeader) ([]models.Organization, []string) {
	reader, closer, index, err := openCSV(file)
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer closer.Close()

	var out []models.Organization
	var errs []string
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Sprintf("organizations.csv line %d: %v", line, err))
			continue
		}
		org := models.Organization{
			ID:      field(record, index, "organization_id"),
			Name:    field(record, index, "name"),
			Country: field(record, index, "country"),
			Region:  field(record, index, "region"),
		}
		if org.ID == "" || org.Name == "" {
			errs = append(errs, fmt.Sprintf("organizations.csv line %d: organization_id and name are required", line))
			continue
		}
		out = append(out, org)
	}
	return out, errs
}

func parseReviewersCSV(file *multipart.FileHeader) ([]models.ReviewerProfile, []string) {
	reader, closer, index, err := openCSV(file)
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer closer.Close()

	var out []models.ReviewerProfile
	var errs []string
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Sprintf("reviewers.csv line %d: %v", line, err))
			continue
		}

		r := models.ReviewerProfile{
			ID:                 field(record, index, "reviewer_id"),
			FullName:           field(record, index, "full_name"),
			HomeOrganizationID: field(record, index, "home_organization_id"),
			SelectionStatus:    models.SelectionStatus(strings.ToUpper(field(record, index, "selection_status"))),
			UpdatedAt:          time.Now().UTC(),
		}
		if r.ID == "" || r.FullName == "" || r.HomeOrganizationID == "" {
			errs = append(errs, fmt.Sprintf("reviewers.csv line %d: reviewer_id, full_name, and home_organization_id are required", line))
			continue
		}
		if r.SelectionStatus == "" {
			r.SelectionStatus = models.StatusAvailable
		}
		r.IsLeadQualified = parseBool(field(record, index, "is_lead_qualified"))
		r.YearsExperience, _ = strconv.Atoi(field(record, index, "years_experience"))
		r.ReviewsCompleted, _ = strconv.Atoi(field(record, index, "reviews_completed"))
		r.Expertise = parseExpertiseList(field(record, index, "expertise"))
		r.Languages = parseLanguageList(field(record, index, "languages"))
		out = append(out, r)
	}
	return out, errs
}

// parseExpertiseList decodes "area:PROFICIENCY:years" entries joined
// with semicolons, e.g. "air-traffic-services:EXPERT:12;meteorology:ADVANCED".
func parseExpertiseList(raw string) []models.ExpertiseRecord {
	var out []models.ExpertiseRecord
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		rec := models.ExpertiseRecord{
			Area:        strings.TrimSpace(parts[0]),
			Proficiency: models.ProficiencyIntermediate,
		}
		if len(parts) > 1 && parts[1] != "" {
			rec.Proficiency = models.ProficiencyLevel(strings.ToUpper(strings.TrimSpace(parts[1])))
		}
		if len(parts) > 2 {
			rec.Years, _ = strconv.Atoi(strings.TrimSpace(parts[2]))
		}
		out = append(out, rec)
	}
	return out
}

// parseLanguageList decodes "LANG:PROFICIENCY[:native]" entries, e.g.
// "EN:EXPERT:native;FR:ADVANCED". A reviewer can conduct a review in
// the language when native or at least ADVANCED.
func parseLanguageList(raw string) []models.LanguageSkill {
	var out []models.LanguageSkill
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		skill := models.LanguageSkill{
			Language:    strings.ToUpper(strings.TrimSpace(parts[0])),
			Proficiency: models.ProficiencyIntermediate,
		}
		if len(parts) > 1 && parts[1] != "" {
			skill.Proficiency = models.ProficiencyLevel(strings.ToUpper(strings.TrimSpace(parts[1])))
		}
		if len(parts) > 2 && strings.EqualFold(strings.TrimSpace(parts[2]), "native") {
			skill.IsNative = true
		}
		skill.CanConduct = skill.IsNative ||
			skill.Proficiency == models.ProficiencyAdvanced ||
			skill.Proficiency == models.ProficiencyExpert
		out = append(out, skill)
	}
	return out
}

func parseAvailabilityCSV(file *multipart.FileHeader) (map[string][]models.AvailabilitySlot, int, []string) {
	reader, closer, index, err := openCSV(file)
	if err != nil {
		return nil, 0, []string{err.Error()}
	}
	defer closer.Close()

	out := map[string][]models.AvailabilitySlot{}
	var errs []string
	count := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Sprintf("availability.csv line %d: %v", line, err))
			continue
		}
		reviewerID := field(record, index, "reviewer_id")
		if reviewerID == "" {
			errs = append(errs, fmt.Sprintf("availability.csv line %d: reviewer_id is required", line))
			continue
		}
		start, err := time.Parse("2006-01-02", field(record, index, "start_date"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("availability.csv line %d: start_date must be YYYY-MM-DD", line))
			continue
		}
		end, err := time.Parse("2006-01-02", field(record, index, "end_date"))
		if err != nil {
			errs = append(errs, fmt.Sprintf("availability.csv line %d: end_date must be YYYY-MM-DD", line))
			continue
		}
		if end.Before(start) {
			errs = append(errs, fmt.Sprintf("availability.csv line %d: end_date precedes start_date", line))
			continue
		}
		slotType := models.AvailabilityType(strings.ToUpper(field(record, index, "availability_type")))
		switch slotType {
		case models.AvailabilityAvailable, models.AvailabilityTentative, models.AvailabilityUnavailable, models.AvailabilityOnAssignment:
		default:
			errs = append(errs, fmt.Sprintf("availability.csv line %d: unknown availability_type %q", line, slotType))
			continue
		}
		out[reviewerID] = append(out[reviewerID], models.AvailabilitySlot{
			StartDate: start,
			EndDate:   end,
			Type:      slotType,
		})
		count++
	}
	return out, count, errs
}

func parseConflictsCSV(file *multipart.FileHeader) (map[string][]models.ConflictOfInterest, int, []string) {
	reader, closer, index, err := openCSV(file)
	if err != nil {
		return nil, 0, []string{err.Error()}
	}
	defer closer.Close()

	out := map[string][]models.ConflictOfInterest{}
	var errs []string
	count := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Sprintf("conflicts.csv line %d: %v", line, err))
			continue
		}
		reviewerID := field(record, index, "reviewer_id")
		coi := models.ConflictOfInterest{
			ID:             field(record, index, "coi_id"),
			OrganizationID: field(record, index, "organization_id"),
			Type:           models.COIType(strings.ToUpper(field(record, index, "coi_type"))),
			IsActive:       parseBool(field(record, index, "is_active")),
			Justification:  field(record, index, "justification"),
		}
		if coi.ID == "" || reviewerID == "" || coi.OrganizationID == "" {
			errs = append(errs, fmt.Sprintf("conflicts.csv line %d: coi_id, reviewer_id, and organization_id are required", line))
			continue
		}
		if raw := field(record, index, "end_date"); raw != "" {
			end, err := time.Parse("2006-01-02", raw)
			if err != nil {
				errs = append(errs, fmt.Sprintf("conflicts.csv line %d: end_date must be YYYY-MM-DD", line))
				continue
			}
			coi.EndDate = &end
		}
		if raw := field(record, index, "waiver_expiry_date"); raw != "" {
			expiry, err := time.Parse("2006-01-02", raw)
			if err != nil {
				errs = append(errs, fmt.Sprintf("conflicts.csv line %d: waiver_expiry_date must be YYYY-MM-DD", line))
				continue
			}
			coi.WaiverExpiryDate = &expiry
		}
		if decision := strings.ToUpper(field(record, index, "decision")); decision != "" {
			coi.Decision = decision
			coi.IsVerified = true
		}
		out[reviewerID] = append(out[reviewerID], coi)
		count++
	}
	return out, count, errs
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
