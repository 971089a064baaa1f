package models

import (
	"fmt"
	"strings"
	"time"
)

// LeadStatus tags a stored row with the admission outcome.
type LeadStatus string

const (
	StatusNew       LeadStatus = "NEW"
	StatusDuplicate LeadStatus = "DUPLICATE"
	StatusReferral  LeadStatus = "REFERRAL"
)

// LeadColumnCount is the fixed width of a persisted row.
const LeadColumnCount = 18

// LeadRecord is the persisted form of an accepted submission. Multi-valued
// answers are flattened to ", "-joined strings on write.
type LeadRecord struct {
	LeadID      string
	SubmittedAt time.Time

	Name      string
	Contact   string
	CityState string
	DOB       string
	Age       int
	Gender    string

	PrimaryGoals        []string
	IssueDuration       string
	LifestyleDiscipline string
	BiggestChallenges   []string

	HealthImportanceScore int
	PastAttempts          string
	TimeComfort           string

	PreferredLanguages []string
	AdditionalNotes    string
	Status             LeadStatus
}

// SheetRow is the minimal projection of a stored row the admission scan
// needs. SubmittedAt is kept raw; parsing happens at decision time so a
// malformed cell can be reported against the row that carries it.
type SheetRow struct {
	LeadID      string
	SubmittedAt string
	Contact     string
	Status      string
}

// Row flattens the record into the fixed 18-column layout:
// lead_id, submitted_at, name, contact, city_state, dob, age, gender,
// primary_goals, issue_duration, lifestyle_discipline, biggest_challenges,
// health_importance_score, past_attempts, time_comfort,
// preferred_languages, additional_notes, status.
func (r *LeadRecord) Row() []interface{} {
	return []interface{}{
		r.LeadID,
		r.SubmittedAt.Format(time.RFC3339),
		r.Name,
		r.Contact,
		r.CityState,
		r.DOB,
		r.Age,
		r.Gender,
		JoinList(r.PrimaryGoals),
		r.IssueDuration,
		r.LifestyleDiscipline,
		JoinList(r.BiggestChallenges),
		r.HealthImportanceScore,
		r.PastAttempts,
		r.TimeComfort,
		JoinList(r.PreferredLanguages),
		r.AdditionalNotes,
		string(r.Status),
	}
}

// ReferralRow builds the degenerate row appended for a tracked referral:
// only the status columns and the source (in the preferred_languages
// position) carry values.
func ReferralRow(source string, at time.Time) []interface{} {
	return []interface{}{
		string(StatusReferral),
		at.Format(time.RFC3339),
		"", "", "", "", "", "",
		"", "", "", "",
		"", "", "",
		source,
		"",
		string(StatusReferral),
	}
}

// ParseSubmittedAt parses a stored timestamp cell. Rows are written in
// RFC 3339; historical rows may carry fractional seconds.
func ParseSubmittedAt(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed submitted_at %q", raw)
}

// JoinList renders a multi-valued answer as its stored single-cell form.
func JoinList(values []string) string {
	return strings.Join(values, ", ")
}
