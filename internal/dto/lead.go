package dto

// SubmitLeadRequest mirrors the intake form. Every field is required
// except additional_notes. Binding only checks presence and shape here;
// consent and the contact format are policy checks owned by the
// admission service, which fixes their precedence (consent first).
// Consent and the ints are pointers so explicit false and legitimate
// zeroes survive presence validation.
type SubmitLeadRequest struct {
	Name      string `json:"name" binding:"required"`
	Contact   string `json:"contact" binding:"required"`
	CityState string `json:"city_state" binding:"required"`
	DOB       string `json:"dob" binding:"required"`
	Age       *int   `json:"age" binding:"required"`
	Gender    string `json:"gender" binding:"required"`

	PrimaryGoals        []string `json:"primary_goals" binding:"required"`
	IssueDuration       string   `json:"issue_duration" binding:"required"`
	LifestyleDiscipline string   `json:"lifestyle_discipline" binding:"required"`
	BiggestChallenges   []string `json:"biggest_challenges" binding:"required"`

	HealthImportanceScore *int   `json:"health_importance_score" binding:"required"`
	PastAttempts          string `json:"past_attempts" binding:"required"`
	TimeComfort           string `json:"time_comfort" binding:"required"`

	PreferredLanguages []string `json:"preferred_languages" binding:"required"`
	AdditionalNotes    string   `json:"additional_notes"`
	Consent            *bool    `json:"consent" binding:"required"`
}

// HasConsent reports the submitted consent flag.
func (r *SubmitLeadRequest) HasConsent() bool {
	return r.Consent != nil && *r.Consent
}

// SubmitLeadResponse is the flat success body for /submit-lead.
type SubmitLeadResponse struct {
	Status string `json:"status"`
	LeadID string `json:"lead_id"`
}

// TrackReferralRequest records where a visitor came from.
type TrackReferralRequest struct {
	Source string `json:"source" binding:"required"`
}

// TrackReferralResponse acknowledges a tracked referral.
type TrackReferralResponse struct {
	Status string `json:"status"`
}
