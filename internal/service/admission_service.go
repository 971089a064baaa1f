package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthclarity/lead-intake-api/internal/dto"
	"github.com/healthclarity/lead-intake-api/internal/models"
	appErrors "github.com/healthclarity/lead-intake-api/pkg/errors"
)

const (
	// dedupeWindow is the trailing window a contact's submissions count
	// against. The upper bound is inclusive: a record exactly 24h old is
	// still recent.
	dedupeWindow = 24 * time.Hour

	// maxRecentSubmissions is the admission ceiling per contact per
	// window; the check runs before the would-be next record is added,
	// so the 4th attempt inside the window is blocked.
	maxRecentSubmissions = 3
)

var contactPattern = regexp.MustCompile(`^\d{10}$`)

type leadStore interface {
	FetchAll(ctx context.Context) ([]models.SheetRow, error)
	Append(ctx context.Context, row []interface{}) error
}

// ContactLocker serializes admission decisions per contact. Lock blocks
// until the contact's slot is free and returns the release func.
type ContactLocker interface {
	Lock(ctx context.Context, contact string) (func(), error)
}

type leadNotifier interface {
	LeadAccepted(record *models.LeadRecord)
}

// AdmissionResult is the decision returned for an accepted submission.
type AdmissionResult struct {
	Status      models.LeadStatus
	LeadID      string
	SubmittedAt time.Time
}

// AdmissionService owns the submission admission and deduplication policy.
// The clock and id generator are injected so Evaluate stays a pure
// decision over the fetched record set.
type AdmissionService struct {
	store        leadStore
	locker       ContactLocker
	notifier     leadNotifier
	now          func() time.Time
	newID        func() string
	storeTimeout time.Duration
	logger       *zap.Logger
}

// NewAdmissionService constructs the service. now and newID fall back to
// the UTC clock and the default generator when nil; callers are expected
// to supply the IST clock in production wiring.
func NewAdmissionService(store leadStore, locker ContactLocker, notifier leadNotifier, now func() time.Time, newID func() string, storeTimeout time.Duration, logger *zap.Logger) *AdmissionService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if newID == nil {
		newID = NewLeadID
	}
	if storeTimeout <= 0 {
		storeTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdmissionService{
		store:        store,
		locker:       locker,
		notifier:     notifier,
		now:          now,
		newID:        newID,
		storeTimeout: storeTimeout,
		logger:       logger,
	}
}

// NewLeadID generates a short lead identifier: 8 uppercase hex characters.
func NewLeadID() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// ISTClock returns a clock pinned to Indian Standard Time. All stored
// timestamps are generated and compared in this zone.
func ISTClock() (func() time.Time, error) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return nil, fmt.Errorf("load IST timezone: %w", err)
	}
	return func() time.Time { return time.Now().In(loc) }, nil
}

// Evaluate applies the admission policy to one submission. It has no side
// effects; persistence is the caller's job via Submit.
func (s *AdmissionService) Evaluate(ctx context.Context, req *dto.SubmitLeadRequest) (*AdmissionResult, error) {
	if !req.HasConsent() {
		return nil, appErrors.ErrConsentRequired
	}
	if !contactPattern.MatchString(req.Contact) {
		return nil, appErrors.ErrInvalidContact
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	rows, err := s.store.FetchAll(fetchCtx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read lead history")
	}

	now := s.now()
	recent := s.recentForContact(rows, req.Contact, now)

	if len(recent) >= maxRecentSubmissions {
		// Reverse scan order means the last match is the oldest record
		// in the window, the one anchoring the 24h reset.
		oldest := recent[len(recent)-1]
		return nil, appErrors.RateLimited(waitUntilReset(oldest, now))
	}

	status := models.StatusNew
	if len(recent) > 0 {
		status = models.StatusDuplicate
	}

	return &AdmissionResult{
		Status:      status,
		LeadID:      s.newID(),
		SubmittedAt: now,
	}, nil
}

// Submit runs the full accept path: serialize on the contact, evaluate,
// persist, and hand the record to the notifier. Store failures propagate;
// notification never does.
func (s *AdmissionService) Submit(ctx context.Context, req *dto.SubmitLeadRequest) (*AdmissionResult, error) {
	if !req.HasConsent() {
		return nil, appErrors.ErrConsentRequired
	}
	if !contactPattern.MatchString(req.Contact) {
		return nil, appErrors.ErrInvalidContact
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, req.Contact)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to serialize submission")
		}
		defer unlock()
	}

	result, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	record := buildRecord(req, result)

	appendCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.Append(appendCtx, record.Row()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist lead")
	}

	if s.notifier != nil {
		s.notifier.LeadAccepted(record)
	}

	return result, nil
}

// TrackReferral appends a referral event row. No validation, no rate
// limiting; the source lands in the preferred_languages column position.
func (s *AdmissionService) TrackReferral(ctx context.Context, source string) error {
	appendCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.Append(appendCtx, models.ReferralRow(source, s.now())); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record referral")
	}
	return nil
}

// recentForContact scans stored rows newest-first and collects the
// timestamps of same-contact rows inside the window, so the last element
// is the oldest in-window submission. Rows with malformed timestamps are
// reported loudly and excluded rather than aborting the request.
func (s *AdmissionService) recentForContact(rows []models.SheetRow, contact string, now time.Time) []time.Time {
	var recent []time.Time
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if row.Contact != contact {
			continue
		}
		ts, err := models.ParseSubmittedAt(row.SubmittedAt)
		if err != nil {
			s.logger.Error("excluding lead row with malformed timestamp from recency count",
				zap.Int("row", i+2),
				zap.String("lead_id", row.LeadID),
				zap.Error(err))
			continue
		}
		if now.Sub(ts) <= dedupeWindow {
			recent = append(recent, ts)
		}
	}
	return recent
}

// waitUntilReset renders the remaining wait as whole hours and minutes,
// floored from the seconds until the oldest in-window record ages out.
func waitUntilReset(oldest, now time.Time) string {
	remaining := oldest.Add(dedupeWindow).Sub(now)
	secs := int(remaining.Seconds())
	if secs < 0 {
		secs = 0
	}
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	return fmt.Sprintf("%d hours %d minutes", hours, minutes)
}

func buildRecord(req *dto.SubmitLeadRequest, result *AdmissionResult) *models.LeadRecord {
	return &models.LeadRecord{
		LeadID:                result.LeadID,
		SubmittedAt:           result.SubmittedAt,
		Name:                  req.Name,
		Contact:               req.Contact,
		CityState:             req.CityState,
		DOB:                   req.DOB,
		Age:                   intValue(req.Age),
		Gender:                req.Gender,
		PrimaryGoals:          req.PrimaryGoals,
		IssueDuration:         req.IssueDuration,
		LifestyleDiscipline:   req.LifestyleDiscipline,
		BiggestChallenges:     req.BiggestChallenges,
		HealthImportanceScore: intValue(req.HealthImportanceScore),
		PastAttempts:          req.PastAttempts,
		TimeComfort:           req.TimeComfort,
		PreferredLanguages:    req.PreferredLanguages,
		AdditionalNotes:       req.AdditionalNotes,
		Status:                result.Status,
	}
}

// intValue unwraps a bound int; binding guarantees presence on the HTTP
// path, so nil only shows up in direct service calls.
func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
