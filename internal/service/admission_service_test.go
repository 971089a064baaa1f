package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/healthclarity/lead-intake-api/internal/dto"
	"github.com/healthclarity/lead-intake-api/internal/models"
	appErrors "github.com/healthclarity/lead-intake-api/pkg/errors"
)

var istZone = time.FixedZone("IST", 5*3600+30*60)

type leadStoreStub struct {
	rows      []models.SheetRow
	fetchErr  error
	appendErr error
	appended  [][]interface{}
}

func (s *leadStoreStub) FetchAll(ctx context.Context) ([]models.SheetRow, error) {
	return s.rows, s.fetchErr
}

func (s *leadStoreStub) Append(ctx context.Context, row []interface{}) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, row)
	return nil
}

type notifierStub struct {
	records []*models.LeadRecord
}

func (n *notifierStub) LeadAccepted(record *models.LeadRecord) {
	n.records = append(n.records, record)
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 10, 15, 0, 0, 0, istZone)
}

func newTestService(store *leadStoreStub, notifier *notifierStub) *AdmissionService {
	return NewAdmissionService(
		store,
		NewLocalContactLock(0),
		notifier,
		fixedNow,
		func() string { return "ABCDEF12" },
		time.Second,
		zap.NewNop(),
	)
}

func intPtr(v int) *int { return &v }

func validRequest(contact string) *dto.SubmitLeadRequest {
	consent := true
	return &dto.SubmitLeadRequest{
		Name:                  "Asha Verma",
		Contact:               contact,
		CityState:             "Pune, Maharashtra",
		DOB:                   "1990-06-15",
		Age:                   intPtr(34),
		Gender:                "Female",
		PrimaryGoals:          []string{"Weight loss", "Better sleep"},
		IssueDuration:         "6-12 months",
		LifestyleDiscipline:   "Moderate",
		BiggestChallenges:     []string{"Consistency", "Late nights"},
		HealthImportanceScore: intPtr(8),
		PastAttempts:          "Tried dieting twice",
		TimeComfort:           "Yes",
		PreferredLanguages:    []string{"Hindi", "English"},
		AdditionalNotes:       "",
		Consent:               &consent,
	}
}

func storedRow(contact string, age time.Duration) models.SheetRow {
	return models.SheetRow{
		LeadID:      "AAAA0000",
		SubmittedAt: fixedNow().Add(-age).Format(time.RFC3339),
		Contact:     contact,
		Status:      string(models.StatusNew),
	}
}

func TestEvaluateConsentRequired(t *testing.T) {
	store := &leadStoreStub{}
	svc := newTestService(store, nil)

	req := validRequest("9876543210")
	consent := false
	req.Consent = &consent

	_, err := svc.Evaluate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConsentRequired, err)

	req.Consent = nil
	_, err = svc.Evaluate(context.Background(), req)
	assert.Equal(t, appErrors.ErrConsentRequired, err)
}

func TestEvaluateConsentBeforeContactFormat(t *testing.T) {
	// A refusal with a malformed contact answers the consent error, the
	// same order the form has always enforced.
	svc := newTestService(&leadStoreStub{}, nil)

	req := validRequest("123")
	consent := false
	req.Consent = &consent

	_, err := svc.Evaluate(context.Background(), req)
	assert.Equal(t, appErrors.ErrConsentRequired, err)

	_, err = svc.Submit(context.Background(), req)
	assert.Equal(t, appErrors.ErrConsentRequired, err)
}

func TestEvaluateInvalidContact(t *testing.T) {
	svc := newTestService(&leadStoreStub{}, nil)

	for _, contact := range []string{"12345", "12345678901", "12345abcde", "", "98765 4321"} {
		_, err := svc.Evaluate(context.Background(), validRequest(contact))
		assert.Equal(t, appErrors.ErrInvalidContact, err, "contact %q", contact)
	}
}

func TestEvaluateNewContact(t *testing.T) {
	store := &leadStoreStub{rows: []models.SheetRow{
		storedRow("1111111111", 2*time.Hour),
	}}
	svc := newTestService(store, nil)

	result, err := svc.Evaluate(context.Background(), validRequest("9876543210"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, result.Status)
	assert.Equal(t, "ABCDEF12", result.LeadID)
	assert.Equal(t, fixedNow(), result.SubmittedAt)
}

func TestEvaluateDuplicateWithinWindow(t *testing.T) {
	for _, prior := range []int{1, 2} {
		store := &leadStoreStub{}
		for i := 0; i < prior; i++ {
			store.rows = append(store.rows, storedRow("9876543210", time.Duration(i+1)*time.Hour))
		}
		svc := newTestService(store, nil)

		result, err := svc.Evaluate(context.Background(), validRequest("9876543210"))
		require.NoError(t, err, "prior=%d", prior)
		assert.Equal(t, models.StatusDuplicate, result.Status, "prior=%d", prior)
	}
}

func TestEvaluateRateLimited(t *testing.T) {
	store := &leadStoreStub{rows: []models.SheetRow{
		storedRow("9876543210", 20*time.Hour), // oldest, anchors the reset
		storedRow("9876543210", 5*time.Hour),
		storedRow("9876543210", time.Hour),
	}}
	svc := newTestService(store, nil)

	_, err := svc.Evaluate(context.Background(), validRequest("9876543210"))
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, 429, appErr.Status)
	assert.Equal(t, "Submission limit reached. Please try again after 4 hours 0 minutes.", appErr.Message)
}

func TestEvaluateWaitTimeMinutes(t *testing.T) {
	store := &leadStoreStub{rows: []models.SheetRow{
		storedRow("9876543210", 21*time.Hour+30*time.Minute+45*time.Second),
		storedRow("9876543210", 5*time.Hour),
		storedRow("9876543210", time.Hour),
	}}
	svc := newTestService(store, nil)

	_, err := svc.Evaluate(context.Background(), validRequest("9876543210"))
	require.Error(t, err)

	// 2h29m15s remaining floors to 2 hours 29 minutes.
	assert.Contains(t, appErrors.FromError(err).Message, "2 hours 29 minutes")
}

func TestEvaluateWindowBoundary(t *testing.T) {
	// Exactly 24h old is still inside the window.
	store := &leadStoreStub{rows: []models.SheetRow{
		storedRow("9876543210", 24*time.Hour),
		storedRow("9876543210", 5*time.Hour),
		storedRow("9876543210", time.Hour),
	}}
	svc := newTestService(store, nil)
	_, err := svc.Evaluate(context.Background(), validRequest("9876543210"))
	require.Error(t, err)
	assert.Equal(t, 429, appErrors.FromError(err).Status)

	// 24h1s old is outside; only two records remain recent.
	store = &leadStoreStub{rows: []models.SheetRow{
		storedRow("9876543210", 24*time.Hour+time.Second),
		storedRow("9876543210", 5*time.Hour),
		storedRow("9876543210", time.Hour),
	}}
	svc = newTestService(store, nil)
	result, err := svc.Evaluate(context.Background(), validRequest("9876543210"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDuplicate, result.Status)
}

func TestEvaluateSkipsMalformedTimestamps(t *testing.T) {
	store := &leadStoreStub{rows: []models.SheetRow{
		{LeadID: "BAD00001", SubmittedAt: "not-a-timestamp", Contact: "9876543210"},
		storedRow("9876543210", time.Hour),
	}}
	svc := newTestService(store, nil)

	result, err := svc.Evaluate(context.Background(), validRequest("9876543210"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDuplicate, result.Status)
}

func TestEvaluateIgnoresOtherContacts(t *testing.T) {
	store := &leadStoreStub{rows: []models.SheetRow{
		storedRow("1111111111", time.Hour),
		storedRow("2222222222", 2*time.Hour),
		storedRow("3333333333", 3*time.Hour),
	}}
	svc := newTestService(store, nil)

	result, err := svc.Evaluate(context.Background(), validRequest("9876543210"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, result.Status)
}

func TestEvaluateFetchError(t *testing.T) {
	store := &leadStoreStub{fetchErr: errors.New("quota exceeded")}
	svc := newTestService(store, nil)

	_, err := svc.Evaluate(context.Background(), validRequest("9876543210"))
	require.Error(t, err)
	assert.Equal(t, 500, appErrors.FromError(err).Status)
}

func TestSubmitPersistsAndNotifies(t *testing.T) {
	store := &leadStoreStub{}
	notifier := &notifierStub{}
	svc := newTestService(store, notifier)

	req := validRequest("9876543210")
	result, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, result.Status)

	require.Len(t, store.appended, 1)
	row := store.appended[0]
	require.Len(t, row, models.LeadColumnCount)

	assert.Equal(t, "ABCDEF12", row[0])
	assert.Equal(t, fixedNow().Format(time.RFC3339), row[1])
	assert.Equal(t, "Asha Verma", row[2])
	assert.Equal(t, "9876543210", row[3])
	assert.Equal(t, "Pune, Maharashtra", row[4])
	assert.Equal(t, "1990-06-15", row[5])
	assert.Equal(t, 34, row[6])
	assert.Equal(t, "Female", row[7])
	assert.Equal(t, "Weight loss, Better sleep", row[8])
	assert.Equal(t, "6-12 months", row[9])
	assert.Equal(t, "Moderate", row[10])
	assert.Equal(t, "Consistency, Late nights", row[11])
	assert.Equal(t, 8, row[12])
	assert.Equal(t, "Tried dieting twice", row[13])
	assert.Equal(t, "Yes", row[14])
	assert.Equal(t, "Hindi, English", row[15])
	assert.Equal(t, "", row[16])
	assert.Equal(t, "NEW", row[17])

	require.Len(t, notifier.records, 1)
	assert.Equal(t, "ABCDEF12", notifier.records[0].LeadID)
}

func TestSubmitAppendError(t *testing.T) {
	store := &leadStoreStub{appendErr: errors.New("write failed")}
	notifier := &notifierStub{}
	svc := newTestService(store, notifier)

	_, err := svc.Submit(context.Background(), validRequest("9876543210"))
	require.Error(t, err)
	assert.Equal(t, 500, appErrors.FromError(err).Status)
	assert.Empty(t, notifier.records)
}

func TestSubmitRejectsBeforePersistence(t *testing.T) {
	store := &leadStoreStub{}
	svc := newTestService(store, nil)

	req := validRequest("9876543210")
	consent := false
	req.Consent = &consent
	_, err := svc.Submit(context.Background(), req)
	assert.Equal(t, appErrors.ErrConsentRequired, err)

	_, err = svc.Submit(context.Background(), validRequest("12345"))
	assert.Equal(t, appErrors.ErrInvalidContact, err)

	assert.Empty(t, store.appended)
}

func TestTrackReferral(t *testing.T) {
	store := &leadStoreStub{}
	svc := newTestService(store, nil)

	require.NoError(t, svc.TrackReferral(context.Background(), "friend"))

	require.Len(t, store.appended, 1)
	row := store.appended[0]
	require.Len(t, row, models.LeadColumnCount)
	assert.Equal(t, "REFERRAL", row[0])
	assert.Equal(t, fixedNow().Format(time.RFC3339), row[1])
	assert.Equal(t, "friend", row[15])
	assert.Equal(t, "REFERRAL", row[17])
}

func TestTrackReferralAppendError(t *testing.T) {
	store := &leadStoreStub{appendErr: errors.New("write failed")}
	svc := newTestService(store, nil)

	err := svc.TrackReferral(context.Background(), "instagram")
	require.Error(t, err)
	assert.Equal(t, 500, appErrors.FromError(err).Status)
}

func TestNewLeadIDShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{8}$`)
	for i := 0; i < 50; i++ {
		id := NewLeadID()
		assert.True(t, pattern.MatchString(id), fmt.Sprintf("id %q", id))
	}
}
