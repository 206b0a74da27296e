// ABOUTME: Tests for the cadence status engine
// ABOUTME: Covers date arithmetic, the today boundary, and notification idempotence
package status

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return DateOf(today).AddDate(0, 0, -n)
}

func comm(companyID uuid.UUID, date time.Time) models.Communication {
	return models.Communication{
		ID:        ulid.Make(),
		CompanyID: companyID,
		Type:      models.CommunicationEmail,
		Date:      date,
	}
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	late := time.Date(2026, 10, 18, 23, 59, 0, 0, loc)

	got := DateOf(late)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), got)
}

func TestLatestCommunicationNoHistory(t *testing.T) {
	other := comm(uuid.New(), daysAgo(1))
	latest, ok := LatestCommunication(uuid.New(), []models.Communication{other})
	assert.False(t, ok)
	assert.Nil(t, latest)
}

func TestLatestCommunicationPicksMaxDate(t *testing.T) {
	id := uuid.New()
	older := comm(id, daysAgo(10))
	newer := comm(id, daysAgo(2))
	middle := comm(id, daysAgo(5))

	latest, ok := LatestCommunication(id, []models.Communication{older, newer, middle})
	require.True(t, ok)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestLatestCommunicationTieBreaksOnHighestID(t *testing.T) {
	id := uuid.New()
	first := comm(id, daysAgo(3))
	second := comm(id, daysAgo(3))
	require.Equal(t, 1, second.ID.Compare(first.ID), "ulids should be monotonic")

	latest, ok := LatestCommunication(id, []models.Communication{second, first})
	require.True(t, ok)
	assert.Equal(t, second.ID, latest.ID)

	latest, _ = LatestCommunication(id, []models.Communication{first, second})
	assert.Equal(t, second.ID, latest.ID)
}

func TestCompaniesWithoutCommunicationsAreNone(t *testing.T) {
	for _, periodicity := range []int{1, 7, 30, 365} {
		company := models.Company{ID: uuid.New(), Name: "Quiet Co", Periodicity: periodicity}
		cs := Evaluate(company, nil, today)
		assert.Equal(t, models.StatusNone, cs.Status)
		assert.Nil(t, cs.NextDate)
		assert.Nil(t, cs.Latest)
	}
}

func TestNextExpectedDateUsesCalendarDays(t *testing.T) {
	// Crosses a DST change in New York; calendar arithmetic must not drift.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	latest := &models.Communication{Date: time.Date(2026, 10, 30, 0, 0, 0, 0, ny)}

	next := NextExpectedDate(7, latest)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2026, 11, 6, 0, 0, 0, 0, time.UTC), *next)
}

func TestClassifyBoundaries(t *testing.T) {
	yesterday := DateOf(today).AddDate(0, 0, -1)
	sameDay := DateOf(today)
	tomorrow := DateOf(today).AddDate(0, 0, 1)
	earlierToday := time.Date(2026, 10, 18, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, models.StatusNone, Classify(nil, today))
	assert.Equal(t, models.StatusOverdue, Classify(&yesterday, today))
	assert.Equal(t, models.StatusDue, Classify(&sameDay, today))
	assert.Equal(t, models.StatusDue, Classify(&earlierToday, today), "today is never overdue")
	assert.Equal(t, models.StatusUpcoming, Classify(&tomorrow, today))
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name        string
		periodicity int
		lastDaysAgo int
		wantNext    time.Time
		wantStatus  models.Status
	}{
		{"due today", 14, 14, DateOf(today), models.StatusDue},
		{"overdue", 7, 10, DateOf(today).AddDate(0, 0, -3), models.StatusOverdue},
		{"upcoming", 30, 5, DateOf(today).AddDate(0, 0, 25), models.StatusUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company := models.Company{ID: uuid.New(), Name: tt.name, Periodicity: tt.periodicity}
			comms := []models.Communication{comm(company.ID, daysAgo(tt.lastDaysAgo))}

			cs := Evaluate(company, comms, today)
			require.NotNil(t, cs.NextDate)
			assert.Equal(t, tt.wantNext, *cs.NextDate)
			assert.Equal(t, tt.wantStatus, cs.Status)
		})
	}
}

func fixture() ([]models.Company, []models.Communication) {
	a := models.Company{ID: uuid.New(), Name: "Company A", Periodicity: 14}
	b := models.Company{ID: uuid.New(), Name: "Company B", Periodicity: 7}
	c := models.Company{ID: uuid.New(), Name: "Company C", Periodicity: 30}
	d := models.Company{ID: uuid.New(), Name: "Company D", Periodicity: 7}
	comms := []models.Communication{
		comm(a.ID, daysAgo(14)),
		comm(b.ID, daysAgo(10)),
		comm(c.ID, daysAgo(5)),
		comm(uuid.New(), daysAgo(40)), // orphan
	}
	return []models.Company{a, b, c, d}, comms
}

func TestSynthesizeNotifications(t *testing.T) {
	companies, comms := fixture()
	notifications := SynthesizeNotifications(companies, comms, today)

	require.Len(t, notifications, 2)
	assert.Equal(t, models.NotificationDue, notifications[0].Kind)
	assert.Equal(t, companies[0].ID, notifications[0].CompanyID)
	assert.Equal(t, "Communication with Company A is due today", notifications[0].Message)

	assert.Equal(t, models.NotificationOverdue, notifications[1].Kind)
	assert.Equal(t, companies[1].ID, notifications[1].CompanyID)
	assert.Equal(t, "Communication with Company B is overdue. Last scheduled date was October 15, 2026",
		notifications[1].Message)
	assert.False(t, notifications[1].Read)
}

func TestSynthesizeNotificationsIsIdempotent(t *testing.T) {
	companies, comms := fixture()
	first := SynthesizeNotifications(companies, comms, today)
	second := SynthesizeNotifications(companies, comms, today)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("notification sets differ (-first +second):\n%s", diff)
	}
}

func TestMergeNotificationsPreservesReadState(t *testing.T) {
	companies, comms := fixture()
	yesterday := today.Add(-24 * time.Hour)

	// Yesterday only Company B was overdue; Company A becomes due today.
	prior := SynthesizeNotifications(companies, comms, yesterday)
	require.Len(t, prior, 1)
	prior[0].Read = true
	info := models.Notification{ID: "welcome", Kind: models.NotificationInfo, Title: "Welcome"}
	stale := models.Notification{
		ID:        models.NotificationKey(models.NotificationOverdue, uuid.New()),
		Kind:      models.NotificationOverdue,
		CompanyID: uuid.New(),
	}
	prior = append(prior, info, stale)

	fresh := SynthesizeNotifications(companies, comms, today)
	merged := MergeNotifications(prior, fresh)
	require.Len(t, merged, 3)

	byID := make(map[string]models.Notification)
	for _, n := range merged {
		byID[n.ID] = n
	}

	overdueB := byID[models.NotificationKey(models.NotificationOverdue, companies[1].ID)]
	assert.True(t, overdueB.Read, "read flag should survive recomputation")
	assert.Equal(t, yesterday, overdueB.CreatedAt)

	dueA := byID[models.NotificationKey(models.NotificationDue, companies[0].ID)]
	assert.False(t, dueA.Read)
	assert.Equal(t, today, dueA.CreatedAt)

	assert.Contains(t, byID, "welcome")
	assert.NotContains(t, byID, stale.ID, "stale derived notification should be dropped")
}

func TestSummarize(t *testing.T) {
	companies, comms := fixture()
	s := Summarize(EvaluateAll(companies, comms, today))
	assert.Equal(t, Summary{Total: 4, Overdue: 1, Due: 1, Upcoming: 1, None: 1}, s)
}
