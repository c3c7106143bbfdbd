package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker-engine/internal/domain"
	"jobtracker-engine/internal/events"
	"jobtracker-engine/internal/recordstore"
	"jobtracker-engine/internal/remote"
)

var fixedNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func acme() domain.Input {
	return domain.Input{
		Company:     "Acme",
		Role:        "Eng",
		WorkType:    "Remote",
		City:        "Berlin",
		Status:      domain.StatusShortListed,
		AppliedDate: "2026-01-01",
	}
}

type harness struct {
	store   *recordstore.Store
	adapter *memAdapter
	notes   *recorder
	coord   *Coordinator
}

func newHarness(t *testing.T, synced bool, initial ...domain.Record) *harness {
	t.Helper()
	h := &harness{
		store:   recordstore.New(initial),
		adapter: newMemAdapter(),
		notes:   &recorder{},
	}
	resolver := func(context.Context) (remote.Adapter, string, bool) {
		if !synced {
			return nil, "", false
		}
		return h.adapter, "user-1", true
	}
	ids := 0
	h.coord = NewCoordinator(h.store, resolver, h.notes,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { ids++; return "local-" + string(rune('0'+ids)) }),
	)
	return h
}

func TestCreateLocalOnly(t *testing.T) {
	h := newHarness(t, false, domain.SampleRecords()...)
	ctx := context.Background()

	rec, err := h.coord.Create(ctx, acme())
	require.NoError(t, err)

	assert.Equal(t, "local-1", rec.ID)
	assert.Equal(t, domain.StatusShortListed, rec.Status)
	snap := h.store.Snapshot()
	assert.Equal(t, rec, snap[0])
	assert.Len(t, snap, 5)
	assert.Equal(t, []string{"Job application added: Acme"}, h.notes.messages(events.LevelSuccess))
	assert.Equal(t, []string{"create"}, h.notes.changes)
	assert.Empty(t, h.adapter.calls)
}

func TestCreateDefaultsStatusAndTrims(t *testing.T) {
	h := newHarness(t, false)
	in := acme()
	in.Status = ""
	in.Company = "  Acme  "

	rec, err := h.coord.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShortListed, rec.Status)
	assert.Equal(t, "Acme", rec.Company)
}

func TestCreateValidationNeverNotifies(t *testing.T) {
	h := newHarness(t, true)
	in := acme()
	in.City = "   "
	in.Role = ""

	_, err := h.coord.Create(context.Background(), in)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"role", "city"}, ve.Fields)
	assert.Empty(t, h.notes.got)
	assert.Empty(t, h.adapter.calls)
	assert.Equal(t, 0, h.store.Len())
}

func TestCreateSyncedUsesRemoteID(t *testing.T) {
	h := newHarness(t, true)
	in := acme()
	in.LastContacted = "2026-01-02"

	rec, err := h.coord.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", rec.ID)
	assert.True(t, rec.LastContacted.IsZero())
	assert.Equal(t, []domain.Record{rec}, h.store.Snapshot())
}

func TestCreateSyncedFailureIsStrict(t *testing.T) {
	h := newHarness(t, true)
	h.adapter.failOn("create", "Missing required attribute \"city\"")

	_, err := h.coord.Create(context.Background(), acme())
	require.Error(t, err)
	var re *remote.RemoteError
	assert.True(t, errors.As(err, &re))

	assert.Equal(t, 0, h.store.Len(), "no local fallback on create")
	assert.Equal(t,
		[]string{"Unable to create job in remote store. Missing required attribute \"city\""},
		h.notes.messages(events.LevelError))
	assert.Empty(t, h.notes.messages(events.LevelSuccess))
}

func TestCreateFailureFallbackDiagnostic(t *testing.T) {
	h := newHarness(t, true)
	h.adapter.failOn("create", "")

	_, err := h.coord.Create(context.Background(), acme())
	require.Error(t, err)
	assert.Equal(t,
		[]string{"Unable to create job in remote store. Please check collection permissions and required fields."},
		h.notes.messages(events.LevelError))
}

func TestChangeStatusLocal(t *testing.T) {
	h := newHarness(t, false, domain.SampleRecords()...)
	before, _ := h.store.Get("job-002")

	rec, err := h.coord.ChangeStatus(context.Background(), "job-002", domain.StatusOffer)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOffer, rec.Status)
	assert.Equal(t, domain.Date("2026-03-14"), rec.LastContacted)

	want := before
	want.Status = domain.StatusOffer
	want.LastContacted = "2026-03-14"
	assert.Equal(t, want, rec, "other fields unchanged")
	assert.Equal(t, []string{"Status updated to Offer"}, h.notes.messages(events.LevelSuccess))
}

func TestChangeStatusSyncedReappliesLastContacted(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	created, err := h.coord.Create(ctx, acme())
	require.NoError(t, err)

	rec, err := h.coord.ChangeStatus(ctx, created.ID, domain.StatusInterviewing)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterviewing, rec.Status)
	assert.Equal(t, domain.Date("2026-03-14"), rec.LastContacted)

	require.Len(t, h.adapter.patches, 1)
	p := h.adapter.patches[0]
	require.NotNil(t, p.Status)
	require.NotNil(t, p.LastContacted)
	assert.Nil(t, p.Company)
}

func TestChangeStatusRemoteFailureIsSilent(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	created, err := h.coord.Create(ctx, acme())
	require.NoError(t, err)
	h.adapter.failOn("update", "server down")

	rec, err := h.coord.ChangeStatus(ctx, created.ID, domain.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rec.Status)

	got, _ := h.store.Get(created.ID)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.Empty(t, h.notes.messages(events.LevelError))
	assert.Contains(t, h.notes.messages(events.LevelSuccess), "Status updated to Rejected")
}

func TestChangeStatusUnknownID(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.coord.ChangeStatus(context.Background(), "nope", domain.StatusOffer)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, h.adapter.calls)
}

func TestChangeStatusInvalid(t *testing.T) {
	h := newHarness(t, false, domain.SampleRecords()...)
	_, err := h.coord.ChangeStatus(context.Background(), "job-001", domain.Status("Ghosted"))
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestEditReplacesAllFields(t *testing.T) {
	h := newHarness(t, false, domain.SampleRecords()...)
	in := acme()
	in.Status = domain.StatusApplied

	rec, err := h.coord.Edit(context.Background(), "job-001", in)
	require.NoError(t, err)

	assert.Equal(t, in.WithID("job-001"), rec)
	assert.Empty(t, rec.Notes, "optional fields cleared")
	assert.Equal(t, []string{"Job application updated: Acme"}, h.notes.messages(events.LevelSuccess))
}

func TestEditRemoteFailureSurfacesAndAppliesLocally(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	created, err := h.coord.Create(ctx, acme())
	require.NoError(t, err)
	h.adapter.failOn("update", "Invalid document structure")

	in := acme()
	in.Company = "Acme Corp"
	rec, err := h.coord.Edit(ctx, created.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", rec.Company)
	assert.Equal(t, []string{"Unable to update job in remote store. Invalid document structure"}, h.notes.messages(events.LevelError))
	assert.Contains(t, h.notes.messages(events.LevelSuccess), "Job application updated: Acme Corp")
}

func TestEditSyncedSendsOnlySetFields(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	created, err := h.coord.Create(ctx, acme())
	require.NoError(t, err)

	in := acme()
	in.LastContacted = "2026-03-01"
	rec, err := h.coord.Edit(ctx, created.ID, in)
	require.NoError(t, err)

	require.Len(t, h.adapter.patches, 1)
	p := h.adapter.patches[0]
	assert.Nil(t, p.Notes)
	assert.Nil(t, p.Link)
	assert.NotNil(t, p.Company)
	assert.Equal(t, domain.Date("2026-03-01"), rec.LastContacted)
}

func TestEditValidation(t *testing.T) {
	h := newHarness(t, false, domain.SampleRecords()...)
	in := acme()
	in.Company = ""
	_, err := h.coord.Edit(context.Background(), "job-001", in)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))

	got, _ := h.store.Get("job-001")
	assert.Equal(t, "Northwind Labs", got.Company)
}

func TestEditUnknownID(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.coord.Edit(context.Background(), "nope", acme())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMissingIDIsNoop(t *testing.T) {
	h := newHarness(t, false, domain.SampleRecords()...)

	err := h.coord.Delete(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, 4, h.store.Len())
	assert.Empty(t, h.notes.got)
}

func TestDeleteMissingIDSyncedSkipsRemote(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	_, err := h.coord.Create(ctx, acme())
	require.NoError(t, err)
	h.adapter.calls = nil
	h.notes.got = nil

	require.NoError(t, h.coord.Delete(ctx, "gone-elsewhere"))
	assert.Empty(t, h.adapter.calls)
	assert.Empty(t, h.notes.got)
	assert.Equal(t, 1, h.store.Len())
}

func TestDeleteLocal(t *testing.T) {
	h := newHarness(t, false, domain.SampleRecords()...)

	require.NoError(t, h.coord.Delete(context.Background(), "job-003"))
	_, ok := h.store.Get("job-003")
	assert.False(t, ok)
	assert.Equal(t, []string{"Job application deleted: Crescent Ventures"}, h.notes.messages(events.LevelSuccess))
}

func TestDeleteRemoteFailureStillRemovesLocally(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	created, err := h.coord.Create(ctx, acme())
	require.NoError(t, err)
	h.adapter.failOn("delete", "")

	require.NoError(t, h.coord.Delete(ctx, created.ID))
	assert.Equal(t, 0, h.store.Len())
	assert.Equal(t, []string{"Unable to delete job from remote store."}, h.notes.messages(events.LevelError))
}

func TestReload(t *testing.T) {
	h := newHarness(t, true, domain.SampleRecords()...)
	ctx := context.Background()
	_, err := h.adapter.Create(ctx, "user-1", acme())
	require.NoError(t, err)
	other := acme()
	other.Company = "Globex"
	_, err = h.adapter.Create(ctx, "user-1", other)
	require.NoError(t, err)

	n, err := h.coord.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	snap := h.store.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "Globex", snap[0].Company)
	assert.Contains(t, h.notes.changes, "reload")
}

func TestReloadConvergesAfterFailedUpdate(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	created, err := h.coord.Create(ctx, acme())
	require.NoError(t, err)

	h.adapter.failOn("update", "")
	_, err = h.coord.ChangeStatus(ctx, created.ID, domain.StatusOffer)
	require.NoError(t, err)
	local, _ := h.store.Get(created.ID)
	assert.Equal(t, domain.StatusOffer, local.Status)

	_, err = h.coord.Reload(ctx)
	require.NoError(t, err)
	local, _ = h.store.Get(created.ID)
	assert.Equal(t, domain.StatusShortListed, local.Status)
}

func TestReloadLocalOnly(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.coord.Reload(context.Background())
	assert.ErrorIs(t, err, ErrSyncDisabled)
}

func TestLocalIDIsUnique(t *testing.T) {
	a, b := LocalID(), LocalID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
