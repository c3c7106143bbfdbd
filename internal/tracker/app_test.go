package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker-engine/internal/domain"
	"jobtracker-engine/internal/query"
	"jobtracker-engine/internal/session"
)

// switchable is a session provider tests can sign in and out of.
type switchable struct {
	mu     sync.Mutex
	user   *session.User
	signIn *session.User
	err    error
}

func (s *switchable) CurrentUser(context.Context) (*session.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *switchable) SignInURL(state string) (string, error) {
	return "https://auth.example/?state=" + state, nil
}

func (s *switchable) Complete(context.Context, string) (*session.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signIn == nil {
		return nil, errors.New("bad code")
	}
	s.user = s.signIn
	return s.user, nil
}

func (s *switchable) SignOut(context.Context) {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func TestAppLocalOnlySeedsSamples(t *testing.T) {
	a := New(Options{SeedSamples: true})
	ctx := context.Background()

	assert.False(t, a.SyncEnabled(ctx))
	require.NoError(t, a.Start(ctx))
	assert.Len(t, a.Records(), 4)
	assert.Equal(t, "", a.RemoteName())

	stats := a.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusInterviewing])
}

func TestAppSyncNeedsAdapterAndUser(t *testing.T) {
	ctx := context.Background()

	noUser := New(Options{Adapter: newMemAdapter()})
	assert.False(t, noUser.SyncEnabled(ctx))

	noAdapter := New(Options{Session: session.NewStatic(&session.User{ID: "u"})})
	assert.False(t, noAdapter.SyncEnabled(ctx))

	both := New(Options{Adapter: newMemAdapter(), Session: session.NewStatic(&session.User{ID: "u"})})
	assert.True(t, both.SyncEnabled(ctx))
}

func TestAppSessionErrorMeansSignedOut(t *testing.T) {
	sess := &switchable{err: errors.New("network down")}
	a := New(Options{Adapter: newMemAdapter(), Session: sess})
	assert.Nil(t, a.CurrentUser(context.Background()))
	assert.False(t, a.SyncEnabled(context.Background()))
}

func TestAppStartLoadsRemote(t *testing.T) {
	ctx := context.Background()
	ad := newMemAdapter()
	_, err := ad.Create(ctx, "u", acme())
	require.NoError(t, err)

	a := New(Options{Adapter: ad, Session: session.NewStatic(&session.User{ID: "u"}), SeedSamples: true})
	require.NoError(t, a.Start(ctx))

	recs := a.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "Acme", recs[0].Company)
}

func TestAppSignInAndOut(t *testing.T) {
	ctx := context.Background()
	ad := newMemAdapter()
	_, err := ad.Create(ctx, "u-42", acme())
	require.NoError(t, err)

	sess := &switchable{signIn: &session.User{ID: "u-42", Email: "a@b.c"}}
	a := New(Options{Adapter: ad, Session: sess, SeedSamples: true})
	assert.Len(t, a.Records(), 4)

	u, err := a.CompleteSignIn(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, "u-42", u.ID)
	assert.True(t, a.SyncEnabled(ctx))
	assert.Len(t, a.Records(), 1)

	a.SignOut(ctx)
	assert.False(t, a.SyncEnabled(ctx))
	assert.Len(t, a.Records(), 4)
}

func TestAppViewResetsPageOnCriteriaChange(t *testing.T) {
	a := New(Options{PageSize: 2})
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		in := acme()
		in.Company = fmt.Sprintf("Co %d", i)
		_, err := a.Create(ctx, in)
		require.NoError(t, err)
	}

	a.NextPage()
	vs := a.NextPage()
	assert.Equal(t, 3, vs.Page.Page)
	assert.Equal(t, 4, vs.Page.TotalPages)

	vs = a.SetCriteria(query.Criteria{Search: "co"})
	assert.Equal(t, 1, vs.Page.Page)

	vs = a.GoToPage(99)
	assert.Equal(t, 4, vs.Page.Page)
	assert.Len(t, vs.Page.Items, 1)

	vs = a.PrevPage()
	assert.Equal(t, 3, vs.Page.Page)

	vs = a.SetCriteria(query.Criteria{Search: "nothing matches"})
	assert.Equal(t, 0, vs.Page.TotalPages)
	assert.Empty(t, vs.Page.Items)
	assert.Equal(t, "All", a.ViewState().Criteria.Status)
}

func TestAppQueryDoesNotTouchView(t *testing.T) {
	a := New(Options{SeedSamples: true})
	p := a.Query(query.Criteria{Status: string(domain.StatusOffer)}, 1, 20)
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, "job-003", p.Items[0].ID)
	assert.Equal(t, 4, a.ViewState().Page.Total)
}

func TestAppViewClampsAfterDelete(t *testing.T) {
	a := New(Options{PageSize: 2})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		in := acme()
		in.Company = fmt.Sprintf("Co %d", i)
		_, err := a.Create(ctx, in)
		require.NoError(t, err)
	}

	vs := a.GoToPage(3)
	require.Len(t, vs.Page.Items, 1)
	require.NoError(t, a.Delete(ctx, vs.Page.Items[0].ID))

	vs = a.ViewState()
	assert.Equal(t, 2, vs.Page.Page)
	assert.Equal(t, 2, vs.Page.TotalPages)
	assert.Len(t, vs.Page.Items, 2)

	vs = a.PrevPage()
	assert.Equal(t, 1, vs.Page.Page)
}

func TestAppViewClampsAfterReload(t *testing.T) {
	ctx := context.Background()
	ad := newMemAdapter()
	var ids []string
	for i := 0; i < 5; i++ {
		in := acme()
		in.Company = fmt.Sprintf("Co %d", i)
		rec, err := ad.Create(ctx, "u", in)
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	a := New(Options{Adapter: ad, Session: session.NewStatic(&session.User{ID: "u"}), PageSize: 2})
	require.NoError(t, a.Start(ctx))
	assert.Equal(t, 3, a.GoToPage(3).Page.Page)

	for _, id := range ids[:4] {
		require.NoError(t, ad.Delete(ctx, "u", id))
	}
	n, err := a.Reload(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	vs := a.ViewState()
	assert.Equal(t, 1, vs.Page.Page)
	assert.Len(t, vs.Page.Items, 1)
}
