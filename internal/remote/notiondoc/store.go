// Package notiondoc keeps tracker records as pages of a Notion database.
//
// Notion has no per-document permissions for integrations, so ownership is
// an Owner text property: List filters on it and Update/Delete check it
// before touching a page.
package notiondoc

import (
	"context"
	"errors"
	"net/http"
	"strings"

	gnt "github.com/dstotijn/go-notion"

	"jobtracker-engine/internal/domain"
	"jobtracker-engine/internal/remote"
)

const backend = "notion"

type Store struct {
	api        *gnt.Client
	databaseID string
}

// New builds a store for databaseID. hc may be nil.
func New(token, databaseID string, hc *http.Client) *Store {
	var opts []gnt.ClientOption
	if hc != nil {
		opts = append(opts, gnt.WithHTTPClient(hc))
	}
	return &Store{
		api:        gnt.NewClient(token, opts...),
		databaseID: databaseID,
	}
}

func (s *Store) Name() string { return backend }

// Ping just tries a tiny QueryDatabase to see if the DB is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.api.QueryDatabase(ctx, s.databaseID, &gnt.DatabaseQuery{PageSize: 1})
	return wrap("ping", err)
}

func ownerFilter(owner string) *gnt.DatabaseQueryFilter {
	return &gnt.DatabaseQueryFilter{
		Property: propOwner,
		DatabaseQueryPropertyFilter: gnt.DatabaseQueryPropertyFilter{
			RichText: &gnt.TextPropertyFilter{Equals: owner},
		},
	}
}

func (s *Store) List(ctx context.Context, owner string) ([]domain.Record, error) {
	q := &gnt.DatabaseQuery{
		Filter: ownerFilter(owner),
		Sorts: []gnt.DatabaseQuerySort{
			{Timestamp: gnt.SortTimeStampCreatedTime, Direction: gnt.SortDirDesc},
		},
		PageSize: 100,
	}

	out := []domain.Record{}
	for {
		resp, err := s.api.QueryDatabase(ctx, s.databaseID, q)
		if err != nil {
			return nil, wrap("list", err)
		}
		for _, page := range resp.Results {
			if page.Archived {
				continue
			}
			out = append(out, recordFromPage(page))
		}
		if !resp.HasMore || resp.NextCursor == nil {
			return out, nil
		}
		q.StartCursor = *resp.NextCursor
	}
}

func (s *Store) Create(ctx context.Context, owner string, in domain.Input) (domain.Record, error) {
	if strings.TrimSpace(owner) == "" {
		return domain.Record{}, &remote.RemoteError{Op: "create", Backend: backend, Message: "Missing owner for document permissions."}
	}
	props := createProperties(owner, in)
	page, err := s.api.CreatePage(ctx, gnt.CreatePageParams{
		ParentType:             gnt.ParentTypeDatabase,
		ParentID:               s.databaseID,
		DatabasePageProperties: &props,
	})
	if err != nil {
		return domain.Record{}, wrap("create", err)
	}
	return recordFromPage(page), nil
}

func (s *Store) Update(ctx context.Context, owner, id string, p domain.Patch) (domain.Record, error) {
	page, err := s.owned(ctx, "update", owner, id)
	if err != nil {
		return domain.Record{}, err
	}
	props := patchProperties(p)
	if len(props) == 0 {
		return recordFromPage(page), nil
	}
	page, err = s.api.UpdatePage(ctx, id, gnt.UpdatePageParams{DatabasePageProperties: props})
	if err != nil {
		return domain.Record{}, wrap("update", err)
	}
	return recordFromPage(page), nil
}

// Delete archives the page.
func (s *Store) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.owned(ctx, "delete", owner, id); err != nil {
		return err
	}
	_, err := s.api.DeleteBlock(ctx, id)
	return wrap("delete", err)
}

func (s *Store) owned(ctx context.Context, op, owner, id string) (gnt.Page, error) {
	page, err := s.api.FindPageByID(ctx, id)
	if err != nil {
		return gnt.Page{}, wrap(op, err)
	}
	if page.Archived || ownerOf(page) != owner {
		return gnt.Page{}, notFound(op)
	}
	return page, nil
}

func notFound(op string) error {
	return &remote.RemoteError{
		Op:      op,
		Backend: backend,
		Message: "Document with the requested ID could not be found.",
		Err:     remote.ErrNotFound,
	}
}

// wrap surfaces the Notion API message as the diagnostic.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *gnt.APIError
	if errors.As(err, &apiErr) {
		re := &remote.RemoteError{Op: op, Backend: backend, Message: apiErr.Message, Err: err}
		if apiErr.Status == http.StatusNotFound {
			re.Err = errors.Join(err, remote.ErrNotFound)
		}
		return re
	}
	return remote.Wrap(backend, op, err)
}
