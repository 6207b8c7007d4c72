package studio

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Search returns the projects whose title, and the posts whose title or
// content, contain query case-insensitively. Both lists keep insertion
// order. An empty query matches everything.
func (s *service) Search(ctx context.Context, query string) (*SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	result := &SearchResult{
		Projects: []*Project{},
		Posts:    []*Post{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		projects, err := listRecords(gctx, s, s.repository.Projects(), KindProject, OrderNatural)
		if err != nil {
			return err
		}
		for _, p := range projects {
			if contains(p.Title, needle) {
				result.Projects = append(result.Projects, p)
			}
		}
		return nil
	})
	g.Go(func() error {
		posts, err := listRecords(gctx, s, s.repository.Posts(), KindPost, OrderNatural)
		if err != nil {
			return err
		}
		for _, p := range posts {
			if contains(p.Title, needle) || contains(p.Content, needle) {
				result.Posts = append(result.Posts, p)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func contains(field, lowerNeedle string) bool {
	if lowerNeedle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), lowerNeedle)
}

// Stats counts every collection. The counts are read concurrently and
// independently.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	g, gctx := errgroup.WithContext(ctx)
	count := func(kind Kind, dst *int, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := bounded(gctx, s, fn)
			if err != nil {
				return &EntityError{Kind: kind, Op: "count", Err: err}
			}
			*dst = n
			return nil
		})
	}

	count(KindProject, &stats.Projects, s.repository.Projects().Count)
	count(KindPost, &stats.Posts, s.repository.Posts().Count)
	count(KindContact, &stats.Contacts, s.repository.Contacts().Count)
	count(KindSubscriber, &stats.Subscribers, s.repository.Subscribers().Count)
	count(KindTeamMember, &stats.Team, s.repository.Team().Count)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
