package post

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-blog/internal/database"
)

// Repository reads posts; this service never writes them
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// ListByAuthor returns one page of the author's posts, newest first
func (r *Repository) ListByAuthor(ctx context.Context, authorID uuid.UUID, page, perPage int) (*Page, error) {
	return r.list(ctx, page, perPage, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("p.user_id = ?", authorID)
	})
}

// ListRecent returns one page of all posts, newest first
func (r *Repository) ListRecent(ctx context.Context, page, perPage int) (*Page, error) {
	return r.list(ctx, page, perPage, func(q *bun.SelectQuery) *bun.SelectQuery { return q })
}

func (r *Repository) list(ctx context.Context, page, perPage int, filter func(*bun.SelectQuery) *bun.SelectQuery) (*Page, error) {
	if page < 1 {
		page = 1
	}

	var rows []database.Post
	q := r.db.NewSelect().
		Model(&rows).
		Relation("Author").
		OrderExpr("p.date_posted DESC").
		Limit(perPage).
		Offset(offset(page, perPage))

	total, err := filter(q).ScanAndCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	items := make([]Post, 0, len(rows))
	for i := range rows {
		items = append(items, mapDBPostToModel(&rows[i]))
	}

	return &Page{
		Items:   items,
		Number:  page,
		PerPage: perPage,
		Total:   total,
	}, nil
}

func mapDBPostToModel(dbp *database.Post) Post {
	p := Post{
		ID:         dbp.ID,
		Title:      dbp.Title,
		DatePosted: dbp.DatePosted,
		Content:    dbp.Content,
	}
	if dbp.Author != nil {
		p.Author = Author{
			ID:        dbp.Author.ID,
			Username:  dbp.Author.Username,
			ImageFile: dbp.Author.ImageFile,
		}
	}
	return p
}
