package persistence

import (
	"context"
	"database/sql"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
)

const contentColumns = `id, url, title, scraped_body, excerpt, author_copy, image_url, publish_date, context, campaign_tag, submitted_by_id, created_at, updated_at`

// ContentRepository implements content persistence using PostgreSQL (native sql.DB)
type ContentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) repository.IContent { return &ContentRepository{db: db} }

func (r *ContentRepository) Create(ctx context.Context, item *model.ContentItem) error {
	now := time.Now().UTC()
	if item.PublishDate.IsZero() {
		item.PublishDate = now
	}
	q := `INSERT INTO content_items (url, title, scraped_body, excerpt, author_copy, image_url, publish_date, context, campaign_tag, submitted_by_id, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
		  RETURNING id, created_at, updated_at`
	row := r.db.QueryRowContext(ctx, q, item.URL, item.Title, item.ScrapedBody, item.Excerpt, item.AuthorCopy, item.ImageURL,
		item.PublishDate, item.Context, item.CampaignTag, item.SubmittedByID, now)
	if err := row.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return storeError("content.create", err)
	}
	return nil
}

func (r *ContentRepository) GetByID(ctx context.Context, id int64) (*model.ContentItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content_items WHERE id=$1`, id)
	item, err := scanContent(row)
	if err != nil {
		return nil, storeError("content.get", err)
	}
	return item, nil
}

func (r *ContentRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM content_items WHERE url=$1)`, url).Scan(&exists); err != nil {
		return false, storeError("content.exists", err)
	}
	return exists, nil
}

// SaveScrapeResult locks the row and writes the enrichment fields in one transaction.
func (r *ContentRepository) SaveScrapeResult(ctx context.Context, item *model.ContentItem) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("content.save_scrape", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if err = tx.QueryRowContext(ctx, `SELECT id FROM content_items WHERE id=$1 FOR UPDATE`, item.ID).Scan(&id); err != nil {
		return storeError("content.save_scrape", err)
	}
	item.UpdatedAt = time.Now().UTC()
	q := `UPDATE content_items SET title=$1, scraped_body=$2, excerpt=$3, image_url=$4, publish_date=$5, updated_at=$6 WHERE id=$7`
	if _, err = tx.ExecContext(ctx, q, item.Title, item.ScrapedBody, item.Excerpt, item.ImageURL, item.PublishDate, item.UpdatedAt, item.ID); err != nil {
		return storeError("content.save_scrape", err)
	}
	if err = tx.Commit(); err != nil {
		return storeError("content.save_scrape", err)
	}
	return nil
}

func (r *ContentRepository) UpdateTitle(ctx context.Context, id int64, title string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE content_items SET title=$1, updated_at=$2 WHERE id=$3`, title, time.Now().UTC(), id)
	return affectedOne("content.update_title", res, err)
}

func (r *ContentRepository) UpdateCopy(ctx context.Context, id int64, copy string, campaignTag *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE content_items SET author_copy=$1, campaign_tag=COALESCE($2, campaign_tag), updated_at=$3 WHERE id=$4`,
		copy, campaignTag, time.Now().UTC(), id)
	return affectedOne("content.update_copy", res, err)
}

func (r *ContentRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]*model.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+contentColumns+` FROM content_items WHERE created_at > $1 ORDER BY created_at ASC`, since)
	if err != nil {
		return nil, storeError("content.list_since", err)
	}
	defer rows.Close()
	var list []*model.ContentItem
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, storeError("content.list_since", err)
		}
		list = append(list, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("content.list_since", err)
	}
	return list, nil
}

func (r *ContentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM content_items WHERE id=$1`, id)
	return affectedOne("content.delete", res, err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContent(s rowScanner) (*model.ContentItem, error) {
	item := &model.ContentItem{}
	var body, excerpt, copy, image, ctxText, tag sql.NullString
	var submittedBy sql.NullInt64
	if err := s.Scan(&item.ID, &item.URL, &item.Title, &body, &excerpt, &copy, &image, &item.PublishDate,
		&ctxText, &tag, &submittedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.ScrapedBody = stringPtr(body)
	item.Excerpt = stringPtr(excerpt)
	item.AuthorCopy = stringPtr(copy)
	item.ImageURL = stringPtr(image)
	item.Context = stringPtr(ctxText)
	item.CampaignTag = stringPtr(tag)
	item.SubmittedByID = int64Ptr(submittedBy)
	return item, nil
}

func affectedOne(op string, res sql.Result, err error) error {
	if err != nil {
		return storeError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeError(op, err)
	}
	if n == 0 {
		return apperror.New(apperror.NotFound, op, "no matching row")
	}
	return nil
}
