package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contentColumnNames = []string{"id", "url", "title", "scraped_body", "excerpt", "author_copy", "image_url", "publish_date", "context", "campaign_tag", "submitted_by_id", "created_at", "updated_at"}

func TestContentRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentRepository(db)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	item := &model.ContentItem{URL: "https://blog.example/post", Title: model.PlaceholderTitle}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO content_items (url, title, scraped_body`)).
		WithArgs(item.URL, item.Title, nil, nil, nil, nil, sqlmock.AnyArg(), nil, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(9, now, now))

	require.NoError(t, repo.Create(context.Background(), item))
	assert.EqualValues(t, 9, item.ID)
	assert.Equal(t, now, item.CreatedAt)
	assert.False(t, item.PublishDate.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_Create_DuplicateURL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO content_items`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err = repo.Create(context.Background(), &model.ContentItem{URL: "https://blog.example/post", Title: "x"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.Duplicate))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentRepository(db)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + contentColumns + ` FROM content_items WHERE id=$1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(contentColumnNames).
			AddRow(3, "https://blog.example/a", "A", "body", "excerpt", nil, "https://img.example/a.png", now, nil, "spring", int64(1), now, now))

	item, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "A", item.Title)
	require.NotNil(t, item.ScrapedBody)
	assert.Equal(t, "body", *item.ScrapedBody)
	assert.Nil(t, item.AuthorCopy)
	require.NotNil(t, item.CampaignTag)
	assert.Equal(t, "spring", *item.CampaignTag)
	require.NotNil(t, item.SubmittedByID)
	assert.EqualValues(t, 1, *item.SubmittedByID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM content_items WHERE id=$1`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(contentColumnNames))

	_, err = repo.GetByID(context.Background(), 404)
	assert.True(t, apperror.Is(err, apperror.NotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_SaveScrapeResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentRepository(db)
	body := "page text"
	item := &model.ContentItem{ID: 5, Title: "Real Title", ScrapedBody: &body, PublishDate: time.Now().UTC()}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM content_items WHERE id=$1 FOR UPDATE`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE content_items SET title=$1, scraped_body=$2`)).
		WithArgs("Real Title", body, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveScrapeResult(context.Background(), item))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_SaveScrapeResult_RollsBackOnMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM content_items WHERE id=$1 FOR UPDATE`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err = repo.SaveScrapeResult(context.Background(), &model.ContentItem{ID: 5})
	assert.True(t, apperror.Is(err, apperror.NotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_UpdateTitle_NoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE content_items SET title=$1`)).
		WithArgs("Failed: https://x.example", sqlmock.AnyArg(), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateTitle(context.Background(), 8, "Failed: https://x.example")
	assert.True(t, apperror.Is(err, apperror.NotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_ListCreatedSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentRepository(db)
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := since.Add(time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM content_items WHERE created_at > $1 ORDER BY created_at ASC`)).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows(contentColumnNames).
			AddRow(1, "https://a.example", "A", nil, nil, nil, nil, now, nil, nil, nil, now, now).
			AddRow(2, "https://b.example", "B", nil, "desc", nil, nil, now, nil, nil, nil, now, now))

	items, err := repo.ListCreatedSince(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[1].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}
