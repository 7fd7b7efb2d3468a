package usecase

import (
	"context"
	"time"

	"ai-promoter/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockContent struct{ mock.Mock }

func (m *MockContent) Create(ctx context.Context, item *model.ContentItem) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil && item.ID == 0 {
		item.ID = 100
	}
	return args.Error(0)
}

func (m *MockContent) GetByID(ctx context.Context, id int64) (*model.ContentItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*model.ContentItem)
	if item != nil {
		c := *item
		item = &c
	}
	return item, args.Error(1)
}

func (m *MockContent) ExistsByURL(ctx context.Context, url string) (bool, error) {
	args := m.Called(ctx, url)
	return args.Bool(0), args.Error(1)
}

func (m *MockContent) SaveScrapeResult(ctx context.Context, item *model.ContentItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockContent) UpdateTitle(ctx context.Context, id int64, title string) error {
	return m.Called(ctx, id, title).Error(0)
}

func (m *MockContent) UpdateCopy(ctx context.Context, id int64, copy string, campaignTag *string) error {
	return m.Called(ctx, id, copy, campaignTag).Error(0)
}

func (m *MockContent) ListCreatedSince(ctx context.Context, since time.Time) ([]*model.ContentItem, error) {
	args := m.Called(ctx, since)
	items, _ := args.Get(0).([]*model.ContentItem)
	return items, args.Error(1)
}

func (m *MockContent) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockScrapeJobs struct{ mock.Mock }

func (m *MockScrapeJobs) Enqueue(ctx context.Context, job *model.ScrapeJob) error {
	args := m.Called(ctx, job)
	if args.Error(0) == nil && job.ID == 0 {
		job.ID = 500
	}
	return args.Error(0)
}

func (m *MockScrapeJobs) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.ScrapeJob, error) {
	args := m.Called(ctx, now, limit)
	jobs, _ := args.Get(0).([]*model.ScrapeJob)
	return jobs, args.Error(1)
}

func (m *MockScrapeJobs) Claim(ctx context.Context, id int64, now time.Time) (*model.ScrapeJob, error) {
	args := m.Called(ctx, id, now)
	job, _ := args.Get(0).(*model.ScrapeJob)
	return job, args.Error(1)
}

func (m *MockScrapeJobs) ScheduleRetry(ctx context.Context, id int64, attempts int, runAt time.Time, errMsg string) error {
	return m.Called(ctx, id, attempts, runAt, errMsg).Error(0)
}

func (m *MockScrapeJobs) MarkSucceeded(ctx context.Context, id int64, attempts int) error {
	return m.Called(ctx, id, attempts).Error(0)
}

func (m *MockScrapeJobs) MarkFailed(ctx context.Context, id int64, attempts int, errMsg string) error {
	return m.Called(ctx, id, attempts, errMsg).Error(0)
}

type MockShares struct{ mock.Mock }

func (m *MockShares) Create(ctx context.Context, share *model.Share) error {
	args := m.Called(ctx, share)
	if args.Error(0) == nil {
		share.ID = 77
	}
	return args.Error(0)
}

func (m *MockShares) CountByContent(ctx context.Context, contentID int64) (int64, error) {
	args := m.Called(ctx, contentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShares) PlatformCounts(ctx context.Context, contentID int64) ([]model.PlatformShareCount, error) {
	args := m.Called(ctx, contentID)
	counts, _ := args.Get(0).([]model.PlatformShareCount)
	return counts, args.Error(1)
}

type MockUsers struct{ mock.Mock }

func (m *MockUsers) GetById(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUsers) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	args := m.Called(ctx, userName)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUsers) CreateUser(ctx context.Context, user model.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

type MockCredentials struct{ mock.Mock }

func (m *MockCredentials) Get(ctx context.Context, userID int64, platform string) (*model.UserPlatformCredential, error) {
	args := m.Called(ctx, userID, platform)
	cred, _ := args.Get(0).(*model.UserPlatformCredential)
	return cred, args.Error(1)
}

func (m *MockCredentials) UpsertAuthorization(ctx context.Context, cred *model.UserPlatformCredential) error {
	return m.Called(ctx, cred).Error(0)
}

func (m *MockCredentials) SaveRefreshed(ctx context.Context, userID int64, platform, accessToken string, refreshToken *string, expiresAt time.Time, scope *string) error {
	return m.Called(ctx, userID, platform, accessToken, refreshToken, expiresAt, scope).Error(0)
}

func (m *MockCredentials) ClearTokens(ctx context.Context, userID int64, platform string) error {
	return m.Called(ctx, userID, platform).Error(0)
}

func (m *MockCredentials) ListExpiring(ctx context.Context, platform string, before time.Time) ([]*model.UserPlatformCredential, error) {
	args := m.Called(ctx, platform, before)
	creds, _ := args.Get(0).([]*model.UserPlatformCredential)
	return creds, args.Error(1)
}

type MockFeedSource struct{ mock.Mock }

func (m *MockFeedSource) Fetch(ctx context.Context, feedURL string) (*model.FeedDocument, error) {
	args := m.Called(ctx, feedURL)
	doc, _ := args.Get(0).(*model.FeedDocument)
	return doc, args.Error(1)
}

type MockPageFetcher struct{ mock.Mock }

func (m *MockPageFetcher) Fetch(ctx context.Context, pageURL string) (*model.FetchedPage, error) {
	args := m.Called(ctx, pageURL)
	page, _ := args.Get(0).(*model.FetchedPage)
	return page, args.Error(1)
}

type MockExtractor struct{ mock.Mock }

func (m *MockExtractor) Extract(ctx context.Context, text string) (*model.ExtractedContent, string, error) {
	args := m.Called(ctx, text)
	info, _ := args.Get(0).(*model.ExtractedContent)
	return info, args.String(1), args.Error(2)
}

type MockArchive struct{ mock.Mock }

func (m *MockArchive) Save(ctx context.Context, contentID int64, url, raw string) error {
	return m.Called(ctx, contentID, url, raw).Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, recipient, message string) error {
	return m.Called(ctx, recipient, message).Error(0)
}

type MockDigestPoster struct{ mock.Mock }

func (m *MockDigestPoster) PostDigest(ctx context.Context, channel string, items []model.DigestItem, part, total int) error {
	return m.Called(ctx, channel, items, part, total).Error(0)
}

type MockDigestMarker struct{ mock.Mock }

func (m *MockDigestMarker) LastRun(ctx context.Context) (time.Time, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *MockDigestMarker) SetLastRun(ctx context.Context, at time.Time) error {
	return m.Called(ctx, at).Error(0)
}

type MockOAuth struct{ mock.Mock }

func (m *MockOAuth) AuthCodeURL(state string) string { return m.Called(state).String(0) }

func (m *MockOAuth) Exchange(ctx context.Context, code string) (*model.TokenGrant, error) {
	args := m.Called(ctx, code)
	g, _ := args.Get(0).(*model.TokenGrant)
	return g, args.Error(1)
}

func (m *MockOAuth) Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error) {
	args := m.Called(ctx, refreshToken)
	g, _ := args.Get(0).(*model.TokenGrant)
	return g, args.Error(1)
}

func (m *MockOAuth) Revoke(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

func (m *MockOAuth) UserID(ctx context.Context, accessToken string) (string, error) {
	args := m.Called(ctx, accessToken)
	return args.String(0), args.Error(1)
}

type MockPoster struct{ mock.Mock }

func (m *MockPoster) Post(ctx context.Context, accessToken, authorID, text string) (*model.PostReceipt, error) {
	args := m.Called(ctx, accessToken, authorID, text)
	r, _ := args.Get(0).(*model.PostReceipt)
	return r, args.Error(1)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishEvent(ctx context.Context, evt model.PipelineEvent) error {
	return m.Called(ctx, evt).Error(0)
}

type recordingSink struct{ events []model.PipelineEvent }

func (s *recordingSink) Emit(_ context.Context, evt model.PipelineEvent) { s.events = append(s.events, evt) }

func strPtr(s string) *string { return &s }
