package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokens struct{ mock.Mock }

func (m *MockTokens) AuthCodeURL(state string) string { return m.Called(state).String(0) }

func (m *MockTokens) CompleteAuthorization(ctx context.Context, userID int64, code string) (*model.UserPlatformCredential, error) {
	args := m.Called(ctx, userID, code)
	c, _ := args.Get(0).(*model.UserPlatformCredential)
	return c, args.Error(1)
}

func (m *MockTokens) Credential(ctx context.Context, userID int64) (*model.UserPlatformCredential, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(*model.UserPlatformCredential)
	return c, args.Error(1)
}

func (m *MockTokens) EnsureValidToken(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokens) ClearCredentials(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockTokens) Revoke(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockTokens) RefreshExpiring(ctx context.Context) (model.RefreshSweepResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.RefreshSweepResult), args.Error(1)
}

type publisherFixture struct {
	tokens   *MockTokens
	poster   *MockPoster
	content  *MockContent
	shares   *MockShares
	users    *MockUsers
	notifier *MockNotifier
	sink     *recordingSink
	pub      IPublisher
}

func newPublisherFixture() *publisherFixture {
	f := &publisherFixture{
		tokens:   &MockTokens{},
		poster:   &MockPoster{},
		content:  &MockContent{},
		shares:   &MockShares{},
		users:    &MockUsers{},
		notifier: &MockNotifier{},
		sink:     &recordingSink{},
	}
	f.pub = NewPublisher(PublisherDeps{
		Tokens: f.tokens, Poster: f.poster, Content: f.content, Shares: f.shares,
		Users: f.users, Notifier: f.notifier, Events: f.sink,
	}, "https://promoter.example.com")
	return f
}

func connected() *model.UserPlatformCredential {
	return &model.UserPlatformCredential{UserID: 1, Platform: model.PlatformLinkedIn, PlatformUserID: strPtr("li-9"), Authorized: true}
}

func TestValidate_Limits(t *testing.T) {
	pub := newPublisherFixture().pub

	ok := pub.Validate("hello")
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Warnings)

	near := pub.Validate(strings.Repeat("a", WarnPostLength))
	assert.True(t, near.Valid)
	assert.Len(t, near.Warnings, 1)

	exact := pub.Validate(strings.Repeat("é", MaxPostLength))
	assert.True(t, exact.Valid)
	assert.Equal(t, MaxPostLength, exact.Length)

	over := pub.Validate(strings.Repeat("a", MaxPostLength+1))
	assert.False(t, over.Valid)
	assert.Len(t, over.Errors, 1)

	empty := pub.Validate("   ")
	assert.False(t, empty.Valid)
}

func TestPublish_NotConnected(t *testing.T) {
	f := newPublisherFixture()
	f.tokens.On("Credential", mock.Anything, int64(1)).Return(nil, nil).Once()

	_, err := f.pub.Publish(context.Background(), 1, "hi")
	assert.True(t, apperror.Is(err, apperror.NotAuthorized))
	f.poster.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_TooLongNeverPosts(t *testing.T) {
	f := newPublisherFixture()
	f.tokens.On("Credential", mock.Anything, int64(1)).Return(connected(), nil).Once()

	_, err := f.pub.Publish(context.Background(), 1, strings.Repeat("a", MaxPostLength+1))
	assert.True(t, apperror.Is(err, apperror.ValidationError))
	f.tokens.AssertNotCalled(t, "EnsureValidToken", mock.Anything, mock.Anything)
}

func TestPublish_TokenErrorPropagates(t *testing.T) {
	f := newPublisherFixture()
	f.tokens.On("Credential", mock.Anything, int64(1)).Return(connected(), nil).Once()
	f.tokens.On("EnsureValidToken", mock.Anything, int64(1)).
		Return("", apperror.New(apperror.ReauthenticationRequired, "token.refresh", "no refresh token stored")).Once()

	_, err := f.pub.Publish(context.Background(), 1, "hi")
	assert.True(t, apperror.Is(err, apperror.ReauthenticationRequired))
}

func TestPublish_ClassifiesPlatformResponses(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		kind    apperror.Kind
		cleared bool
	}{
		{"status 401", &model.PlatformResponseError{StatusCode: 401, Detail: "expired"}, apperror.AuthenticationError, true},
		{"invalid token text", &model.PlatformResponseError{StatusCode: 400, Detail: "Invalid token supplied"}, apperror.AuthenticationError, true},
		{"status 403", &model.PlatformResponseError{StatusCode: 403, Detail: "Unauthorized scope"}, apperror.PermissionError, false},
		{"forbidden text", errors.New("Forbidden by policy"), apperror.PermissionError, false},
		{"status 500", &model.PlatformResponseError{StatusCode: 500, Detail: "boom"}, apperror.PlatformError, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPublisherFixture()
			f.tokens.On("Credential", mock.Anything, int64(1)).Return(connected(), nil).Once()
			f.tokens.On("EnsureValidToken", mock.Anything, int64(1)).Return("tok", nil).Once()
			f.poster.On("Post", mock.Anything, "tok", "li-9", "hi").Return(nil, tc.err).Once()
			if tc.cleared {
				f.tokens.On("ClearCredentials", mock.Anything, int64(1)).Return(nil).Once()
			}

			_, err := f.pub.Publish(context.Background(), 1, "hi")
			assert.Equal(t, tc.kind, apperror.KindOf(err))
			if tc.cleared {
				f.tokens.AssertExpectations(t)
			} else {
				f.tokens.AssertNotCalled(t, "ClearCredentials", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPublishContent_RecordsShare(t *testing.T) {
	f := newPublisherFixture()
	uid := int64(1)
	f.content.On("GetByID", mock.Anything, int64(10)).Return(&model.ContentItem{ID: 10, Title: "Post"}, nil).Once()
	f.tokens.On("Credential", mock.Anything, uid).Return(connected(), nil).Once()
	f.tokens.On("EnsureValidToken", mock.Anything, uid).Return("tok", nil).Once()
	f.poster.On("Post", mock.Anything, "tok", "li-9", "hi").
		Return(&model.PostReceipt{PostID: "urn:li:share:1", PostURL: "https://www.linkedin.com/feed/update/urn:li:share:1"}, nil).Once()
	f.shares.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Share) bool {
		return s.UserID == uid && s.ContentID == 10 && s.Platform == model.PlatformLinkedIn && s.PostContent == "hi"
	})).Return(nil).Once()

	res, err := f.pub.PublishContent(context.Background(), uid, 10, "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(77), res.ShareID)
	assert.Equal(t, "urn:li:share:1", res.PostID)
	require.Len(t, f.sink.events, 1)
	assert.Equal(t, model.EventSharePublished, f.sink.events[0].Type)
	f.shares.AssertExpectations(t)
}

func TestPublishContent_AuthFailureAsksToReconnect(t *testing.T) {
	f := newPublisherFixture()
	f.content.On("GetByID", mock.Anything, int64(10)).Return(&model.ContentItem{ID: 10}, nil).Once()
	f.tokens.On("Credential", mock.Anything, int64(1)).Return(connected(), nil).Once()
	f.tokens.On("EnsureValidToken", mock.Anything, int64(1)).Return("tok", nil).Once()
	f.poster.On("Post", mock.Anything, "tok", "li-9", "hi").
		Return(nil, &model.PlatformResponseError{StatusCode: 401, Detail: "revoked"}).Once()
	f.tokens.On("ClearCredentials", mock.Anything, int64(1)).Return(nil).Once()
	f.users.On("GetById", mock.Anything, int64(1)).Return(model.User{ID: 1, SlackID: strPtr("U1")}, nil).Once()
	f.notifier.On("Notify", mock.Anything, "U1", mock.Anything).Return(nil).Once()

	_, err := f.pub.PublishContent(context.Background(), 1, 10, "hi")
	assert.True(t, apperror.Is(err, apperror.AuthenticationError))
	f.notifier.AssertExpectations(t)
	f.shares.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.sink.events)
}
