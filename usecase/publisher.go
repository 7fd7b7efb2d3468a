package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/dto"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"
)

const (
	MaxPostLength  = 3000
	WarnPostLength = 2500
)

type IPublisher interface {
	Validate(text string) dto.ValidationResult
	Publish(ctx context.Context, userID int64, text string) (*model.PostReceipt, error)
	PublishContent(ctx context.Context, userID, contentID int64, text string) (*dto.PublishResponse, error)
}

type Publisher struct {
	tokens   ITokenManager
	poster   repository.IPlatformPoster
	content  repository.IContent
	shares   repository.IShare
	users    repository.IUser
	notifier repository.INotifier
	events   IEventSink
	baseURL  string
	platform string
}

type PublisherDeps struct {
	Tokens   ITokenManager
	Poster   repository.IPlatformPoster
	Content  repository.IContent
	Shares   repository.IShare
	Users    repository.IUser
	Notifier repository.INotifier
	Events   IEventSink
}

func NewPublisher(deps PublisherDeps, baseURL string) IPublisher {
	return &Publisher{
		tokens:   deps.Tokens,
		poster:   deps.Poster,
		content:  deps.Content,
		shares:   deps.Shares,
		users:    deps.Users,
		notifier: deps.Notifier,
		events:   sinkOrNoop(deps.Events),
		baseURL:  baseURL,
		platform: model.PlatformLinkedIn,
	}
}

// Validate checks text against the platform length limits without any network call.
func (p *Publisher) Validate(text string) dto.ValidationResult {
	n := utf8.RuneCountInString(text)
	res := dto.ValidationResult{Valid: true, Length: n}
	if strings.TrimSpace(text) == "" {
		res.Valid = false
		res.Errors = append(res.Errors, "Post text cannot be empty")
	}
	if n > MaxPostLength {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf("Post exceeds LinkedIn's %d character limit (%d characters)", MaxPostLength, n))
	} else if n >= WarnPostLength {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Post is close to LinkedIn's %d character limit (%d characters)", MaxPostLength, n))
	}
	return res
}

// Publish posts text as the user. Token errors propagate unchanged; platform responses are classified
// into AuthenticationError, PermissionError or PlatformError.
func (p *Publisher) Publish(ctx context.Context, userID int64, text string) (*model.PostReceipt, error) {
	const op = "publish"
	cred, err := p.tokens.Credential(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cred.HasPlatformUserID() {
		return nil, apperror.New(apperror.NotAuthorized, op, "LinkedIn account is not connected")
	}
	if v := p.Validate(text); !v.Valid {
		return nil, apperror.New(apperror.ValidationError, op, strings.Join(v.Errors, "; "))
	}
	token, err := p.tokens.EnsureValidToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	receipt, err := p.poster.Post(ctx, token, *cred.PlatformUserID, text)
	if err != nil {
		return nil, p.classify(ctx, userID, err)
	}
	logger.GetLogger().WithField("user_id", userID).WithField("post_id", receipt.PostID).Info("Posted to LinkedIn")
	return receipt, nil
}

func (p *Publisher) classify(ctx context.Context, userID int64, err error) error {
	const op = "publish"
	status, detail := 0, err.Error()
	var pe *model.PlatformResponseError
	if errors.As(err, &pe) {
		status, detail = pe.StatusCode, pe.Detail
	}
	lower := strings.ToLower(detail)

	switch {
	case status == http.StatusUnauthorized,
		status != http.StatusForbidden && (strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid token")):
		if cErr := p.tokens.ClearCredentials(ctx, userID); cErr != nil {
			logger.GetLogger().WithField("user_id", userID).WithField("error", cErr).Error("Failed to clear credentials after auth failure")
		}
		return apperror.Wrapf(apperror.AuthenticationError, op, err, "LinkedIn rejected the access token")
	case status == http.StatusForbidden || strings.Contains(lower, "forbidden"):
		return apperror.Wrapf(apperror.PermissionError, op, err, "LinkedIn refused the post")
	default:
		return apperror.Wrapf(apperror.PlatformError, op, err, "%s", detail)
	}
}

// PublishContent publishes text for a content item and records the Share.
func (p *Publisher) PublishContent(ctx context.Context, userID, contentID int64, text string) (*dto.PublishResponse, error) {
	item, err := p.content.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	receipt, err := p.Publish(ctx, userID, text)
	if err != nil {
		if apperror.Is(err, apperror.AuthenticationError) {
			p.askToReconnect(ctx, userID)
		}
		return nil, err
	}

	postURL := receipt.PostURL
	share := &model.Share{
		UserID:      userID,
		ContentID:   item.ID,
		Platform:    p.platform,
		PostContent: text,
		PostURL:     &postURL,
	}
	if err := p.shares.Create(ctx, share); err != nil {
		logger.GetLogger().WithField("content_id", item.ID).WithField("post_url", postURL).WithField("error", err).Error("Posted but failed to record share")
		return nil, err
	}
	p.events.Emit(ctx, model.PipelineEvent{
		Type: model.EventSharePublished, ContentID: item.ID, UserID: &userID, Platform: p.platform,
		Title: item.Title, URL: postURL,
	})
	return &dto.PublishResponse{
		ContentID: item.ID,
		Platform:  p.platform,
		PostID:    receipt.PostID,
		PostURL:   postURL,
		ShareID:   share.ID,
	}, nil
}

func (p *Publisher) askToReconnect(ctx context.Context, userID int64) {
	if p.notifier == nil || p.users == nil {
		return
	}
	user, err := p.users.GetById(ctx, userID)
	if err != nil || user.SlackID == nil || *user.SlackID == "" {
		return
	}
	if err := p.notifier.Notify(ctx, *user.SlackID, publishReconnectMessage(p.baseURL)); err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("error", err).Error("Failed to send reconnect notice")
	}
}
