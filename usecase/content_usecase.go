package usecase

import (
	"context"
	"net/url"
	"strings"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/dto"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"
)

type IContentUsecase interface {
	Submit(ctx context.Context, userID int64, req dto.SubmitContentRequest) (*model.ContentItem, error)
	Get(ctx context.Context, id int64) (*model.ContentItem, error)
	UpdateCopy(ctx context.Context, id int64, req dto.UpdateCopyRequest) (*model.ContentItem, error)
	Delete(ctx context.Context, id int64) error
	ShareStats(ctx context.Context, id int64) (*model.ShareStats, error)
	Rescrape(ctx context.Context, id, userID int64) (*model.ScrapeJob, error)
}

type ContentUsecase struct {
	content   repository.IContent
	jobs      repository.IScrapeJob
	shares    repository.IShare
	users     repository.IUser
	events    IEventSink
	utmParams string
}

func NewContentUsecase(content repository.IContent, jobs repository.IScrapeJob, shares repository.IShare, users repository.IUser, events IEventSink, utmParams string) IContentUsecase {
	return &ContentUsecase{content: content, jobs: jobs, shares: shares, users: users, events: sinkOrNoop(events), utmParams: utmParams}
}

// Submit creates a placeholder item for a manually submitted url and queues its scrape. The submitter's
// Slack id becomes the job's notify recipient unless notify is false.
func (u *ContentUsecase) Submit(ctx context.Context, userID int64, req dto.SubmitContentRequest) (*model.ContentItem, error) {
	const op = "content.submit"
	link := strings.TrimSpace(req.URL)
	if err := validateURL(link); err != nil {
		return nil, apperror.Wrapf(apperror.ValidationError, op, err, "invalid url %q", link)
	}
	exists, err := u.content.ExistsByURL(ctx, link)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.New(apperror.Duplicate, op, "content already exists for "+link)
	}

	item := &model.ContentItem{
		URL:           link,
		Title:         model.PlaceholderTitle,
		Context:       nonEmpty(req.Context),
		CampaignTag:   nonEmpty(req.CampaignTag),
		SubmittedByID: &userID,
	}
	if req.AuthorCopy != nil && strings.TrimSpace(*req.AuthorCopy) != "" {
		tagged := ApplyCampaignTags(*req.AuthorCopy, item, u.utmParams)
		item.AuthorCopy = &tagged
	}

	recipient := u.recipient(ctx, userID, req.Notify)
	job, err := createAndEnqueue(u.content, u.jobs, recipient).Run(ctx, item)
	if err != nil {
		logger.GetLogger().WithField("url", link).WithField("step", FailedStep(err)).WithField("error", err).Error("Failed to submit content")
		return nil, err
	}
	logger.GetLogger().WithField("content_id", item.ID).WithField("job_id", job.ID).Info("Content submitted")
	u.events.Emit(ctx, model.PipelineEvent{Type: model.EventContentCreated, ContentID: item.ID, UserID: &userID, Title: item.Title, URL: item.URL})
	return item, nil
}

func (u *ContentUsecase) recipient(ctx context.Context, userID int64, notify *bool) *string {
	if (notify != nil && !*notify) || u.users == nil {
		return nil
	}
	user, err := u.users.GetById(ctx, userID)
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("error", err).Warn("Could not load submitter, no notification will be sent")
		return nil
	}
	return nonEmpty(user.SlackID)
}

func (u *ContentUsecase) Get(ctx context.Context, id int64) (*model.ContentItem, error) {
	return u.content.GetByID(ctx, id)
}

// UpdateCopy stores new author copy after campaign tagging.
func (u *ContentUsecase) UpdateCopy(ctx context.Context, id int64, req dto.UpdateCopyRequest) (*model.ContentItem, error) {
	item, err := u.content.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag := nonEmpty(req.CampaignTag); tag != nil {
		item.CampaignTag = tag
	}
	tagged := ApplyCampaignTags(req.AuthorCopy, item, u.utmParams)
	if err := u.content.UpdateCopy(ctx, id, tagged, item.CampaignTag); err != nil {
		return nil, err
	}
	item.AuthorCopy = &tagged
	return item, nil
}

func (u *ContentUsecase) Delete(ctx context.Context, id int64) error {
	return u.content.Delete(ctx, id)
}

func (u *ContentUsecase) ShareStats(ctx context.Context, id int64) (*model.ShareStats, error) {
	if _, err := u.content.GetByID(ctx, id); err != nil {
		return nil, err
	}
	total, err := u.shares.CountByContent(ctx, id)
	if err != nil {
		return nil, err
	}
	byPlatform, err := u.shares.PlatformCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.ShareStats{ContentID: id, Total: total, ByPlatform: byPlatform}, nil
}

// Rescrape queues a fresh scrape job for an existing item.
func (u *ContentUsecase) Rescrape(ctx context.Context, id, userID int64) (*model.ScrapeJob, error) {
	item, err := u.content.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	job := &model.ScrapeJob{ContentID: item.ID, URL: item.URL, NotifyRecipient: u.recipient(ctx, userID, nil)}
	if err := u.jobs.Enqueue(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperror.New(apperror.ValidationError, "content.validate_url", "url must be absolute http(s)")
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
