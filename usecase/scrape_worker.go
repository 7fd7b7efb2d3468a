package usecase

import (
	"context"
	"strings"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"

	"golang.org/x/sync/errgroup"
)

type IScrapeWorker interface {
	Process(ctx context.Context, job *model.ScrapeJob) model.ScrapeOutcome
}

type ScrapeWorker struct {
	content   repository.IContent
	jobs      repository.IScrapeJob
	fetcher   repository.IPageFetcher
	extractor repository.IContentExtractor
	archive   repository.IExtractionArchive
	notifier  repository.INotifier
	events    IEventSink
	policy    RetryPolicy
	now       func() time.Time
}

type ScrapeWorkerDeps struct {
	Content   repository.IContent
	Jobs      repository.IScrapeJob
	Fetcher   repository.IPageFetcher
	Extractor repository.IContentExtractor
	Archive   repository.IExtractionArchive
	Notifier  repository.INotifier
	Events    IEventSink
}

func NewScrapeWorker(deps ScrapeWorkerDeps, policy RetryPolicy) *ScrapeWorker {
	return &ScrapeWorker{
		content:   deps.Content,
		jobs:      deps.Jobs,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		archive:   deps.Archive,
		notifier:  deps.Notifier,
		events:    sinkOrNoop(deps.Events),
		policy:    policy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// scrapeState is threaded through the fetch, extract and persist steps of one attempt.
type scrapeState struct {
	job  *model.ScrapeJob
	item *model.ContentItem
	page *model.FetchedPage
	info *model.ExtractedContent
}

// Process runs one attempt of job and records its outcome in the queue.
func (w *ScrapeWorker) Process(ctx context.Context, job *model.ScrapeJob) model.ScrapeOutcome {
	attempt := job.Attempts
	lg := logger.GetLogger().WithFields(map[string]interface{}{
		"job_id":     job.ID,
		"content_id": job.ContentID,
		"url":        job.URL,
		"attempt":    attempt + 1,
	})

	state, err := w.attempt().Run(ctx, &scrapeState{job: job})
	if err == nil {
		if mErr := w.jobs.MarkSucceeded(ctx, job.ID, attempt+1); mErr != nil {
			lg.WithField("error", mErr).Error("Failed to mark scrape job succeeded")
		}
		lg.WithField("title", state.item.Title).Info("Scrape job succeeded")
		w.notify(ctx, job, scrapeSucceededMessage(job.URL, state.item.Title, job.ContentID))
		w.events.Emit(ctx, model.PipelineEvent{
			Type: model.EventContentScraped, ContentID: job.ContentID, UserID: state.item.SubmittedByID,
			Title: state.item.Title, URL: job.URL,
		})
		return model.ScrapeOutcome{Status: model.ScrapeJobSucceeded, Title: state.item.Title}
	}

	lg = lg.WithField("step", FailedStep(err)).WithField("error", err)
	if w.policy.IsFinal(attempt) || apperror.Is(err, apperror.NotFound) {
		lg.Error("Scrape job failed permanently")
		w.fail(ctx, job, attempt, err)
		return model.ScrapeOutcome{Status: model.ScrapeJobFailed, Err: err}
	}

	delay := w.policy.Delay(attempt)
	lg.WithField("retry_in", delay.String()).Warn("Scrape attempt failed, retry scheduled")
	if rErr := w.jobs.ScheduleRetry(ctx, job.ID, attempt+1, w.now().Add(delay), err.Error()); rErr != nil {
		lg.WithField("schedule_error", rErr).Error("Failed to schedule scrape retry")
	}
	return model.ScrapeOutcome{Status: model.ScrapeJobRetryScheduled, RetryDelay: delay, Err: err}
}

func (w *ScrapeWorker) attempt() Step[*scrapeState, *scrapeState] {
	load := Step[*scrapeState, *scrapeState]{Name: "load", Run: func(ctx context.Context, s *scrapeState) (*scrapeState, error) {
		item, err := w.content.GetByID(ctx, s.job.ContentID)
		s.item = item
		return s, err
	}}
	fetch := Step[*scrapeState, *scrapeState]{Name: "fetch", Run: w.fetch}
	extract := Step[*scrapeState, *scrapeState]{Name: "extract", Run: w.extract}
	persist := Step[*scrapeState, *scrapeState]{Name: "persist", Run: func(ctx context.Context, s *scrapeState) (*scrapeState, error) {
		merged := MergeExtraction(s.item, s.page, s.info, w.now())
		if err := w.content.SaveScrapeResult(ctx, merged); err != nil {
			return s, err
		}
		s.item = merged
		return s, nil
	}}
	return Then(Then(load, fetch), Then(extract, persist))
}

func (w *ScrapeWorker) fetch(ctx context.Context, s *scrapeState) (*scrapeState, error) {
	page, err := w.fetcher.Fetch(ctx, s.job.URL)
	if err != nil {
		if apperror.KindOf(err) == apperror.Unknown {
			err = apperror.Wrap(apperror.FetchError, "scrape.fetch", err)
		}
		return s, err
	}
	if page == nil || strings.TrimSpace(page.Text) == "" {
		return s, apperror.New(apperror.FetchError, "scrape.fetch", "no text returned for "+s.job.URL)
	}
	s.page = page
	return s, nil
}

// extract asks the LLM for metadata. When the answer cannot be parsed the fetched body is still saved
// before the attempt fails.
func (w *ScrapeWorker) extract(ctx context.Context, s *scrapeState) (*scrapeState, error) {
	info, raw, err := w.extractor.Extract(ctx, s.page.Text)
	if raw != "" && w.archive != nil {
		if aErr := w.archive.Save(ctx, s.job.ContentID, s.job.URL, raw); aErr != nil {
			logger.GetLogger().WithField("content_id", s.job.ContentID).WithField("error", aErr).Warn("Failed to archive raw extraction")
		}
	}
	if err != nil {
		if apperror.KindOf(err) == apperror.Unknown {
			err = apperror.Wrap(apperror.ExtractionError, "scrape.extract", err)
		}
		bodyOnly := MergeExtraction(s.item, s.page, nil, w.now())
		if sErr := w.content.SaveScrapeResult(ctx, bodyOnly); sErr != nil {
			logger.GetLogger().WithField("content_id", s.job.ContentID).WithField("error", sErr).Warn("Failed to save scraped body")
		}
		return s, err
	}
	s.info = info
	return s, nil
}

func (w *ScrapeWorker) fail(ctx context.Context, job *model.ScrapeJob, attempt int, cause error) {
	lg := logger.GetLogger().WithField("job_id", job.ID).WithField("content_id", job.ContentID)
	if err := w.jobs.MarkFailed(ctx, job.ID, attempt+1, cause.Error()); err != nil {
		lg.WithField("error", err).Error("Failed to mark scrape job failed")
	}
	var owner *int64
	if item, err := w.content.GetByID(ctx, job.ContentID); err == nil {
		owner = item.SubmittedByID
		if item.IsPlaceholder() {
			if err := w.content.UpdateTitle(ctx, job.ContentID, TruncateTitle(model.FailedTitlePrefix+job.URL)); err != nil {
				lg.WithField("error", err).Error("Failed to mark content title as failed")
			}
		}
	}
	w.notify(ctx, job, scrapeFailedMessage(job.URL, cause))
	w.events.Emit(ctx, model.PipelineEvent{
		Type: model.EventContentScrapeFailed, ContentID: job.ContentID, UserID: owner, URL: job.URL, Detail: cause.Error(),
	})
}

// notify delivers a DM to the job's recipient. Delivery errors never change the job outcome.
func (w *ScrapeWorker) notify(ctx context.Context, job *model.ScrapeJob, message string) {
	if job.NotifyRecipient == nil || *job.NotifyRecipient == "" || w.notifier == nil {
		return
	}
	if err := w.notifier.Notify(ctx, *job.NotifyRecipient, message); err != nil {
		logger.GetLogger().WithField("job_id", job.ID).WithField("recipient", *job.NotifyRecipient).WithField("error", err).Error("Failed to send scrape notification")
	}
}

// RunScrapeJobs claims up to batch due jobs and processes them with at most concurrency in flight.
func RunScrapeJobs(ctx context.Context, worker IScrapeWorker, jobs repository.IScrapeJob, batch, concurrency int) (int, error) {
	claimed, err := jobs.ClaimDue(ctx, time.Now().UTC(), batch)
	if err != nil {
		return 0, err
	}
	if len(claimed) == 0 {
		return 0, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, job := range claimed {
		job := job
		g.Go(func() error {
			worker.Process(gctx, job)
			return nil
		})
	}
	_ = g.Wait()
	return len(claimed), nil
}
