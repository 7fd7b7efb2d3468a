package servicebus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	ScheduleMessages(ctx context.Context, messages []*azservicebus.Message, scheduledEnqueueTime time.Time, options *azservicebus.ScheduleMessagesOptions) ([]int64, error)
}

type messageReceiver interface {
	ReceiveMessages(ctx context.Context, maxMessages int, options *azservicebus.ReceiveMessagesOptions) ([]*azservicebus.ReceivedMessage, error)
	CompleteMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.CompleteMessageOptions) error
}

type jobMessage struct {
	JobID     int64 `json:"job_id"`
	ContentID int64 `json:"content_id"`
}

// ScrapeQueue keeps the scrape_jobs table as the record of job state and uses a Service Bus
// queue to wake workers. Retries become scheduled messages. Rows whose message was lost or
// arrived early are picked up by the table sweep in ClaimDue.
type ScrapeQueue struct {
	store       repository.IScrapeJob
	sender      messageSender
	receiver    messageReceiver
	receiveWait time.Duration
}

// NewClient connects with the default Azure credential chain. It returns nil when namespace is empty.
func NewClient(namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azservicebus.NewClient(namespace, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("service bus client: %w", err)
	}
	return client, nil
}

// NewScrapeQueue wraps store with the queue. A nil client returns store unchanged.
func NewScrapeQueue(client *azservicebus.Client, queueName string, store repository.IScrapeJob) (repository.IScrapeJob, error) {
	if client == nil {
		return store, nil
	}
	sender, err := client.NewSender(queueName, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return nil, err
	}
	receiver, err := client.NewReceiverForQueue(queueName, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new receiver service bus.")
		return nil, err
	}
	return newScrapeQueue(store, sender, receiver), nil
}

func newScrapeQueue(store repository.IScrapeJob, sender messageSender, receiver messageReceiver) *ScrapeQueue {
	return &ScrapeQueue{store: store, sender: sender, receiver: receiver, receiveWait: 5 * time.Second}
}

func (q *ScrapeQueue) Enqueue(ctx context.Context, job *model.ScrapeJob) error {
	if err := q.store.Enqueue(ctx, job); err != nil {
		return err
	}
	q.wake(ctx, job.ID, job.ContentID, job.RunAt)
	return nil
}

// ClaimDue receives up to limit wake-up messages and claims the matching rows. Messages whose job is
// no longer claimable are completed and dropped. Remaining capacity is filled from the table, which
// also reclaims stale running rows.
func (q *ScrapeQueue) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.ScrapeJob, error) {
	rctx, cancel := context.WithTimeout(ctx, q.receiveWait)
	defer cancel()
	messages, err := q.receiver.ReceiveMessages(rctx, limit, nil)
	if err != nil && rctx.Err() == nil {
		return nil, apperror.Wrap(apperror.Persistence, "scrape_queue.receive", err)
	}

	var jobs []*model.ScrapeJob
	claimed := map[int64]bool{}
	for _, message := range messages {
		var body jobMessage
		if err := json.Unmarshal(message.Body, &body); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Dropping undecodable scrape message")
		} else if job, err := q.store.Claim(ctx, body.JobID, now); err == nil {
			jobs = append(jobs, job)
			claimed[job.ID] = true
		} else if !apperror.Is(err, apperror.NotFound) {
			logger.GetLogger().WithField("job_id", body.JobID).WithField("error", err).Error("Error while claiming scrape job")
		}
		if err := q.receiver.CompleteMessage(ctx, message, nil); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while completing message.")
		}
	}

	if len(jobs) >= limit {
		return jobs, nil
	}
	swept, err := q.store.ClaimDue(ctx, now, limit-len(jobs))
	if err != nil {
		if len(jobs) == 0 {
			return nil, err
		}
		logger.GetLogger().WithField("error", err).Error("Error while sweeping due scrape jobs")
		return jobs, nil
	}
	for _, job := range swept {
		if !claimed[job.ID] {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (q *ScrapeQueue) Claim(ctx context.Context, id int64, now time.Time) (*model.ScrapeJob, error) {
	return q.store.Claim(ctx, id, now)
}

func (q *ScrapeQueue) ScheduleRetry(ctx context.Context, id int64, attempts int, runAt time.Time, errMsg string) error {
	if err := q.store.ScheduleRetry(ctx, id, attempts, runAt, errMsg); err != nil {
		return err
	}
	q.wake(ctx, id, 0, runAt)
	return nil
}

func (q *ScrapeQueue) MarkSucceeded(ctx context.Context, id int64, attempts int) error {
	return q.store.MarkSucceeded(ctx, id, attempts)
}

func (q *ScrapeQueue) MarkFailed(ctx context.Context, id int64, attempts int, errMsg string) error {
	return q.store.MarkFailed(ctx, id, attempts, errMsg)
}

// wake sends the wake-up message. A failed send only delays the job until the next table sweep.
func (q *ScrapeQueue) wake(ctx context.Context, jobID, contentID int64, runAt time.Time) {
	if err := q.send(ctx, jobID, contentID, runAt); err != nil {
		logger.GetLogger().WithField("job_id", jobID).Warn("Scrape job left for the table sweep")
	}
}

func (q *ScrapeQueue) send(ctx context.Context, jobID, contentID int64, runAt time.Time) error {
	body, err := json.Marshal(jobMessage{JobID: jobID, ContentID: contentID})
	if err != nil {
		return err
	}
	messageID := strconv.FormatInt(jobID, 10) + "-" + strconv.FormatInt(runAt.UnixNano(), 10)
	contentType := "application/json"
	msg := &azservicebus.Message{Body: body, MessageID: &messageID, ContentType: &contentType}

	if runAt.After(time.Now()) {
		_, err = q.sender.ScheduleMessages(ctx, []*azservicebus.Message{msg}, runAt, nil)
	} else {
		err = q.sender.SendMessage(ctx, msg, nil)
	}
	if err != nil {
		logger.GetLogger().WithField("job_id", jobID).WithField("error", err).Error("Error while sending message.")
		return apperror.Wrap(apperror.Persistence, "scrape_queue.send", err)
	}
	return nil
}
