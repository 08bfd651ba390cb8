package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"centavo/internal/logger"
	"centavo/internal/metrics"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"
	maxTries       = 3
)

// Service queues notifications in Redis and drains them into the
// notifications table from a background worker.
type Service struct {
	redis *redis.Client
	repo  Repository
}

func New(redisAddr string, repo Repository) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		repo: repo,
	}
}

// NewWithClient is used by tests to inject a mock Redis client.
func NewWithClient(client *redis.Client, repo Repository) *Service {
	return &Service{redis: client, repo: repo}
}

func (s *Service) Queue(ctx context.Context, userID int, notifType, title, body string) error {
	job := Job{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue notification for user %d: %v", userID, err)
		metrics.RecordNotification(notifType, "error")
		return err
	}

	metrics.RecordNotification(notifType, "queued")
	logger.Infof("Notification queued: %s for user %d", title, userID)
	return nil
}

// QueueBudgetAlert lets the budget package enqueue alerts without
// depending on queue internals.
func (s *Service) QueueBudgetAlert(ctx context.Context, userID int, title, body string) error {
	return s.Queue(ctx, userID, TypeBudgetAlert, title, body)
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	metrics.NotificationQueueLength.Set(float64(s.QueueLength(ctx)))

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.deliver(ctx, job); err != nil {
		logger.Errorf("Failed to deliver notification to user %d: %v", job.UserID, err)

		if job.Tries < maxTries {
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying notification for user %d (attempt %d)", job.UserID, job.Tries+1)
		} else {
			logger.Errorf("Notification for user %d failed after %d attempts", job.UserID, maxTries)
			s.saveFailed(job, err)
		}
		return
	}

	logger.Debugf("Notification delivered to user %d", job.UserID)
}

func (s *Service) deliver(ctx context.Context, job Job) error {
	_, err := s.repo.Insert(ctx, &Notification{
		UserID: job.UserID,
		Type:   job.Type,
		Title:  job.Title,
		Body:   job.Body,
	})
	return err
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: user %d", job.UserID)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
