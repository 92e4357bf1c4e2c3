package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const (
	QueueEvents = "events"
	taskPrefix  = "events:"
)

// TaskType возвращает тип задачи asynq для события
func TaskType(t Type) string {
	return taskPrefix + string(t)
}

// Enqueuer - часть asynq.Client, нужная для публикации
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// AsynqPublisher ставит события в очередь Redis для обработки воркером
type AsynqPublisher struct {
	client Enqueuer
	logger *logrus.Logger
}

func NewAsynqPublisher(redisAddr string, logger *logrus.Logger) *AsynqPublisher {
	return NewAsynqPublisherWithClient(asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}), logger)
}

func NewAsynqPublisherWithClient(client Enqueuer, logger *logrus.Logger) *AsynqPublisher {
	return &AsynqPublisher{client: client, logger: logger}
}

func (p *AsynqPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	task := asynq.NewTask(TaskType(evt.Type), body, asynq.Queue(QueueEvents), asynq.MaxRetry(5))
	info, err := p.client.EnqueueContext(ctx, task, asynq.TaskID(evt.ID.String()))
	if err != nil {
		p.logger.WithError(err).WithField("type", evt.Type).Error("Failed to enqueue event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"event_id": evt.ID.String(),
		"type":     evt.Type,
		"queue":    info.Queue,
	}).Debug("Event enqueued")
	return nil
}

func (p *AsynqPublisher) Close() error {
	return p.client.Close()
}

// NewAsynqMux направляет все задачи событий в handler
func NewAsynqMux(handler Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(taskPrefix, func(ctx context.Context, task *asynq.Task) error {
		var evt Event
		if err := json.Unmarshal(task.Payload(), &evt); err != nil {
			return fmt.Errorf("malformed event payload: %v: %w", err, asynq.SkipRetry)
		}
		return handler.Handle(ctx, evt)
	})
	return mux
}

// Worker обрабатывает очередь событий до отмены контекста
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(redisAddr string, concurrency int, handler Handler, logger *logrus.Logger) *Worker {
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueEvents: 1},
		Logger:      logger,
	})
	return &Worker{server: srv, mux: NewAsynqMux(handler)}
}

func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}
