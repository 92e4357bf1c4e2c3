package events

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// InlinePublisher доставляет события обработчикам в фоновой горутине того же процесса
type InlinePublisher struct {
	handlers []Handler
	logger   *logrus.Logger

	queue chan Event
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewInlinePublisher(logger *logrus.Logger, buffer int, handlers ...Handler) *InlinePublisher {
	if buffer <= 0 {
		buffer = 64
	}
	p := &InlinePublisher{
		handlers: handlers,
		logger:   logger,
		queue:    make(chan Event, buffer),
	}

	p.wg.Add(1)
	go p.run()

	return p
}

func (p *InlinePublisher) run() {
	defer p.wg.Done()
	for evt := range p.queue {
		p.dispatch(evt)
	}
}

func (p *InlinePublisher) dispatch(evt Event) {
	ctx := context.Background()
	for _, h := range p.handlers {
		if err := h.Handle(ctx, evt); err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"event_id": evt.ID.String(),
				"type":     evt.Type,
			}).Error("Event handler failed")
		}
	}
}

// Publish ставит событие в очередь, не дожидаясь обработки
func (p *InlinePublisher) Publish(ctx context.Context, evt Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.WithField("type", evt.Type).Warn("Publisher closed, event dropped")
		return ErrQueueFull
	}

	select {
	case p.queue <- evt:
		return nil
	default:
		p.logger.WithFields(logrus.Fields{
			"event_id": evt.ID.String(),
			"type":     evt.Type,
		}).Warn("Event queue is full, event dropped")
		return ErrQueueFull
	}
}

// Close дожидается обработки поставленных в очередь событий
func (p *InlinePublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}
