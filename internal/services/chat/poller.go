package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

const pollBatchLimit = 100

// Poller turns the message table into a push feed. Watch polls the
// conversation on a fixed interval and emits batches of new messages until
// the context is cancelled.
type Poller struct {
	messages MessageStore
	interval time.Duration
	logger   *zap.Logger
}

func NewPoller(messages MessageStore, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Poller{
		messages: messages,
		interval: interval,
		logger:   logger,
	}
}

// Watch streams messages in the two-user conversation with ids above
// afterID. The returned channel closes when ctx is done. Store errors are
// logged and the poll retried on the next tick.
func (p *Poller) Watch(ctx context.Context, userID, partnerID uuid.UUID, afterID int64) <-chan []pgrepo.MessageRecord {
	out := make(chan []pgrepo.MessageRecord)

	go func() {
		defer close(out)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		watermark := afterID
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			batch, err := p.messages.ListSince(ctx, userID, partnerID, watermark, pollBatchLimit)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				p.logger.Warn("chat poll failed",
					zap.String("user_id", userID.String()),
					zap.String("partner_id", partnerID.String()),
					zap.Error(err),
				)
				continue
			}
			if len(batch) == 0 {
				continue
			}

			watermark = batch[len(batch)-1].ID

			select {
			case <-ctx.Done():
				return
			case out <- batch:
			}
		}
	}()

	return out
}
