package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sponsorcut/internal/logging"
	"sponsorcut/internal/notifications"
	"sponsorcut/internal/pipeline"
)

// ItemRunner processes a single request.
type ItemRunner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

// Item is the result of one batch entry.
type Item struct {
	Index   int
	Locator string
	Outcome pipeline.Outcome
	Err     error
}

// Succeeded reports whether the entry produced an output.
func (i Item) Succeeded() bool {
	return i.Err == nil
}

// Result summarizes a batch run.
type Result struct {
	Succeeded int
	Failed    int
	Items     []Item
	Elapsed   time.Duration
}

// OK reports whether every item succeeded.
func (r Result) OK() bool {
	return r.Failed == 0
}

// Failures returns the failed items in input order.
func (r Result) Failures() []Item {
	var out []Item
	for _, item := range r.Items {
		if !item.Succeeded() {
			out = append(out, item)
		}
	}
	return out
}

// Runner drives items through an ItemRunner sequentially.
type Runner struct {
	items    ItemRunner
	notifier notifications.Service
	logger   *slog.Logger

	// OnItemStart, when set, is called before each item with its 1-based
	// position and the batch size.
	OnItemStart func(index, total int, locator string)
	// OnItemDone, when set, is called after each item that was started.
	OnItemDone func(item Item)
}

// NewRunner constructs a batch runner. A nil notifier disables notifications.
func NewRunner(items ItemRunner, notifier notifications.Service, logger *slog.Logger) *Runner {
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	return &Runner{
		items:    items,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "batch"),
	}
}

// Run processes urls in order with template applied to each. Item failures
// are recorded and the batch continues. On cancellation the remaining items
// are recorded as failed with context.Canceled.
func (r *Runner) Run(ctx context.Context, urls []string, template pipeline.Request) Result {
	started := time.Now()
	urls = Dedupe(urls)
	result := Result{Items: make([]Item, 0, len(urls))}

	r.logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("items", len(urls)),
	)
	r.notify(ctx, "batch start", func(ctx context.Context) error {
		return r.notifier.NotifyBatchStarted(ctx, len(urls))
	})

	for i, url := range urls {
		item := Item{Index: i, Locator: url}
		if err := ctx.Err(); err != nil {
			item.Err = fmt.Errorf("not started: %w", context.Canceled)
			result.add(item)
			continue
		}
		if r.OnItemStart != nil {
			r.OnItemStart(i+1, len(urls), url)
		}

		req := template
		req.Locator = url
		item.Outcome, item.Err = r.items.Run(ctx, req)
		result.add(item)
		if r.OnItemDone != nil {
			r.OnItemDone(item)
		}

		if item.Err != nil {
			r.notify(ctx, "item failure", func(ctx context.Context) error {
				return r.notifier.NotifyError(ctx, item.Err, itemLabel(item))
			})
			continue
		}
		r.notify(ctx, "item complete", func(ctx context.Context) error {
			return r.notifier.NotifyItemCompleted(ctx, item.Outcome.Title, item.Outcome.OutputPath,
				time.Duration(item.Outcome.Removed()*float64(time.Second)))
		})
	}

	result.Elapsed = time.Since(started)
	r.logger.Info("batch complete",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed),
		logging.Duration("elapsed", result.Elapsed),
	)
	r.notify(ctx, "batch complete", func(ctx context.Context) error {
		return r.notifier.NotifyBatchCompleted(ctx, result.Succeeded, result.Failed, result.Elapsed)
	})
	return result
}

func (r *Result) add(item Item) {
	if item.Succeeded() {
		r.Succeeded++
	} else {
		r.Failed++
	}
	r.Items = append(r.Items, item)
}

func itemLabel(item Item) string {
	if item.Outcome.VideoID != "" {
		return item.Outcome.VideoID
	}
	return fmt.Sprintf("item %d", item.Index+1)
}

// notify sends a notification without letting its failure affect the batch.
// A canceled batch still gets its summary, so sends use a detached context.
func (r *Runner) notify(ctx context.Context, label string, send func(context.Context) error) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if err := send(sendCtx); err != nil {
		if errors.Is(err, context.Canceled) {
			r.logger.Debug("notification canceled", logging.String("notification", label))
			return
		}
		r.logger.Debug("notification failed", logging.String("notification", label), logging.Error(err))
	}
}
