package poller

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"homework-bot/internal/homework"
	"homework-bot/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPeriod = 600 * time.Second

	startupMessage = "Бот включился"
	failureMessage = "Сбой в работе программы: %v"
)

// StatusFetcher queries homework statuses changed since a unix timestamp.
type StatusFetcher interface {
	GetStatuses(ctx context.Context, from int64) (any, error)
}

// Notifier delivers a message and reports whether it went out.
type Notifier interface {
	Notify(ctx context.Context, text string) bool
}

// Journal keeps a record of every notification attempt.
type Journal interface {
	Record(ctx context.Context, n models.Notification) error
}

// Poller runs the poll cycle. It owns the cursor and the last notified error,
// and is not safe for concurrent use.
type Poller struct {
	api      StatusFetcher
	notifier Notifier
	journal  Journal
	logger   *zap.Logger
	period   time.Duration
	chatID   int64

	cursor    int64
	lastError string
}

type Option func(*Poller)

func WithPeriod(d time.Duration) Option {
	return func(p *Poller) { p.period = d }
}

// WithCursor overrides the initial cursor, which defaults to the current time.
func WithCursor(from int64) Option {
	return func(p *Poller) { p.cursor = from }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithJournal enables journaling. chatID is stored with each entry.
func WithJournal(j Journal, chatID int64) Option {
	return func(p *Poller) {
		p.journal = j
		p.chatID = chatID
	}
}

func New(api StatusFetcher, notifier Notifier, opts ...Option) *Poller {
	p := &Poller{
		api:      api,
		notifier: notifier,
		logger:   zap.NewNop(),
		period:   DefaultPeriod,
		cursor:   time.Now().Unix(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Cursor returns the timestamp the next cycle will query from.
func (p *Poller) Cursor() int64 {
	return p.cursor
}

// Run announces startup and then polls until ctx is cancelled, waiting the
// configured period after every cycle.
func (p *Poller) Run(ctx context.Context) error {
	p.send(ctx, models.Notification{Kind: models.KindStartup, Text: startupMessage})

	for {
		_ = p.Cycle(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("polling stopped")
			return nil
		case <-time.After(p.period):
		}
	}
}

// Cycle performs one poll. Failures are logged and, unless the same text was
// the last one notified, sent to the chat. The error is returned for callers
// that want it; Run ignores it.
func (p *Poller) Cycle(ctx context.Context) error {
	cycleID := uuid.NewString()

	err := p.poll(ctx, cycleID)
	if err == nil {
		return nil
	}

	message := fmt.Sprintf(failureMessage, err)
	p.logger.Error(message, zap.String("cycle", cycleID))

	if ctx.Err() != nil {
		return err
	}

	if message != p.lastError {
		p.send(ctx, models.Notification{Kind: models.KindError, Text: message, CycleID: cycleID})
		p.lastError = message
	}

	return err
}

func (p *Poller) poll(ctx context.Context, cycleID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("cycle panic",
				zap.String("cycle", cycleID),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	p.logger.Debug("polling homework statuses", zap.String("cycle", cycleID), zap.Int64("from_date", p.cursor))

	resp, err := p.api.GetStatuses(ctx, p.cursor)
	if err != nil {
		return err
	}

	date, err := homework.CurrentDate(resp)
	if err != nil {
		return err
	}
	p.cursor = date

	homeworks, err := homework.ExtractHomeworks(resp)
	if err != nil {
		return err
	}

	if len(homeworks) == 0 {
		p.logger.Debug("no status updates", zap.String("cycle", cycleID))
		return nil
	}

	// the API lists the most recently updated homework first
	st, err := homework.Parse(homeworks[0])
	if err != nil {
		p.logger.Error("unexpected homework record", zap.String("cycle", cycleID), zap.Error(err))
		return err
	}

	p.send(ctx, models.Notification{
		Kind:         models.KindStatus,
		Text:         st.Message,
		HomeworkName: st.Name,
		LessonName:   st.Lesson,
		Verdict:      string(st.Verdict),
		Comment:      st.Comment,
		CycleID:      cycleID,
	})

	return nil
}

func (p *Poller) send(ctx context.Context, n models.Notification) {
	n.Delivered = p.notifier.Notify(ctx, n.Text)

	if p.journal == nil {
		return
	}

	n.ChatID = p.chatID
	n.Cursor = p.cursor
	n.CreatedAt = time.Now().UTC()
	if err := p.journal.Record(ctx, n); err != nil {
		p.logger.Error("failed to journal notification", zap.String("kind", string(n.Kind)), zap.Error(err))
	}
}
