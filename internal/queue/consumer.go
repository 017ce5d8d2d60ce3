package queue

// consumer.go holds the background consumer that listens to the
// booking.events queue, appends a line per event to <dir>/booking.log and,
// when an audit sink is configured, records the event in MySQL.

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/bus-ticket-booking/internal/repository"
)

// AuditSink stores consumed booking events.  *repository.AuditRepo
// satisfies it.
type AuditSink interface {
    Insert(ctx context.Context, rec repository.AuditRecord) (uint64, error)
}

// Consumer reads BookingEvent messages from RabbitMQ.
type Consumer struct {
    URL    string      // broker URL
    LogDir string      // directory for booking.log
    Audit  AuditSink   // optional MySQL sink
    Log    *zap.Logger // consumer logger
}

// NewConsumer returns a Consumer writing booking.log under logDir.
// audit may be nil.
func NewConsumer(url, logDir string, audit AuditSink, log *zap.Logger) *Consumer {
    if log == nil {
        log = zap.NewNop()
    }
    if logDir == "" {
        logDir = "logs"
    }
    return &Consumer{URL: url, LogDir: logDir, Audit: audit, Log: log}
}

// Run connects to the broker, declares the booking queue (durable) and
// consumes until ctx is cancelled.  Lost connections are retried with an
// exponential backoff capped at 30s.  Messages that cannot be handled are
// rejected without requeue so one bad payload cannot stall the queue.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.Warn("booking-consumer: failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.Warn("booking-consumer: consume loop ended; reconnecting", zap.Error(err))
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warn("booking-consumer: set QoS failed", zap.Error(err))
    }

    if _, err := ch.QueueDeclare(BookingQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.ConsumeWithContext(ctx, BookingQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := c.HandleMessage(ctx, d.Body); err != nil {
            c.Log.Error("booking-consumer: handle message failed", zap.Error(err))
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// HandleMessage decodes one event, appends it to booking.log and passes it
// to the audit sink.
func (c *Consumer) HandleMessage(ctx context.Context, body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.BookingID == "" {
        return errors.New("event without type or booking id")
    }
    if err := c.appendLog(ev); err != nil {
        return err
    }
    if c.Audit != nil {
        occurred, err := time.Parse(time.RFC3339, ev.OccurredAt)
        if err != nil {
            occurred = time.Now().UTC()
        }
        if _, err := c.Audit.Insert(ctx, repository.AuditRecord{
            EventType:     ev.Type,
            BookingID:     ev.BookingID,
            PassengerName: ev.Name,
            RouteID:       ev.BusID,
            Seats:         ev.Seats,
            TotalFare:     ev.TotalFare,
            OccurredAt:    occurred,
        }); err != nil {
            return fmt.Errorf("audit insert: %w", err)
        }
    }
    return nil
}

func (c *Consumer) appendLog(ev BookingEvent) error {
    // Ensure logs directory exists
    if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join(c.LogDir, "booking.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLogLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLogLine renders an event as a single human-friendly line.
func FormatLogLine(ev BookingEvent) string {
    return fmt.Sprintf("[%s] %s | booking_id=%s | name=%q | bus_id=%d | route=%q | time=%q | seats=%d | total_fare=%d\n",
        ev.OccurredAt, ev.Type, ev.BookingID, ev.Name, ev.BusID, ev.Route, ev.Time, ev.Seats, ev.TotalFare)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
