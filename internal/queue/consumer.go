package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// StartAllocationConsumer connects to RabbitMQ, declares the seat.allocated
// queue (durable), and starts consuming messages. Each event is appended to
// logs/allocation.log in a single-line format consumed by the operations
// team. The function runs a reconnect loop with exponential backoff and does
// not return under normal operation; processing errors are logged and the
// offending message is rejected without requeue so the consumer keeps making
// progress.
func StartAllocationConsumer(log *logrus.Logger) {
    url := brokerURL()

    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.WithError(err).WithField("retry_in", backoff.String()).Warn("allocation-consumer: dial failed")
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeAllocations(conn, log); err != nil {
            log.WithError(err).Warn("allocation-consumer: consume loop ended, reconnecting")
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeAllocations(conn *amqp.Connection, log *logrus.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.WithError(err).Warn("allocation-consumer: set QoS failed")
    }

    if _, err := ch.QueueDeclare(seatAllocatedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(seatAllocatedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := recordAllocation(d.Body); err != nil {
            log.WithError(err).Warn("allocation-consumer: handle message failed")
            _ = d.Nack(false, false) // reject without requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func recordAllocation(body []byte) error {
    var ev SeatAllocatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "allocation.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    line := fmt.Sprintf("[%s] Seats allocated | reservation_id=%d | trip_id=%d | user_id=%d | seats=%d | queue_position=%d | route=\"%s -> %s\" | departs_at=%s | price=%d cents | remaining=%d | full=%t\n",
        ev.AllocatedAt, ev.ReservationID, ev.TripID, ev.UserID, ev.SeatsRequested, ev.QueuePosition,
        ev.Origin, ev.Destination, ev.DepartsAt, ev.PriceCents, ev.SeatsRemaining, ev.TripFull)

    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
