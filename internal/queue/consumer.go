package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartAuctionConsumer connects to RabbitMQ, declares the bid.placed and
// auction.closed queues (durable), and starts consuming both. Each message
// is appended to logs/auction.log in a single-line, human-friendly format.
// The function runs a reconnect loop with exponential backoff and keeps
// running across broker restarts; processing errors are logged and the
// offending message is rejected so the server continues operating.
func StartAuctionConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("auction-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("auction-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("auction-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{bidQueueName, closedQueueName} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	bids, err := ch.Consume(bidQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", bidQueueName, err)
	}
	closes, err := ch.Consume(closedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", closedQueueName, err)
	}

	for {
		var d amqp.Delivery
		var ok bool
		var handle func([]byte) error
		select {
		case d, ok = <-bids:
			handle = handleBidPlaced
		case d, ok = <-closes:
			handle = handleAuctionClosed
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := handle(d.Body); err != nil {
			log.Printf("auction-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func handleBidPlaced(body []byte) error {
	var ev BidPlacedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Bid placed | bid_id=%d | auction_id=%d | title=%q | bidder_id=%d | seller_id=%d | amount=%d\n",
		ev.PlacedAt, ev.BidID, ev.AuctionID, ev.AuctionTitle, ev.BidderID, ev.SellerID, ev.Amount)
	return appendAuctionLog(line)
}

func handleAuctionClosed(body []byte) error {
	var ev AuctionClosedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	winner := "none"
	if ev.WinnerID != nil {
		winner = fmt.Sprintf("%d", *ev.WinnerID)
	}
	amount := "-"
	if ev.WinningAmount != nil {
		amount = fmt.Sprintf("%d", *ev.WinningAmount)
	}
	line := fmt.Sprintf("[%s] Auction closed | auction_id=%d | title=%q | seller_id=%d | winner=%s | amount=%s | reason=%s\n",
		ev.ClosedAt, ev.AuctionID, ev.AuctionTitle, ev.SellerID, winner, amount, ev.Reason)
	return appendAuctionLog(line)
}

func appendAuctionLog(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "auction.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
