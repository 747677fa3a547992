// Seeds a Redis instance with an event and optional pre-registered
// tickets for local testing of the check-in flow.
//
// Usage:
//
//	go run scripts/seed-event.go -event summer-conf -title "Summer Conf" -tickets 200 -registrations 10
//
// Each seeded registration prints its encoded verification token so it
// can be pasted straight into a check-in request or rendered as a QR
// code.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/ticket"
)

var (
	redisAddr = flag.String("redis", "localhost:6379", "Redis address (host:port)")
	redisPass = flag.String("password", "", "Redis password")
	eventID   = flag.String("event", "", "Event ID (required)")
	title     = flag.String("title", "Seeded Event", "Event title")
	date      = flag.String("date", time.Now().AddDate(0, 0, 7).Format("January 2, 2006"), "Event date")
	tickets   = flag.Int("tickets", 100, "Available tickets")
	slots     = flag.String("slots", "", "Comma-separated time slots (optional)")
	regs      = flag.Int("registrations", 0, "Pre-registered tickets to create")
)

func main() {
	flag.Parse()

	if *eventID == "" {
		fmt.Fprintln(os.Stderr, "Error: -event is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	cli := redis.NewClient(&redis.Options{
		Addr:     *redisAddr,
		Password: *redisPass,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach Redis at %s: %v\n", *redisAddr, err)
		os.Exit(1)
	}
	defer cli.Close()

	var timeSlots []string
	if *slots != "" {
		for _, s := range strings.Split(*slots, ",") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				timeSlots = append(timeSlots, trimmed)
			}
		}
	}

	now := time.Now()
	ev := models.Event{
		ID:               *eventID,
		Title:            *title,
		Date:             *date,
		Time:             "10:00 AM",
		TimeSlots:        timeSlots,
		AvailableTickets: *tickets,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := setJSON(ctx, cli, fmt.Sprintf("checkin:event:%s", ev.ID), ev); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to seed event: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded event %q (%d tickets available)\n", ev.ID, ev.AvailableTickets)

	issuer := ticket.NewIssuer("TKT")
	for i := 0; i < *regs; i++ {
		email := fmt.Sprintf("attendee%d@example.com", i+1)

		issued, err := issuer.Issue(ev.ID, email)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to issue ticket: %v\n", err)
			os.Exit(1)
		}

		slot := ""
		if len(timeSlots) > 0 {
			slot = timeSlots[i%len(timeSlots)]
		}

		rec := models.TicketRecord{
			ID:        uuid.New().String(),
			TicketID:  issued.TicketID,
			EventID:   ev.ID,
			Name:      fmt.Sprintf("Attendee %d", i+1),
			Email:     email,
			TimeSlot:  slot,
			CreatedAt: now,
			UpdatedAt: now,
		}

		pipe := cli.Pipeline()
		recData, err := json.Marshal(rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to marshal record: %v\n", err)
			os.Exit(1)
		}
		pipe.Set(ctx, fmt.Sprintf("checkin:ticket:%s", rec.ID), recData, 0)
		pipe.Set(ctx, fmt.Sprintf("checkin:ticket_lookup:%s:%s", rec.EventID, rec.TicketID), rec.ID, 0)
		if _, err := pipe.Exec(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to seed registration: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("  %s  %s  token=%s\n", rec.TicketID, rec.Email, issued.Encoded)
	}

	if *regs > 0 {
		fmt.Printf("Seeded %d registrations for event %q\n", *regs, ev.ID)
	}
}

func setJSON(ctx context.Context, cli *redis.Client, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return cli.Set(ctx, key, data, 0).Err()
}
