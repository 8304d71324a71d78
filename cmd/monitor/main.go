// Command monitor tails the NATS event mirror from a terminal: every
// completed exchange and availability toggle published by the server is
// printed as it happens. Requires NATS_URL to point at the same broker the
// server publishes to.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"voice-agent-be/pkg/events"
	pktNats "voice-agent-be/pkg/nats"

	"github.com/fatih/color"
)

func main() {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://localhost:4222"
	}

	sub, err := pktNats.NewSubscriber(url)
	if err != nil {
		log.Fatalf("Failed to connect to NATS at %s: %v", url, err)
	}
	defer sub.Close()

	header := color.New(color.FgCyan, color.Bold)
	header.Printf("Listening for voice agent events on %s\n", url)

	err = sub.Subscribe("events.>", "voice-agent-monitor", func(_ context.Context, event events.Event) error {
		printEvent(event)
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	fmt.Println("\nBye")
}

func printEvent(event events.Event) {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		payload = []byte("{}")
	}

	label := color.New(color.FgGreen)
	if event.EventType() == events.TypeAvailabilityChanged {
		label = color.New(color.FgYellow)
	}
	label.Printf("[%s] %s ", event.Timestamp().Format("15:04:05"), event.EventType())
	fmt.Println(string(payload))
}
