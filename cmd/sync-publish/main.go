// Command sync-publish sends one change event to the sync exchange, for
// replaying a single document by hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/sitesync/broker"
	"github.com/mmdatafocus/sitesync/config"
	"github.com/mmdatafocus/sitesync/reportsync"
)

func main() {
	entity := flag.String("entity", "", "Entity type, e.g. daily_report or employee_work.")
	id := flag.String("id", "", "Natural id (ObjectID hex) of the document.")
	action := flag.String("action", string(reportsync.ActionUpdated), "created, updated or deleted.")
	flag.Parse()

	if err := run(strings.TrimSpace(*entity), strings.TrimSpace(*id), strings.TrimSpace(*action)); err != nil {
		fmt.Fprintf(os.Stderr, "sync-publish: %v\n", err)
		os.Exit(1)
	}
}

func run(entity, id, rawAction string) error {
	if entity == "" || id == "" {
		return fmt.Errorf("-entity and -id are required")
	}
	action, err := reportsync.ParseAction(rawAction)
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	logger := config.GetLogger(settings.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := config.DialRabbit(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	messageId, err := broker.NewPublisher(ch, settings.SyncExchange, logger).Publish(ctx, entity, id, action)
	if err != nil {
		return err
	}
	fmt.Printf("published %s (message id %s)\n", broker.RoutingKey(entity, action), messageId)
	return nil
}
