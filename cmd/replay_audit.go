package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/psds-microservice/license-tracker/internal/config"
	"github.com/psds-microservice/license-tracker/internal/database"
	"github.com/psds-microservice/license-tracker/internal/kafka"
	"github.com/psds-microservice/license-tracker/internal/model"
)

var replayAuditCmd = &cobra.Command{
	Use:   "replay-audit",
	Short: "Re-emit audit events for all tickets over Kafka (for consumers that missed them)",
	RunE:  runReplayAudit,
}

func init() {
	rootCmd.AddCommand(replayAuditCmd)
}

func runReplayAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopicAudit == "" {
		return fmt.Errorf("replay-audit: KAFKA_BROKERS and KAFKA_TOPIC_AUDIT must be set")
	}

	db, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	var tickets []model.Ticket
	if err := db.Order("timestamp").Find(&tickets).Error; err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}
	log.Info().Int("count", len(tickets)).Msg("replay-audit: tickets found")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicAudit)
	defer producer.Close()
	for i := range tickets {
		t := &tickets[i]
		producer.ProduceAuditEvent(ctx, "ticket.replayed", map[string]interface{}{
			"ticket_id":          t.TicketID,
			"action_description": t.ActionDescription,
			"status":             t.Status,
			"timestamp":          t.Timestamp.Format(time.RFC3339),
		})
		if (i+1)%50 == 0 || i == len(tickets)-1 {
			log.Info().Msgf("replay-audit: sent %d/%d events", i+1, len(tickets))
		}
	}
	log.Info().Int("count", len(tickets)).Msg("replay-audit: done")
	return nil
}
