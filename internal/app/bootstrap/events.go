package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/ironbridge-it/website-api/internal/config"
	"github.com/ironbridge-it/website-api/internal/events"
	"github.com/ironbridge-it/website-api/pkg/logging"
)

// LeadEventsEnabled reports whether stored leads should be published.
func LeadEventsEnabled(cfg *appconfig.Config) bool {
	return cfg != nil && strings.TrimSpace(cfg.LeadEventsQueueURL) != ""
}

// BuildLeadPublisher returns the SQS publisher for lead.created.v1, or nil
// when no queue is configured.
func BuildLeadPublisher(awsCfg aws.Config, cfg *appconfig.Config, logger *logging.Logger) *events.SQSPublisher {
	if !LeadEventsEnabled(cfg) {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	client := sqs.NewFromConfig(awsCfg)
	logger.Info("lead events enabled", "queue_url", cfg.LeadEventsQueueURL)
	return events.NewSQSPublisher(client, strings.TrimSpace(cfg.LeadEventsQueueURL), logger)
}
