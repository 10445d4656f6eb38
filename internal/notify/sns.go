// Package notify publishes operational alerts.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"mycity/internal/finder"
)

type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSReporter publishes a message to an SNS topic when a closest-feature
// lookup finds nothing. Publish errors are logged, never returned.
type SNSReporter struct {
	sns      Publisher
	topicArn string
	log      *zap.Logger
}

func NewSNSReporter(p Publisher, topicArn string, log *zap.Logger) *SNSReporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &SNSReporter{sns: p, topicArn: topicArn, log: log}
}

func (r *SNSReporter) ReportFailure(ctx context.Context, f finder.Failure) {
	subject := fmt.Sprintf("mycity: no closest %s", f.FeatureType)
	message := fmt.Sprintf("No closest %s found: %v", f.FeatureType, f.Reason)

	_, err := r.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(r.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		r.log.Warn("failure alert not published",
			zap.String("topic_arn", r.topicArn),
			zap.String("feature_type", f.FeatureType),
			zap.Error(err))
	}
}
