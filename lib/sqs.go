package lib

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

var sqsClient *sqs.Client
var sqsClientLock sync.Mutex

func SQSClient() *sqs.Client {
	sqsClientLock.Lock()
	defer sqsClientLock.Unlock()
	if sqsClient == nil {
		sqsClient = sqs.NewFromConfig(*Session())
	}
	return sqsClient
}

func SQSClientFor(cfg *Config) *sqs.Client {
	if cfg == nil || cfg.Endpoint == "" {
		return SQSClient()
	}
	return sqs.NewFromConfig(*SessionFor(cfg), func(o *sqs.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
	})
}

func SQSQueueUrl(ctx context.Context, client *sqs.Client, name string) (string, error) {
	out, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(name),
	})
	if err != nil {
		Logger.Println("error:", err)
		return "", err
	}
	return aws.ToString(out.QueueUrl), nil
}

// SQSSend sends one message per body and returns the message ids in order.
func SQSSend(ctx context.Context, client *sqs.Client, queueUrl string, bodies []string) ([]string, error) {
	var ids []string
	for _, body := range bodies {
		out, err := client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(queueUrl),
			MessageBody: aws.String(body),
		})
		if err != nil {
			Logger.Println("error:", err)
			return ids, err
		}
		ids = append(ids, aws.ToString(out.MessageId))
	}
	return ids, nil
}
