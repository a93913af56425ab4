package lib

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

var sess *aws.Config
var sessLock sync.Mutex

func Session() *aws.Config {
	sessLock.Lock()
	defer sessLock.Unlock()
	if sess == nil {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			panic(err)
		}
		sess = &cfg
	}
	return sess
}

func SessionExplicit(accessKeyID, accessKeySecret, region string) *aws.Config {
	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
	)
	if err != nil {
		panic(err)
	}
	return &cfg
}

// SessionFor returns the shared session, or a session with static
// credentials when cfg points at a local endpoint like dynamodb-local.
func SessionFor(cfg *Config) *aws.Config {
	if cfg == nil || cfg.Endpoint == "" {
		return Session()
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return SessionExplicit("local", "local", region)
}
