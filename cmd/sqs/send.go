package libhandler

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/nathants/libhandler/lib"
)

func init() {
	lib.Commands["sqs-send"] = sqsSend
	lib.Args["sqs-send"] = sqsSendArgs{}
}

type sqsSendArgs struct {
	Name     string   `arg:"positional,required"`
	Messages []string `arg:"positional" help:"message bodies, read one per line from stdin when omitted"`
	Config   string   `arg:"-c,--config" help:"yaml config, defaults to the environment"`
}

func (sqsSendArgs) Description() string {
	return `

send messages to a sqs queue, for example items for the queue-writer handler

>> libhandler sqs-send items-queue '{"itemId": "abc123"}'

`
}

func sqsSend() {
	var args sqsSendArgs
	arg.MustParse(&args)
	ctx := context.Background()
	cfg, err := lib.CLIConfig(args.Config)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	messages := args.Messages
	if len(messages) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				messages = append(messages, line)
			}
		}
		if err := scanner.Err(); err != nil {
			lib.Logger.Fatal("error: ", err)
		}
	}
	client := lib.SQSClientFor(cfg)
	url, err := lib.SQSQueueUrl(ctx, client, args.Name)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	ids, err := lib.SQSSend(ctx, client, url, messages)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	for _, id := range ids {
		fmt.Println(id)
	}
}
