package libhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexflint/go-arg"
	"github.com/nathants/libhandler/lib"
)

func init() {
	lib.Commands["events-put"] = eventsPut
	lib.Args["events-put"] = eventsPutArgs{}
}

type eventsPutArgs struct {
	Detail     string `arg:"positional" help:"json detail, defaults to DETAIL"`
	DetailType string `arg:"-t,--detail-type" help:"defaults to DETAIL_TYPE"`
	Config     string `arg:"-c,--config" help:"yaml config, defaults to the environment"`
}

func (eventsPutArgs) Description() string {
	return `

publish one event to EVENT_BUS_NAME, or the default bus

>> libhandler events-put '{"status": "ok"}' -t service_status

`
}

func eventsPut() {
	var args eventsPutArgs
	arg.MustParse(&args)
	ctx := context.Background()
	cfg, err := lib.CLIConfig(args.Config)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	err = cfg.Require("EventSource")
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	detail := cfg.Detail
	if args.Detail != "" {
		detail = args.Detail
	}
	detailType := cfg.DetailType
	if args.DetailType != "" {
		detailType = args.DetailType
	}
	if !json.Valid([]byte(detail)) {
		lib.Logger.Fatal("error: detail must be valid json: ", detail)
	}
	pub := lib.NewEventBridgePublisher(lib.EventsClientFor(cfg), cfg.EventBusName)
	id, err := pub.Publish(ctx, lib.BusEvent{
		Source:     cfg.EventSource,
		DetailType: detailType,
		Detail:     json.RawMessage(detail),
	})
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	fmt.Println(id)
}
