package libhandler

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/nathants/libhandler/lib"
)

func init() {
	lib.Commands["invoke"] = invoke
	lib.Args["invoke"] = invokeArgs{}
}

type invokeArgs struct {
	Handler string `arg:"positional,required" help:"items, status, log or replicate"`
	Kind    string `arg:"positional,required" help:"http, http2, queue, bus or stream"`
	Event   string `arg:"positional" default:"-" help:"event json file, - for stdin"`
	Config  string `arg:"-c,--config" help:"yaml config, defaults to the environment"`
	Verbose bool   `arg:"-v,--verbose" help:"log the decoded event"`
}

func (invokeArgs) Description() string {
	return fmt.Sprintf(`

run a handler locally against a json event, against real collaborators

handlers: %s

>> libhandler invoke items http event.json

`, strings.Join(lib.HandlerNames(), ", "))
}

func invoke() {
	var args invokeArgs
	arg.MustParse(&args)
	ctx := context.Background()
	if !lib.Contains(lib.HandlerNames(), args.Handler) {
		lib.Logger.Fatalf("error: unknown handler: %s, expected one of: %s\n", args.Handler, strings.Join(lib.HandlerNames(), ", "))
	}
	cfg, err := lib.CLIConfig(args.Config)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	var data []byte
	if args.Event == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args.Event)
	}
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	event, err := lib.DecodeEvent(args.Kind, data)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	if args.Verbose {
		lib.Logger.Println("event:", lib.Pformat(event))
	}
	handlers, err := lib.HandlersFor(args.Handler, cfg, lib.NewCollaborators(args.Handler, cfg))
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	resp, err := handlers.Invoke(ctx, event)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	err = lib.PrintJSON(lib.LambdaResponse(resp))
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
}
