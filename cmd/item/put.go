package libhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexflint/go-arg"
	"github.com/nathants/libhandler/lib"
	"github.com/r3labs/diff/v2"
)

func init() {
	lib.Commands["item-put"] = itemPut
	lib.Args["item-put"] = itemPutArgs{}
}

type itemPutArgs struct {
	Item    string `arg:"positional,required" help:"json object including the key attribute"`
	Config  string `arg:"-c,--config" help:"yaml config, defaults to the environment"`
	Preview bool   `arg:"-p,--preview" help:"show changes against the stored item without writing"`
}

func (itemPutArgs) Description() string {
	return `

put an item into TABLE_NAME

>> libhandler item-put '{"itemId": "abc123", "name": "widget"}' --preview

`
}

func itemPut() {
	var args itemPutArgs
	arg.MustParse(&args)
	ctx := context.Background()
	cfg := itemConfig(args.Config)
	store := lib.NewDynamoDBStore(lib.DynamoDBClientFor(cfg), cfg.TableName, cfg.PrimaryKey)
	item := make(map[string]any)
	err := json.Unmarshal([]byte(args.Item), &item)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	id, ok := item[cfg.PrimaryKey].(string)
	if !ok || id == "" {
		lib.Logger.Fatal("error: item missing key attribute: ", cfg.PrimaryKey)
	}
	if args.Preview {
		existing, err := store.GetItem(ctx, id)
		if err != nil {
			lib.Logger.Fatal("error: ", err)
		}
		if existing == nil {
			existing = map[string]any{}
		}
		changes, err := diff.Diff(existing, item)
		if err != nil {
			lib.Logger.Fatal("error: ", err)
		}
		for _, change := range changes {
			fmt.Printf("%s %v: %v -> %v\n", change.Type, change.Path, change.From, change.To)
		}
		return
	}
	err = store.PutItem(ctx, item)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
}
