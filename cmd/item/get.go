package libhandler

import (
	"context"

	"github.com/alexflint/go-arg"
	"github.com/nathants/libhandler/lib"
)

func init() {
	lib.Commands["item-get"] = itemGet
	lib.Args["item-get"] = itemGetArgs{}
}

type itemGetArgs struct {
	ID     string `arg:"positional,required"`
	Config string `arg:"-c,--config" help:"yaml config, defaults to the environment"`
}

func (itemGetArgs) Description() string {
	return "\nget an item by id from TABLE_NAME\n"
}

func itemGet() {
	var args itemGetArgs
	arg.MustParse(&args)
	ctx := context.Background()
	store := itemStore(args.Config)
	item, err := store.GetItem(ctx, args.ID)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	if item == nil {
		lib.Logger.Fatal("error: no such item: ", args.ID)
	}
	err = lib.PrintJSON(item)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
}
