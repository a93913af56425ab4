package libhandler

import (
	"context"

	"github.com/alexflint/go-arg"
	"github.com/nathants/libhandler/lib"
)

func init() {
	lib.Commands["item-rm"] = itemRm
	lib.Args["item-rm"] = itemRmArgs{}
}

type itemRmArgs struct {
	IDs    []string `arg:"positional,required"`
	Config string   `arg:"-c,--config" help:"yaml config, defaults to the environment"`
}

func (itemRmArgs) Description() string {
	return "\ndelete items by id, missing items are not an error\n"
}

func itemRm() {
	var args itemRmArgs
	arg.MustParse(&args)
	ctx := context.Background()
	store := itemStore(args.Config)
	for _, id := range args.IDs {
		err := store.DeleteItem(ctx, id)
		if err != nil {
			lib.Logger.Fatal("error: ", err)
		}
	}
}
