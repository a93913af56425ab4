package libhandler

import (
	"context"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"github.com/nathants/libhandler/lib"
)

func init() {
	lib.Commands["item-scan"] = itemScan
	lib.Args["item-scan"] = itemScanArgs{}
}

type itemScanArgs struct {
	Limit  int    `arg:"-l,--limit" default:"0"`
	Config string `arg:"-c,--config" help:"yaml config, defaults to the environment"`
}

func (itemScanArgs) Description() string {
	return "\nscan every item in TABLE_NAME\n"
}

func itemScan() {
	var args itemScanArgs
	arg.MustParse(&args)
	ctx := context.Background()
	store := itemStore(args.Config)
	items, err := store.ScanItems(ctx)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	for i, item := range items {
		if args.Limit != 0 && i >= args.Limit {
			break
		}
		err = lib.PrintJSON(item)
		if err != nil {
			lib.Logger.Fatal("error: ", err)
		}
	}
	lib.Logger.Println("scanned", humanize.Comma(int64(len(items))), "items")
}
