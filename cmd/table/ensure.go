package libhandler

import (
	"context"

	"github.com/alexflint/go-arg"
	"github.com/nathants/libhandler/lib"
)

func init() {
	lib.Commands["table-ensure"] = tableEnsure
	lib.Args["table-ensure"] = tableEnsureArgs{}
}

type tableEnsureArgs struct {
	Config  string `arg:"-c,--config" help:"yaml config, defaults to the environment"`
	Stream  bool   `arg:"-s,--stream" help:"enable a NEW_AND_OLD_IMAGES stream"`
	Replica bool   `arg:"-r,--replica" help:"also ensure REPLICA_TABLE"`
	Preview bool   `arg:"-p,--preview"`
}

func (tableEnsureArgs) Description() string {
	return "\nensure TABLE_NAME exists with PRIMARY_KEY as its string hash key\n"
}

func tableEnsure() {
	var args tableEnsureArgs
	arg.MustParse(&args)
	ctx := context.Background()
	cfg, err := lib.CLIConfig(args.Config)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	required := []string{"TableName", "PrimaryKey"}
	if args.Replica {
		required = append(required, "ReplicaTable")
	}
	err = cfg.Require(required...)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	client := lib.DynamoDBClientFor(cfg)
	err = lib.DynamoDBEnsureTable(ctx, client, lib.DynamoDBEnsureInput(cfg.TableName, cfg.PrimaryKey, args.Stream), args.Preview)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	if args.Replica {
		err = lib.DynamoDBEnsureTable(ctx, client, lib.DynamoDBEnsureInput(cfg.ReplicaTable, cfg.PrimaryKey, false), args.Preview)
		if err != nil {
			lib.Logger.Fatal("error: ", err)
		}
	}
}
