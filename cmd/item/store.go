package libhandler

import (
	"github.com/nathants/libhandler/lib"
)

func itemConfig(path string) *lib.Config {
	cfg, err := lib.CLIConfig(path)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	err = cfg.Require("TableName", "PrimaryKey")
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	return cfg
}

func itemStore(path string) *lib.DynamoDBStore {
	cfg := itemConfig(path)
	return lib.NewDynamoDBStore(lib.DynamoDBClientFor(cfg), cfg.TableName, cfg.PrimaryKey)
}
