package lib

import (
	"context"
	"fmt"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Replicator mirrors table changes from a stream into another table.
type Replicator struct {
	store ImageStore
	key   string
}

func NewReplicator(store ImageStore, key string) *Replicator {
	return &Replicator{store: store, key: key}
}

func (r *Replicator) Apply(ctx context.Context, record StreamRecord) Result {
	switch record.EventName {
	case "INSERT", "MODIFY":
		if len(record.NewImage) == 0 {
			return Fail(InvalidInput, "stream record has no new image, is the view type NEW_IMAGE or NEW_AND_OLD_IMAGES?")
		}
		err := r.store.PutImage(ctx, record.NewImage)
		if err != nil {
			return FailExternal(err)
		}
		return Ok(nil)
	case "REMOVE":
		key, ok := record.Keys[r.key].(*ddbtypes.AttributeValueMemberS)
		if !ok || key.Value == "" {
			return Fail(InvalidInput, fmt.Sprintf("stream record missing key %s", r.key))
		}
		err := r.store.DeleteItem(ctx, key.Value)
		if err != nil {
			return FailExternal(err)
		}
		return Ok(nil)
	default:
		return Fail(InvalidInput, "unknown stream event: "+record.EventName)
	}
}
