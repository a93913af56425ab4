package lib

import (
	"fmt"
	"slices"

	"github.com/aws/aws-lambda-go/events"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// stream records carry lambda-go attribute values, the sdk wants its own.

func FromDynamoDBEventAVList(from []events.DynamoDBAttributeValue) ([]ddbtypes.AttributeValue, error) {
	to := make([]ddbtypes.AttributeValue, len(from))
	for i := range from {
		av, err := FromDynamoDBEventAV(from[i])
		if err != nil {
			return nil, err
		}
		to[i] = av
	}
	return to, nil
}

func FromDynamoDBEventAVMap(from map[string]events.DynamoDBAttributeValue) (map[string]ddbtypes.AttributeValue, error) {
	to := make(map[string]ddbtypes.AttributeValue, len(from))
	for field, value := range from {
		av, err := FromDynamoDBEventAV(value)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", field, err)
		}
		to[field] = av
	}
	return to, nil
}

func FromDynamoDBEventAV(from events.DynamoDBAttributeValue) (ddbtypes.AttributeValue, error) {
	switch from.DataType() {
	case events.DataTypeNull:
		return &ddbtypes.AttributeValueMemberNULL{Value: from.IsNull()}, nil
	case events.DataTypeBoolean:
		return &ddbtypes.AttributeValueMemberBOOL{Value: from.Boolean()}, nil
	case events.DataTypeString:
		return &ddbtypes.AttributeValueMemberS{Value: from.String()}, nil
	case events.DataTypeStringSet:
		return &ddbtypes.AttributeValueMemberSS{Value: slices.Clone(from.StringSet())}, nil
	case events.DataTypeNumber:
		return &ddbtypes.AttributeValueMemberN{Value: from.Number()}, nil
	case events.DataTypeNumberSet:
		return &ddbtypes.AttributeValueMemberNS{Value: slices.Clone(from.NumberSet())}, nil
	case events.DataTypeBinary:
		return &ddbtypes.AttributeValueMemberB{Value: slices.Clone(from.Binary())}, nil
	case events.DataTypeBinarySet:
		set := make([][]byte, 0, len(from.BinarySet()))
		for _, b := range from.BinarySet() {
			set = append(set, slices.Clone(b))
		}
		return &ddbtypes.AttributeValueMemberBS{Value: set}, nil
	case events.DataTypeList:
		values, err := FromDynamoDBEventAVList(from.List())
		if err != nil {
			return nil, err
		}
		return &ddbtypes.AttributeValueMemberL{Value: values}, nil
	case events.DataTypeMap:
		values, err := FromDynamoDBEventAVMap(from.Map())
		if err != nil {
			return nil, err
		}
		return &ddbtypes.AttributeValueMemberM{Value: values}, nil
	default:
		return nil, fmt.Errorf("unknown AttributeValue union member, %T", from)
	}
}
