package ingestion

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Broker metadata arrives with inconsistent casing and nesting depending on
// the hop that delivered the batch. Lookup order is fixed so identical
// batches always produce identical delivery descriptions.
var (
	partitionKeys = []string{"PartitionId", "partitionId", "x-opt-partition-id", "partition_id"}
	offsetKeys    = []string{"offset", "x-opt-offset", "Offset"}
	sequenceKeys  = []string{"sequence_number", "x-opt-sequence-number", "SequenceNumber"}
)

const systemPropertiesKey = "SystemProperties"

// DeliveryFromMetadata pulls partition, offset and sequence information out
// of broker metadata. Values nested under SystemProperties win over the
// top-level aliases; values that are absent stay empty strings.
func DeliveryFromMetadata(metadata map[string]interface{}) Delivery {
	return Delivery{
		PartitionID:    lookupMetadata(metadata, partitionKeys),
		Offset:         lookupMetadata(metadata, offsetKeys),
		SequenceNumber: lookupMetadata(metadata, sequenceKeys),
	}
}

func lookupMetadata(metadata map[string]interface{}, keys []string) string {
	if nested, ok := metadata[systemPropertiesKey].(map[string]interface{}); ok {
		for _, key := range keys {
			if value, ok := nested[key]; ok && value != nil {
				return stringifyScalar(value)
			}
		}
	}
	for _, key := range keys {
		if value, ok := metadata[key]; ok && value != nil {
			return stringifyScalar(value)
		}
	}
	return ""
}

// stringifyScalar renders broker scalars as they would appear in the wire
// payload, in particular without the exponent notation fmt would pick for
// large offsets that decoded as floats.
func stringifyScalar(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
