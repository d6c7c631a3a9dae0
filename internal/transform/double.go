package transform

import (
	"encoding/json"
	"fmt"

	"relay/stream"
)

// Double reads a JSON object payload, doubles its numeric "value" field, and
// tags the object with "processed": true. A missing "value" counts as 0;
// every other field passes through untouched. Payloads that are not a JSON
// object, or whose "value" is not a number, yield a typed error result so
// the loop can apply the configured policy.
func Double(rec stream.Record) stream.Result {
	var doc map[string]any
	if err := json.Unmarshal(rec.Value, &doc); err != nil {
		return stream.Fail(fmt.Errorf("transform: decode %s[%d]@%d: %w",
			rec.Topic, rec.Partition, rec.Offset, err))
	}
	if doc == nil {
		return stream.Fail(fmt.Errorf("transform: %s[%d]@%d: payload is not an object",
			rec.Topic, rec.Partition, rec.Offset))
	}

	v, present := doc["value"]
	if !present || v == nil {
		v = float64(0)
	}
	num, ok := v.(float64)
	if !ok {
		return stream.Fail(fmt.Errorf("transform: %s[%d]@%d: field \"value\" is %T, want number",
			rec.Topic, rec.Partition, rec.Offset, v))
	}

	doc["value"] = num * 2
	doc["processed"] = true
	out, err := json.Marshal(doc)
	if err != nil {
		return stream.Fail(fmt.Errorf("transform: encode %s[%d]@%d: %w",
			rec.Topic, rec.Partition, rec.Offset, err))
	}

	next := rec
	next.Value = out
	return stream.Emit(next)
}

func init() { Register("double", Double) }
