package codec

import (
	"encoding/json"
)

// jsonVersion is the payload version of both JSON codecs. Sample sets and partition
// trees implement json.Marshaler, so the two produce the same bytes.
const jsonVersion uint16 = 1

// JSON is the standard-library JSON codec.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }
func (JSON) Version() uint16                    { return jsonVersion }

// Default is the codec of newly written archives. Existing archives are decoded with
// the codec named in their header.
var Default Codec = GoJSON{}
