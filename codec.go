package jsave

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/pretty"
	"github.com/toon-format/toon-go"
)

// Codec encodes the stored value to the backing file's text format and
// back. Implementations must round-trip: Unmarshal(Marshal(v)) reproduces v.
// The stores never call a codec concurrently; it runs under the store lock.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec is the default codec.
type JSONCodec struct {
	// Pretty emits multi-line indented output.
	Pretty bool
	// UseNumber decodes numbers as json.Number instead of float64.
	UseNumber bool
}

func (c JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if c.Pretty {
		data = pretty.Pretty(data)
	}
	return data, nil
}

func (c JSONCodec) Unmarshal(data []byte, v any) error {
	if c.UseNumber {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		return dec.Decode(v)
	}
	return json.Unmarshal(data, v)
}

// TOONCodec stores the value in TOON instead of JSON.
type TOONCodec struct{}

func (TOONCodec) Marshal(v any) ([]byte, error) {
	return toon.Marshal(v)
}

func (TOONCodec) Unmarshal(data []byte, v any) error {
	return toon.Unmarshal(data, v)
}
