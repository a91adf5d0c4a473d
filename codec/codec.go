// Package codec centralizes JSON serialization so the rest of the engine
// never imports a json library directly.
package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func Decode[T any](bz []byte) (T, error) {
	value := new(T)
	err := json.Unmarshal(bz, value)
	if err != nil {
		return *value, eris.Wrap(err, "")
	}
	return *value, nil
}

// DecodeInto unmarshals into a target whose type is only known at runtime.
func DecodeInto(bz []byte, target any) error {
	return eris.Wrap(json.Unmarshal(bz, target), "")
}

func Encode(value any) ([]byte, error) {
	bz, err := json.Marshal(value)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}
