// Package codec centralizes the encoding of persisted run results.
//
// Codec selection is a format boundary: archives record the codec name and payload
// version in their header and are decoded with the registered codec of that name.
package codec

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// MaxNameLen is the longest codec name an archive header can hold.
const MaxNameLen = 255

var (
	// ErrDuplicateCodec is returned when a codec name is registered twice.
	ErrDuplicateCodec = errors.New("codec: already registered")

	// ErrInvalidName is returned for an empty or overlong codec name.
	ErrInvalidName = errors.New("codec: invalid name")
)

// Codec encodes/decodes run results.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error

	// Name identifies the codec in archive headers.
	Name() string

	// Version is the payload layout written by Marshal. Unmarshal accepts every
	// version up to and including it.
	Version() uint16
}

var (
	mu       sync.RWMutex
	registry = map[string]Codec{
		JSON{}.Name():   JSON{},
		GoJSON{}.Name(): GoJSON{},
	}
)

// Register makes c available to ByName, and so to archive decoding.
func Register(c Codec) error {
	name := c.Name()
	if name == "" || len(name) > MaxNameLen {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateCodec, name)
	}
	registry[name] = c
	return nil
}

// ByName returns the registered codec with the given name.
func ByName(name string) (Codec, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[name]
	return c, ok
}

// Names returns the registered codec names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Supports reports whether c can decode a payload written at version v.
func Supports(c Codec, v uint16) bool {
	return v >= 1 && v <= c.Version()
}
