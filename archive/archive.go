package archive

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/bayespart"
	"github.com/hupe1980/bayespart/blobstore"
	"github.com/hupe1980/bayespart/codec"
	"github.com/hupe1980/bayespart/internal/conv"
	"github.com/hupe1980/bayespart/internal/hash"
)

const (
	// Magic identifies an archive blob.
	Magic = "BPAR"
	// Version is the current format version.
	Version uint16 = 1
)

var (
	// ErrInvalidArchive is returned for blobs that are not well-formed archives.
	ErrInvalidArchive = errors.New("archive: invalid archive")

	// ErrUnsupportedVersion is returned for archives written by a newer format.
	ErrUnsupportedVersion = errors.New("archive: unsupported version")

	// ErrUnknownCodec is returned when the header names a codec that is not registered.
	ErrUnknownCodec = errors.New("archive: unknown codec")
)

// document is the encoded form of a result. Shared records that the sampling-space
// and original-space draws were the same set.
type document struct {
	Result *bayespart.Result `json:"result"`
	Shared bool              `json:"shared,omitempty"`
}

type options struct {
	codec       codec.Codec
	compression Compression
}

// Option configures Save and Encode.
type Option func(*options)

// WithCodec selects the payload codec. Default codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithCompression selects the payload compression. Default CompressionZSTD.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// Encode serializes a result into an archive blob.
func Encode(res *bayespart.Result, opts ...Option) ([]byte, error) {
	if res == nil {
		return nil, errors.New("archive: nil result")
	}
	o := options{codec: codec.Default, compression: CompressionZSTD}
	for _, opt := range opts {
		opt(&o)
	}
	if n := len(o.codec.Name()); n == 0 || n > codec.MaxNameLen {
		return nil, fmt.Errorf("archive: codec name %q too long", o.codec.Name())
	}

	doc := document{Result: res}
	if res.TransformedSamples == res.Samples {
		shallow := *res
		shallow.TransformedSamples = nil
		doc = document{Result: &shallow, Shared: true}
	}

	payload, err := o.codec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("archive: encode: %w", err)
	}
	stored, comp, err := compress(payload, o.compression)
	if err != nil {
		return nil, fmt.Errorf("archive: compress: %w", err)
	}

	size, err := conv.IntToUint32(len(payload))
	if err != nil {
		return nil, fmt.Errorf("archive: payload: %w", err)
	}
	storedSize, err := conv.IntToUint32(len(stored))
	if err != nil {
		return nil, fmt.Errorf("archive: payload: %w", err)
	}

	name := o.codec.Name()
	buf := make([]byte, 0, len(Magic)+2+1+1+len(name)+2+12+len(stored))
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint16(buf, Version)
	buf = append(buf, byte(comp), byte(len(name)))
	buf = append(buf, name...)
	buf = binary.LittleEndian.AppendUint16(buf, o.codec.Version())
	buf = binary.LittleEndian.AppendUint32(buf, size)
	buf = binary.LittleEndian.AppendUint32(buf, storedSize)
	buf = binary.LittleEndian.AppendUint32(buf, hash.CRC32C(stored))
	buf = append(buf, stored...)
	return buf, nil
}

// Header describes an archive without decoding its payload.
type Header struct {
	Version      uint16
	Compression  Compression
	Codec        string
	CodecVersion uint16 // payload version written by the codec
	Size         uint32
	StoredSize   uint32
	Checksum     uint32
}

// ReadHeader parses the header of an archive blob and returns the payload.
func ReadHeader(data []byte) (Header, []byte, error) {
	var h Header
	if len(data) < len(Magic)+4 || string(data[:len(Magic)]) != Magic {
		return h, nil, fmt.Errorf("%w: bad magic", ErrInvalidArchive)
	}
	p := data[len(Magic):]

	h.Version = binary.LittleEndian.Uint16(p)
	if h.Version > Version {
		return h, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	h.Compression = Compression(p[2])
	n := int(p[3])
	p = p[4:]
	if len(p) < n+2+12 {
		return h, nil, fmt.Errorf("%w: truncated header", ErrInvalidArchive)
	}
	h.Codec = string(p[:n])
	h.CodecVersion = binary.LittleEndian.Uint16(p[n:])
	p = p[n+2:]

	h.Size = binary.LittleEndian.Uint32(p)
	h.StoredSize = binary.LittleEndian.Uint32(p[4:])
	h.Checksum = binary.LittleEndian.Uint32(p[8:])
	p = p[12:]
	if n, err := conv.IntToUint32(len(p)); err != nil || n != h.StoredSize {
		return h, nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrInvalidArchive, len(p), h.StoredSize)
	}
	return h, p, nil
}

// Decode parses an archive blob.
func Decode(data []byte) (*bayespart.Result, error) {
	h, stored, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	if err := hash.Verify(stored, h.Checksum); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}
	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}
	if !codec.Supports(c, h.CodecVersion) {
		return nil, fmt.Errorf("%w: codec %s payload v%d, supported up to v%d", ErrUnsupportedVersion, h.Codec, h.CodecVersion, c.Version())
	}
	payload, err := decompress(stored, h.Compression, h.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}

	var doc document
	if err := c.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("archive: decode: %w", err)
	}
	if doc.Result == nil {
		return nil, fmt.Errorf("%w: missing result", ErrInvalidArchive)
	}
	if doc.Shared {
		doc.Result.TransformedSamples = doc.Result.Samples
	}
	return doc.Result, nil
}

// Save encodes a result and writes it to the store under name.
func Save(ctx context.Context, store blobstore.Store, name string, res *bayespart.Result, opts ...Option) error {
	data, err := Encode(res, opts...)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// Load reads and decodes the archive stored under name.
func Load(ctx context.Context, store blobstore.Store, name string) (*bayespart.Result, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
