// Package savesystem writes nursery mementos to blob storage as save files.
//
// A save file is the CBOR encoding of a domain.Memento compressed with zstd.
// The blob metadata carries the format version, the simulated day and a
// keyed BLAKE3 checksum of the uncompressed CBOR, which Import verifies.
package savesystem

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"nurserycore/internal/blob"
	"nurserycore/internal/codec"
	"nurserycore/pkg/domain"
)

const (
	// ContentType is stored with every save file.
	ContentType = "application/vnd.nursery.save+zstd"
	// FormatVersion identifies the payload layout.
	FormatVersion = "1"
	// Extension is appended to keys that lack it.
	Extension = ".sav"

	metaFormat   = "format"
	metaChecksum = "checksum"
	metaDay      = "day"

	maxSaveBytes = 64 << 20
)

var (
	// ErrChecksumMismatch is returned when a save file does not match the
	// checksum recorded at export.
	ErrChecksumMismatch = errors.New("save file checksum mismatch")
	// ErrUnsupportedFormat is returned for save files of an unknown version.
	ErrUnsupportedFormat = errors.New("unsupported save file format")
	// ErrSaveNotFound is returned when no save file exists under a key.
	ErrSaveNotFound = errors.New("save file not found")
)

var checksumKey = [32]byte{
	'n', 'u', 'r', 's', 'e', 'r', 'y', '.', 's', 'a', 'v', 'e', 'f', 'i', 'l', 'e',
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic("savesystem: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxSaveBytes))
	if err != nil {
		panic("savesystem: zstd decoder initialization failed: " + err.Error())
	}
}

// Entry describes a save file without reading it.
type Entry struct {
	Key  string
	Size int64
	Day  int // -1 when the backend does not list metadata
}

// Archive reads and writes save files in a blob.Store.
type Archive struct {
	store     blob.Store
	overwrite bool
}

// Option configures an Archive.
type Option func(*Archive)

// WithOverwrite lets Export replace an existing save file.
func WithOverwrite() Option {
	return func(a *Archive) { a.overwrite = true }
}

// New returns an Archive over store.
func New(store blob.Store, opts ...Option) *Archive {
	a := &Archive{store: store}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// KeyFor normalizes a save name into a blob key.
func KeyFor(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasSuffix(name, Extension) {
		return name
	}
	return name + Extension
}

// Checksum returns the hex keyed BLAKE3 digest recorded for payload.
func Checksum(payload []byte) string {
	h, err := blake3.NewKeyed(checksumKey[:])
	if err != nil {
		panic("savesystem: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	_, _ = h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Export writes m under key.
func (a *Archive) Export(ctx context.Context, key string, m domain.Memento) (blob.Info, error) {
	key = KeyFor(key)
	if key == "" {
		return blob.Info{}, errors.New("save key is empty")
	}
	payload, err := codec.Marshal(m)
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode memento: %w", err)
	}
	compressed := zstdEncoder.EncodeAll(payload, make([]byte, 0, len(payload)/2))
	info, err := a.store.Put(ctx, key, bytes.NewReader(compressed), blob.PutOptions{
		ContentType: ContentType,
		Metadata: map[string]string{
			metaFormat:   FormatVersion,
			metaChecksum: Checksum(payload),
			metaDay:      strconv.Itoa(m.Day),
		},
		Overwrite: a.overwrite,
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("write save file %s: %w", key, err)
	}
	return info, nil
}

// Import reads the save file under key, verifying its checksum.
func (a *Archive) Import(ctx context.Context, key string) (domain.Memento, error) {
	key = KeyFor(key)
	info, rc, err := a.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return domain.Memento{}, fmt.Errorf("%w: %s", ErrSaveNotFound, key)
		}
		return domain.Memento{}, fmt.Errorf("read save file %s: %w", key, err)
	}
	defer rc.Close()
	if v := info.Metadata[metaFormat]; v != FormatVersion {
		return domain.Memento{}, fmt.Errorf("%w: %q in %s", ErrUnsupportedFormat, v, key)
	}
	compressed, err := io.ReadAll(io.LimitReader(rc, maxSaveBytes+1))
	if err != nil {
		return domain.Memento{}, fmt.Errorf("read save file %s: %w", key, err)
	}
	if len(compressed) > maxSaveBytes {
		return domain.Memento{}, fmt.Errorf("save file %s exceeds %d bytes", key, maxSaveBytes)
	}
	payload, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return domain.Memento{}, fmt.Errorf("decompress save file %s: %w", key, err)
	}
	if got, want := Checksum(payload), info.Metadata[metaChecksum]; got != want {
		return domain.Memento{}, fmt.Errorf("%w: %s", ErrChecksumMismatch, key)
	}
	var m domain.Memento
	if err := codec.Unmarshal(payload, &m); err != nil {
		return domain.Memento{}, fmt.Errorf("decode save file %s: %w", key, err)
	}
	return m, nil
}

// List returns the save files whose key starts with prefix.
func (a *Archive) List(ctx context.Context, prefix string) ([]Entry, error) {
	infos, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(infos))
	for _, info := range infos {
		if !strings.HasSuffix(info.Key, Extension) {
			continue
		}
		day := -1
		if v, ok := info.Metadata[metaDay]; ok {
			if d, err := strconv.Atoi(v); err == nil {
				day = d
			}
		}
		out = append(out, Entry{Key: info.Key, Size: info.Size, Day: day})
	}
	return out, nil
}

// Delete removes the save file under key, reporting whether it existed.
func (a *Archive) Delete(ctx context.Context, key string) (bool, error) {
	return a.store.Delete(ctx, KeyFor(key))
}
