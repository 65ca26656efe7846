// Package snapshot persists the store to a single durable file and
// restores it at startup.
//
// File layout: magic bytes, a length-prefixed JSON header, a
// length-prefixed data block (JSON entry pairs, optionally
// zstd-compressed, optionally encrypted), and a sha256 checksum
// trailer over everything before it. The file is written to a temp
// path and renamed into place, so a crash mid-write never corrupts
// the previous snapshot.
package snapshot

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/predkv/predkv/internal/core/domain"
)

var magicBytes = []byte("PREDSNAP")

const (
	headerVersion = 1
	checksumSize  = 32

	// MaxDataLen bounds the decoded data block so a corrupted length
	// field cannot trigger an arbitrarily large allocation.
	MaxDataLen = 1 << 30
)

var (
	ErrInvalidMagic     = errors.New("snapshot: invalid magic bytes")
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
	ErrNotFound         = errors.New("snapshot: file does not exist")
)

type header struct {
	Version    int   `json:"version"`
	CreatedAt  int64 `json:"created_at"`
	EntryCount int   `json:"entry_count"`
	Compressed bool  `json:"compressed"`
	Encrypted  bool  `json:"encrypted"`
}

// Config configures the snapshot manager.
type Config struct {
	// Path is the snapshot file, overwritten wholesale on each write.
	Path string

	// Compress enables zstd compression of the data block.
	Compress bool

	// Key enables encryption of the data block when non-empty.
	// Must be exactly 32 bytes.
	Key []byte
}

// Manager writes and reads snapshot files.
type Manager struct {
	cfg    Config
	cipher *cipher
}

// Info describes a written or loaded snapshot.
type Info struct {
	EntryCount int
	CreatedAt  int64
	Size       int64
	Path       string
}

// NewManager creates a snapshot manager for the configured file.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("snapshot: path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("snapshot: create dir: %w", err)
		}
	}

	m := &Manager{cfg: cfg}
	if len(cfg.Key) > 0 {
		c, err := newCipher(cfg.Key)
		if err != nil {
			return nil, err
		}
		m.cipher = c
	}
	return m, nil
}

// Write serializes the entries to the snapshot file, replacing any
// previous content. A failure here means durability is compromised and
// must be surfaced to the operator, not swallowed.
func (m *Manager) Write(entries []domain.Entry) (*Info, error) {
	now := time.Now()

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal entries: %w", err)
	}
	if m.cfg.Compress {
		data = compress(data)
	}
	if m.cipher != nil {
		data, err = m.cipher.seal(data)
		if err != nil {
			return nil, fmt.Errorf("snapshot: encrypt: %w", err)
		}
	}

	hdr := header{
		Version:    headerVersion,
		CreatedAt:  now.UnixMilli(),
		EntryCount: len(entries),
		Compressed: m.cfg.Compress,
		Encrypted:  m.cipher != nil,
	}
	hdrJSON, err := json.Marshal(hdr)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal header: %w", err)
	}

	tempPath := m.cfg.Path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot: create temp file: %w", err)
	}
	defer os.Remove(tempPath)

	hash := sha256.New()
	w := io.MultiWriter(file, hash)

	if err := writeSections(w, hdrJSON, data); err != nil {
		file.Close()
		return nil, err
	}

	// Checksum trailer, not included in the hash itself.
	if _, err := file.Write(hash.Sum(nil)); err != nil {
		file.Close()
		return nil, fmt.Errorf("snapshot: write checksum: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("snapshot: close: %w", err)
	}

	stat, err := os.Stat(tempPath)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tempPath, m.cfg.Path); err != nil {
		return nil, fmt.Errorf("snapshot: rename: %w", err)
	}

	return &Info{
		EntryCount: len(entries),
		CreatedAt:  now.UnixMilli(),
		Size:       stat.Size(),
		Path:       m.cfg.Path,
	}, nil
}

func writeSections(w io.Writer, hdrJSON, data []byte) error {
	if _, err := w.Write(magicBytes); err != nil {
		return fmt.Errorf("snapshot: write magic: %w", err)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(hdrJSON)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("snapshot: write header length: %w", err)
	}
	if _, err := w.Write(hdrJSON); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("snapshot: write data length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("snapshot: write data: %w", err)
	}
	return nil
}

// Load reads the snapshot file back into a slice of entries. Loading is
// all-or-nothing: any read, checksum, decrypt or decode failure returns
// an error and no entries. A missing file is ErrNotFound.
func (m *Manager) Load() ([]domain.Entry, *Info, error) {
	f, err := os.Open(m.cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if stat.Size() < int64(len(magicBytes))+checksumSize {
		return nil, nil, ErrChecksumMismatch
	}

	// Verify the trailer before trusting any section.
	bodyLen := stat.Size() - checksumSize
	expected := make([]byte, checksumSize)
	if _, err := io.ReadFull(io.NewSectionReader(f, bodyLen, checksumSize), expected); err != nil {
		return nil, nil, err
	}
	h := sha256.New()
	if _, err := io.CopyN(h, io.NewSectionReader(f, 0, bodyLen), bodyLen); err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(h.Sum(nil), expected) {
		return nil, nil, ErrChecksumMismatch
	}

	br := bufio.NewReader(io.NewSectionReader(f, 0, bodyLen))

	magic := make([]byte, len(magicBytes))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(magic, magicBytes) {
		return nil, nil, ErrInvalidMagic
	}

	hdrJSON, err := readSection(br)
	if err != nil {
		return nil, nil, err
	}
	var hdr header
	if err := json.Unmarshal(hdrJSON, &hdr); err != nil {
		return nil, nil, fmt.Errorf("snapshot: unmarshal header: %w", err)
	}

	data, err := readSection(br)
	if err != nil {
		return nil, nil, err
	}

	if hdr.Encrypted {
		if m.cipher == nil {
			return nil, nil, fmt.Errorf("snapshot: file is encrypted but no key is configured")
		}
		data, err = m.cipher.open(data)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot: decrypt: %w", err)
		}
	}
	if hdr.Compressed {
		data, err = decompress(data)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot: decompress: %w", err)
		}
	}

	var entries []domain.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil, fmt.Errorf("snapshot: unmarshal entries: %w", err)
	}

	return entries, &Info{
		EntryCount: hdr.EntryCount,
		CreatedAt:  hdr.CreatedAt,
		Size:       stat.Size(),
		Path:       m.cfg.Path,
	}, nil
}

func readSection(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read section length: %w", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxDataLen {
		return nil, fmt.Errorf("snapshot: section length %d exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("snapshot: read section: %w", err)
	}
	return buf, nil
}

var zstdEncoder, _ = zstd.NewWriter(nil)
var zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))

func compress(src []byte) []byte {
	return zstdEncoder.EncodeAll(src, make([]byte, 0, len(src)))
}

func decompress(src []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(src, nil)
}
