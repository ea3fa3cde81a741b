package capfile

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/meshcap/meshcap/internal/mesh"
	"github.com/meshcap/meshcap/internal/pkg/security"
)

// Capture file header: magic, format version, feature flags, and the
// scrypt salt when records are encrypted. Records follow as a
// [Len uint32][Payload] stream, zstd-framed when compressed; each
// payload is the packet JSON, AES-GCM-sealed when encrypted.
var MagicHeader = []byte("MESHCAP1")

// FormatVersion is bumped on incompatible layout changes.
const FormatVersion = 1

const (
	flagZstd      = 1 << 0
	flagEncrypted = 1 << 1
)

var ErrInvalidHeader = errors.New("invalid capture file header")

// Options configure how a capture file is written or read.
type Options struct {
	// Compress enables zstd framing of the record stream.
	Compress bool
	// Key enables per-record AES-GCM sealing with a pre-shared key.
	Key []byte
	// Passphrase derives the record key via scrypt; the salt lives in
	// the file header. Takes precedence over Key.
	Passphrase string
}

// Writer appends packet records to a capture file.
type Writer struct {
	f   *os.File
	out io.Writer // f, or the zstd stream when compressing
	zw  *zstd.Encoder
	key []byte
}

// Create opens a new capture file and writes its header.
func Create(filename string, opts Options) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := &Writer{f: f}
	flags := byte(0)
	var salt []byte

	if opts.Compress {
		flags |= flagZstd
	}
	switch {
	case opts.Passphrase != "":
		flags |= flagEncrypted
		salt, err = security.NewSalt()
		if err == nil {
			w.key, err = security.DeriveKey(opts.Passphrase, salt)
		}
		if err != nil {
			f.Close()
			return nil, err
		}
	case len(opts.Key) > 0:
		flags |= flagEncrypted
		// An all-zero salt marks a pre-shared key.
		salt = make([]byte, security.SaltSize)
		w.key = opts.Key
	}

	header := append(append([]byte{}, MagicHeader...), FormatVersion, flags)
	if flags&flagEncrypted != 0 {
		header = append(header, salt...)
	}
	if _, err := f.Write(header); err != nil {
		f.Close()
		return nil, err
	}

	w.out = f
	if opts.Compress {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		w.zw = zw
		w.out = zw
	}
	return w, nil
}

// Write appends one packet record.
func (w *Writer) Write(p *mesh.Packet) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if w.key != nil {
		data, err = security.Encrypt(w.key, data)
		if err != nil {
			return err
		}
	}

	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(data)))
	if _, err := w.out.Write(lenBuf); err != nil {
		return err
	}
	_, err = w.out.Write(data)
	return err
}

// Sync flushes buffered records to disk.
func (w *Writer) Sync() error {
	if w.zw != nil {
		if err := w.zw.Flush(); err != nil {
			return err
		}
	}
	return w.f.Sync()
}

// Close flushes and closes the capture file.
func (w *Writer) Close() error {
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			w.f.Close()
			return err
		}
	}
	return w.f.Close()
}
