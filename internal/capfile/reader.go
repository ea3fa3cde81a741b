package capfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/meshcap/meshcap/internal/mesh"
	"github.com/meshcap/meshcap/internal/pkg/security"
)

// Reader iterates the packet records of a capture file. It satisfies
// the capture Source contract: Next returns io.EOF when the file is
// exhausted.
type Reader struct {
	f   *os.File
	in  io.Reader // f, or the zstd stream when the file is compressed
	zr  *zstd.Decoder
	key []byte
}

// Open validates a capture file's header and prepares record reading.
// Compression is detected from the header; Options only matter for the
// decryption key. Opening an encrypted file without a key or passphrase
// fails.
func Open(filename string, opts Options) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	header := make([]byte, len(MagicHeader)+2)
	if _, err := io.ReadFull(f, header); err != nil {
		f.Close()
		return nil, ErrInvalidHeader
	}
	if !bytes.Equal(header[:len(MagicHeader)], MagicHeader) {
		f.Close()
		return nil, ErrInvalidHeader
	}
	version := header[len(MagicHeader)]
	if version != FormatVersion {
		f.Close()
		return nil, fmt.Errorf("unsupported capture file version %d", version)
	}
	flags := header[len(MagicHeader)+1]

	r := &Reader{f: f}
	if flags&flagEncrypted != 0 {
		salt := make([]byte, security.SaltSize)
		if _, err := io.ReadFull(f, salt); err != nil {
			f.Close()
			return nil, ErrInvalidHeader
		}
		switch {
		case opts.Passphrase != "":
			r.key, err = security.DeriveKey(opts.Passphrase, salt)
			if err != nil {
				f.Close()
				return nil, err
			}
		case len(opts.Key) > 0:
			r.key = opts.Key
		default:
			f.Close()
			return nil, errors.New("capture file is encrypted: a key or passphrase is required")
		}
	}

	r.in = f
	if flags&flagZstd != 0 {
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		r.zr = zr
		r.in = zr
	}
	return r, nil
}

// Next returns the next packet record, or io.EOF at end of file.
func (r *Reader) Next() (*mesh.Packet, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(r.in, lenBuf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("capture read error: %w", err)
	}

	length := binary.LittleEndian.Uint32(lenBuf)
	data := make([]byte, length)
	if _, err := io.ReadFull(r.in, data); err != nil {
		return nil, fmt.Errorf("capture read error: %w", err)
	}

	if r.key != nil {
		var err error
		data, err = security.Decrypt(r.key, data)
		if err != nil {
			return nil, fmt.Errorf("capture record decrypt failed: %w", err)
		}
	}
	return mesh.ParsePacket(data)
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.zr != nil {
		r.zr.Close()
	}
	return r.f.Close()
}
