// Package saves persists battery backed cartridge RAM between sessions.
//
// A save file holds the number of banks as a little-endian uint32, the
// banks themselves and an xxhash64 of everything before it, all of which
// is brotli compressed.
package saves

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash"
)

// BankSize is the size of a single RAM bank.
const BankSize = 0x2000

// ErrCorrupt is returned when save data fails to decode.
var ErrCorrupt = errors.New("saves: corrupt save data")

// Encode compresses banks into the save file format.
func Encode(banks [][BankSize]byte) ([]byte, error) {
	payload := make([]byte, 4, 4+len(banks)*BankSize+8)
	binary.LittleEndian.PutUint32(payload, uint32(len(banks)))
	for i := range banks {
		payload = append(payload, banks[i][:]...)
	}
	payload = binary.LittleEndian.AppendUint64(payload, xxhash.Sum64(payload))

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode. Any truncation, checksum mismatch or
// compression error is reported as ErrCorrupt.
func Decode(data []byte) ([][BankSize]byte, error) {
	payload, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(payload) < 12 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(payload))
	}

	body, sum := payload[:len(payload)-8], binary.LittleEndian.Uint64(payload[len(payload)-8:])
	if xxhash.Sum64(body) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	count := int(binary.LittleEndian.Uint32(body))
	if len(body)-4 != count*BankSize {
		return nil, fmt.Errorf("%w: %d banks in %d bytes", ErrCorrupt, count, len(body)-4)
	}

	banks := make([][BankSize]byte, count)
	for i := range banks {
		copy(banks[i][:], body[4+i*BankSize:])
	}
	return banks, nil
}

// Store keeps one save file per cartridge in a directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created on
// the first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the save file for key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".sav")
}

// LoadRAM returns the banks saved under key, or nil if nothing has been
// saved yet.
func (s *Store) LoadRAM(key string, banks int) ([][BankSize]byte, error) {
	b, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	ram, err := Decode(b)
	if err != nil {
		return nil, err
	}
	if len(ram) != banks {
		return nil, fmt.Errorf("%w: expected %d banks, got %d", ErrCorrupt, banks, len(ram))
	}
	return ram, nil
}

// SaveRAM writes banks under key. The data is written to a temporary
// file which is then renamed over the save file, so a crash never
// leaves a partial save behind.
func (s *Store) SaveRAM(key string, banks [][BankSize]byte) error {
	b, err := Encode(banks)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	path := s.Path(key)
	f, err := os.CreateTemp(s.dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}
