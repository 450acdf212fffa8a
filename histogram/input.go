package histogram

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/rand"
)

// DefaultSeed seeds input generation when no input file is supplied.
const DefaultSeed uint64 = 2009

// Load reads n little-endian uint32 records from a raw binary file.
// A missing file or a short read is an error.
func Load(path string, n int) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input %s: %w", path, err)
	}
	defer f.Close()

	raw := make([]byte, n*4)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("reading %d records from %s: %w", n, path, err)
	}
	records := make([]uint32, n)
	for i := range records {
		records[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return records, nil
}

// Generate produces n deterministic pseudo-random records. Each record
// is assembled from four independent byte draws, and a fixed seed
// reproduces the same sequence on every run.
func Generate(seed uint64, n int) []uint32 {
	rng := rand.New(rand.NewSource(seed))
	records := make([]uint32, n)
	for i := range records {
		r := uint32(rng.Intn(256))
		r |= uint32(rng.Intn(256)) << 8
		r |= uint32(rng.Intn(256)) << 16
		r |= uint32(rng.Intn(256)) << 24
		records[i] = r
	}
	return records
}

// Bytes returns the little-endian byte image of records, the form the
// input surface consumes.
func Bytes(records []uint32) []byte {
	raw := make([]byte, len(records)*4)
	for i, r := range records {
		binary.LittleEndian.PutUint32(raw[i*4:], r)
	}
	return raw
}
