package anvil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/OCharnyshevich/blockcull/pkg/world/gen"
)

const (
	sectorSize      = 4096
	headerSectors   = 2 // location table + timestamp table
	regionChunks    = 32
	compressionGzip = 1
	compressionZlib = 2
)

// ErrChunkNotFound is returned for region slots that hold no chunk.
var ErrChunkNotFound = errors.New("chunk not present in region")

// RegionCoords returns the region that contains chunk (cx, cz).
func RegionCoords(cx, cz int) (rx, rz int) {
	return cx >> 5, cz >> 5
}

// RegionPath returns the .mca file name for region (rx, rz) inside dir.
func RegionPath(dir string, rx, rz int) string {
	return filepath.Join(dir, fmt.Sprintf("r.%d.%d.mca", rx, rz))
}

func slotIndex(cx, cz int) int {
	return (cx & 31) + (cz&31)*regionChunks
}

// SaveRegion writes all provided chunks to a .mca region file.
// chunks maps chunk positions to their uncompressed NBT data.
func SaveRegion(dir string, rx, rz int, chunks map[gen.ChunkPos][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create region dir")
	}

	// Compress all chunks with zlib.
	type chunkEntry struct {
		index      int
		compressed []byte
	}
	entries := make([]chunkEntry, 0, len(chunks))

	for pos, nbtData := range chunks {
		if prx, prz := RegionCoords(pos.X, pos.Z); prx != rx || prz != rz {
			return errors.Errorf("chunk (%d,%d) is not in region (%d,%d)", pos.X, pos.Z, rx, rz)
		}

		var cbuf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&cbuf, zlib.DefaultCompression)
		if err != nil {
			return errors.Wrap(err, "create zlib writer")
		}
		if _, err := zw.Write(nbtData); err != nil {
			return errors.Wrapf(err, "compress chunk (%d,%d)", pos.X, pos.Z)
		}
		if err := zw.Close(); err != nil {
			return errors.Wrap(err, "close zlib writer")
		}

		entries = append(entries, chunkEntry{index: slotIndex(pos.X, pos.Z), compressed: cbuf.Bytes()})
	}

	locations := make([]byte, sectorSize)
	timestamps := make([]byte, sectorSize)
	now := uint32(time.Now().Unix())

	// Each chunk's data: 4 bytes length + 1 byte compression type + compressed data,
	// padded to sector boundary.
	var dataBuf bytes.Buffer
	currentSector := uint32(headerSectors)

	for i := range entries {
		e := &entries[i]

		payloadLen := uint32(len(e.compressed)) + 1 // +1 for compression byte
		totalLen := 4 + payloadLen                  // 4 for the length field itself
		sectorCount := (totalLen + sectorSize - 1) / sectorSize
		if sectorCount > 0xFF {
			return errors.Errorf("chunk slot %d too large: %d sectors", e.index, sectorCount)
		}

		// Location entry: (offset << 8) | sectorCount
		off := e.index * 4
		binary.BigEndian.PutUint32(locations[off:off+4], (currentSector<<8)|sectorCount)
		binary.BigEndian.PutUint32(timestamps[off:off+4], now)

		var header [5]byte
		binary.BigEndian.PutUint32(header[0:4], payloadLen)
		header[4] = compressionZlib
		dataBuf.Write(header[:])
		dataBuf.Write(e.compressed)

		paddedSize := int(sectorCount) * sectorSize
		if pad := paddedSize - int(totalLen); pad > 0 {
			dataBuf.Write(make([]byte, pad))
		}

		currentSector += sectorCount
	}

	// Write the file atomically.
	path := RegionPath(dir, rx, rz)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "create temp region file")
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	if _, err := f.Write(locations); err != nil {
		return errors.Wrap(err, "write locations")
	}
	if _, err := f.Write(timestamps); err != nil {
		return errors.Wrap(err, "write timestamps")
	}
	if _, err := f.Write(dataBuf.Bytes()); err != nil {
		return errors.Wrap(err, "write chunk data")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close region file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "rename region file")
	}

	return nil
}

// Region is a region file loaded into memory.
type Region struct {
	X, Z int
	data []byte
}

// LoadRegion reads region (rx, rz) from dir. A missing file is reported with
// an error satisfying os.IsNotExist after errors.Cause.
func LoadRegion(dir string, rx, rz int) (*Region, error) {
	path := RegionPath(dir, rx, rz)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read region %s", path)
	}
	if len(data) < headerSectors*sectorSize {
		return nil, errors.Errorf("region %s: truncated header (%d bytes)", path, len(data))
	}
	return &Region{X: rx, Z: rz, data: data}, nil
}

// Chunk returns the decompressed NBT payload of chunk (cx, cz). Chunk
// coordinates are absolute; only their low five bits select the slot.
func (r *Region) Chunk(cx, cz int) ([]byte, error) {
	off := slotIndex(cx, cz) * 4
	loc := binary.BigEndian.Uint32(r.data[off : off+4])
	sector, count := int(loc>>8), int(loc&0xFF)
	if sector == 0 || count == 0 {
		return nil, ErrChunkNotFound
	}

	start := sector * sectorSize
	if start+5 > len(r.data) {
		return nil, errors.Errorf("chunk (%d,%d): sector %d beyond end of region", cx, cz, sector)
	}
	length := int(binary.BigEndian.Uint32(r.data[start : start+4]))
	if length < 1 || start+4+length > len(r.data) {
		return nil, errors.Errorf("chunk (%d,%d): bad payload length %d", cx, cz, length)
	}
	compression := r.data[start+4]
	payload := bytes.NewReader(r.data[start+5 : start+4+length])

	var zr io.ReadCloser
	var err error
	switch compression {
	case compressionZlib:
		zr, err = zlib.NewReader(payload)
	case compressionGzip:
		zr, err = gzip.NewReader(payload)
	default:
		return nil, errors.Errorf("chunk (%d,%d): unsupported compression %d", cx, cz, compression)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open chunk (%d,%d)", cx, cz)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress chunk (%d,%d)", cx, cz)
	}
	return out, nil
}
