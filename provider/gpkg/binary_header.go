package gpkg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// header flag bits
const (
	flagLittleEndian = 1 << 0
	flagEnvelopeMask = 7 << 1
	flagEmpty        = 1 << 4
	flagExtended     = 1 << 5
)

// envelope sizes in bytes, indexed by the envelope indicator
var envelopeSizes = [...]int{0, 32, 48, 48, 64}

var (
	ErrInvalidMagic    = errors.New("gpkg: invalid geometry header magic")
	ErrInvalidEnvelope = errors.New("gpkg: invalid envelope indicator")
	ErrShortHeader     = errors.New("gpkg: geometry blob shorter than its header")
)

// BinaryHeader is the GeoPackage geometry blob header.
type BinaryHeader struct {
	magic    [2]byte
	version  uint8
	flags    uint8
	srsid    int32
	envelope []float64
}

// NewBinaryHeader parses the header at the start of data.
func NewBinaryHeader(data []byte) (*BinaryHeader, error) {
	if len(data) < 8 {
		return nil, ErrShortHeader
	}
	h := &BinaryHeader{
		magic:   [2]byte{data[0], data[1]},
		version: data[2],
		flags:   data[3],
	}
	if h.magic != [2]byte{'G', 'P'} {
		return nil, ErrInvalidMagic
	}
	ind := h.EnvelopeIndicator()
	if ind >= len(envelopeSizes) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidEnvelope, ind)
	}
	if len(data) < h.Size() {
		return nil, ErrShortHeader
	}
	order := h.byteOrder()
	h.srsid = int32(order.Uint32(data[4:8]))
	n := envelopeSizes[ind] / 8
	h.envelope = make([]float64, n)
	for i := 0; i < n; i++ {
		h.envelope[i] = math.Float64frombits(order.Uint64(data[8+i*8:]))
	}
	return h, nil
}

func (h *BinaryHeader) byteOrder() binary.ByteOrder {
	if h.flags&flagLittleEndian != 0 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (h *BinaryHeader) EnvelopeIndicator() int { return int(h.flags&flagEnvelopeMask) >> 1 }

func (h *BinaryHeader) IsEmpty() bool    { return h.flags&flagEmpty != 0 }
func (h *BinaryHeader) IsExtended() bool { return h.flags&flagExtended != 0 }

// SRSId is the spatial reference system id of the geometry.
func (h *BinaryHeader) SRSId() int32 { return h.srsid }

// Envelope is minx, maxx, miny, maxy followed by z and m ranges when present.
func (h *BinaryHeader) Envelope() []float64 { return h.envelope }

// Size is the header length in bytes.
func (h *BinaryHeader) Size() int {
	ind := h.EnvelopeIndicator()
	if ind >= len(envelopeSizes) {
		return 8
	}
	return 8 + envelopeSizes[ind]
}

// encodeHeader builds a little-endian header with an xy envelope.
func encodeHeader(srsid int32, minx, maxx, miny, maxy float64, empty bool) []byte {
	flags := uint8(flagLittleEndian | 1<<1)
	if empty {
		flags = flagLittleEndian | flagEmpty
	}
	buf := make([]byte, 8, 40)
	buf[0], buf[1], buf[2], buf[3] = 'G', 'P', 0, flags
	binary.LittleEndian.PutUint32(buf[4:], uint32(srsid))
	if empty {
		return buf
	}
	for _, v := range []float64{minx, maxx, miny, maxy} {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}
