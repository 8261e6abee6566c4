package testutil

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
)

// OversizedPNGDataURI returns a data URI whose PNG header declares a w x h
// grayscale canvas. Only the header is present, so the payload stays tiny
// while image.DecodeConfig reports the full size.
func OversizedPNGDataURI(w, h uint32) string {
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale
	writePNGChunk(&buf, "IHDR", ihdr)
	writePNGChunk(&buf, "IEND", nil)

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func writePNGChunk(buf *bytes.Buffer, kind string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	buf.Write(n[:])

	crc := crc32.NewIEEE()
	_, _ = crc.Write([]byte(kind))
	_, _ = crc.Write(data)
	buf.WriteString(kind)
	buf.Write(data)

	binary.BigEndian.PutUint32(n[:], crc.Sum32())
	buf.Write(n[:])
}
