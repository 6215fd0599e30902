package png

import (
	"encoding/binary"
	"io"

	"github.com/mac/parapng/src/compress"
)

// WriteSignature writes the fixed 8-byte PNG signature to w.
func WriteSignature(w io.Writer) error {
	if _, err := w.Write(Signature[:]); err != nil {
		return wrapOther(err, "writing signature")
	}
	return nil
}

// WriteChunk writes one length-prefixed, CRC-32-checked PNG chunk: a
// 4-byte big-endian length, the 4-byte tag, the payload, then a CRC-32
// (ISO-3309) over tag+payload.
func WriteChunk(w io.Writer, tag ChunkType, data []byte) error {
	if len(tag) != 4 {
		return invalidInput("chunk tag %q must be exactly 4 bytes", tag)
	}
	if len(data) > 0xFFFFFFFF {
		return invalidInput("chunk payload too large: %d bytes", len(data))
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return wrapOther(err, "writing chunk length for %s", tag)
	}

	tagAndData := make([]byte, 0, 4+len(data))
	tagAndData = append(tagAndData, tag...)
	tagAndData = append(tagAndData, data...)
	if _, err := w.Write(tagAndData); err != nil {
		return wrapOther(err, "writing chunk body for %s", tag)
	}

	crc := compress.CRC32(tagAndData)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	if _, err := w.Write(crcBuf[:]); err != nil {
		return wrapOther(err, "writing chunk CRC for %s", tag)
	}
	return nil
}

// WriteHeader writes the IHDR chunk for h.
func WriteHeader(w io.Writer, h Header) error {
	if err := h.Validate(); err != nil {
		return err
	}
	return WriteChunk(w, ChunkIHDR, h.Bytes())
}

// WriteEnd writes the empty IEND chunk that terminates a PNG stream.
func WriteEnd(w io.Writer) error {
	return WriteChunk(w, ChunkIEND, nil)
}
