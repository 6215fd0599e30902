package png

import (
	"bytes"
	"image"
	stdpng "image/png"
	"testing"

	"github.com/mac/parapng/src/workerpool"
)

func buildTruecolorRows(width, height int) [][]byte {
	stride := width * 3
	rows := make([][]byte, height)
	for y := 0; y < height; y++ {
		row := make([]byte, stride)
		for x := 0; x < width; x++ {
			row[x*3+0] = byte((x * 3) % 256)
			row[x*3+1] = byte((y * 5) % 256)
			row[x*3+2] = byte((x + y) % 256)
		}
		rows[y] = row
	}
	return rows
}

func TestEncoder_FullLifecycleDecodesWithStandardLibrary(t *testing.T) {
	const width, height = 40, 25

	h, err := NewHeader(width, height, 8, Truecolor)
	if err != nil {
		t.Fatalf("NewHeader: %v", err)
	}

	opts, err := NewOptionsBuilder().Balanced().ChunkSize(minChunkSize).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf bytes.Buffer
	enc, err := NewEncoder(NewSink(&buf), opts, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	if err := enc.WriteHeader(h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	rows := buildTruecolorRows(width, height)
	for _, row := range rows {
		if err := enc.WriteImageRows([][]byte{row}); err != nil {
			t.Fatalf("WriteImageRows: %v", err)
		}
	}

	if err := enc.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !enc.IsFinished() {
		t.Error("IsFinished() = false after successful Finish")
	}
	if got := enc.Progress(); got != 1.0 {
		t.Errorf("Progress() = %v, want 1.0", got)
	}

	img, err := stdpng.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("standard library could not decode output: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		t.Fatalf("decoded size %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), width, height)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		nrgba, ok2 := img.(*image.NRGBA)
		if !ok2 {
			t.Fatalf("unexpected decoded image type %T", img)
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				want := rows[y][x*3 : x*3+3]
				got := nrgba.NRGBAAt(x, y)
				if got.R != want[0] || got.G != want[1] || got.B != want[2] {
					t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
				}
			}
		}
		return
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			want := rows[y][x*3 : x*3+3]
			got := rgba.RGBAAt(x, y)
			if got.R != want[0] || got.G != want[1] || got.B != want[2] {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestEncoder_WriteHeaderEmitsSignatureBeforeIHDR(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(NewSink(&buf), DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	h, _ := NewHeader(1, 1, 8, Truecolor)
	if err := enc.WriteHeader(h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	got := buf.Bytes()
	if len(got) < 8 || !bytes.Equal(got[:8], Signature[:]) {
		t.Fatalf("output does not start with the PNG signature: %x", got[:min(len(got), 8)])
	}
	if string(got[12:16]) != string(ChunkIHDR) {
		t.Fatalf("chunk following the signature is %q, want IHDR", got[12:16])
	}
}

// chunkTags walks a full PNG stream and returns every chunk tag in order,
// skipping the signature.
func chunkTags(t *testing.T, data []byte) []string {
	t.Helper()
	if len(data) < 8 {
		t.Fatalf("stream too short to contain a signature: %d bytes", len(data))
	}
	var tags []string
	offset := 8
	for offset+8 <= len(data) {
		length := int(data[offset])<<24 | int(data[offset+1])<<16 | int(data[offset+2])<<8 | int(data[offset+3])
		tag := string(data[offset+4 : offset+8])
		tags = append(tags, tag)
		offset += 8 + length + 4 // length + tag + payload + CRC
	}
	return tags
}

func TestEncoder_BufferedModeEmitsSingleIDATChunk(t *testing.T) {
	const width, height = 16, 16

	h, err := NewHeader(width, height, 8, Truecolor)
	if err != nil {
		t.Fatalf("NewHeader: %v", err)
	}
	opts, err := NewOptionsBuilder().ChunkSize(minChunkSize).Streaming(false).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf bytes.Buffer
	enc, err := NewEncoder(NewSink(&buf), opts, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.WriteHeader(h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	for _, row := range buildTruecolorRows(width, height) {
		if err := enc.WriteImageRows([][]byte{row}); err != nil {
			t.Fatalf("WriteImageRows: %v", err)
		}
	}
	if err := enc.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	tags := chunkTags(t, buf.Bytes())
	idatCount := 0
	for _, tag := range tags {
		if tag == string(ChunkIDAT) {
			idatCount++
		}
	}
	// One IDAT for the buffered payload, one for the Adler-32 footer.
	if idatCount != 2 {
		t.Fatalf("got %d IDAT chunks in buffered mode, want 2: %v", idatCount, tags)
	}

	if _, err := stdpng.Decode(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("standard library could not decode buffered output: %v", err)
	}
}

func TestEncoder_ProgressZeroBeforeAnyChunkLands(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(NewSink(&buf), DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if got := enc.Progress(); got != 0 {
		t.Errorf("Progress() before WriteHeader = %v, want 0", got)
	}

	h, _ := NewHeader(64, 64, 8, Truecolor)
	if err := enc.WriteHeader(h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if got := enc.Progress(); got != 0 {
		t.Errorf("Progress() before any row submitted = %v, want 0", got)
	}
}

func TestEncoder_RejectsWritesBeforeHeader(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(NewSink(&buf), DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.WriteImageRows([][]byte{{0}}); err != ErrHeaderNotWritten {
		t.Errorf("got %v, want ErrHeaderNotWritten", err)
	}
}

func TestEncoder_RejectsDoubleHeader(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(NewSink(&buf), DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	h, _ := NewHeader(1, 1, 8, Truecolor)
	if err := enc.WriteHeader(h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := enc.WriteHeader(h); err != ErrHeaderAlreadyWritten {
		t.Errorf("got %v, want ErrHeaderAlreadyWritten", err)
	}
}

func TestEncoder_FinishWithoutRowsIsIncomplete(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(NewSink(&buf), DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	h, _ := NewHeader(4, 4, 8, Truecolor)
	if err := enc.WriteHeader(h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := enc.Finish(); err != ErrIncompleteImage {
		t.Errorf("got %v, want ErrIncompleteImage", err)
	}
}

func TestEncoder_AncillaryChunkRejectedAfterRowsStart(t *testing.T) {
	var buf bytes.Buffer
	opts, _ := NewOptionsBuilder().ChunkSize(minChunkSize).Build()
	enc, err := NewEncoder(NewSink(&buf), opts, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	h, _ := NewHeader(2, 2, 8, Truecolor)
	if err := enc.WriteHeader(h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	for _, row := range buildTruecolorRows(2, 2) {
		if err := enc.WriteImageRows([][]byte{row}); err != nil {
			t.Fatalf("WriteImageRows: %v", err)
		}
	}
	if err := enc.WriteChunk("tEXt", []byte("hello")); err != ErrOutOfOrder {
		t.Errorf("got %v, want ErrOutOfOrder", err)
	}
	_ = enc.Finish()
}

func TestEncoder_CustomPoolIsNotClosedByEncoder(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Close()

	opts, _ := NewOptionsBuilder().ChunkSize(minChunkSize).Pool(pool).Build()
	var buf bytes.Buffer
	enc, err := NewEncoder(NewSink(&buf), opts, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	h, _ := NewHeader(2, 2, 8, Truecolor)
	if err := enc.WriteHeader(h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	for _, row := range buildTruecolorRows(2, 2) {
		if err := enc.WriteImageRows([][]byte{row}); err != nil {
			t.Fatalf("WriteImageRows: %v", err)
		}
	}
	if err := enc.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	// The pool must still be usable: a second encoder reusing it should
	// not panic on a closed task channel.
	opts2, _ := NewOptionsBuilder().ChunkSize(minChunkSize).Pool(pool).Build()
	var buf2 bytes.Buffer
	enc2, err := NewEncoder(NewSink(&buf2), opts2, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	h2, _ := NewHeader(2, 2, 8, Truecolor)
	if err := enc2.WriteHeader(h2); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	for _, row := range buildTruecolorRows(2, 2) {
		if err := enc2.WriteImageRows([][]byte{row}); err != nil {
			t.Fatalf("WriteImageRows: %v", err)
		}
	}
	if err := enc2.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}
