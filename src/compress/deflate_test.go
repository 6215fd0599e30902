package compress

import (
	"bytes"
	"compress/flate"
	"testing"
)

func TestDeflateWriter_FinishProducesValidStream(t *testing.T) {
	dw, err := NewDeflateWriter(6, 15, StrategyDefault)
	if err != nil {
		t.Fatalf("NewDeflateWriter: %v", err)
	}

	input := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 50)
	out, err := dw.Write(input, Finish)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := flate.NewReader(bytes.NewReader(out))
	defer r.Close()
	var got bytes.Buffer
	if _, err := got.ReadFrom(r); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got.Bytes(), input) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", got.Len(), len(input))
	}
}

func TestDeflateWriter_SyncFlushThenFinishConcatenates(t *testing.T) {
	dw, err := NewDeflateWriter(6, 15, StrategyDefault)
	if err != nil {
		t.Fatalf("NewDeflateWriter: %v", err)
	}

	part1 := bytes.Repeat([]byte("alpha beta gamma "), 20)
	chunk1, err := dw.Write(part1, SyncFlush)
	if err != nil {
		t.Fatalf("Write 1: %v", err)
	}

	part2 := bytes.Repeat([]byte("delta epsilon zeta "), 20)
	chunk2, err := dw.Write(part2, Finish)
	if err != nil {
		t.Fatalf("Write 2: %v", err)
	}

	all := append(append([]byte{}, chunk1...), chunk2...)
	r := flate.NewReader(bytes.NewReader(all))
	defer r.Close()
	var got bytes.Buffer
	if _, err := got.ReadFrom(r); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	want := append(append([]byte{}, part1...), part2...)
	if !bytes.Equal(got.Bytes(), want) {
		t.Fatalf("round trip mismatch after sync flush: got %d bytes, want %d", got.Len(), len(want))
	}
}

func TestDeflateWriter_DictionaryEnablesCrossChunkBackreferences(t *testing.T) {
	dict := bytes.Repeat([]byte("reusable-window-contents "), 200)

	dw, err := NewDeflateWriter(6, 15, StrategyDefault)
	if err != nil {
		t.Fatalf("NewDeflateWriter: %v", err)
	}
	if err := dw.SetDictionary(dict); err != nil {
		t.Fatalf("SetDictionary: %v", err)
	}

	// Input that is nothing but the dictionary's content should compress to
	// almost nothing once the dictionary primes the window.
	out, err := dw.Write(dict, Finish)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if len(out) >= len(dict) {
		t.Fatalf("dictionary priming did not shrink output: got %d bytes for %d bytes of input", len(out), len(dict))
	}

	r := flate.NewReaderDict(bytes.NewReader(out), dict)
	defer r.Close()
	var got bytes.Buffer
	if _, err := got.ReadFrom(r); err != nil {
		t.Fatalf("decompress with dict: %v", err)
	}
	if !bytes.Equal(got.Bytes(), dict) {
		t.Fatalf("round trip with dictionary mismatch")
	}
}

func TestDeflateWriter_SetDictionaryAfterWriteFails(t *testing.T) {
	dw, err := NewDeflateWriter(6, 15, StrategyDefault)
	if err != nil {
		t.Fatalf("NewDeflateWriter: %v", err)
	}
	if _, err := dw.Write([]byte("x"), SyncFlush); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := dw.SetDictionary([]byte("too late")); err == nil {
		t.Fatal("expected error setting dictionary after Write")
	}
}

func TestDeflateWriter_HuffmanOnlyStrategy(t *testing.T) {
	dw, err := NewDeflateWriter(6, 15, StrategyHuffmanOnly)
	if err != nil {
		t.Fatalf("NewDeflateWriter: %v", err)
	}
	input := bytes.Repeat([]byte{0xAB}, 1000)
	out, err := dw.Write(input, Finish)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := flate.NewReader(bytes.NewReader(out))
	defer r.Close()
	var got bytes.Buffer
	if _, err := got.ReadFrom(r); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got.Bytes(), input) {
		t.Fatal("huffman-only round trip mismatch")
	}
}

func TestLevelFor(t *testing.T) {
	cases := map[Level]int{
		LevelFast:    1,
		LevelDefault: 6,
		LevelHigh:    9,
	}
	for lvl, want := range cases {
		if got := LevelFor(lvl); got != want {
			t.Errorf("LevelFor(%v) = %d, want %d", lvl, got, want)
		}
	}
}
