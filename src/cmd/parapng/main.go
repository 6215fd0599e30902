// Command parapng decodes an input image and re-encodes it as PNG through
// the parallel chunk pipeline, as a thin demonstration of the Encoder API.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/mac/parapng/src/png"
	"github.com/mac/parapng/src/workerpool"
)

func main() {
	var (
		inputFile  = flag.String("input", "", "input image file (PNG or JPEG)")
		outputFile = flag.String("output", "", "output PNG file (default: input with .png extension)")
		chunkSize  = flag.Int("chunk-size", 256*1024, "target bytes per parallel chunk")
		threads    = flag.Int("threads", 0, "worker count (0 = runtime.GOMAXPROCS)")
		preset     = flag.String("preset", "balanced", "fast, balanced, or max")
		verbose    = flag.Bool("verbose", false, "emit debug scheduling traces")
	)
	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -input is required")
		flag.Usage()
		os.Exit(1)
	}
	if *outputFile == "" {
		*outputFile = stripExt(*inputFile) + ".png"
	}

	if err := run(*inputFile, *outputFile, *chunkSize, *threads, *preset, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputFile, outputFile string, chunkSize, threads int, preset string, verbose bool) error {
	file, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	fmt.Printf("decoded %s image: %dx%d\n", format, width, height)

	rows, colorType := toRows(img)

	header, err := png.NewHeader(uint32(width), uint32(height), 8, colorType)
	if err != nil {
		return fmt.Errorf("building header: %w", err)
	}

	builder := png.NewOptionsBuilder().ChunkSize(chunkSize)
	switch preset {
	case "fast":
		builder = builder.Fast()
	case "max":
		builder = builder.Max()
	default:
		builder = builder.Balanced()
	}
	if threads > 0 {
		pool := workerpool.New(threads)
		defer pool.Close()
		builder = builder.Pool(pool)
	}
	opts, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building options: %w", err)
	}

	var logger *zerolog.Logger
	if verbose {
		l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
		logger = &l
	}

	outFile, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	bw := bufio.NewWriter(outFile)
	sink := png.NewBufferedSink(bw)

	enc, err := png.NewEncoder(sink, opts, logger)
	if err != nil {
		return fmt.Errorf("creating encoder: %w", err)
	}
	if err := enc.WriteHeader(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := enc.WriteImageRows(rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	if err := enc.Finish(); err != nil {
		return fmt.Errorf("finishing encode: %w", err)
	}

	info, err := outFile.Stat()
	if err != nil {
		return fmt.Errorf("stat output file: %w", err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", outputFile, info.Size())
	return nil
}

// toRows extracts 8-bit Truecolor (RGB) or TruecolorAlpha (RGBA) rows from
// a decoded image, choosing alpha output whenever the decoded image is an
// *image.NRGBA or *image.RGBA, whether or not its pixels use alpha.
func toRows(img image.Image) ([][]byte, png.ColorType) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	_, hasAlpha := img.(*image.NRGBA)
	_, hasAlpha2 := img.(*image.RGBA)
	withAlpha := hasAlpha || hasAlpha2

	colorType := png.Truecolor
	channels := 3
	if withAlpha {
		colorType = png.TruecolorAlpha
		channels = 4
	}

	rows := make([][]byte, height)
	for y := 0; y < height; y++ {
		row := make([]byte, width*channels)
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			row[x*channels+0] = byte(r >> 8)
			row[x*channels+1] = byte(g >> 8)
			row[x*channels+2] = byte(b >> 8)
			if withAlpha {
				row[x*channels+3] = byte(a >> 8)
			}
		}
		rows[y] = row
	}
	return rows, colorType
}

func stripExt(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i]
		}
		if filename[i] == '/' {
			break
		}
	}
	return filename
}
