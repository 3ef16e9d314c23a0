package common

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// DecodeRGBE decodes a Radiance RGBE (.hdr) image into linear RGBA float32
// pixels. Both flat and run-length encoded scanlines are supported. The Go
// image registry has no Radiance decoder, so this is implemented directly.
//
// Format reference: https://radsite.lbl.gov/radiance/refer/filefmts.pdf
//
// Parameters:
//   - data: the raw file contents
//
// Returns:
//   - []float32: linear RGBA pixel data (alpha fixed at 1.0)
//   - uint32: image width in pixels
//   - uint32: image height in pixels
//   - error: error if the header or scanline data is malformed
func DecodeRGBE(data []byte) ([]float32, uint32, uint32, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	magic, err := r.ReadString('\n')
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read radiance magic line: %w", err)
	}
	if !strings.HasPrefix(magic, "#?") {
		return nil, 0, 0, fmt.Errorf("not a radiance file (missing #? magic)")
	}

	// Header lines until the blank separator. FORMAT is the only one we care about.
	formatOK := false
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, 0, 0, fmt.Errorf("unexpected end of radiance header: %w", err)
		}
		line = strings.TrimRight(line, "\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "FORMAT=") {
			format := strings.TrimPrefix(line, "FORMAT=")
			if format != "32-bit_rle_rgbe" {
				return nil, 0, 0, fmt.Errorf("unsupported radiance format %q", format)
			}
			formatOK = true
		}
	}
	if !formatOK {
		return nil, 0, 0, fmt.Errorf("radiance header missing FORMAT line")
	}

	resLine, err := r.ReadString('\n')
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read radiance resolution line: %w", err)
	}
	var height, width uint32
	if _, err := fmt.Sscanf(resLine, "-Y %d +X %d", &height, &width); err != nil {
		return nil, 0, 0, fmt.Errorf("unsupported radiance resolution line %q", strings.TrimSpace(resLine))
	}
	if width == 0 || height == 0 {
		return nil, 0, 0, fmt.Errorf("invalid radiance dimensions %dx%d", width, height)
	}

	pixels := make([]float32, width*height*4)
	scanline := make([]byte, width*4)

	for y := uint32(0); y < height; y++ {
		if err := readRGBEScanline(r, scanline, width); err != nil {
			return nil, 0, 0, fmt.Errorf("failed to read radiance scanline %d: %w", y, err)
		}
		for x := uint32(0); x < width; x++ {
			rgbe := scanline[x*4 : x*4+4]
			out := pixels[(y*width+x)*4 : (y*width+x)*4+4]
			if rgbe[3] == 0 {
				out[0], out[1], out[2] = 0, 0, 0
			} else {
				// value = mantissa * 2^(exponent - 136), per the radiance spec.
				scale := math32.Exp2(float32(rgbe[3]) - 136)
				out[0] = float32(rgbe[0]) * scale
				out[1] = float32(rgbe[1]) * scale
				out[2] = float32(rgbe[2]) * scale
			}
			out[3] = 1
		}
	}

	return pixels, width, height, nil
}

// readRGBEScanline reads one scanline into dst as interleaved RGBE bytes.
// Handles both the new RLE encoding (component-planar runs) and flat records.
func readRGBEScanline(r *bufio.Reader, dst []byte, width uint32) error {
	header := make([]byte, 4)
	if _, err := readFull(r, header); err != nil {
		return err
	}

	if header[0] == 2 && header[1] == 2 && uint32(header[2])<<8|uint32(header[3]) == width {
		// New RLE: each of the 4 components is encoded as a run sequence.
		for c := 0; c < 4; c++ {
			x := uint32(0)
			for x < width {
				count, err := r.ReadByte()
				if err != nil {
					return err
				}
				if count > 128 {
					// Run of a repeated byte.
					n := uint32(count) - 128
					if x+n > width {
						return fmt.Errorf("rle run overflows scanline")
					}
					value, err := r.ReadByte()
					if err != nil {
						return err
					}
					for i := uint32(0); i < n; i++ {
						dst[(x+i)*4+uint32(c)] = value
					}
					x += n
				} else {
					// Literal bytes.
					n := uint32(count)
					if n == 0 || x+n > width {
						return fmt.Errorf("rle literal overflows scanline")
					}
					for i := uint32(0); i < n; i++ {
						value, err := r.ReadByte()
						if err != nil {
							return err
						}
						dst[(x+i)*4+uint32(c)] = value
					}
					x += n
				}
			}
		}
		return nil
	}

	// Flat encoding: the header is the first pixel, the rest follow directly.
	copy(dst[0:4], header)
	_, err := readFull(r, dst[4:width*4])
	return err
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
