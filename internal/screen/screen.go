// Package screen provides pixel sources for the color commands.
package screen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrOutOfBounds is returned when a pixel lies outside the frame.
	ErrOutOfBounds = errors.New("pixel out of bounds")

	// ErrNoFrame is returned by None.
	ErrNoFrame = errors.New("no screen frame configured")
)

// Sampler reads single pixels from a screen or a captured frame.
type Sampler interface {
	Pixel(x, y int) (color.RGBA, error)
}

// None is a Sampler without a frame. Every read fails with ErrNoFrame.
type None struct{}

func (None) Pixel(x, y int) (color.RGBA, error) {
	return color.RGBA{}, ErrNoFrame
}

// ImageSampler serves pixels from an image file. The file is decoded on
// the first Pixel call and kept for the sampler's lifetime.
type ImageSampler struct {
	path string

	once sync.Once
	img  image.Image
	err  error
}

// NewImageSampler returns a sampler over the PNG, JPEG or GIF at path.
func NewImageSampler(path string) *ImageSampler {
	return &ImageSampler{path: path}
}

// FromImage returns a sampler over an already decoded image.
func FromImage(img image.Image) *ImageSampler {
	s := &ImageSampler{img: img}
	s.once.Do(func() {})
	return s
}

func (s *ImageSampler) load() {
	f, err := os.Open(s.path)
	if err != nil {
		s.err = fmt.Errorf("failed to open frame: %w", err)
		return
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		s.err = fmt.Errorf("failed to decode frame %s: %w", s.path, err)
		return
	}
	s.img = img
}

// Pixel returns the color at (x, y) relative to the frame's top-left corner.
func (s *ImageSampler) Pixel(x, y int) (color.RGBA, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return color.RGBA{}, s.err
	}

	b := s.img.Bounds()
	p := image.Pt(b.Min.X+x, b.Min.Y+y)
	if x < 0 || y < 0 || !p.In(b) {
		return color.RGBA{}, fmt.Errorf("%w: (%d, %d) not in %dx%d", ErrOutOfBounds, x, y, b.Dx(), b.Dy())
	}
	return color.RGBAModel.Convert(s.img.At(p.X, p.Y)).(color.RGBA), nil
}

// ParseHex parses "#rrggbb" (the leading '#' is optional).
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Within reports whether every channel of a and b differs by at most tol.
func Within(a, b color.RGBA, tol int) bool {
	return absDiff(a.R, b.R) <= tol && absDiff(a.G, b.G) <= tol && absDiff(a.B, b.B) <= tol
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
