package texture

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when a texture file is not an image format reactor can decode.
var ErrUnsupportedFormat = errors.New("texture: unsupported image format")

// headerSize is the number of leading bytes filetype needs to identify a file.
const headerSize = 262

// decodable lists the extensions reported by filetype that have a registered image decoder.
var decodable = map[string]bool{
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"tif":  true,
	"webp": true,
}

// Texture is a row-major grid of linear RGB texels ready to be appended to the global texture buffer.
type Texture struct {
	// Width is the texel count per row.
	Width uint32
	// Height is the row count.
	Height uint32
	// Data holds Width*Height texels, top row first.
	Data [][3]float32
}

// NewFromColor returns a 1x1 texture holding a single color.
//
// Parameters:
//   - c: the texel color
//
// Returns:
//   - Texture: the single texel texture
func NewFromColor(c common.Vec3) Texture {
	return Texture{
		Width:  1,
		Height: 1,
		Data:   [][3]float32{{c[0], c[1], c[2]}},
	}
}

// LoadScaled reads the image at path and multiplies every channel by scale/255.
// The format is identified from the file header, not the extension.
//
// Parameters:
//   - path: the image file path
//   - scale: the intensity multiplier applied to every texel
//
// Returns:
//   - Texture: the decoded texture
//   - error: an error if the file cannot be read or is not a supported image
func LoadScaled(path string, scale float32) (Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Texture{}, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()

	tex, err := Decode(f, scale)
	if err != nil {
		return Texture{}, fmt.Errorf("texture: load %s: %w", path, err)
	}
	return tex, nil
}

// Decode decodes an image stream into a texture, scaling each channel by scale/255.
//
// Parameters:
//   - r: the encoded image stream
//   - scale: the intensity multiplier applied to every texel
//
// Returns:
//   - Texture: the decoded texture
//   - error: ErrUnsupportedFormat for unknown content, or the decoder error
func Decode(r io.Reader, scale float32) (Texture, error) {
	br := bufio.NewReaderSize(r, headerSize)
	head, err := br.Peek(headerSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return Texture{}, err
	}

	kind, _ := filetype.Match(head)
	if kind == filetype.Unknown || kind.MIME.Type != "image" || !decodable[kind.Extension] {
		return Texture{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}

	img, _, err := image.Decode(br)
	if err != nil {
		return Texture{}, err
	}
	return FromImage(img, scale), nil
}

// FromImage converts a decoded image into a texture, scaling each channel by scale/255.
//
// Parameters:
//   - img: the source image
//   - scale: the intensity multiplier applied to every texel
//
// Returns:
//   - Texture: the converted texture
func FromImage(img image.Image, scale float32) Texture {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	texScale := scale / 255
	data := make([][3]float32, 0, width*height)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			data = append(data, [3]float32{
				texScale * float32(p.R),
				texScale * float32(p.G),
				texScale * float32(p.B),
			})
		}
	}

	return Texture{
		Width:  uint32(width),
		Height: uint32(height),
		Data:   data,
	}
}

// Len returns the number of texels.
func (t Texture) Len() int {
	return len(t.Data)
}

// Bytes returns the texel data as raw bytes for GPU upload.
func (t Texture) Bytes() []byte {
	return common.SliceToBytes(t.Data)
}
