package gekko

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrCubeFaceSize     = errors.New("cube faces must be square and equally sized")
)

var supportedImageTypes = map[string]bool{
	"png":  true,
	"jpg":  true,
	"bmp":  true,
	"webp": true,
}

func decodeImageFile(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	kind, err := filetype.Image(data)
	if err != nil || !supportedImageTypes[kind.Extension] {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedImage)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

func decodeTextureFile(path string, flipY bool) (int, int, []byte, error) {
	img, err := decodeImageFile(path)
	if err != nil {
		return 0, 0, nil, err
	}
	if flipY {
		img = transform.FlipV(img)
	}
	return img.Rect.Dx(), img.Rect.Dy(), img.Pix, nil
}

func decodeCubeFaces(paths []string) (int, int, []byte, error) {
	var size int
	var pixels []byte
	for i, path := range paths {
		img, err := decodeImageFile(path)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("face %d: %w", i, err)
		}
		w, h := img.Rect.Dx(), img.Rect.Dy()
		if i == 0 {
			size = w
			pixels = make([]byte, 0, 6*w*w*4)
		}
		if w != h || w != size {
			return 0, 0, nil, fmt.Errorf("face %d is %dx%d: %w", i, w, h, ErrCubeFaceSize)
		}
		pixels = append(pixels, img.Pix...)
	}
	return size, size, pixels, nil
}
