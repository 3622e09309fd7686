package loaders

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief Loads textures from disk. DDS files keep their block compressed
 * payload and mip chain; everything else is decoded and converted to RGBA8.
 */
type TextureLoader struct{}

func (tl *TextureLoader) Load(path string) (*metadata.ImageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAssetRead, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".dds") {
		img, err := ParseDDS(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return img, nil
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// DecodeImage decodes any registered image format into a single RGBA8 level.
func DecodeImage(data []byte) (*metadata.ImageData, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedAsset, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	core.LogDebug("decoded %s image %dx%d", format, bounds.Dx(), bounds.Dy())
	return &metadata.ImageData{
		Width:     uint32(bounds.Dx()),
		Height:    uint32(bounds.Dy()),
		Format:    metadata.FORMAT_R8G8B8A8_UNORM,
		MipLevels: 1,
		RowPitch:  uint32(rgba.Stride),
		Pixels:    rgba.Pix,
	}, nil
}
