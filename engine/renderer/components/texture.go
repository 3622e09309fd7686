package components

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief An immutable sampled texture. It can be bound to the pixel stage
 * for colour and normal maps or to the domain stage for displacement.
 */
type Texture struct {
	Name string

	desc    metadata.TextureDesc
	texture metadata.Texture2D
	view    metadata.View
}

func NewTexture(name string) *Texture {
	return &Texture{Name: name}
}

func (t *Texture) View() metadata.View {
	return t.view
}

func (t *Texture) Desc() metadata.TextureDesc {
	return t.desc
}

func (t *Texture) Load(device renderer.Device, image *metadata.ImageData) error {
	if image == nil || image.Width == 0 || image.Height == 0 || len(image.Pixels) == 0 {
		return fmt.Errorf("%w: texture %s has no pixels", core.ErrMalformedAsset, t.Name)
	}
	t.Reset()
	mips := image.MipLevels
	if mips == 0 {
		mips = 1
	}
	desc := metadata.TextureDesc{
		Width:     image.Width,
		Height:    image.Height,
		MipLevels: mips,
		ArraySize: 1,
		Format:    image.Format,
		Usage:     metadata.USAGE_IMMUTABLE,
		BindFlags: metadata.BIND_SHADER_RESOURCE,
	}
	texture, err := device.CreateTexture2D(desc, image.Pixels)
	if err != nil {
		return fmt.Errorf("texture %s: %w", t.Name, err)
	}
	view, err := device.CreateShaderResourceView(texture, image.Format)
	if err != nil {
		texture.Release()
		return fmt.Errorf("texture %s: %w", t.Name, err)
	}
	t.desc, t.texture, t.view = desc, texture, view
	core.LogDebug("texture %s loaded (%dx%d %s, %d mips)", t.Name, image.Width, image.Height, image.Format, mips)
	return nil
}

func (t *Texture) bind(ctx renderer.Context, stage metadata.ShaderStage, slot uint32, view metadata.View) error {
	if t.view == nil {
		err := fmt.Errorf("%w: texture %s used before load", core.ErrNotReady, t.Name)
		core.LogError("%v", err)
		return err
	}
	return ctx.SetShaderResources(stage, slot, []metadata.View{view})
}

// UseTexture binds the texture at slot of the pixel stage.
func (t *Texture) UseTexture(ctx renderer.Context, slot uint32) error {
	return t.bind(ctx, metadata.SHADER_STAGE_PIXEL, slot, t.view)
}

func (t *Texture) ReleaseTexture(ctx renderer.Context, slot uint32) error {
	return t.bind(ctx, metadata.SHADER_STAGE_PIXEL, slot, nil)
}

// UseDomainTexture binds the texture at slot of the domain stage.
func (t *Texture) UseDomainTexture(ctx renderer.Context, slot uint32) error {
	return t.bind(ctx, metadata.SHADER_STAGE_DOMAIN, slot, t.view)
}

func (t *Texture) ReleaseDomainTexture(ctx renderer.Context, slot uint32) error {
	return t.bind(ctx, metadata.SHADER_STAGE_DOMAIN, slot, nil)
}

func (t *Texture) Reset() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
