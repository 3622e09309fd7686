package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func DescribeTexture(desc metadata.TextureDesc) (vk.ImageCreateInfo, error) {
	format, err := Format(desc.Format)
	if err != nil {
		return vk.ImageCreateInfo{}, err
	}
	if desc.Width == 0 || desc.Height == 0 {
		return vk.ImageCreateInfo{}, fmt.Errorf("%w: texture size %dx%d", ErrUntranslatable, desc.Width, desc.Height)
	}
	var usage vk.ImageUsageFlags
	if desc.BindFlags.Has(metadata.BIND_SHADER_RESOURCE) {
		usage |= vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	}
	if desc.BindFlags.Has(metadata.BIND_RENDER_TARGET) {
		usage |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	}
	if desc.BindFlags.Has(metadata.BIND_DEPTH_STENCIL) {
		usage |= vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
	}
	if desc.Usage == metadata.USAGE_IMMUTABLE {
		// Initial data arrives through a staging copy.
		usage |= vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)
	}
	mips := desc.MipLevels
	if mips == 0 {
		mips = 1
	}
	layers := desc.ArraySize
	if layers == 0 {
		layers = 1
	}
	return vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  desc.Width,
			Height: desc.Height,
			Depth:  1,
		},
		MipLevels:     mips,
		ArrayLayers:   layers,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil
}

func DescribeBuffer(desc metadata.BufferDesc) (vk.BufferCreateInfo, error) {
	if desc.ByteWidth == 0 {
		return vk.BufferCreateInfo{}, fmt.Errorf("%w: empty buffer", ErrUntranslatable)
	}
	usage := vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)
	if desc.BindFlags.Has(metadata.BIND_VERTEX_BUFFER) {
		usage |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	if desc.BindFlags.Has(metadata.BIND_INDEX_BUFFER) {
		usage |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	if desc.BindFlags.Has(metadata.BIND_CONSTANT_BUFFER) {
		usage |= vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}
	return vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(desc.ByteWidth),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil
}

func DescribeSampler(desc metadata.SamplerDesc) vk.SamplerCreateInfo {
	filter, mip := vk.FilterNearest, vk.SamplerMipmapModeNearest
	if desc.Filter == metadata.FILTER_MIN_MAG_MIP_LINEAR {
		filter, mip = vk.FilterLinear, vk.SamplerMipmapModeLinear
	}
	address := func(m metadata.TextureAddressMode) vk.SamplerAddressMode {
		if m == metadata.TEXTURE_ADDRESS_CLAMP {
			return vk.SamplerAddressModeClampToEdge
		}
		return vk.SamplerAddressModeRepeat
	}
	return vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               filter,
		MinFilter:               filter,
		MipmapMode:              mip,
		AddressModeU:            address(desc.AddressU),
		AddressModeV:            address(desc.AddressV),
		AddressModeW:            address(desc.AddressW),
		AnisotropyEnable:        bool32(desc.MaxAnisotropy > 1),
		MaxAnisotropy:           float32(max(desc.MaxAnisotropy, 1)),
		CompareEnable:           vk.False,
		CompareOp:               CompareOp(desc.ComparisonFunc),
		MinLod:                  desc.MinLOD,
		MaxLod:                  desc.MaxLOD,
		BorderColor:             vk.BorderColorFloatTransparentBlack,
		UnnormalizedCoordinates: vk.False,
	}
}
