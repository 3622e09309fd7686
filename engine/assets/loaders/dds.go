package loaders

import (
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const (
	DDS_MAGIC       uint32 = 0x20534444 // "DDS "
	DDS_HEADER_SIZE        = 124
	DDS_DATA_OFFSET        = 4 + DDS_HEADER_SIZE

	ddpfFourCC uint32 = 0x4
	ddpfRGB    uint32 = 0x40
)

func fourCC(code string) uint32 {
	return uint32(code[0]) | uint32(code[1])<<8 | uint32(code[2])<<16 | uint32(code[3])<<24
}

/**
 * @brief Parses a DDS file holding a 2D texture. DXT1/3/5 payloads are kept
 * compressed as BC1/2/3. 32-bit RGB(A) payloads are reordered to RGBA8.
 * Only the mip levels fully present in the file are kept.
 */
func ParseDDS(data []byte) (*metadata.ImageData, error) {
	if len(data) < DDS_DATA_OFFSET {
		return nil, fmt.Errorf("%w: dds file too short (%d bytes)", core.ErrMalformedAsset, len(data))
	}
	le := binary.LittleEndian
	if le.Uint32(data[0:]) != DDS_MAGIC {
		return nil, fmt.Errorf("%w: missing dds magic", core.ErrMalformedAsset)
	}
	if le.Uint32(data[4:]) != DDS_HEADER_SIZE {
		return nil, fmt.Errorf("%w: unexpected dds header size %d", core.ErrMalformedAsset, le.Uint32(data[4:]))
	}
	height := le.Uint32(data[12:])
	width := le.Uint32(data[16:])
	mips := le.Uint32(data[28:])
	if mips == 0 {
		mips = 1
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: dds size %dx%d", core.ErrMalformedAsset, width, height)
	}

	pfFlags := le.Uint32(data[80:])
	payload := data[DDS_DATA_OFFSET:]

	switch {
	case pfFlags&ddpfFourCC != 0:
		var format metadata.Format
		switch code := le.Uint32(data[84:]); code {
		case fourCC("DXT1"):
			format = metadata.FORMAT_BC1_UNORM
		case fourCC("DXT3"):
			format = metadata.FORMAT_BC2_UNORM
		case fourCC("DXT5"):
			format = metadata.FORMAT_BC3_UNORM
		default:
			return nil, fmt.Errorf("%w: unsupported dds fourcc %q", core.ErrMalformedAsset, string(data[84:88]))
		}
		return compressedLevels(payload, width, height, mips, format)
	case pfFlags&ddpfRGB != 0 && le.Uint32(data[88:]) == 32:
		masks := [4]uint32{le.Uint32(data[92:]), le.Uint32(data[96:]), le.Uint32(data[100:]), le.Uint32(data[104:])}
		return uncompressedLevel(payload, width, height, masks)
	default:
		return nil, fmt.Errorf("%w: unsupported dds pixel format flags %#x", core.ErrMalformedAsset, pfFlags)
	}
}

func blockCount(size uint32) uint32 {
	return max(1, (size+3)/4)
}

func compressedLevels(payload []byte, width, height, mips uint32, format metadata.Format) (*metadata.ImageData, error) {
	var total int
	kept := uint32(0)
	w, h := width, height
	for level := uint32(0); level < mips; level++ {
		size := uint64(blockCount(w)) * uint64(blockCount(h)) * uint64(format.Size())
		if uint64(total)+size > uint64(len(payload)) {
			break
		}
		total += int(size)
		kept++
		w, h = max(1, w/2), max(1, h/2)
	}
	if kept == 0 {
		return nil, fmt.Errorf("%w: dds payload shorter than the top mip level", core.ErrMalformedAsset)
	}
	if kept < mips {
		core.LogWarn("dds declares %d mip levels, only %d are present", mips, kept)
	}
	return &metadata.ImageData{
		Width:     width,
		Height:    height,
		Format:    format,
		MipLevels: kept,
		RowPitch:  blockCount(width) * format.Size(),
		Pixels:    payload[:total],
	}, nil
}

func maskShift(mask uint32) uint32 {
	if mask == 0 {
		return 0
	}
	shift := uint32(0)
	for mask&1 == 0 {
		mask >>= 1
		shift++
	}
	return shift
}

func uncompressedLevel(payload []byte, width, height uint32, masks [4]uint32) (*metadata.ImageData, error) {
	size64 := uint64(width) * uint64(height) * 4
	if uint64(len(payload)) < size64 {
		return nil, fmt.Errorf("%w: dds payload shorter than the top mip level", core.ErrMalformedAsset)
	}
	size := int(size64)
	pixels := make([]uint8, size)
	for i := 0; i < size; i += 4 {
		texel := binary.LittleEndian.Uint32(payload[i:])
		for c, mask := range masks {
			if mask == 0 {
				pixels[i+c] = 0xff
				continue
			}
			pixels[i+c] = uint8((texel & mask) >> maskShift(mask))
		}
	}
	return &metadata.ImageData{
		Width:     width,
		Height:    height,
		Format:    metadata.FORMAT_R8G8B8A8_UNORM,
		MipLevels: 1,
		RowPitch:  width * 4,
		Pixels:    pixels,
	}, nil
}
