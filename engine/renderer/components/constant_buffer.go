package components

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief A GPU constant buffer holding one T. T must be a fixed-size record
 * of float32 fields; the buffer is padded to a multiple of 16 bytes. Updates
 * always overwrite the whole buffer.
 */
type ConstantBuffer[T any] struct {
	name   string
	size   uint32
	buffer metadata.Buffer
}

func NewConstantBuffer[T any](name string) *ConstantBuffer[T] {
	var zero T
	return &ConstantBuffer[T]{
		name: name,
		size: uint32(metadata.GetAligned(uint64(binary.Size(zero)), 16)),
	}
}

// Size is the padded byte width of the buffer.
func (cb *ConstantBuffer[T]) Size() uint32 {
	return cb.size
}

func (cb *ConstantBuffer[T]) Buffer() metadata.Buffer {
	return cb.buffer
}

func (cb *ConstantBuffer[T]) Load(device renderer.Device) error {
	if cb.size == 0 {
		return fmt.Errorf("%w: constant buffer %s holds a type without a fixed size", core.ErrResourceCreation, cb.name)
	}
	buffer, err := device.CreateBuffer(metadata.BufferDesc{
		ByteWidth: cb.size,
		Usage:     metadata.USAGE_DEFAULT,
		BindFlags: metadata.BIND_CONSTANT_BUFFER,
	}, nil)
	if err != nil {
		return fmt.Errorf("constant buffer %s: %w", cb.name, err)
	}
	cb.buffer = buffer
	return nil
}

func (cb *ConstantBuffer[T]) encode(data *T) ([]byte, error) {
	out := bytes.NewBuffer(make([]byte, 0, cb.size))
	if err := binary.Write(out, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	out.Write(make([]byte, int(cb.size)-out.Len()))
	return out.Bytes(), nil
}

// Update uploads data over the whole buffer.
func (cb *ConstantBuffer[T]) Update(ctx renderer.Context, data *T) error {
	if cb.buffer == nil {
		return fmt.Errorf("%w: constant buffer %s updated before load", core.ErrNotReady, cb.name)
	}
	raw, err := cb.encode(data)
	if err != nil {
		return fmt.Errorf("constant buffer %s: %w", cb.name, err)
	}
	return ctx.UpdateSubresource(cb.buffer, raw)
}

// Use binds the buffer at slot of every given stage.
func (cb *ConstantBuffer[T]) Use(ctx renderer.Context, slot uint32, stages ...metadata.ShaderStage) error {
	if cb.buffer == nil {
		return fmt.Errorf("%w: constant buffer %s used before load", core.ErrNotReady, cb.name)
	}
	for _, stage := range stages {
		if err := ctx.SetConstantBuffers(stage, slot, []metadata.Buffer{cb.buffer}); err != nil {
			return err
		}
	}
	return nil
}

func (cb *ConstantBuffer[T]) Reset() {
	if cb.buffer != nil {
		cb.buffer.Release()
		cb.buffer = nil
	}
}
