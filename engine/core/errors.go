package core

import (
	"errors"
)

var (
	// resource creation
	ErrResourceCreation = errors.New("gpu resource creation failed")
	ErrReleasedHandle   = errors.New("handle used after release")

	// asset reads
	ErrAssetRead      = errors.New("asset could not be read")
	ErrMalformedAsset = errors.New("asset is malformed")

	// pipeline state
	ErrNotReady            = errors.New("renderer is not ready")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrShaderNotLoaded     = errors.New("shader stage used before it finished loading")
	ErrFramebufferNotReady = errors.New("framebuffer used before it was loaded")
	ErrBoundAsTarget       = errors.New("resource is bound as a render target")
	ErrBoundAsTexture      = errors.New("resource is bound as a shader resource")
	ErrInvalidSlot         = errors.New("binding slot out of range")
	ErrLayoutMismatch      = errors.New("vertex buffers do not match the input layout")
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrIncompletePipeline  = errors.New("pipeline is missing a required binding")

	ErrUnknown = errors.New("unknown")
)
