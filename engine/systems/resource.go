package systems

import (
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief Reads and decodes the files the scene is built from. Every method
 * wraps core.ErrAssetRead when the asset cannot be read and
 * core.ErrMalformedAsset when it cannot be parsed.
 */
type AssetProvider interface {
	components.BytecodeLoader
	LoadMesh(name string) (*metadata.MeshData, error)
	LoadCurve(name string) (*metadata.CurveData, error)
	LoadImage(name string) (*metadata.ImageData, error)
}
