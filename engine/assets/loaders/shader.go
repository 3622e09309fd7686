package loaders

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/prism/engine/core"
)

// ShaderLoader reads compiled shader objects from disk.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAssetRead, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", core.ErrMalformedAsset, path)
	}
	return data, nil
}
