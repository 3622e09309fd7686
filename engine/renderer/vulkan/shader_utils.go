package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/assets/loaders"
)

/**
 * @brief Builds the module create info for a compiled stage. Vulkan consumes
 * code as 32-bit words, so the size must be a multiple of four.
 */
func DescribeShaderModule(name string, bytecode []byte) (vk.ShaderModuleCreateInfo, error) {
	if len(bytecode) == 0 || len(bytecode)%4 != 0 {
		return vk.ShaderModuleCreateInfo{}, fmt.Errorf("%w: shader %s is %d bytes, not a whole number of words", ErrUntranslatable, name, len(bytecode))
	}
	return vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(bytecode)),
		PCode:    loaders.BytecodeWords(bytecode),
	}, nil
}
