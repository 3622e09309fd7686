//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const (
	shaderSourceDir = "shaders"
	shaderOutputDir = "assets/shaders"
)

// shaderProfiles maps the suffix of a shader file to its fxc target profile.
var shaderProfiles = []struct {
	suffix  string
	profile string
}{
	{"VertexShader.hlsl", "vs_5_0"},
	{"HullShader.hlsl", "hs_5_0"},
	{"DomainShader.hlsl", "ds_5_0"},
	{"GeometryShader.hlsl", "gs_5_0"},
	{"PixelShader.hlsl", "ps_5_0"},
}

func shaderProfile(name string) (string, error) {
	for _, sp := range shaderProfiles {
		if strings.HasSuffix(name, sp.suffix) {
			return sp.profile, nil
		}
	}
	return "", fmt.Errorf("cannot tell the shader stage of %s", name)
}

// Compiles every HLSL source under shaders/ into assets/shaders/*.cso.
func (Build) Shaders() error {
	sources, err := filepath.Glob(filepath.Join(shaderSourceDir, "*.hlsl"))
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Println("no shader sources found, skipping")
		return nil
	}
	if err := os.MkdirAll(shaderOutputDir, 0o755); err != nil {
		return err
	}
	for _, src := range sources {
		name := filepath.Base(src)
		profile, err := shaderProfile(name)
		if err != nil {
			return err
		}
		out := filepath.Join(shaderOutputDir, strings.TrimSuffix(name, ".hlsl")+".cso")
		if _, err := executeCmd("fxc", withArgs("/nologo", "/T", profile, "/E", "main", "/Fo", out, src), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Tidies the module and builds the binary into bin/.
func (Build) Binary() error {
	if err := goTidy(); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "prism"), "."), withStream())
	return err
}
