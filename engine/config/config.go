package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/prism/engine/core"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type WindowConfig struct {
	// The application name used in logs and window titles.
	Name   string `toml:"name"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RenderConfig struct {
	TessellationFactor float32    `toml:"tessellation_factor"`
	HeightScale        float32    `toml:"height_scale"`
	Wireframe          bool       `toml:"wireframe"`
	FovDegrees         float32    `toml:"fov_degrees"`
	NearPlane          float32    `toml:"near_plane"`
	FarPlane           float32    `toml:"far_plane"`
	DegreesPerSecond   float32    `toml:"degrees_per_second"`
	ClearColor         [4]float32 `toml:"clear_color"`
}

type CameraConfig struct {
	AngleSpeed    float32    `toml:"angle_speed"`
	MovementSpeed float32    `toml:"movement_speed"`
	Eye           [3]float32 `toml:"eye"`
	Target        [3]float32 `toml:"target"`
	Up            [3]float32 `toml:"up"`
}

type LightConfig struct {
	Position [4]float32 `toml:"position"`
	Color    [4]float32 `toml:"color"`
	Ambient  [4]float32 `toml:"ambient"`
}

type RayConfig struct {
	LightPosition     [4]float32 `toml:"light_position"`
	MaxSteps          uint32     `toml:"max_steps"`
	HitEpsilon        float32    `toml:"hit_epsilon"`
	MaxDistance       float32    `toml:"max_distance"`
	ReflectionBounces uint32     `toml:"reflection_bounces"`
}

type AssetsConfig struct {
	// Root of every asset; the other directories are relative to it.
	Dir        string `toml:"dir"`
	ShaderDir  string `toml:"shader_dir"`
	TextureDir string `toml:"texture_dir"`
	MeshDir    string `toml:"mesh_dir"`
	// Watch the asset tree and the configuration file for changes.
	Watch bool `toml:"watch"`
}

type LogConfig struct {
	Level core.LogLevel `toml:"level"`
}

/**
 * @brief The application configuration. Keys missing from the file keep the
 * values of Default.
 */
type Config struct {
	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
	Camera CameraConfig `toml:"camera"`
	Light  LightConfig  `toml:"light"`
	Ray    RayConfig    `toml:"ray"`
	Assets AssetsConfig `toml:"assets"`
	Log    LogConfig    `toml:"log"`
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Name:   "Prism",
			Width:  1280,
			Height: 720,
		},
		Render: RenderConfig{
			TessellationFactor: 8,
			HeightScale:        0.1,
			FovDegrees:         70,
			NearPlane:          0.01,
			FarPlane:           100,
			DegreesPerSecond:   45,
			ClearColor:         [4]float32{0, 0, 0, 1},
		},
		Camera: CameraConfig{
			AngleSpeed:    1,
			MovementSpeed: 2,
			Eye:           [3]float32{0, 0, 5},
			Target:        [3]float32{0, 0, 0},
			Up:            [3]float32{0, 1, 0},
		},
		Light: LightConfig{
			Position: [4]float32{0, 3, 3, 1},
			Color:    [4]float32{1, 1, 1, 1},
			Ambient:  [4]float32{0.2, 0.2, 0.2, 1},
		},
		Ray: RayConfig{
			LightPosition:     [4]float32{2, 5, 5, 1},
			MaxSteps:          128,
			HitEpsilon:        0.001,
			MaxDistance:       100,
			ReflectionBounces: 3,
		},
		Assets: AssetsConfig{
			Dir:        "assets",
			ShaderDir:  "shaders",
			TextureDir: "textures",
			MeshDir:    "meshes",
		},
		Log: LogConfig{Level: core.InfoLevel},
	}
}

// Load reads the file at path on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAssetRead, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

/**
 * @brief Decodes a TOML document on top of the defaults. Unknown keys are
 * rejected so that a misspelt setting does not silently keep its default.
 */
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedAsset, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConfig}, args...)...))
		}
	}
	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	check(c.Render.TessellationFactor >= 1 && c.Render.TessellationFactor <= 64, "tessellation_factor %g outside [1, 64]", c.Render.TessellationFactor)
	check(c.Render.FovDegrees > 0 && c.Render.FovDegrees < 180, "fov_degrees %g outside (0, 180)", c.Render.FovDegrees)
	check(c.Render.NearPlane > 0, "near_plane %g must be positive", c.Render.NearPlane)
	check(c.Render.FarPlane > c.Render.NearPlane, "far_plane %g must be greater than near_plane %g", c.Render.FarPlane, c.Render.NearPlane)
	check(c.Camera.AngleSpeed >= 0 && c.Camera.MovementSpeed >= 0, "camera speeds must not be negative")
	check(c.Camera.Eye != c.Camera.Target, "camera eye and target coincide")
	check(c.Camera.Up != [3]float32{}, "camera up must not be zero")
	check(c.Ray.MaxSteps > 0, "ray max_steps must be positive")
	check(c.Assets.Dir != "", "assets dir must be set")
	switch c.Log.Level {
	case core.DebugLevel, core.InfoLevel, core.WarnLevel, core.ErrorLevel:
	default:
		check(false, "unknown log level %q", c.Log.Level)
	}
	return errors.Join(errs...)
}

func (c *Config) ShaderPath() string {
	return filepath.Join(c.Assets.Dir, c.Assets.ShaderDir)
}

func (c *Config) TexturePath() string {
	return filepath.Join(c.Assets.Dir, c.Assets.TextureDir)
}

func (c *Config) MeshPath() string {
	return filepath.Join(c.Assets.Dir, c.Assets.MeshDir)
}
