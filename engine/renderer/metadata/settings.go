package metadata

import "fmt"

type ToneMapMode uint8

const (
	TONE_MAP_MODE_DEFAULT ToneMapMode = iota
	TONE_MAP_MODE_UNCHARTED
	TONE_MAP_MODE_HEJL_RICHARD
	TONE_MAP_MODE_ACES
	TONE_MAP_MODE_NONE
	TONE_MAP_MODE_MAX
)

var toneMapNames = [...]string{"Default", "Uncharted", "Hejl Richard", "ACES", "None"}

func (m ToneMapMode) String() string {
	if m < TONE_MAP_MODE_MAX {
		return toneMapNames[m]
	}
	return fmt.Sprintf("ToneMapMode(%d)", uint8(m))
}

// Next cycles through the modes.
func (m ToneMapMode) Next() ToneMapMode {
	return (m + 1) % TONE_MAP_MODE_MAX
}

// OutputMode selects which intermediate the final pass shows.
type OutputMode uint8

const (
	OUTPUT_MODE_FINAL OutputMode = iota
	OUTPUT_MODE_COLOR
	OUTPUT_MODE_EMISSIVE
	OUTPUT_MODE_METALLIC
	OUTPUT_MODE_SPECULAR
	OUTPUT_MODE_ROUGHNESS
	OUTPUT_MODE_OCCLUSION
	OUTPUT_MODE_NORMAL
	OUTPUT_MODE_ALPHA
	OUTPUT_MODE_UVS0
	OUTPUT_MODE_UVS1
	OUTPUT_MODE_SSAO
	OUTPUT_MODE_MAX
)

var outputModeNames = [...]string{
	"Final", "Color", "Emissive", "Metallic", "Specular", "Roughness",
	"Occlusion", "Normal", "Alpha", "TexCoord0", "TexCoord1", "SSAO",
}

func (m OutputMode) String() string {
	if m < OUTPUT_MODE_MAX {
		return outputModeNames[m]
	}
	return fmt.Sprintf("OutputMode(%d)", uint8(m))
}

func (m OutputMode) Next() OutputMode {
	return (m + 1) % OUTPUT_MODE_MAX
}

// SSAO kernel sizes the renderer accepts.
var SSAOKernelSizes = [...]uint32{16, 32, 64, 128}

const (
	DEFAULT_EMISSIVE_INTENSITY float32 = 1.0
	DEFAULT_SSAO_KERNEL_SIZE   uint32  = 32
	DEFAULT_SSAO_RADIUS        float32 = 0.15
	DEFAULT_SSAO_STRENGTH      float32 = 1.0

	MIN_EMISSIVE_INTENSITY float32 = 1.0
	MAX_EMISSIVE_INTENSITY float32 = 200.0
	MIN_SSAO_RADIUS        float32 = 0.01
	MAX_SSAO_RADIUS        float32 = 1.0
	MIN_SSAO_STRENGTH      float32 = 0.5
	MAX_SSAO_STRENGTH      float32 = 5.0
)

// Settings is the snapshot of render settings a frame is recorded with.
type Settings struct {
	ToneMapMode       ToneMapMode
	OutputMode        OutputMode
	EmissiveIntensity float32
	SSAOEnabled       bool
	SSAOKernelSize    uint32
	SSAORadius        float32
	SSAOStrength      float32
}

func DefaultSettings() Settings {
	return Settings{
		ToneMapMode:       TONE_MAP_MODE_DEFAULT,
		OutputMode:        OUTPUT_MODE_FINAL,
		EmissiveIntensity: DEFAULT_EMISSIVE_INTENSITY,
		SSAOEnabled:       true,
		SSAOKernelSize:    DEFAULT_SSAO_KERNEL_SIZE,
		SSAORadius:        DEFAULT_SSAO_RADIUS,
		SSAOStrength:      DEFAULT_SSAO_STRENGTH,
	}
}

// IsValidSSAOKernelSize reports whether size is one of SSAOKernelSizes.
func IsValidSSAOKernelSize(size uint32) bool {
	for _, s := range SSAOKernelSizes {
		if s == size {
			return true
		}
	}
	return false
}
