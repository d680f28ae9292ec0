package assets

// The fragment stage indexes at most this many textures.
const MAX_TEXTURE_COUNT = 64

// NO_TEXTURE_ID marks a slot without a usable texture.
const NO_TEXTURE_ID uint8 = 255

// Material is the GPU layout of one glTF material.
type Material struct {
	ColorAndMetallic     [4]float32
	EmissiveAndRoughness [4]float32
	Occlusion            float32
	// Colour, metallic/roughness, emissive and normal texture ids, one byte
	// each from the most significant byte down.
	TextureIDs         uint32
	OcclusionTextureID uint32
}

// MaterialInfo is a material as it appears in the glTF document.
type MaterialInfo struct {
	Name             string
	BaseColorFactor  [4]float32
	MetallicFactor   float32
	RoughnessFactor  float32
	EmissiveFactor   [3]float32
	ColorTexture     *int
	MetallicTexture  *int
	EmissiveTexture  *int
	NormalTexture    *int
	OcclusionTexture *int
	// OcclusionStrength only applies when OcclusionTexture is set.
	OcclusionStrength float32
}

func textureID(index *int) uint8 {
	if index == nil || *index < 0 || *index >= MAX_TEXTURE_COUNT {
		return NO_TEXTURE_ID
	}
	return uint8(*index)
}

// PackTextureIDs lays out four texture ids in one word.
func PackTextureIDs(color, metallicRoughness, emissive, normal uint8) uint32 {
	return uint32(color)<<24 | uint32(metallicRoughness)<<16 | uint32(emissive)<<8 | uint32(normal)
}

// UnpackTextureIDs is the inverse of PackTextureIDs.
func UnpackTextureIDs(ids uint32) (color, metallicRoughness, emissive, normal uint8) {
	return uint8(ids >> 24), uint8(ids >> 16), uint8(ids >> 8), uint8(ids)
}

func NewMaterial(info MaterialInfo) Material {
	m := Material{
		ColorAndMetallic: [4]float32{
			info.BaseColorFactor[0],
			info.BaseColorFactor[1],
			info.BaseColorFactor[2],
			info.MetallicFactor,
		},
		EmissiveAndRoughness: [4]float32{
			info.EmissiveFactor[0],
			info.EmissiveFactor[1],
			info.EmissiveFactor[2],
			info.RoughnessFactor,
		},
		TextureIDs: PackTextureIDs(
			textureID(info.ColorTexture),
			textureID(info.MetallicTexture),
			textureID(info.EmissiveTexture),
			textureID(info.NormalTexture),
		),
		OcclusionTextureID: uint32(textureID(info.OcclusionTexture)),
	}
	if info.OcclusionTexture != nil {
		m.Occlusion = info.OcclusionStrength
	}
	return m
}

// PackMaterials builds the material table uploaded with a model.
func PackMaterials(infos []MaterialInfo) []Material {
	out := make([]Material, len(infos))
	for i := range infos {
		out[i] = NewMaterial(infos[i])
	}
	return out
}
