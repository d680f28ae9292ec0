package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func idx(i int) *int { return &i }

func TestPackTextureIDs(t *testing.T) {
	ids := PackTextureIDs(1, 2, 3, 4)
	assert.Equal(t, uint32(0x01020304), ids)
	c, mr, e, n := UnpackTextureIDs(ids)
	assert.Equal(t, []uint8{1, 2, 3, 4}, []uint8{c, mr, e, n})
}

func TestNewMaterial(t *testing.T) {
	m := NewMaterial(MaterialInfo{
		BaseColorFactor:   [4]float32{0.5, 0.25, 1, 1},
		MetallicFactor:    0.3,
		RoughnessFactor:   0.7,
		EmissiveFactor:    [3]float32{1, 0, 0},
		ColorTexture:      idx(0),
		MetallicTexture:   idx(64),
		NormalTexture:     idx(63),
		OcclusionTexture:  idx(5),
		OcclusionStrength: 0.8,
	})

	assert.Equal(t, [4]float32{0.5, 0.25, 1, 0.3}, m.ColorAndMetallic)
	assert.Equal(t, [4]float32{1, 0, 0, 0.7}, m.EmissiveAndRoughness)
	c, mr, e, n := UnpackTextureIDs(m.TextureIDs)
	assert.Equal(t, uint8(0), c)
	assert.Equal(t, NO_TEXTURE_ID, mr, "ids past the texture limit are dropped")
	assert.Equal(t, NO_TEXTURE_ID, e)
	assert.Equal(t, uint8(63), n)
	assert.Equal(t, uint32(5), m.OcclusionTextureID)
	assert.Equal(t, float32(0.8), m.Occlusion)
}

func TestOcclusionWithoutTexture(t *testing.T) {
	m := NewMaterial(MaterialInfo{OcclusionStrength: 0.8})
	assert.Zero(t, m.Occlusion)
	assert.Equal(t, uint32(NO_TEXTURE_ID), m.OcclusionTextureID)
	assert.Equal(t, uint32(0xFFFFFFFF), m.TextureIDs)
}
