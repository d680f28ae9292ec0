package assets

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `{
  "asset": {"version": "2.0", "generator": "prism-test"},
  "scene": 0,
  "scenes": [{"nodes": [0, 1]}],
  "nodes": [{"mesh": 0}, {"mesh": 1}],
  "meshes": [
    {"primitives": [{"attributes": {}}, {"attributes": {}}]},
    {"primitives": [{"attributes": {}}]}
  ],
  "textures": [{}, {}],
  "materials": [
    {
      "name": "body",
      "pbrMetallicRoughness": {
        "baseColorFactor": [0.5, 0.5, 0.5, 1.0],
        "metallicFactor": 0.0,
        "baseColorTexture": {"index": 1}
      },
      "emissiveFactor": [1.0, 0.5, 0.0],
      "occlusionTexture": {"index": 0}
    },
    {"name": "plain"}
  ],
  "accessors": [{"max": [1.5]}, {"max": [2.25]}, {"count": 3}],
  "animations": [
    {"name": "walk", "samplers": [{"input": 0}, {"input": 1}]},
    {"samplers": [{"input": 2}]}
  ]
}`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

const (
	glbMagic     uint32 = 0x46546C67 // "glTF"
	glbChunkJSON uint32 = 0x4E4F534A // "JSON"
)

func glb(json []byte) []byte {
	// The JSON chunk is padded with spaces to a 4-byte boundary.
	for len(json)%4 != 0 {
		json = append(json, ' ')
	}
	out := make([]byte, 20, 20+len(json))
	binary.LittleEndian.PutUint32(out[0:], glbMagic)
	binary.LittleEndian.PutUint32(out[4:], 2)
	binary.LittleEndian.PutUint32(out[8:], uint32(20+len(json)))
	binary.LittleEndian.PutUint32(out[12:], uint32(len(json)))
	binary.LittleEndian.PutUint32(out[16:], glbChunkJSON)
	return append(out, json...)
}

func assertTestDocument(t *testing.T, meta *Metadata) {
	t.Helper()
	assert.Equal(t, "prism-test", meta.Generator)
	assert.Equal(t, "2.0", meta.Version)
	assert.Equal(t, 1, meta.Scenes)
	assert.Equal(t, 2, meta.Nodes)
	assert.Equal(t, 2, meta.Meshes)
	assert.Equal(t, 3, meta.Primitives)
	assert.Equal(t, 2, meta.Textures)

	require.Len(t, meta.Materials, 2)
	body := meta.Materials[0]
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, body.BaseColorFactor)
	assert.Equal(t, float32(0), body.MetallicFactor)
	assert.Equal(t, float32(1), body.RoughnessFactor)
	require.NotNil(t, body.ColorTexture)
	assert.Equal(t, 1, *body.ColorTexture)
	require.NotNil(t, body.OcclusionTexture)
	assert.Equal(t, float32(1), body.OcclusionStrength)
	assert.Nil(t, body.NormalTexture)

	plain := meta.Materials[1]
	assert.Equal(t, [4]float32{1, 1, 1, 1}, plain.BaseColorFactor)
	assert.Equal(t, float32(1), plain.MetallicFactor)

	require.Len(t, meta.Animations, 2)
	assert.Equal(t, Animation{Name: "walk", Duration: 2.25}, meta.Animations[0])
	assert.Equal(t, Animation{Name: "animation 1", Duration: 0}, meta.Animations[1])
}

func TestDecodeGLTF(t *testing.T) {
	path := writeFile(t, "robot.gltf", []byte(testDocument))
	meta, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, "robot", meta.Name)
	assertTestDocument(t, meta)
}

func TestDecodeGLB(t *testing.T) {
	path := writeFile(t, "robot.glb", glb([]byte(testDocument)))
	meta, err := Decode(path)
	require.NoError(t, err)
	assertTestDocument(t, meta)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(writeFile(t, "model.obj", []byte("o cube")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode(writeFile(t, "short.glb", []byte("glTF")))
	assert.ErrorIs(t, err, ErrInvalidGLB)

	_, err = Decode(writeFile(t, "renamed.glb", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}))
	assert.ErrorIs(t, err, ErrInvalidGLB)

	_, err = Decode(writeFile(t, "noversion.gltf", []byte(`{"asset": {}}`)))
	assert.ErrorContains(t, err, "asset.version")

	_, err = Decode(writeFile(t, "badsampler.gltf", []byte(`{"asset": {"version": "2.0"}, "animations": [{"samplers": [{"input": 4}]}]}`)))
	assert.ErrorContains(t, err, "out of range")

	_, err = Decode(filepath.Join(t.TempDir(), "missing.gltf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsModelFile(t *testing.T) {
	assert.True(t, IsModelFile("a/b/Fox.GLB"))
	assert.True(t, IsModelFile("scene.gltf"))
	assert.False(t, IsModelFile("scene.bin"))
}
