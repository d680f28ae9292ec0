package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrInvalidGLB        = errors.New("invalid glb container")
)

// Animation is a named clip; Duration is in seconds.
type Animation struct {
	Name     string
	Duration float32
}

// Metadata is what the viewer knows about a decoded model.
type Metadata struct {
	Name       string
	Generator  string
	Version    string
	Scenes     int
	Nodes      int
	Meshes     int
	Primitives int
	Textures   int
	Materials  []MaterialInfo
	Animations []Animation
}

// Decode reads the document of a .gltf or .glb file.
func Decode(path string) (*Metadata, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsModelFile(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	doc, err := gltf.Open(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return nil, err
	case ext == ".glb":
		return nil, fmt.Errorf("%s: %w: %s", path, ErrInvalidGLB, err)
	default:
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	meta, err := describe(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	meta.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return meta, nil
}

// IsModelFile reports whether Decode understands the file extension.
func IsModelFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return true
	}
	return false
}

// describe projects a decoded document onto the metadata the viewer shows.
func describe(doc *gltf.Document) (*Metadata, error) {
	if doc.Asset.Version == "" {
		return nil, errors.New("missing asset.version")
	}

	meta := &Metadata{
		Generator: doc.Asset.Generator,
		Version:   doc.Asset.Version,
		Scenes:    len(doc.Scenes),
		Nodes:     len(doc.Nodes),
		Meshes:    len(doc.Meshes),
		Textures:  len(doc.Textures),
	}
	for _, m := range doc.Meshes {
		meta.Primitives += len(m.Primitives)
	}
	for _, m := range doc.Materials {
		meta.Materials = append(meta.Materials, materialInfo(m))
	}

	for i, a := range doc.Animations {
		anim := Animation{Name: a.Name}
		if anim.Name == "" {
			anim.Name = fmt.Sprintf("animation %d", i)
		}
		for _, s := range a.Samplers {
			input := int(s.Input)
			if input < 0 || input >= len(doc.Accessors) {
				return nil, fmt.Errorf("animation %q: sampler input %d out of range", anim.Name, input)
			}
			if bound := doc.Accessors[input].Max; len(bound) > 0 && float32(bound[0]) > anim.Duration {
				anim.Duration = float32(bound[0])
			}
		}
		meta.Animations = append(meta.Animations, anim)
	}
	return meta, nil
}

func materialInfo(m *gltf.Material) MaterialInfo {
	info := MaterialInfo{
		Name:            m.Name,
		BaseColorFactor: [4]float32{1, 1, 1, 1},
		MetallicFactor:  1,
		RoughnessFactor: 1,
	}
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		for i, c := range pbr.BaseColorFactorOrDefault() {
			info.BaseColorFactor[i] = float32(c)
		}
		info.MetallicFactor = float32(pbr.MetallicFactorOrDefault())
		info.RoughnessFactor = float32(pbr.RoughnessFactorOrDefault())
		info.ColorTexture = textureIndex(pbr.BaseColorTexture)
		info.MetallicTexture = textureIndex(pbr.MetallicRoughnessTexture)
	}
	for i, c := range m.EmissiveFactor {
		info.EmissiveFactor[i] = float32(c)
	}
	info.EmissiveTexture = textureIndex(m.EmissiveTexture)
	if n := m.NormalTexture; n != nil && n.Index != nil {
		index := int(*n.Index)
		info.NormalTexture = &index
	}
	if o := m.OcclusionTexture; o != nil && o.Index != nil {
		index := int(*o.Index)
		info.OcclusionTexture = &index
		info.OcclusionStrength = float32(o.StrengthOrDefault())
	}
	return info
}

func textureIndex(t *gltf.TextureInfo) *int {
	if t == nil {
		return nil
	}
	index := int(t.Index)
	return &index
}
