package realization

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/SakulFlee/Orbital/common"
	"github.com/SakulFlee/Orbital/engine/gpu"
	"github.com/SakulFlee/Orbital/engine/resources"
	"github.com/SakulFlee/Orbital/engine/resources/descriptor"
)

// RealizeTexture turns a texture descriptor into a GPU texture. Solid color
// descriptors produce a 1x1 texture; file and embedded sources are decoded
// to RGBA. Source resolution failures surface as *resources.AssetResolutionError.
//
// Parameters:
//   - desc: the texture descriptor
//   - ctx: GPU capability surface
//
// Returns:
//   - *gpu.Texture: the realized texture
//   - error: error if decoding or GPU creation fails
func RealizeTexture(desc descriptor.TextureDescriptor, ctx gpu.Context) (*gpu.Texture, error) {
	var staging common.TextureStagingData

	if desc.SolidColor != nil {
		staging = common.TextureStagingData{
			Pixels: desc.SolidColor[:],
			Width:  1,
			Height: 1,
		}
	} else {
		imported := common.ImportedTexture{
			Name: desc.Label,
			Path: desc.Path,
			Data: desc.Data,
		}
		pixels, width, height, err := imported.Decode()
		if err != nil {
			ref := desc.Path
			if ref == "" {
				ref = desc.Label
			}
			return nil, &resources.AssetResolutionError{Ref: ref, Err: err}
		}
		staging = common.TextureStagingData{Pixels: pixels, Width: width, Height: height}
	}

	format := wgpu.TextureFormatRGBA8Unorm
	if desc.SRGB {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}

	texture, err := ctx.CreateTexture2D(
		desc.Label,
		staging.Width, staging.Height,
		format,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst,
	)
	if err != nil {
		return nil, &resources.RealizationError{Kind: "texture", Label: desc.Label, Err: err}
	}
	ctx.WriteTexture(texture, staging.Pixels, 4)
	return texture, nil
}
