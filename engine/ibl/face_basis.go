// package ibl implements the image-based lighting precompute pipeline: an
// equirectangular source projected onto a base cubemap, a diffuse irradiance
// convolution, a specular GGX mip chain, and the shared BRDF integration
// lookup table. All stages run as WGSL compute passes.
package ibl

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// FaceBasis is the orientation of one cube face: the outward direction at
// the face center plus the in-face axes. Texel (u, v) on the face maps to
// normalize(Forward + (2u-1)*Right - (2v-1)*Up).
type FaceBasis struct {
	Forward mgl32.Vec3
	Up      mgl32.Vec3
	Right   mgl32.Vec3
}

// CubeFaceBases is the single face orientation table shared by every
// pipeline stage. Faces are ordered by cube array layer: +X, -X, +Y, -Y,
// +Z, -Z. The WGSL for every stage embeds exactly this table (see
// faceBasisWGSL), so a direction computed on the CPU and one computed in any
// shader agree bit for bit in convention.
var CubeFaceBases = [6]FaceBasis{
	{Forward: mgl32.Vec3{1, 0, 0}, Up: mgl32.Vec3{0, 1, 0}, Right: mgl32.Vec3{0, 0, -1}},
	{Forward: mgl32.Vec3{-1, 0, 0}, Up: mgl32.Vec3{0, 1, 0}, Right: mgl32.Vec3{0, 0, 1}},
	{Forward: mgl32.Vec3{0, 1, 0}, Up: mgl32.Vec3{0, 0, -1}, Right: mgl32.Vec3{1, 0, 0}},
	{Forward: mgl32.Vec3{0, -1, 0}, Up: mgl32.Vec3{0, 0, 1}, Right: mgl32.Vec3{1, 0, 0}},
	{Forward: mgl32.Vec3{0, 0, 1}, Up: mgl32.Vec3{0, 1, 0}, Right: mgl32.Vec3{1, 0, 0}},
	{Forward: mgl32.Vec3{0, 0, -1}, Up: mgl32.Vec3{0, 1, 0}, Right: mgl32.Vec3{-1, 0, 0}},
}

// faceBasisMarker is the placeholder line in each stage's WGSL template that
// gets replaced by the generated basis block.
const faceBasisMarker = "//!FACE_BASIS"

// FaceBasisWGSL generates the WGSL constant block and face_direction helper
// from CubeFaceBases. Every stage shader embeds this exact text.
//
// Returns:
//   - string: the WGSL source block
func FaceBasisWGSL() string {
	var b strings.Builder
	writeTable := func(name string, pick func(FaceBasis) mgl32.Vec3) {
		fmt.Fprintf(&b, "const %s: array<vec3<f32>, 6> = array<vec3<f32>, 6>(\n", name)
		for i, basis := range CubeFaceBases {
			v := pick(basis)
			sep := ","
			if i == 5 {
				sep = ""
			}
			fmt.Fprintf(&b, "    vec3<f32>(%.1f, %.1f, %.1f)%s\n", v.X(), v.Y(), v.Z(), sep)
		}
		b.WriteString(");\n")
	}
	writeTable("FACE_FORWARD", func(f FaceBasis) mgl32.Vec3 { return f.Forward })
	writeTable("FACE_UP", func(f FaceBasis) mgl32.Vec3 { return f.Up })
	writeTable("FACE_RIGHT", func(f FaceBasis) mgl32.Vec3 { return f.Right })
	b.WriteString(`
fn face_direction(face: u32, uv: vec2<f32>) -> vec3<f32> {
    let st = uv * 2.0 - vec2<f32>(1.0, 1.0);
    return normalize(FACE_FORWARD[face] + st.x * FACE_RIGHT[face] - st.y * FACE_UP[face]);
}
`)
	return b.String()
}

// injectFaceBasis replaces the basis marker in a stage template with the
// generated block. Panics if the template lacks the marker, since a stage
// without the shared basis would silently break cross-stage consistency.
func injectFaceBasis(source string) string {
	if !strings.Contains(source, faceBasisMarker) {
		panic("ibl: stage shader template is missing the face basis marker")
	}
	return strings.Replace(source, faceBasisMarker, FaceBasisWGSL(), 1)
}

// DirectionForTexel computes the world direction of a cube face texel
// center, using the same convention as face_direction in the shaders.
//
// Parameters:
//   - face: cube face index (layer order)
//   - u, v: texel center coordinates in [0, 1]
//
// Returns:
//   - mgl32.Vec3: the normalized direction
func DirectionForTexel(face int, u, v float32) mgl32.Vec3 {
	basis := CubeFaceBases[face]
	s := u*2 - 1
	t := v*2 - 1
	return basis.Forward.
		Add(basis.Right.Mul(s)).
		Sub(basis.Up.Mul(t)).
		Normalize()
}

// EquirectUV projects a direction onto equirectangular texture coordinates,
// matching the equirect_uv function of the projection stage.
//
// Parameters:
//   - dir: normalized world direction
//
// Returns:
//   - float32: u coordinate in [0, 1]
//   - float32: v coordinate in [0, 1]
func EquirectUV(dir mgl32.Vec3) (float32, float32) {
	u := math32.Atan2(dir.Z(), dir.X())/(2*math32.Pi) + 0.5
	v := 1 - (math32.Asin(dir.Y())/math32.Pi + 0.5)
	return u, v
}

// MinRoughness is the lower clamp applied to per-mip roughness. A roughness
// of exactly zero degenerates the GGX distribution into a delta that
// importance sampling cannot resolve.
const MinRoughness float32 = 0.045

// RoughnessForMip maps a specular chain mip level to its prefilter
// roughness: level / (mipCount - 1), clamped to [MinRoughness, 1].
//
// Parameters:
//   - level: mip level
//   - mipCount: total mip levels in the chain
//
// Returns:
//   - float32: the clamped roughness
func RoughnessForMip(level, mipCount uint32) float32 {
	denom := float32(1)
	if mipCount > 1 {
		denom = float32(mipCount - 1)
	}
	r := float32(level) / denom
	if r < MinRoughness {
		return MinRoughness
	}
	if r > 1 {
		return 1
	}
	return r
}

// IrradianceSampleDelta is the angular integration step of the diffuse
// irradiance convolution, shared by the shader and the CPU reference.
const IrradianceSampleDelta float32 = math32.Pi / 128

// IntegrateIrradiance runs the diffuse hemisphere convolution on the CPU
// using the identical weights and step size as the irradiance shader. Used
// as the reference implementation in tests; for a constant radiance field
// the result converges to that constant.
//
// Parameters:
//   - normal: hemisphere orientation (normalized)
//   - sample: radiance lookup for a world direction
//
// Returns:
//   - mgl32.Vec3: the integrated irradiance
func IntegrateIrradiance(normal mgl32.Vec3, sample func(dir mgl32.Vec3) mgl32.Vec3) mgl32.Vec3 {
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(normal.Y()) > 0.999 {
		up = mgl32.Vec3{1, 0, 0}
	}
	right := up.Cross(normal).Normalize()
	up = normal.Cross(right)

	var irradiance mgl32.Vec3
	sampleCount := float32(0)
	for phi := float32(0); phi < 2*math32.Pi; phi += IrradianceSampleDelta {
		for theta := float32(0); theta < 0.5*math32.Pi; theta += IrradianceSampleDelta {
			sinTheta, cosTheta := math32.Sincos(theta)
			sinPhi, cosPhi := math32.Sincos(phi)
			dir := right.Mul(sinTheta * cosPhi).
				Add(up.Mul(sinTheta * sinPhi)).
				Add(normal.Mul(cosTheta))
			irradiance = irradiance.Add(sample(dir).Mul(cosTheta * sinTheta))
			sampleCount++
		}
	}
	return irradiance.Mul(math32.Pi / sampleCount)
}

// Hammersley returns the i-th point of the n-point Hammersley low
// discrepancy sequence, matching the shader implementation.
//
// Parameters:
//   - i: sample index
//   - n: total sample count
//
// Returns:
//   - float32: first coordinate (i/n)
//   - float32: second coordinate (radical inverse of i)
func Hammersley(i, n uint32) (float32, float32) {
	bits := i
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	return float32(i) / float32(n), float32(bits) * 2.3283064365386963e-10
}
