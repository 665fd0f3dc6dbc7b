package terrain

import (
	"fmt"

	"github.com/Faultbox/terragrid/internal/engine/gpu"
	"github.com/Faultbox/terragrid/internal/engine/scene"
	"github.com/Faultbox/terragrid/pkg/math"
)

// RenderParams are the soft per-patch rendering attributes: everything the
// owner can change on live patches without rebuilding geometry.
type RenderParams struct {
	Material       string
	DrawDistance   float32
	ShadowDistance float32
	LODBias        float32
	ViewMask       uint32
	LightMask      uint32
	ShadowMask     uint32
	ZoneMask       uint32
	MaxLights      int
	Visible        bool
	CastShadows    bool
	Occluder       bool
	Occludee       bool
}

// DefaultRenderParams mirrors the owner-level defaults.
func DefaultRenderParams() RenderParams {
	return RenderParams{
		LODBias:    1,
		ViewMask:   ^uint32(0),
		LightMask:  ^uint32(0),
		ShadowMask: ^uint32(0),
		ZoneMask:   ^uint32(0),
		Visible:    true,
		Occludee:   true,
	}
}

// Patch is one square tile of the terrain mesh, attached to a child node of
// the terrain's scene node and named after its grid coordinates.
type Patch struct {
	owner  *Terrain
	node   *scene.Node
	coords math.IntVec2

	geometry     *gpu.Geometry
	vertexBuffer *gpu.VertexBuffer
	boundingBox  math.BoundingBox

	// Position-only copy of the last meshing pass, kept even when the
	// vertex buffer lock fails so bounds and raycasts stay serviceable.
	positions []math.Vec3

	lodLevel int
	dirty    bool

	params RenderParams
}

func newPatch(owner *Terrain, x, z int) *Patch {
	return &Patch{
		owner:        owner,
		coords:       math.IntVec2{X: x, Y: z},
		geometry:     &gpu.Geometry{},
		vertexBuffer: &gpu.VertexBuffer{},
		boundingBox:  math.EmptyBoundingBox(),
		params:       DefaultRenderParams(),
	}
}

// patchNodeName encodes grid coordinates into the persisted child node
// name. The encoding must round-trip exactly across rebuilds.
func patchNodeName(x, z int) string {
	return fmt.Sprintf("Patch_%d_%d", x, z)
}

// parsePatchNodeName reverses patchNodeName. Only non-negative
// coordinates are valid, so nodes with out-of-layout names never survive
// the stale-node sweep.
func parsePatchNodeName(name string) (x, z int, ok bool) {
	var px, pz int
	n, err := fmt.Sscanf(name, "Patch_%d_%d", &px, &pz)
	if err != nil || n != 2 || px < 0 || pz < 0 {
		return 0, 0, false
	}
	if patchNodeName(px, pz) != name {
		return 0, 0, false
	}
	return px, pz, true
}

// OnNodeSet implements scene.Component.
func (p *Patch) OnNodeSet(node *scene.Node) {
	p.node = node
}

// Node returns the owning scene node, nil when detached.
func (p *Patch) Node() *scene.Node { return p.node }

// Coords returns the patch's grid coordinates within the terrain layout.
func (p *Patch) Coords() math.IntVec2 { return p.coords }

// Geometry returns the renderable geometry descriptor.
func (p *Patch) Geometry() *gpu.Geometry { return p.geometry }

// VertexBuffer returns the patch's vertex buffer.
func (p *Patch) VertexBuffer() *gpu.VertexBuffer { return p.vertexBuffer }

// BoundingBox returns the local-space bounds of the last meshing pass.
func (p *Patch) BoundingBox() math.BoundingBox { return p.boundingBox }

// Positions returns the shadow copy of vertex positions.
func (p *Patch) Positions() []math.Vec3 { return p.positions }

// Params returns the current soft rendering parameters.
func (p *Patch) Params() RenderParams { return p.params }

// SetParams replaces all soft rendering parameters.
func (p *Patch) SetParams(params RenderParams) { p.params = params }

// LODLevel returns the currently selected LOD level.
func (p *Patch) LODLevel() int { return p.lodLevel }

// SetLODLevels selects the patch's LOD level and records neighbor levels.
// The draw range switches to the level's slice of the shared index buffer.
// Edges are not stitched against neighbors at coarser levels yet, so
// cracks can appear across LOD boundaries; the neighbor parameters are
// accepted now so a stitching scheme will not change the signature.
func (p *Patch) SetLODLevels(lod, north, south, west, east int) {
	if p.owner == nil {
		return
	}
	ranges := p.owner.lodRanges
	if lod < 0 || lod >= len(ranges) {
		return
	}
	p.lodLevel = lod
	r := ranges[lod]
	p.geometry.SetDrawRange(gpu.TriangleList, r.start, r.count)
}

// MarkedDirty reports whether the patch's spatial index entry needs
// revalidation since the last ClearDirty.
func (p *Patch) MarkedDirty() bool { return p.dirty }

// ClearDirty acknowledges the spatial index update.
func (p *Patch) ClearDirty() { p.dirty = false }

func (p *Patch) markDirty() { p.dirty = true }
