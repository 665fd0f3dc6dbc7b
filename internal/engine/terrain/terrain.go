// Package terrain converts heightmap images into a tiled, renderable mesh
// surface: a patch grid with shared index topology, per-patch vertex
// buffers and bounds, and world-space height queries.
package terrain

import (
	"errors"
	"sync"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/terragrid/internal/engine/gpu"
	"github.com/Faultbox/terragrid/internal/engine/resource"
	"github.com/Faultbox/terragrid/internal/engine/scene"
	"github.com/Faultbox/terragrid/internal/logger"
	"github.com/Faultbox/terragrid/pkg/math"
)

const (
	DefaultPatchSize = 16
	MinPatchSize     = 4
	MaxPatchSize     = 128
	MaxLODLevels     = 4
)

// DefaultSpacing is the default vertex spacing: 1 world unit per grid step
// on X/Z, raw heights scaled by 0.25 on Y.
var DefaultSpacing = math.Vec3{X: 1, Y: 0.25, Z: 1}

// ErrUnsupportedFormat is returned when a compressed image is offered as a
// heightmap source.
var ErrUnsupportedFormat = errors.New("terrain: compressed image cannot be used as a heightmap")

// ErrInvalidImage is returned when a heightmap image carries no sampleable
// pixel data.
var ErrInvalidImage = errors.New("terrain: heightmap image has no pixel data")

// Terrain owns the height field, layout configuration and the shared index
// buffer, and orchestrates patch creation and meshing under its scene
// node. Hard configuration changes (patch size, spacing, heightmap) are
// staged and only materialize on Commit; soft rendering parameters
// propagate to live patches immediately.
//
// A RWMutex serializes rebuilds against height queries, so queries may run
// concurrently with each other but never with a rebuild.
type Terrain struct {
	mu sync.RWMutex

	node         *scene.Node
	heightMap    *resource.Image
	cancelReload func()
	field        *HeightField

	indexBuffer *gpu.IndexBuffer
	lodRanges   []lodRange

	patchSize    int
	spacing      math.Vec3
	numLODLevels int

	size             math.IntVec2
	patchWorldSize   math.Vec2
	patchWorldOrigin math.Vec2
	patchesX         int
	patchesZ         int

	patches      []*Patch
	patchByCoord map[math.IntVec2]*Patch

	params RenderParams

	dirty     bool
	rebuiltFn func(numPatches int)
}

// New creates a terrain with default configuration, not yet attached to a
// node and with no heightmap.
func New() *Terrain {
	return &Terrain{
		indexBuffer:  &gpu.IndexBuffer{},
		patchSize:    DefaultPatchSize,
		spacing:      DefaultSpacing,
		numLODLevels: 1,
		patchByCoord: make(map[math.IntVec2]*Patch),
		params:       DefaultRenderParams(),
	}
}

// OnNodeSet implements scene.Component. Attaching to a node stages a
// rebuild; detaching drops all patches on the next Commit.
func (t *Terrain) OnNodeSet(node *scene.Node) {
	t.mu.Lock()
	t.node = node
	t.dirty = true
	t.mu.Unlock()
}

// SetRebuiltFunc registers a callback fired after a rebuild that crosses
// the construction/destruction boundary (patch count changes between zero
// and non-zero). Not fired on every rebuild.
func (t *Terrain) SetRebuiltFunc(fn func(numPatches int)) {
	t.mu.Lock()
	t.rebuiltFn = fn
	t.mu.Unlock()
}

// SetPatchSize stages a new patch size. Values outside [MinPatchSize,
// MaxPatchSize] or not a power of two are silently ignored.
func (t *Terrain) SetPatchSize(size int) {
	if size < MinPatchSize || size > MaxPatchSize || size&(size-1) != 0 {
		return
	}
	t.mu.Lock()
	if size != t.patchSize {
		t.patchSize = size
		t.dirty = true
	}
	t.mu.Unlock()
}

// SetSpacing stages new per-axis vertex spacing.
func (t *Terrain) SetSpacing(spacing math.Vec3) {
	t.mu.Lock()
	if spacing != t.spacing {
		t.spacing = spacing
		t.dirty = true
	}
	t.mu.Unlock()
}

// SetHeightMap stages a new heightmap source. Compressed images are
// rejected with ErrUnsupportedFormat, images without pixels with
// ErrInvalidImage; in both cases the previous heightmap is retained. A nil
// image stages removal of all geometry. The terrain rebuilds immediately
// when the image reports a reload; each heightmap carries at most one live
// subscription, dropped when it is replaced.
func (t *Terrain) SetHeightMap(img *resource.Image) error {
	if img != nil {
		if img.Compressed {
			logger.Error("compressed image cannot be used as a terrain heightmap")
			return ErrUnsupportedFormat
		}
		if img.Width < 1 || img.Height < 1 {
			logger.Error("heightmap image has no pixels",
				zap.Int("width", img.Width),
				zap.Int("height", img.Height))
			return ErrInvalidImage
		}
	}

	t.mu.Lock()
	if t.cancelReload != nil {
		t.cancelReload()
		t.cancelReload = nil
	}
	t.heightMap = img
	t.dirty = true
	if img != nil {
		t.cancelReload = img.SubscribeReload(func() {
			t.mu.Lock()
			if t.heightMap != img {
				t.mu.Unlock()
				return
			}
			// The reload replaces any staged configuration pass.
			t.dirty = false
			notify := t.createGeometry()
			t.mu.Unlock()
			t.fireRebuilt(notify)
		})
	}
	t.mu.Unlock()
	return nil
}

// Commit applies all staged configuration changes by rebuilding the
// geometry. A no-op while no changes are pending. Rebuilds are idempotent:
// committing the same configuration twice yields identical data.
func (t *Terrain) Commit() {
	t.mu.Lock()
	if !t.dirty {
		t.mu.Unlock()
		return
	}
	t.dirty = false
	notify := t.createGeometry()
	t.mu.Unlock()
	t.fireRebuilt(notify)
}

func (t *Terrain) fireRebuilt(notify bool) {
	if !notify {
		return
	}
	t.mu.RLock()
	fn := t.rebuiltFn
	n := len(t.patches)
	t.mu.RUnlock()
	if fn != nil {
		fn(n)
	}
}

// createGeometry rebuilds everything derived from the hard configuration:
// LOD level count, world layout, height field, patch entities, the shared
// index buffer and all patch meshes. Caller must hold the write lock.
// Returns whether the construction/destruction boundary was crossed.
func (t *Terrain) createGeometry() bool {
	if t.node == nil {
		return false
	}

	prevNumPatches := len(t.patches)

	// LOD levels derive from patch size: halve until MinPatchSize.
	lodSize := t.patchSize
	t.numLODLevels = 1
	for lodSize > MinPatchSize && t.numLODLevels < MaxLODLevels {
		lodSize >>= 1
		t.numLODLevels++
	}

	t.patchWorldSize = math.Vec2{
		X: t.spacing.X * float32(t.patchSize),
		Y: t.spacing.Z * float32(t.patchSize),
	}

	if t.heightMap != nil {
		field, err := BuildHeightField(t.heightMap, t.patchSize, t.spacing)
		if err != nil {
			// Compressed sources are rejected at SetHeightMap; reaching
			// this means the image changed underneath us. Keep the old
			// geometry.
			logger.Error("height field rebuild failed", zap.Error(err))
			return false
		}
		t.field = field
		t.patchesX = (t.heightMap.Width - 1) / t.patchSize
		t.patchesZ = (t.heightMap.Height - 1) / t.patchSize
		t.size = field.Size()
		t.patchWorldOrigin = math.Vec2{
			X: -0.5 * float32(t.patchesX) * t.patchWorldSize.X,
			Y: -0.5 * float32(t.patchesZ) * t.patchWorldSize.Y,
		}
	} else {
		t.field = nil
		t.patchesX = 0
		t.patchesZ = 0
		t.size = math.IntVec2{}
		t.patchWorldOrigin = math.Vec2{}
	}

	// Remove patch nodes whose coordinates fall outside the new layout.
	children := append([]*scene.Node(nil), t.node.Children()...)
	for _, child := range children {
		if findPatchComponent(child) == nil {
			continue
		}
		x, z, ok := parsePatchNodeName(child.Name())
		if !ok || x >= t.patchesX || z >= t.patchesZ {
			t.node.RemoveChild(child)
		}
	}

	t.patches = t.patches[:0]
	t.patchByCoord = make(map[math.IntVec2]*Patch)

	if t.field != nil {
		// Create or reuse patch entities for every valid coordinate.
		for z := 0; z < t.patchesZ; z++ {
			for x := 0; x < t.patchesX; x++ {
				name := patchNodeName(x, z)
				patchNode := t.node.GetChild(name)
				if patchNode == nil {
					patchNode = t.node.CreateChild(name)
				}
				patchNode.SetPosition(math.Vec3{
					X: t.patchWorldOrigin.X + float32(x)*t.patchWorldSize.X,
					Z: t.patchWorldOrigin.Y + float32(z)*t.patchWorldSize.Y,
				})

				patch := findPatchComponent(patchNode)
				if patch == nil {
					patch = newPatch(t, x, z)
					patchNode.AddComponent(patch)
				} else {
					patch.owner = t
					patch.coords = math.IntVec2{X: x, Y: z}
				}
				patch.SetParams(t.params)

				t.patches = append(t.patches, patch)
				t.patchByCoord[patch.coords] = patch
			}
		}

		// Shared index topology, one range per LOD level.
		t.lodRanges = BuildIndexData(t.indexBuffer, t.patchSize, t.numLODLevels)

		mesher := Mesher{PatchSize: t.patchSize, Spacing: t.spacing, FieldSize: t.size}
		for _, patch := range t.patches {
			mesher.BuildPatchMesh(patch, t.field, t.indexBuffer)
		}
	}

	logger.Debug("terrain geometry created",
		zap.Int("patchesX", t.patchesX),
		zap.Int("patchesZ", t.patchesZ),
		zap.Int("lodLevels", t.numLODLevels))

	return (prevNumPatches == 0) != (len(t.patches) == 0)
}

func findPatchComponent(node *scene.Node) *Patch {
	for _, c := range node.Components() {
		if p, ok := c.(*Patch); ok {
			return p
		}
	}
	return nil
}

// HeightAt returns the world-space terrain height under the given world
// position, bilinearly blended across the containing triangle of the grid
// cell. Returns 0 when the terrain is not attached to a node. Assumes the
// terrain node is upright; behavior under non-yaw rotation is undefined.
func (t *Terrain) HeightAt(world math.Vec3) float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.node == nil {
		return 0
	}

	local := t.node.WorldTransform().Inverse().TransformVec3(world)
	xPos := (local.X - t.patchWorldOrigin.X) / t.spacing.X
	zPos := (local.Z - t.patchWorldOrigin.Y) / t.spacing.Z
	xIdx := int(math32.Floor(xPos))
	zIdx := int(math32.Floor(zPos))
	xFrac := xPos - math32.Floor(xPos)
	zFrac := zPos - math32.Floor(zPos)
	var h1, h2, h3 float32

	if xFrac+zFrac >= 1 {
		h1 = t.field.SampleRaw(xIdx+1, zIdx+1)
		h2 = t.field.SampleRaw(xIdx, zIdx+1)
		h3 = t.field.SampleRaw(xIdx+1, zIdx)
		xFrac = 1 - xFrac
		zFrac = 1 - zFrac
	} else {
		h1 = t.field.SampleRaw(xIdx, zIdx)
		h2 = t.field.SampleRaw(xIdx+1, zIdx)
		h3 = t.field.SampleRaw(xIdx, zIdx+1)
	}

	h := h1*(1-xFrac-zFrac) + h2*xFrac + h3*zFrac
	return t.node.WorldScale().Y*h + t.node.WorldPosition().Y
}

// SampleRaw returns the stored (pre-scaled) height at integer grid
// coordinates, clamped to the grid edge. 0 when no height field is built.
func (t *Terrain) SampleRaw(x, z int) float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.field.SampleRaw(x, z)
}

// NormalAt returns the smoothed surface normal at integer grid
// coordinates.
func (t *Terrain) NormalAt(x, z int) math.Vec3 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.field.EstimateNormal(x, z)
}

// Soft parameter setters. These propagate to all live patches immediately
// and never require a rebuild.

// SetMaterial sets the material reference on the terrain and all patches.
func (t *Terrain) SetMaterial(material string) {
	t.setSoft(func(p *RenderParams) { p.Material = material })
}

// SetDrawDistance sets the maximum draw distance.
func (t *Terrain) SetDrawDistance(distance float32) {
	t.setSoft(func(p *RenderParams) { p.DrawDistance = distance })
}

// SetShadowDistance sets the maximum shadow rendering distance.
func (t *Terrain) SetShadowDistance(distance float32) {
	t.setSoft(func(p *RenderParams) { p.ShadowDistance = distance })
}

// SetLODBias sets the LOD selection bias.
func (t *Terrain) SetLODBias(bias float32) {
	t.setSoft(func(p *RenderParams) { p.LODBias = bias })
}

// SetViewMask sets the view mask.
func (t *Terrain) SetViewMask(mask uint32) {
	t.setSoft(func(p *RenderParams) { p.ViewMask = mask })
}

// SetLightMask sets the light mask.
func (t *Terrain) SetLightMask(mask uint32) {
	t.setSoft(func(p *RenderParams) { p.LightMask = mask })
}

// SetShadowMask sets the shadow mask.
func (t *Terrain) SetShadowMask(mask uint32) {
	t.setSoft(func(p *RenderParams) { p.ShadowMask = mask })
}

// SetZoneMask sets the zone mask.
func (t *Terrain) SetZoneMask(mask uint32) {
	t.setSoft(func(p *RenderParams) { p.ZoneMask = mask })
}

// SetMaxLights sets the per-patch light count limit.
func (t *Terrain) SetMaxLights(num int) {
	t.setSoft(func(p *RenderParams) { p.MaxLights = num })
}

// SetVisible toggles visibility.
func (t *Terrain) SetVisible(enable bool) {
	t.setSoft(func(p *RenderParams) { p.Visible = enable })
}

// SetCastShadows toggles shadow casting.
func (t *Terrain) SetCastShadows(enable bool) {
	t.setSoft(func(p *RenderParams) { p.CastShadows = enable })
}

// SetOccluder toggles occluder status.
func (t *Terrain) SetOccluder(enable bool) {
	t.setSoft(func(p *RenderParams) { p.Occluder = enable })
}

// SetOccludee toggles whether patches can be occluded.
func (t *Terrain) SetOccludee(enable bool) {
	t.setSoft(func(p *RenderParams) { p.Occludee = enable })
}

func (t *Terrain) setSoft(apply func(*RenderParams)) {
	t.mu.Lock()
	apply(&t.params)
	for _, p := range t.patches {
		params := p.Params()
		apply(&params)
		p.SetParams(params)
	}
	t.mu.Unlock()
}

// Accessors.

// HeightMap returns the current heightmap source.
func (t *Terrain) HeightMap() *resource.Image {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.heightMap
}

// PatchSize returns the committed patch size.
func (t *Terrain) PatchSize() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.patchSize
}

// Spacing returns the committed vertex spacing.
func (t *Terrain) Spacing() math.Vec3 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.spacing
}

// NumLODLevels returns the derived LOD level count.
func (t *Terrain) NumLODLevels() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.numLODLevels
}

// Size returns the height field dimensions in vertices.
func (t *Terrain) Size() math.IntVec2 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// NumPatches returns the patch grid dimensions.
func (t *Terrain) NumPatches() (x, z int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.patchesX, t.patchesZ
}

// Patches returns all live patches in row-major order.
func (t *Terrain) Patches() []*Patch {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Patch(nil), t.patches...)
}

// GetPatch returns the patch at the given grid coordinates, or nil.
func (t *Terrain) GetPatch(x, z int) *Patch {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.patchByCoord[math.IntVec2{X: x, Y: z}]
}

// IndexBuffer returns the shared index buffer.
func (t *Terrain) IndexBuffer() *gpu.IndexBuffer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.indexBuffer
}

// PatchWorldSize returns the world-space extent of one patch on X/Z.
func (t *Terrain) PatchWorldSize() math.Vec2 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.patchWorldSize
}

// PatchWorldOrigin returns the world-space origin of patch (0,0), local to
// the terrain node.
func (t *Terrain) PatchWorldOrigin() math.Vec2 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.patchWorldOrigin
}
