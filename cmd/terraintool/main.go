// terraintool is a CLI utility for building and inspecting terrain meshes
// from heightmap images.
package main

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/terragrid/internal/config"
	"github.com/Faultbox/terragrid/internal/engine/resource"
	"github.com/Faultbox/terragrid/internal/engine/scene"
	"github.com/Faultbox/terragrid/internal/engine/terrain"
	"github.com/Faultbox/terragrid/internal/heightgen"
	"github.com/Faultbox/terragrid/internal/logger"
	"github.com/Faultbox/terragrid/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("TERRAGRID_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(cfg, args)
	case "export":
		cmdExport(cfg, args)
	case "generate", "gen":
		cmdGenerate(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terraintool - heightmap terrain mesh utility

Usage:
  terraintool <command> [options]

Commands:
  info <heightmap>                 Show terrain layout for a heightmap
  export <heightmap> <out.obj>     Build terrain and export as Wavefront OBJ
  generate <out.png> [size] [seed] Generate a perlin-noise heightmap

Examples:
  terraintool info height.png
  terraintool export height.png terrain.obj
  terraintool generate height.png 257 42

Configuration is read from terragrid.yaml (or $TERRAGRID_CONFIG).`)
}

// buildTerrain loads a heightmap and commits a terrain built from it.
func buildTerrain(cfg *config.Config, path string) (*terrain.Terrain, error) {
	img, err := resource.Load(path)
	if err != nil {
		return nil, err
	}

	node := scene.NewNode("terrain")
	t := terrain.New()
	node.AddComponent(t)

	t.SetPatchSize(cfg.Terrain.PatchSize)
	t.SetSpacing(math.Vec3{
		X: cfg.Terrain.Spacing.X,
		Y: cfg.Terrain.Spacing.Y,
		Z: cfg.Terrain.Spacing.Z,
	})
	if err := t.SetHeightMap(img); err != nil {
		return nil, err
	}
	t.Commit()
	return t, nil
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool info <heightmap>")
		os.Exit(1)
	}

	t, err := buildTerrain(cfg, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	px, pz := t.NumPatches()
	size := t.Size()
	bounds := math.EmptyBoundingBox()
	for _, p := range t.Patches() {
		box := p.BoundingBox()
		origin := p.Node().Position()
		bounds.Merge(box.Min.Add(origin))
		bounds.Merge(box.Max.Add(origin))
	}

	fmt.Printf("Heightmap:    %s\n", args[0])
	fmt.Printf("Grid size:    %d x %d vertices\n", size.X, size.Y)
	fmt.Printf("Patch size:   %d\n", t.PatchSize())
	fmt.Printf("Patches:      %d x %d (%d total)\n", px, pz, px*pz)
	fmt.Printf("LOD levels:   %d\n", t.NumLODLevels())
	fmt.Printf("Indices:      %d\n", t.IndexBuffer().IndexCount())
	if bounds.Defined() {
		fmt.Printf("Bounds min:   (%.2f, %.2f, %.2f)\n", bounds.Min.X, bounds.Min.Y, bounds.Min.Z)
		fmt.Printf("Bounds max:   (%.2f, %.2f, %.2f)\n", bounds.Max.X, bounds.Max.Y, bounds.Max.Z)
	}
	fmt.Printf("Center height: %.3f\n", t.HeightAt(math.Vec3{}))
}

func cmdExport(cfg *config.Config, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool export <heightmap> <out.obj>")
		os.Exit(1)
	}

	t, err := buildTerrain(cfg, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := exportOBJ(t, args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("terrain exported", zap.String("path", args[1]))
}

// exportOBJ writes all patches as one Wavefront OBJ object. Vertices are
// emitted in terrain-local space (patch origin offsets applied).
func exportOBJ(t *terrain.Terrain, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# terragrid terrain export")

	indices := t.IndexBuffer().Data()
	vertexBase := 1 // OBJ indices are 1-based
	for _, p := range t.Patches() {
		origin := p.Node().Position()
		vb := p.VertexBuffer()
		data := vb.Data()
		stride := vb.VertexFloats()

		for i := 0; i < vb.VertexCount(); i++ {
			v := data[i*stride:]
			fmt.Fprintf(w, "v %g %g %g\n", v[0]+origin.X, v[1]+origin.Y, v[2]+origin.Z)
			fmt.Fprintf(w, "vn %g %g %g\n", v[3], v[4], v[5])
			fmt.Fprintf(w, "vt %g %g\n", v[6], v[7])
		}

		geom := p.Geometry()
		start, count := geom.DrawStart(), geom.DrawCount()
		for i := start; i < start+count; i += 3 {
			a := int(indices[i]) + vertexBase
			b := int(indices[i+1]) + vertexBase
			c := int(indices[i+2]) + vertexBase
			fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}

		vertexBase += vb.VertexCount()
	}

	return w.Flush()
}

func cmdGenerate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool generate <out.png> [size] [seed]")
		os.Exit(1)
	}

	size := 257
	if len(args) >= 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 2 {
			fmt.Fprintf(os.Stderr, "Invalid size: %s\n", args[1])
			os.Exit(1)
		}
		size = v
	}
	var seed int64 = 1
	if len(args) >= 3 {
		v, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid seed: %s\n", args[2])
			os.Exit(1)
		}
		seed = v
	}

	img := heightgen.Generate(size, size, heightgen.DefaultParams(seed))

	gray := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for z := 0; z < img.Height; z++ {
		for x := 0; x < img.Width; x++ {
			gray.SetGray(x, z, color.Gray{Y: img.Data[z*img.Width+x]})
		}
	}

	f, err := os.Create(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := png.Encode(f, gray); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("heightmap generated",
		zap.String("path", args[0]),
		zap.Int("size", size),
		zap.Int64("seed", seed))
}
