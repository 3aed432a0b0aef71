// Demo host for the deferred pipeline. By default it renders one frame of
// the scene on the CPU rasterizer and writes it to a PNG; with -gl it opens
// a window and runs the same scene on the OpenGL backend instead.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"deferred-engine/config"
	"deferred-engine/deferred"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "YAML scene file (default: built-in demo scene)")
		outPath   = flag.String("out", "out.png", "output PNG path (CPU mode)")
		width     = flag.Int("width", 800, "viewport width in pixels")
		height    = flag.Int("height", 600, "viewport height in pixels")
		useGL     = flag.Bool("gl", false, "render interactively with OpenGL instead of writing a PNG")
	)
	flag.Parse()

	scn := config.DefaultScene()
	if *scenePath != "" {
		loaded, err := config.Load(*scenePath)
		if err != nil {
			fmt.Printf("Failed to load scene: %v\n", err)
			os.Exit(1)
		}
		scn = loaded
	}

	if *useGL {
		if err := runGL(scn, *width, *height); err != nil {
			fmt.Printf("OpenGL demo failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := renderPNG(scn, *width, *height, *outPath); err != nil {
		fmt.Printf("Render failed: %v\n", err)
		os.Exit(1)
	}
}

func renderPNG(scn *config.Scene, width, height int, outPath string) error {
	calls, lights, view, err := scn.Build(width, height)
	if err != nil {
		return err
	}

	pipeline, err := deferred.NewPipeline(width, height)
	if err != nil {
		return err
	}

	fmt.Printf("Rendering %dx%d, %d surfaces, %d lights\n",
		width, height, len(calls), lights.Count())

	img, err := pipeline.RenderFrame(calls, lights, view)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img.ToRGBA()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}
