package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine"
	"github.com/Carmen-Shannon/reactor/engine/camera"
	"github.com/Carmen-Shannon/reactor/engine/graph"
	"github.com/Carmen-Shannon/reactor/engine/renderer"
	"github.com/Carmen-Shannon/reactor/engine/scene"
	"github.com/Carmen-Shannon/reactor/engine/script"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// maxSimulatedFrames bounds the schedule of scripts with a very large sample budget.
const maxSimulatedFrames = 4096

var errNothingToRender = errors.New("no xrays output with a camera to render")

// CompileScript compiles a scene script once and prints the result.
func CompileScript(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	path, err := scriptPath(ctx, cfg)
	if err != nil {
		return err
	}

	loader := newLoader(cfg)
	res, err := script.EvalFile(path, evalOptions(cfg, loader)...)
	if err != nil {
		return err
	}

	viewport := common.Viewport{Width: uint32(ctx.Int("width")), Height: uint32(ctx.Int("height"))}
	schedule, err := simulate(res.Graph, target(ctx, cfg), viewport)
	if err != nil {
		return err
	}

	compiled, err := compiledScene(res.Graph, target(ctx, cfg))
	if err != nil {
		return err
	}
	logger.Noticef("compiled %s\n%s", path, sceneTables(compiled))
	logger.Noticef("accumulation schedule\n%s", scheduleTable(schedule))
	return nil
}

// scheduleRow is one simulated frame.
type scheduleRow struct {
	Frame    uint32
	Status   engine.FrameStatus
	Samples  uint32
	Progress float32
}

// simulate drives a headless engine over g until the sample budget is reached.
func simulate(g *graph.Graph, target string, viewport common.Viewport) ([]scheduleRow, error) {
	cam := camera.DefaultPose().Camera(common.Radians(camera.DefaultVFovDegrees), camera.DefaultAperture,
		camera.DefaultFocusDistance())
	r, err := renderer.NewRenderer(renderer.NewRecordingBackend(), renderer.RenderParams{
		Camera:   cam,
		Viewport: viewport,
		Sky:      renderer.DefaultSkyParams(),
		Sampling: renderer.DefaultSamplingParams(),
	}, renderer.WithMaxViewportResolution(viewport.Pixels()))
	if err != nil {
		return nil, err
	}
	defer r.Release()

	e := engine.NewEngine(r, g, engine.WithViewport(viewport), engine.WithTarget(target))

	var rows []scheduleRow
	for len(rows) < maxSimulatedFrames {
		status, err := e.Frame(0)
		if err != nil {
			return rows, err
		}
		if status == engine.FrameIdle || status == engine.FrameUnsupported {
			return rows, errNothingToRender
		}
		rows = append(rows, scheduleRow{
			Frame:    r.FrameNumber(),
			Status:   status,
			Samples:  r.AccumulatedSamples(),
			Progress: r.Progress(),
		})
		if status == engine.FrameRejected || r.Progress() >= 1 {
			break
		}
	}
	return rows, nil
}

// compiledScene returns the scene compiled for the xrays render behind the target output.
func compiledScene(g *graph.Graph, target string) (*scene.Scene, error) {
	out, ok := g.FindOutput(target)
	if !ok {
		return nil, fmt.Errorf("no output %q", target)
	}
	renderID, _ := g.OutputSource(out)
	rn, ok := graph.Get[*graph.XraysRenderNode](g, renderID)
	if !ok {
		return nil, errNothingToRender
	}
	sn, ok := graph.Get[*graph.SceneNode](g, rn.Scene)
	if !ok {
		return scene.Stub(), nil
	}
	if _, err := g.Recalculate(rn.Scene); err != nil {
		return nil, err
	}
	return sn.Scene(), nil
}

func newTable(buf *bytes.Buffer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	return table
}

// sceneTables renders the sphere, material and texture lists of s.
func sceneTables(s *scene.Scene) string {
	var buf bytes.Buffer

	spheres := newTable(&buf, "Sphere", "Center", "Radius", "Material")
	for i, sp := range s.Spheres {
		spheres.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("(%g, %g, %g)", sp.Center[0], sp.Center[1], sp.Center[2]),
			fmt.Sprintf("%g", sp.Radius),
			fmt.Sprintf("%d", sp.MaterialIdx),
		})
	}
	spheres.SetFooter([]string{"Lights", fmt.Sprintf("%v", s.LightIndices()), "", ""})
	spheres.Render()

	materials := newTable(&buf, "Material", "Kind", "Textures", "Fuzz", "IOR")
	for i, m := range s.Materials {
		materials.Append([]string{
			fmt.Sprintf("%d", i),
			m.Kind.String(),
			materialTextures(m),
			fmt.Sprintf("%g", m.Fuzz),
			fmt.Sprintf("%g", m.RefractionIndex),
		})
	}
	materials.Render()

	textures := newTable(&buf, "Texture", "Source", "Scale", "Size")
	for i, t := range s.Textures {
		source := "synthesized"
		if t.Key != nil {
			source = *t.Key
		}
		textures.Append([]string{
			fmt.Sprintf("%d", i),
			source,
			fmt.Sprintf("%g", t.Scale),
			fmt.Sprintf("%dx%d", t.Texture.Width, t.Texture.Height),
		})
	}
	textures.SetFooter([]string{"Texels", fmt.Sprintf("%d", s.TexelCount()), "", ""})
	textures.Render()

	return buf.String()
}

func materialTextures(m scene.Material) string {
	switch m.Kind {
	case scene.MaterialLambertian, scene.MaterialMetal:
		return fmt.Sprintf("albedo=%d", m.Albedo)
	case scene.MaterialEmissive:
		return fmt.Sprintf("emit=%d", m.Emit)
	case scene.MaterialCheckerboard:
		return fmt.Sprintf("even=%d odd=%d", m.Even, m.Odd)
	}
	return "-"
}

// scheduleTable renders a simulated accumulation schedule.
func scheduleTable(rows []scheduleRow) string {
	var buf bytes.Buffer
	table := newTable(&buf, "Frame", "Status", "Samples", "Progress")
	for _, row := range rows {
		table.Append([]string{
			fmt.Sprintf("%d", row.Frame),
			row.Status.String(),
			fmt.Sprintf("%d", row.Samples),
			fmt.Sprintf("%5.1f %%", row.Progress*100),
		})
	}
	table.SetFooter([]string{"", "", "FRAMES", fmt.Sprintf("%d", len(rows))})
	table.Render()
	return buf.String()
}
