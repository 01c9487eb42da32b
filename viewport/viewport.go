// Package viewport draws light handles with ebiten and turns mouse input
// into handle drags on a lighttool.Tool.
package viewport

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/lighttool"
)

// Config configures a Viewport. Tool and Camera are required.
type Config struct {
	Tool   *lighttool.Tool
	Camera *lighttool.Camera
	Logger *slog.Logger
	// Sink receives hover and drag events. Optional.
	Sink EventSink

	// DragDeadZone is the pointer travel in pixels before a press on a
	// handle becomes a drag. Default 4.
	DragDeadZone float64
	// HitRadius is the pick distance around a handle in pixels. Default 8.
	HitRadius float64
	// FrameDuration is the length of the F key framing animation in
	// seconds. Default 0.3.
	FrameDuration float32
	// ShowStatus prints frame rates, the hovered handle and the last error.
	ShowStatus bool
}

// Viewport is an ebiten.Game presenting a tool's handles.
type Viewport struct {
	tool   *lighttool.Tool
	camera *lighttool.Camera
	logger *slog.Logger
	sink   EventSink

	deadZone      float64
	hitRadius     float64
	frameDuration float32
	showStatus    bool

	pointer     pointerState
	hover       lighttool.Handle
	injectQueue []syntheticPointerEvent
	lastErr     error
}

// New creates a viewport. It panics if Tool or Camera is nil.
func New(cfg Config) *Viewport {
	if cfg.Tool == nil || cfg.Camera == nil {
		panic("viewport: Config requires Tool and Camera")
	}
	v := &Viewport{
		tool:          cfg.Tool,
		camera:        cfg.Camera,
		logger:        cfg.Logger,
		sink:          cfg.Sink,
		deadZone:      cfg.DragDeadZone,
		hitRadius:     cfg.HitRadius,
		frameDuration: cfg.FrameDuration,
		showStatus:    cfg.ShowStatus,
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	if v.deadZone <= 0 {
		v.deadZone = defaultDragDeadZone
	}
	if v.hitRadius <= 0 {
		v.hitRadius = defaultHitRadius
	}
	if v.frameDuration <= 0 {
		v.frameDuration = 0.3
	}
	return v
}

// Tool returns the tool driven by the viewport.
func (v *Viewport) Tool() *lighttool.Tool { return v.tool }

// Camera returns the viewport camera.
func (v *Viewport) Camera() *lighttool.Camera { return v.camera }

// Hovered returns the handle under the pointer, or nil.
func (v *Viewport) Hovered() lighttool.Handle { return v.hover }

// Err returns the last drag or settle error, or nil.
func (v *Viewport) Err() error { return v.lastErr }

func (v *Viewport) fail(err error) {
	v.lastErr = err
	v.logger.Warn("viewport", "err", err)
}

// Update implements ebiten.Game. Pressing F frames the anchor light.
func (v *Viewport) Update() error {
	ctx := context.Background()
	if inpututil.IsKeyJustPressed(ebiten.KeyF) && v.tool.HandlesVisible() {
		v.camera.Frame(v.tool, v.frameDuration)
	}
	v.camera.Update(1 / float32(ebiten.TPS()))
	v.readPointer(ctx)
	v.Tick(ctx)
	return nil
}

// Tick consumes one injected pointer event, if any, and settles the tool.
// Update calls it once per frame.
func (v *Viewport) Tick(ctx context.Context) {
	v.processInjected(ctx)
	if err := v.tool.PreRender(ctx); err != nil {
		v.fail(err)
	}
}

// Draw implements ebiten.Game. Each visible handle is drawn as a line from
// the light origin to a dot at the handle position.
func (v *Viewport) Draw(screen *ebiten.Image) {
	if v.tool.HandlesVisible() {
		origin := v.tool.GroupTransform().Col(3).Vec3()
		ox, oy, originOK := v.camera.WorldToScreen(origin)
		for _, h := range v.tool.Handles() {
			if !h.Visible() {
				continue
			}
			hx, hy, ok := v.camera.WorldToScreen(h.WorldTransform().Col(3).Vec3())
			if !ok {
				continue
			}
			clr := toRGBA(v.handleColor(h))
			if originOK {
				vector.StrokeLine(screen, float32(ox), float32(oy), float32(hx), float32(hy), 1, clr, true)
			}
			vector.FillCircle(screen, float32(hx), float32(hy), float32(v.hitRadius*0.75), clr, true)
		}
	}
	if v.showStatus {
		ebitenutil.DebugPrint(screen, v.status())
	}
}

// Layout implements ebiten.Game. The camera viewport follows the window.
func (v *Viewport) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.camera.Viewport = lighttool.Rect{Width: float64(outsideWidth), Height: float64(outsideHeight)}
	return outsideWidth, outsideHeight
}

func (v *Viewport) handleColor(h lighttool.Handle) lighttool.Color {
	switch {
	case !h.Enabled():
		return lighttool.DisabledColor
	case h == v.hover || h == v.tool.DragHandle():
		return lighttool.HighlightColor
	default:
		return lighttool.HandleColor
	}
}

func (v *Viewport) status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.1f TPS: %.1f\n", ebiten.ActualFPS(), ebiten.ActualTPS())
	if h := v.tool.DragHandle(); h != nil {
		fmt.Fprintf(&b, "dragging %s\n", h.Name())
	} else if v.hover != nil {
		fmt.Fprintf(&b, "%s\n", v.hover.Name())
	}
	if v.lastErr != nil {
		fmt.Fprintf(&b, "error: %v\n", v.lastErr)
	}
	return b.String()
}

func toRGBA(c lighttool.Color) color.RGBA {
	return color.RGBA{
		R: uint8(c.R*c.A*255 + 0.5),
		G: uint8(c.G*c.A*255 + 0.5),
		B: uint8(c.B*c.A*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}

// RunConfig holds window options for Run.
type RunConfig struct {
	Title         string
	Width, Height int
}

// Run opens a window and runs game, usually a Viewport or a host game
// embedding one, until it is closed.
func Run(game ebiten.Game, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 800, 600
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(game)
}
