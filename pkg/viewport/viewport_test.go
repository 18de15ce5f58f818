package viewport

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestViewport shows a 1000x800 preview (2000x1600 original) in a 500x500 panel.
func newTestViewport(t *testing.T, opts ...Option) *Viewport {
	t.Helper()
	v, err := New(500, 500, 1000, 800, 2, opts...)
	require.NoError(t, err)
	return v
}

func assertInvariants(t *testing.T, v *Viewport) {
	t.Helper()
	assert.GreaterOrEqual(t, v.X(), 0, "x")
	assert.GreaterOrEqual(t, v.Y(), 0, "y")
	assert.LessOrEqual(t, v.X2(), v.ImageWidth(), "x2")
	assert.LessOrEqual(t, v.Y2(), v.ImageHeight(), "y2")
	assert.GreaterOrEqual(t, v.Magnification(), v.MaxZoomMagnification())
	assert.LessOrEqual(t, v.Magnification(), v.MinZoomMagnification())
	assert.LessOrEqual(t, v.Width(), v.PanelWidth())
	assert.LessOrEqual(t, v.Height(), v.PanelHeight())
	assert.True(t, v.Width() == v.PanelWidth() || v.Height() == v.PanelHeight(),
		"one axis must fill the panel: %dx%d in %dx%d", v.Width(), v.Height(), v.PanelWidth(), v.PanelHeight())
}

func TestNew_InvalidGeometry(t *testing.T) {
	tests := []struct {
		name           string
		pw, ph, iw, ih int
		scale          float64
	}{
		{"zero panel width", 0, 500, 100, 100, 1},
		{"negative panel height", 500, -1, 100, 100, 1},
		{"zero image width", 500, 500, 0, 100, 1},
		{"zero image height", 500, 500, 100, 0, 1},
		{"scale below one", 500, 500, 100, 100, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.pw, tt.ph, tt.iw, tt.ih, tt.scale)
			require.ErrorIs(t, err, ErrInvalidGeometry)
		})
	}
}

func TestNew_FitsWholeImage(t *testing.T) {
	v := newTestViewport(t)

	assert.InDelta(t, 0.5, v.MaxZoomMagnification(), 1e-9)
	assert.InDelta(t, ZoomMin, v.MinZoomMagnification(), 1e-9)
	assert.InDelta(t, 0.5, v.Magnification(), 1e-9)

	assert.Equal(t, image.Rect(0, 0, 1000, 800), v.Rect())
	assert.Equal(t, 500, v.Width())
	assert.Equal(t, 400, v.Height())
	assert.Equal(t, 0, v.XOffset())
	assert.Equal(t, 50, v.YOffset())
	assertInvariants(t, v)
}

func TestNew_Options(t *testing.T) {
	v := newTestViewport(t, WithMagnification(1), WithOrigin(100, 100))

	assert.InDelta(t, 1.0, v.Magnification(), 1e-9)
	assertInvariants(t, v)

	// magnification beyond the ceiling is clamped
	v = newTestViewport(t, WithMagnification(10))
	assert.InDelta(t, ZoomMin, v.Magnification(), 1e-9)
	assertInvariants(t, v)

	// origin past the image is pulled back in
	v = newTestViewport(t, WithMagnification(1), WithOrigin(5000, 5000))
	assert.Equal(t, 1000, v.X2())
	assert.Equal(t, 800, v.Y2())
	assertInvariants(t, v)
}

func TestLetterbox_FollowsViewingAspect(t *testing.T) {
	// non-square panel: the short axis is scaled by the image aspect, not the panel's
	v, err := New(800, 600, 1600, 1200, 1)
	require.NoError(t, err)

	assert.Equal(t, 800, v.Width())
	assert.Equal(t, 450, v.Height())
	assert.Equal(t, 0, v.XOffset())
	assert.Equal(t, 75, v.YOffset())
	assertInvariants(t, v)
}

func TestChangeMagnificationToOne(t *testing.T) {
	v := newTestViewport(t)
	v.ChangeMagnificationToOne()

	assert.InDelta(t, 1.0, v.Magnification(), 1e-9)
	// recentred on (500, 400)
	assert.Equal(t, image.Rect(250, 150, 750, 650), v.Rect())
	assert.Equal(t, 500, v.Width())
	assert.Equal(t, 500, v.Height())
	assert.Equal(t, 0, v.XOffset())
	assert.Equal(t, 0, v.YOffset())
	assertInvariants(t, v)
}

func TestChangeMagnification_ZoomInKeepsCentre(t *testing.T) {
	v := newTestViewport(t)
	v.ChangeMagnificationToOne()
	cx, cy := v.Center()

	v.ChangeMagnification(-100)

	assert.InDelta(t, ZoomMin, v.Magnification(), 1e-9)
	assert.Equal(t, image.Rect(375, 275, 625, 525), v.Rect())
	nx, ny := v.Center()
	assert.Equal(t, cx, nx)
	assert.Equal(t, cy, ny)
	assertInvariants(t, v)
}

func TestChangeMagnification_ZoomOutClampsToFloor(t *testing.T) {
	v := newTestViewport(t)
	v.ChangeMagnificationToOne()
	v.ChangeMagnification(100)

	assert.InDelta(t, v.MaxZoomMagnification(), v.Magnification(), 1e-9)
	assert.Equal(t, image.Rect(0, 0, 1000, 800), v.Rect())
	assertInvariants(t, v)
}

func TestChangeMagnification_ReclampsAtImageEdge(t *testing.T) {
	v := newTestViewport(t)
	v.ChangeMagnificationToOne()
	v.Move(1000, 1000)
	require.Equal(t, image.Rect(500, 300, 1000, 800), v.Rect())

	// zooming out around (750, 550) would overflow the bottom-right corner
	v.ChangeMagnification(10)

	assert.InDelta(t, 0.6, v.Magnification(), 1e-9)
	assert.Equal(t, 1000, v.X2())
	assert.Equal(t, 800, v.Y2())
	assertInvariants(t, v)
}

func TestChangeMagnificationToFitWindow(t *testing.T) {
	v := newTestViewport(t, WithMagnification(2), WithOrigin(300, 300))
	v.ChangeMagnificationToFitWindow()

	assert.InDelta(t, v.MaxZoomMagnification(), v.Magnification(), 1e-9)
	assert.Equal(t, image.Rect(0, 0, 1000, 800), v.Rect())
	assertInvariants(t, v)
}

func TestMove(t *testing.T) {
	v := newTestViewport(t)
	v.ChangeMagnificationToOne()

	v.Move(100, -400)
	assert.Equal(t, 350, v.X())
	assert.Equal(t, 0, v.Y())

	v.Move(1000, 1000)
	assert.Equal(t, 500, v.X())
	assert.Equal(t, 300, v.Y())

	v.Move(-5000, -5000)
	assert.Equal(t, 0, v.X())
	assert.Equal(t, 0, v.Y())
	assertInvariants(t, v)
}

func TestMove_ScalesByMagnification(t *testing.T) {
	v := newTestViewport(t, WithMagnification(2), WithOrigin(0, 0))
	v.Move(100, 50)

	assert.Equal(t, 50, v.X())
	assert.Equal(t, 25, v.Y())
}

func TestProjections(t *testing.T) {
	v := newTestViewport(t)

	// fitted: x=y=0, magnification 0.5, 50px vertical letterbox
	assert.Equal(t, 250, v.ProjectRealX(125))
	assert.Equal(t, 0, v.ProjectRealY(50))
	assert.Equal(t, 400, v.ProjectRealY(250))
	assert.Equal(t, 500, v.ProjectOriginalX(125))
	assert.Equal(t, 800, v.ProjectOriginalY(250))
	assert.Equal(t, 200, v.ProjectViewY(400))
	assert.Equal(t, 250, v.ProjectPanelY(400))
	assert.Equal(t, 125, v.ProjectPanelX(250))
	assert.Equal(t, 50, v.ProjectViewLength(100))

	v.ChangeMagnificationToOne()
	assert.Equal(t, 350, v.ProjectRealX(100))
	assert.Equal(t, 700, v.ProjectOriginalX(100))
	assert.Equal(t, 100, v.ProjectViewX(350))
	assert.Equal(t, 100, v.ProjectPanelX(350))
	assert.Equal(t, -250, v.ProjectViewX(0))
}

func TestProjectOriginal_RoundsEachStage(t *testing.T) {
	v, err := New(300, 300, 1000, 1000, 1.5, WithMagnification(2), WithOrigin(0, 0))
	require.NoError(t, err)

	// 3/2 = 1.5 rounds to 2 in preview, then 2*1.5 = 3; deferring rounding would give 2
	assert.Equal(t, 2, v.ProjectRealX(3))
	assert.Equal(t, 3, v.ProjectOriginalX(3))
}

func TestOriginalCorners(t *testing.T) {
	for _, scale := range []float64{1, 1.5, 2, 3.7, 16} {
		v, err := New(640, 480, 1200, 900, scale)
		require.NoError(t, err)
		v.ChangeMagnification(-17)
		v.Move(123, 77)

		assert.Equal(t, round(float64(v.X())*scale), v.OriginalX())
		assert.Equal(t, round(float64(v.Y())*scale), v.OriginalY())
		assert.Equal(t, round(float64(v.X2())*scale), v.OriginalX2())
		assert.Equal(t, round(float64(v.Y2())*scale), v.OriginalY2())
		assert.Equal(t, image.Rect(v.OriginalX(), v.OriginalY(), v.OriginalX2(), v.OriginalY2()), v.OriginalRect())
	}
}

func TestOriginalImageSize(t *testing.T) {
	v, err := New(500, 500, 1001, 333, 2.5)
	require.NoError(t, err)

	assert.Equal(t, 2503, v.OriginalImageWidth())
	assert.Equal(t, 833, v.OriginalImageHeight())
}

func TestInvariants_PanelWiderThanImage(t *testing.T) {
	// the fitted footprint would be wider than the image; it is capped at the image edge
	v, err := New(800, 600, 1000, 1000, 1)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 1000, 1000), v.Rect())
	assertInvariants(t, v)

	v.Move(300, 300)
	assertInvariants(t, v)
}

func TestInvariants_RandomZoomAndPan(t *testing.T) {
	geometries := []struct {
		pw, ph, iw, ih int
		scale          float64
	}{
		{500, 500, 1000, 800, 2},
		{800, 600, 1000, 1000, 1},
		{640, 480, 4000, 1200, 8},
		{300, 700, 900, 2500, 32},
		{1024, 768, 640, 480, 1},
	}

	rng := rand.New(rand.NewSource(42))
	for _, g := range geometries {
		v, err := New(g.pw, g.ph, g.iw, g.ih, g.scale)
		require.NoError(t, err)

		for i := 0; i < 500; i++ {
			switch rng.Intn(4) {
			case 0:
				v.ChangeMagnification(float64(rng.Intn(61) - 30))
			case 1:
				v.Move(rng.Intn(2001)-1000, rng.Intn(2001)-1000)
			case 2:
				v.ChangeMagnificationToOne()
			default:
				v.ChangeMagnificationToFitWindow()
			}
			assertInvariants(t, v)
		}
	}
}
