package fieldselector

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpec/fieldselector/pkg/codec"
	"github.com/gpec/fieldselector/pkg/field"
	"github.com/gpec/fieldselector/pkg/viewport"
)

// testConfig shows a 1000x800 preview of a 2000x1600 slide in a 500x500 panel.
// Fitted, the image occupies panel rows 50-449 at half magnification.
func testConfig() Config {
	return Config{
		PanelWidth:      500,
		PanelHeight:     500,
		PreviewWidth:    1000,
		PreviewHeight:   800,
		ScaleToOriginal: 2,
		ThumbnailWidth:  100,
		FieldDiameter:   400,
	}
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := New(testConfig(), opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	s := newTestSession(t)

	require.NotNil(t, s.Thumbnail())
	assert.Equal(t, 100, s.Thumbnail().Width())
	assert.Equal(t, 80, s.Thumbnail().Height())
	assert.Empty(t, s.Selection())
	assert.Equal(t, "", s.Encoded())
	assert.Equal(t, Version, GetVersion())
}

func TestNew_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.FieldDiameter = 0
	_, err := New(cfg)
	require.Error(t, err)

	cfg = testConfig()
	cfg.PreviewWidth = 0
	_, err = New(cfg)
	require.ErrorIs(t, err, viewport.ErrInvalidGeometry)

	cfg = testConfig()
	cfg.ThumbnailWidth = 0
	s, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, s.Thumbnail())
}

func TestSelect_CreatesAndSwitchesCurrent(t *testing.T) {
	s := newTestSession(t)

	first, err := s.Select(250, 250, field.Low)
	require.NoError(t, err)
	assert.Equal(t, 1000, first.X())
	assert.Equal(t, 800, first.Y())
	assert.Equal(t, 400, first.Diameter())
	assert.Equal(t, "1000x800y400pp1co", s.Encoded())

	// selecting inside an existing field reuses it
	again, err := s.Select(255, 245, field.HotSpot)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Len(t, s.Selection(), 1)

	second, err := s.Select(320, 250, field.Negligible)
	require.NoError(t, err)
	assert.Equal(t, 1280, second.X())
	assert.Same(t, second, s.Current())
	assert.Equal(t, field.NotCurrent, first.ViewingState())
	assert.Equal(t, "1000x800y400pp1no_1280x800y400pp0co", s.Encoded())
}

func TestSelect_Letterbox(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Select(250, 10, field.Low)
	require.ErrorIs(t, err, ErrOutsideImage)
	_, err = s.Select(250, 450, field.Low)
	require.ErrorIs(t, err, ErrOutsideImage)
	assert.Empty(t, s.Selection())
}

// A 1000x1000 preview fitted into an 800x600 panel spans the whole image but
// only 600 panel columns; columns 600-799 project past the right edge.
func TestSelect_CappedSpan(t *testing.T) {
	s, err := New(Config{
		PanelWidth:      800,
		PanelHeight:     600,
		PreviewWidth:    1000,
		PreviewHeight:   1000,
		ScaleToOriginal: 2,
		FieldDiameter:   100,
	})
	require.NoError(t, err)
	require.Equal(t, 1000, s.Viewport().X2())

	_, err = s.Select(799, 300, field.Low)
	require.ErrorIs(t, err, ErrOutsideImage)
	_, err = s.Select(650, 300, field.Low)
	require.ErrorIs(t, err, ErrOutsideImage)
	assert.Nil(t, s.Hover(700, 300))
	assert.Empty(t, s.Selection())

	f, err := s.Select(300, 300, field.Low)
	require.NoError(t, err)
	assert.Equal(t, 1000, f.X())
	assert.Equal(t, 1000, f.Y())

	f, err = s.Select(599, 599, field.Low)
	require.NoError(t, err)
	assert.LessOrEqual(t, f.X(), s.Viewport().OriginalImageWidth())
	assert.LessOrEqual(t, f.Y(), s.Viewport().OriginalImageHeight())
	assert.Equal(t, "1000x1000y100pp1no_1996x1996y100pp1co", s.Encoded())
}

func TestHover(t *testing.T) {
	s := newTestSession(t)
	first, err := s.Select(250, 250, field.Low)
	require.NoError(t, err)
	second, err := s.Select(320, 250, field.Low)
	require.NoError(t, err)

	assert.Same(t, first, s.Hover(250, 250))
	assert.Equal(t, field.Preview, first.ViewingState())

	// the current field is never previewed
	assert.Same(t, second, s.Hover(320, 250))
	assert.Equal(t, field.Current, second.ViewingState())
	assert.Equal(t, field.NotCurrent, first.ViewingState())

	assert.Nil(t, s.Hover(250, 10))
}

func TestScoring(t *testing.T) {
	s := newTestSession(t)

	_, err := s.BeginScoring()
	require.ErrorIs(t, err, ErrNoCurrentField)

	_, err = s.Select(250, 250, field.Medium)
	require.NoError(t, err)

	f, err := s.BeginScoring()
	require.NoError(t, err)
	assert.Equal(t, field.Scoring, f.ScoringState())
	assert.Equal(t, "1000x800y400pp2ci", s.Encoded())

	_, err = s.FinishScoring()
	require.NoError(t, err)
	require.Len(t, s.Scored(), 1)
	assert.Equal(t, "1000x800y400pp2cs", s.Encoded())
}

func TestLoad(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Load("1000x800y400pp0no_100000x100000y400pp4ns"))

	assert.Len(t, s.Selection(), 2)
	assert.Len(t, s.VisibleFields(), 1)
	assert.Nil(t, s.Current())
	assert.NotNil(t, s.FieldAt(250, 250))
	assert.Nil(t, s.FieldAt(0, 0))

	err := s.Load("1000x800y")
	require.ErrorIs(t, err, codec.ErrMalformed)
	assert.Len(t, s.Selection(), 2, "selection kept on error")
}

func TestLoad_WarnsOnSeveralCurrent(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSession(t, WithLogger(zerolog.New(&buf)))

	require.NoError(t, s.Load("10x10y4pp0co_20x20y4pp0co"))
	assert.Contains(t, buf.String(), "more than one current field")
}

func TestMergeAndRemove(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Load("1000x800y400pp0no"))

	incoming := field.New(1000, 800, 400, field.NotCurrent, field.NotScored, field.HotSpot)
	s.Merge(field.Selection{incoming, nil})
	require.Len(t, s.Selection(), 2)
	assert.Equal(t, 1001, s.Selection()[1].X())

	// the caller's field is copied, not nudged in place
	assert.Equal(t, 1000, incoming.X())
	assert.NotSame(t, incoming, s.Selection()[1])

	assert.True(t, s.Remove(s.Selection()[0]))
	assert.False(t, s.Remove(field.New(1, 1, 1, field.NotCurrent, field.NotScored, field.Low)))
	assert.Equal(t, "1001x800y400pp4no", s.Encoded())
}

func TestCenterOn(t *testing.T) {
	s := newTestSession(t)
	s.Viewport().ChangeMagnificationToOne()
	require.Equal(t, 250, s.Viewport().X())

	// preview (800, 400): moves right, vertical already centred
	s.CenterOn(field.New(1600, 800, 400, field.NotCurrent, field.NotScored, field.Low))
	assert.Equal(t, 500, s.Viewport().X())
	assert.Equal(t, 150, s.Viewport().Y())

	// preview (300, 200): pulled back to the top edge
	s.CenterOn(field.New(600, 400, 400, field.NotCurrent, field.NotScored, field.Low))
	assert.Equal(t, 50, s.Viewport().X())
	assert.Equal(t, 0, s.Viewport().Y())

	s.CenterOn(nil)
}
