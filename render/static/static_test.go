package static_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/render"
	"github.com/atlasdatatech/geoframe/render/internal/rendertest"
	"github.com/atlasdatatech/geoframe/render/static"
)

func renderTo(t *testing.T, format string, opts render.Options) []byte {
	t.Helper()
	r, err := render.For(static.Name, dict.Dict{"format": format})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, rendertest.Layers(t), opts))
	return buf.Bytes()
}

func TestPNG(t *testing.T) {
	out := renderTo(t, "png", render.Options{Title: "Thefts per ward", Width: 400, Height: 300})
	require.True(t, bytes.HasPrefix(out, []byte("\x89PNG")), "not a png")
}

func TestSVGPanels(t *testing.T) {
	out := renderTo(t, "svg", render.Options{Panels: []string{"theft", "battery"}})
	require.Contains(t, string(out), "<svg")
	require.Contains(t, string(out), "battery")
}

func TestWebP(t *testing.T) {
	out := renderTo(t, "webp", render.Options{Width: 200, Height: 200})
	require.True(t, len(out) > 12 && string(out[:4]) == "RIFF" && string(out[8:12]) == "WEBP", "not a webp")
}

func TestConfig(t *testing.T) {
	_, err := render.For(static.Name, dict.Dict{"format": "bmp"})
	require.Error(t, err)

	r, err := render.For(static.Name, dict.Dict{"format": ".PDF"})
	require.NoError(t, err)
	require.Equal(t, "application/pdf", r.ContentType())
}

func TestBadPanel(t *testing.T) {
	r, err := render.For(static.Name, dict.Dict{})
	require.NoError(t, err)
	err = r.Render(context.Background(), &bytes.Buffer{}, rendertest.Layers(t), render.Options{Panels: []string{"arson"}})
	require.Error(t, err)
}
