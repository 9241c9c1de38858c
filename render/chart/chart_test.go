package chart_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/render"
	"github.com/atlasdatatech/geoframe/render/chart"
	"github.com/atlasdatatech/geoframe/render/internal/rendertest"
)

func TestRender(t *testing.T) {
	r, err := render.For(chart.Name, dict.Dict{"top": 3, "label": "ward"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(r.ContentType(), "text/html"))

	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, rendertest.Layers(t), render.Options{Title: "Thefts by ward"}))
	out := buf.String()
	require.Contains(t, out, "echarts")
	require.Contains(t, out, "Top 3 by theft")
	require.Contains(t, out, "Thefts by ward")
	// class colours of the palette are used for the series
	require.Contains(t, out, "#ffffb2")
}

func TestConfig(t *testing.T) {
	_, err := render.For(chart.Name, dict.Dict{"top": 0})
	require.Error(t, err)

	r, err := render.For(chart.Name, dict.Dict{"label": "missing"})
	require.NoError(t, err)
	err = r.Render(context.Background(), &bytes.Buffer{}, rendertest.Layers(t), render.Options{})
	require.Error(t, err)
}

func TestRenderWithoutFill(t *testing.T) {
	r, err := render.For(chart.Name, dict.Dict{})
	require.NoError(t, err)

	layers := rendertest.Layers(t)
	layers[0].Fill = ""
	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, layers, render.Options{}))
	require.NotContains(t, buf.String(), "Top ")
}
