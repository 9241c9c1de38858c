package svgmap_test

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/render"
	"github.com/atlasdatatech/geoframe/render/internal/rendertest"
	"github.com/atlasdatatech/geoframe/render/svgmap"
)

func TestRender(t *testing.T) {
	r, err := render.For(svgmap.Name, dict.Dict{})
	require.NoError(t, err)
	require.Equal(t, "image/svg+xml", r.ContentType())

	var buf bytes.Buffer
	layers := rendertest.Layers(t)
	require.NoError(t, r.Render(context.Background(), &buf, layers, render.Options{Title: "Thefts", Width: 600, Height: 400}))

	// well formed and one <title> per feature
	dec := xml.NewDecoder(bytes.NewReader(buf.Bytes()))
	var titles, paths, circles int
	var texts []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "title":
				titles++
			case "path":
				paths++
			case "circle":
				circles++
			}
		case xml.CharData:
			texts = append(texts, string(el))
		}
	}
	require.Equal(t, layers[0].Frame.Len()+layers[1].Frame.Len(), titles)
	require.Equal(t, layers[0].Frame.Len(), paths)
	require.Equal(t, layers[1].Frame.Len(), circles)

	all := strings.Join(texts, "|")
	require.Contains(t, all, "name: Ward <A>")
	require.Contains(t, all, "Thefts")
	require.Contains(t, all, "0 – 20")
}

func TestBadBackground(t *testing.T) {
	_, err := render.For(svgmap.Name, dict.Dict{"background": "nope"})
	require.Error(t, err)
}

func TestRenderMixedCRS(t *testing.T) {
	r, err := render.For(svgmap.Name, dict.Dict{})
	require.NoError(t, err)

	layers := rendertest.Layers(t)
	geographic, err := layers[1].Frame.Transform(crs.WGS84)
	require.NoError(t, err)
	layers[1].Frame = geographic

	var buf bytes.Buffer
	err = r.Render(context.Background(), &buf, layers, render.Options{})
	require.ErrorIs(t, err, crs.ErrMismatch)
	require.Zero(t, buf.Len())
}
