package webmap

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/render"
)

func TestTooltipEscaped(t *testing.T) {
	b := frame.NewBuilder(crs.WGS84, "Primary Type")
	require.NoError(t, b.Add(orb.Point{-87.65, 41.88}, `<b onmouseover="alert(1)">THEFT</b>`))
	f, err := b.Frame()
	require.NoError(t, err)

	s, err := (&render.Layer{Name: "crimes", Frame: f}).Classify()
	require.NoError(t, err)
	ml, err := toMapLayer(s)
	require.NoError(t, err)
	require.Len(t, ml.Data.Features, 1)

	tip := ml.Data.Features[0].Properties[propTip]
	require.Equal(t, "Primary Type: &lt;b onmouseover=&#34;alert(1)&#34;&gt;THEFT&lt;/b&gt;", tip)
}
