package ring

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSliceAngles(t *testing.T) {
	r := Build(nil, time.Now(), Options{})

	require.Len(t, r.Slices, Slices)
	assert.Equal(t, DefaultSize, r.Size)
	for i, slice := range r.Slices {
		assert.Equal(t, i, slice.Index)
		assert.InDelta(t, float64(i*60-90), slice.StartAngle, 1e-9)
		assert.InDelta(t, float64((i+1)*60-90), slice.EndAngle, 1e-9)
		assert.True(t, slice.Empty)
		assert.Equal(t, DefaultEmptyFill, slice.Fill)
		assert.Equal(t, 1.0, slice.Opacity)
	}
	assert.Equal(t, 0, r.Members)
}

func TestSlicePathGeometry(t *testing.T) {
	assert.Equal(t,
		"M 100.00 100.00 L 100.00 0.00 A 100.00 100.00 0 0 1 186.60 50.00 Z",
		SlicePath(100, 100, 100, -90, -30),
	)
	assert.Equal(t,
		"M 100.00 100.00 L 100.00 200.00 A 100.00 100.00 0 0 1 13.40 150.00 Z",
		SlicePath(100, 100, 100, 90, 150),
	)
	assert.Contains(t, SlicePath(100, 100, 100, 0, 270), " 0 1 1 ")
}

func TestBuildFillsMembersInOrder(t *testing.T) {
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{UserID: "u1", DisplayName: "Ana", HasFeeling: true, Color: "green", Hex: "#30A46C", Word: "good", Day: today},
		{UserID: "u2", DisplayName: "Ben", HasFeeling: true, Color: "blue", Hex: "#0090FF", Word: "tired", Day: today.AddDate(0, 0, -2)},
		{UserID: "u3", DisplayName: "Cy"},
	}

	r := Build(entries, today.Add(15*time.Hour), Options{Size: 200})
	require.Len(t, r.Slices, Slices)
	assert.Equal(t, 3, r.Members)

	first := r.Slices[0]
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, "#30A46C", first.Fill)
	assert.False(t, first.Stale)
	assert.False(t, first.Empty)
	assert.Equal(t, 1.0, first.Opacity)
	assert.Equal(t, "2026-05-10", first.Day)
	assert.Equal(t, "M 100.00 100.00 L 100.00 0.00 A 100.00 100.00 0 0 1 186.60 50.00 Z", first.Path)

	second := r.Slices[1]
	assert.True(t, second.Stale)
	assert.True(t, second.Hatched)
	assert.Equal(t, DefaultStaleOpacity, second.Opacity)
	assert.Equal(t, "#0090FF", second.Fill)

	third := r.Slices[2]
	assert.Equal(t, "u3", third.UserID)
	assert.True(t, third.Empty)
	assert.Equal(t, DefaultEmptyFill, third.Fill)

	for _, slice := range r.Slices[3:] {
		assert.Empty(t, slice.UserID)
		assert.True(t, slice.Empty)
	}
}

func TestBuildIgnoresEntriesPastSix(t *testing.T) {
	entries := make([]Entry, 8)
	for i := range entries {
		entries[i] = Entry{UserID: string(rune('a' + i))}
	}
	r := Build(entries, time.Now(), Options{})
	assert.Equal(t, Slices, r.Members)
	assert.Equal(t, "f", r.Slices[5].UserID)
}

func TestRenderSVG(t *testing.T) {
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{UserID: "u1", DisplayName: "Ana & Co", HasFeeling: true, Color: "red", Hex: "#E5484D", Word: "mad", Day: today.AddDate(0, 0, -1)},
	}

	svg := RenderSVG(Build(entries, today, Options{Size: 120}))

	assert.True(t, strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" width="120.00" height="120.00"`))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Equal(t, Slices, strings.Count(svg, `stroke-width="2">`))
	assert.Contains(t, svg, `fill-opacity="0.35"`)
	assert.Contains(t, svg, `fill="url(#stale-hatch)"`)
	assert.Contains(t, svg, `<pattern id="stale-hatch"`)
	assert.Contains(t, svg, "<title>Ana &amp; Co: mad</title>")
}

func TestRenderSVGWithoutStaleOmitsPattern(t *testing.T) {
	svg := RenderSVG(Build(nil, time.Now(), Options{}))
	assert.NotContains(t, svg, "<defs>")
	assert.NotContains(t, svg, "fill-opacity")
}
