// Package ring lays out a group's latest moods as six equal slices of a circle.
package ring

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"
)

const (
	Slices = 6

	sliceDegrees = 360.0 / Slices
	// The first slice starts at 12 o'clock and slices advance clockwise.
	startDegrees = -90.0

	DefaultSize         = 240.0
	DefaultEmptyFill    = "#E4E4E7"
	DefaultStaleOpacity = 0.35
	DefaultStroke       = "#FFFFFF"
)

// Entry is one group member with their latest feeling, if any.
type Entry struct {
	UserID      string
	DisplayName string
	HasFeeling  bool
	Color       string
	Hex         string
	Word        string
	Day         time.Time
}

type Options struct {
	Size         float64
	EmptyFill    string
	StaleOpacity float64
	Stroke       string
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.EmptyFill == "" {
		o.EmptyFill = DefaultEmptyFill
	}
	if o.StaleOpacity <= 0 || o.StaleOpacity > 1 {
		o.StaleOpacity = DefaultStaleOpacity
	}
	if o.Stroke == "" {
		o.Stroke = DefaultStroke
	}
	return o
}

type Slice struct {
	Index       int     `json:"index"`
	StartAngle  float64 `json:"start_angle"`
	EndAngle    float64 `json:"end_angle"`
	UserID      string  `json:"user_id,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Color       string  `json:"color,omitempty"`
	Word        string  `json:"word,omitempty"`
	Day         string  `json:"day,omitempty"`
	Fill        string  `json:"fill"`
	Opacity     float64 `json:"opacity"`
	Stale       bool    `json:"stale"`
	Hatched     bool    `json:"hatched"`
	Empty       bool    `json:"empty"`
	Path        string  `json:"path"`
}

type Ring struct {
	Size    float64 `json:"size"`
	Radius  float64 `json:"radius"`
	Stroke  string  `json:"stroke"`
	Slices  []Slice `json:"slices"`
	Members int     `json:"members"`
}

// Build assigns entries, in join order, to slices 0..n-1. A slice is stale
// when its member's latest feeling is from a day before today. Entries past
// the sixth are ignored.
func Build(entries []Entry, today time.Time, opts Options) Ring {
	opts = opts.withDefaults()
	center := opts.Size / 2
	radius := opts.Size / 2

	members := len(entries)
	if members > Slices {
		members = Slices
	}

	r := Ring{
		Size:    opts.Size,
		Radius:  radius,
		Stroke:  opts.Stroke,
		Slices:  make([]Slice, Slices),
		Members: members,
	}
	today = dateOnly(today)

	for i := 0; i < Slices; i++ {
		start := startDegrees + float64(i)*sliceDegrees
		end := start + sliceDegrees
		slice := Slice{
			Index:      i,
			StartAngle: start,
			EndAngle:   end,
			Fill:       opts.EmptyFill,
			Opacity:    1,
			Empty:      true,
			Path:       SlicePath(center, center, radius, start, end),
		}

		if i < members {
			entry := entries[i]
			slice.UserID = entry.UserID
			slice.DisplayName = entry.DisplayName
			if entry.HasFeeling && entry.Hex != "" {
				slice.Empty = false
				slice.Color = entry.Color
				slice.Word = entry.Word
				slice.Fill = entry.Hex
				slice.Day = entry.Day.Format("2006-01-02")
				if dateOnly(entry.Day).Before(today) {
					slice.Stale = true
					slice.Hatched = true
					slice.Opacity = opts.StaleOpacity
				}
			}
		}
		r.Slices[i] = slice
	}
	return r
}

// SlicePath returns the SVG path of a pie slice from startDeg to endDeg
// (degrees, 0 = 3 o'clock, clockwise in screen coordinates).
func SlicePath(cx, cy, r, startDeg, endDeg float64) string {
	x0, y0 := point(cx, cy, r, startDeg)
	x1, y1 := point(cx, cy, r, endDeg)
	largeArc := 0
	if endDeg-startDeg > 180 {
		largeArc = 1
	}
	return fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
		coord(cx), coord(cy),
		coord(x0), coord(y0),
		coord(r), coord(r),
		largeArc,
		coord(x1), coord(y1),
	)
}

// RenderSVG emits a standalone SVG document for the ring.
func RenderSVG(r Ring) string {
	var b strings.Builder
	size := coord(r.Size)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`, size, size, size, size)

	if hasHatched(r) {
		b.WriteString(`<defs><pattern id="stale-hatch" patternUnits="userSpaceOnUse" width="6" height="6" patternTransform="rotate(45)">`)
		b.WriteString(`<line x1="0" y1="0" x2="0" y2="6" stroke="#FFFFFF" stroke-width="2" stroke-opacity="0.6"/>`)
		b.WriteString(`</pattern></defs>`)
	}

	for _, slice := range r.Slices {
		fmt.Fprintf(&b, `<path d="%s" fill="%s"`, slice.Path, html.EscapeString(slice.Fill))
		if slice.Opacity < 1 {
			fmt.Fprintf(&b, ` fill-opacity="%s"`, coord(slice.Opacity))
		}
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="2">`, html.EscapeString(r.Stroke))
		if title := sliceTitle(slice); title != "" {
			fmt.Fprintf(&b, `<title>%s</title>`, html.EscapeString(title))
		}
		b.WriteString(`</path>`)
		if slice.Hatched {
			fmt.Fprintf(&b, `<path d="%s" fill="url(#stale-hatch)"/>`, slice.Path)
		}
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func sliceTitle(slice Slice) string {
	switch {
	case slice.DisplayName == "":
		return ""
	case slice.Empty:
		return slice.DisplayName
	default:
		return slice.DisplayName + ": " + slice.Word
	}
}

func hasHatched(r Ring) bool {
	for _, slice := range r.Slices {
		if slice.Hatched {
			return true
		}
	}
	return false
}

func point(cx, cy, r, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return cx + r*math.Cos(rad), cy + r*math.Sin(rad)
}

func coord(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		// Avoid "-0.00".
		v = 0
	}
	return fmt.Sprintf("%.2f", v)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
