package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	imagecolor "image/color"
	"image/png"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	domainerrors "github.com/contribgraph/contribgraph-server/internal/errors"
)

// ErrEncoding reports an SVG document that could not be rasterized.
// It is always returned wrapped in an INTERNAL domain error.
var ErrEncoding = errors.New("raster encoding failed")

// MaxScale bounds the raster scale factor.
const MaxScale = 4.0

var textElement = regexp.MustCompile(`(?s)<text\b[^>]*>.*?</text>`)

// Rasterizer converts composed SVG documents to PNG.
//
// Shapes are drawn by oksvg, which does not render text, so <text> nodes are
// extracted separately and drawn with the Go fonts. A Rasterizer is
// immutable after construction and safe for concurrent use.
type Rasterizer struct {
	scale   float64
	regular *opentype.Font
	medium  *opentype.Font
}

// NewRasterizer parses the bundled fonts. scale multiplies the output
// resolution; values <= 0 mean 1 and values above MaxScale are clamped.
func NewRasterizer(scale float64) (*Rasterizer, error) {
	if scale <= 0 {
		scale = 1
	}
	scale = math.Min(scale, MaxScale)

	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	medium, err := opentype.Parse(gomedium.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse medium font: %w", err)
	}

	return &Rasterizer{scale: scale, regular: regular, medium: medium}, nil
}

// Scale returns the output resolution multiplier.
func (r *Rasterizer) Scale() float64 {
	return r.scale
}

// Encode rasterizes svg and returns PNG bytes sized to the document's
// viewBox times the scale.
func (r *Rasterizer) Encode(svg string) ([]byte, error) {
	img, err := r.Rasterize(svg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, encodingError(err, "encode png")
	}
	return buf.Bytes(), nil
}

// Rasterize draws svg into a new RGBA image.
func (r *Rasterizer) Rasterize(svg string) (img *image.RGBA, err error) {
	labels, err := parseTextNodes(svg)
	if err != nil {
		return nil, encodingError(err, "parse text")
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(textElement.ReplaceAllString(svg, "")))
	if err != nil {
		return nil, encodingError(err, "parse svg")
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, encodingError(fmt.Errorf("viewBox %gx%g", vw, vh), "parse svg")
	}

	w := int(math.Ceil(vw * r.scale))
	h := int(math.Ceil(vh * r.scale))

	defer func() {
		if p := recover(); p != nil {
			img, err = nil, encodingError(fmt.Errorf("%v", p), "rasterize")
		}
	}()

	icon.SetTarget(0, 0, float64(w), float64(h))
	img = image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	if err := r.drawText(img, labels); err != nil {
		return nil, encodingError(err, "draw text")
	}
	return img, nil
}

func encodingError(err error, op string) error {
	return domainerrors.Wrapf(fmt.Errorf("%w: %w", ErrEncoding, err), domainerrors.CodeInternal, "%s", op)
}

// textNode is a positioned label pulled out of the SVG.
type textNode struct {
	x, y    float64
	size    float64
	weight  int
	fill    string
	opacity float64
	anchor  string
	content string
}

func parseTextNodes(svg string) ([]textNode, error) {
	dec := xml.NewDecoder(strings.NewReader(svg))

	var (
		nodes []textNode
		cur   *textNode
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "text" {
				n := newTextNode(t.Attr)
				cur = &n
			}
		case xml.CharData:
			if cur != nil {
				cur.content += string(t)
			}
		case xml.EndElement:
			if t.Name.Local == "text" && cur != nil {
				nodes = append(nodes, *cur)
				cur = nil
			}
		}
	}
	return nodes, nil
}

func newTextNode(attrs []xml.Attr) textNode {
	n := textNode{size: 10, weight: 400, fill: "#000000", opacity: 1}
	for _, a := range attrs {
		switch a.Name.Local {
		case "x":
			n.x = parseFloat(a.Value, n.x)
		case "y":
			n.y = parseFloat(a.Value, n.y)
		case "font-size":
			n.size = parseFloat(a.Value, n.size)
		case "font-weight":
			if w, err := strconv.Atoi(a.Value); err == nil {
				n.weight = w
			}
		case "fill":
			n.fill = a.Value
		case "opacity":
			n.opacity = parseFloat(a.Value, n.opacity)
		case "text-anchor":
			n.anchor = a.Value
		}
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	if err != nil {
		return fallback
	}
	return f
}

type faceKey struct {
	size   float64
	medium bool
}

func (r *Rasterizer) drawText(img *image.RGBA, nodes []textNode) error {
	faces := make(map[faceKey]font.Face)
	defer func() {
		for _, f := range faces {
			_ = f.Close()
		}
	}()

	for _, n := range nodes {
		if n.content == "" {
			continue
		}

		key := faceKey{size: n.size * r.scale, medium: n.weight >= 500}
		face, ok := faces[key]
		if !ok {
			src := r.regular
			if key.medium {
				src = r.medium
			}
			var err error
			face, err = opentype.NewFace(src, &opentype.FaceOptions{
				Size:    key.size,
				DPI:     72,
				Hinting: font.HintingNone,
			})
			if err != nil {
				return err
			}
			faces[key] = face
		}

		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(textColor(n.fill, n.opacity)),
			Face: face,
		}

		x := n.x * r.scale
		switch n.anchor {
		case "end":
			x -= fixedToFloat(d.MeasureString(n.content))
		case "middle":
			x -= fixedToFloat(d.MeasureString(n.content)) / 2
		}
		d.Dot = fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(n.y * r.scale)}
		d.DrawString(n.content)
	}
	return nil
}

func textColor(hex string, opacity float64) imagecolor.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{}
	}
	r, g, b := c.RGB255()
	a := math.Round(math.Max(0, math.Min(opacity, 1)) * 255)
	return imagecolor.NRGBA{R: r, G: g, B: b, A: uint8(a)}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(f float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(f * 64))
}
