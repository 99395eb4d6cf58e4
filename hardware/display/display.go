// Package display is drawing surface over RGB565 framebuffer.
// All drawing goes into memory image, Flush() sends it to device.
package display

import (
	"image"
	"image/color"
	"image/draw"
	"io/ioutil"
	"strings"

	"github.com/juju/errors"
	"github.com/skip2/go-qrcode"
	"github.com/temoto/playreg/hardware/display/framebuffer"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type TextSize uint8

const (
	TextSmall TextSize = iota
	TextNormal
	TextLarge
	textSizeCount
)

var textPoints = [textSizeCount]float64{14, 20, 28}

const Ellipsis = "..."

var DefaultSize = image.Pt(320, 240)

var (
	Black     = color.RGBA{0, 0, 0, 0xff}
	White     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Red       = color.RGBA{0xf8, 0x00, 0x00, 0xff}
	LightGrey = color.RGBA{0xd0, 0xd0, 0xd0, 0xff}
	DarkGrey  = color.RGBA{0x80, 0x80, 0x80, 0xff}
)

type Config struct {
	Framebuffer string `hcl:"framebuffer"`
	BigEndian   bool   `hcl:"big_endian"`
	Font        string `hcl:"font"`
	Width       int    `hcl:"width"`
	Height      int    `hcl:"height"`
}

type Display struct {
	fb      *framebuffer.Framebuffer
	img     *image.RGBA
	size    image.Point
	faces   [textSizeCount]font.Face
	texts   []string
	flushes uint32
}

func NewFb(dev string, bigEndian bool, fontPath string) (*Display, error) {
	fb, err := framebuffer.New(dev, bigEndian)
	if err != nil {
		return nil, errors.Annotatef(err, "framebuffer device=%s", dev)
	}
	d := newDisplay(fb.Size())
	d.fb = fb
	if fontPath != "" {
		if err = d.LoadFont(fontPath); err != nil {
			_ = fb.Close()
			return nil, err
		}
	}
	return d, nil
}

func NewMock(size image.Point) *Display { return newDisplay(size) }

func newDisplay(size image.Point) *Display {
	d := &Display{
		img:  image.NewRGBA(image.Rectangle{Max: size}),
		size: size,
	}
	for i := range d.faces {
		d.faces[i] = basicfont.Face7x13
	}
	return d
}

// LoadFont replaces builtin ASCII face with TrueType/OpenType file, required for kana.
func (d *Display) LoadFont(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Annotate(err, "font read")
	}
	f, err := opentype.Parse(b)
	if err != nil {
		return errors.Annotatef(err, "font parse %s", path)
	}
	for i, pt := range textPoints {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: pt, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return errors.Annotatef(err, "font face size=%v", pt)
		}
		d.faces[i] = face
	}
	return nil
}

func (d *Display) Size() image.Point { return d.size }
func (d *Display) Bounds() image.Rectangle {
	return image.Rectangle{Max: d.size}
}

func (d *Display) Close() error {
	if d.fb != nil {
		return d.fb.Close()
	}
	return nil
}

// Fill paints whole screen and forgets text log.
func (d *Display) Fill(c color.RGBA) {
	draw.Draw(d.img, d.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	d.texts = d.texts[:0]
}

func (d *Display) Clear() error {
	d.Fill(Black)
	return d.Flush()
}

func (d *Display) FillRect(r image.Rectangle, c color.RGBA) {
	draw.Draw(d.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func (d *Display) FillRoundRect(r image.Rectangle, radius int, c color.RGBA) {
	r = r.Intersect(d.img.Bounds())
	rr := radius * radius
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if !insideRound(x, y, r, radius, rr) {
				continue
			}
			d.img.SetRGBA(x, y, c)
		}
	}
}

func insideRound(x, y int, r image.Rectangle, radius, rr int) bool {
	cx, cy := x, y
	switch {
	case x < r.Min.X+radius:
		cx = r.Min.X + radius
	case x >= r.Max.X-radius:
		cx = r.Max.X - radius - 1
	}
	switch {
	case y < r.Min.Y+radius:
		cy = r.Min.Y + radius
	case y >= r.Max.Y-radius:
		cy = r.Max.Y - radius - 1
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= rr
}

func (d *Display) HLine(x0, x1, y int, c color.RGBA) {
	d.FillRect(image.Rect(x0, y, x1, y+1), c)
}

// DrawRect draws outline of given thickness inside r.
func (d *Display) DrawRect(r image.Rectangle, thickness int, c color.RGBA) {
	t := thickness
	d.FillRect(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), c)
	d.FillRect(image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), c)
	d.FillRect(image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), c)
	d.FillRect(image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// Text draws s with top left corner at (x,y).
func (d *Display) Text(x, y int, s string, size TextSize, c color.RGBA) {
	face := d.faces[size]
	dr := font.Drawer{
		Dst:  d.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + face.Metrics().Ascent},
	}
	dr.DrawString(s)
	d.texts = append(d.texts, s)
}

// TextCentered draws s horizontally centered at row y.
func (d *Display) TextCentered(y int, s string, size TextSize, c color.RGBA) {
	d.Text((d.size.X-d.TextWidth(s, size))/2, y, s, size, c)
}

func (d *Display) TextWidth(s string, size TextSize) int {
	return font.MeasureString(d.faces[size], s).Ceil()
}

func (d *Display) TextHeight(size TextSize) int {
	return d.faces[size].Metrics().Height.Ceil()
}

// Ellipsize cuts runes from the end of s and appends Ellipsis until it fits into width.
func (d *Display) Ellipsize(s string, size TextSize, width int) string {
	if d.TextWidth(s, size) <= width {
		return s
	}
	rs := []rune(s)
	for n := len(rs) - 1; n > 0; n-- {
		candidate := string(rs[:n]) + Ellipsis
		if d.TextWidth(candidate, size) <= width {
			return candidate
		}
	}
	return Ellipsis
}

// Blit copies src to screen with src.Bounds().Min placed at pt.
func (d *Display) Blit(src image.Image, pt image.Point) {
	b := src.Bounds()
	draw.Draw(d.img, image.Rectangle{Min: pt, Max: pt.Add(b.Size())}, src, b.Min, draw.Src)
}

// QR draws code fit into r without quiet zone border.
func (d *Display) QR(text string, r image.Rectangle, level qrcode.RecoveryLevel) error {
	qr, err := qrcode.New(text, level)
	if err != nil {
		return errors.Annotate(err, "QR")
	}
	qr.DisableBorder = true
	side := minInt(r.Dx(), r.Dy())
	img := qr.Image(side)
	if !img.Bounds().In(image.Rectangle{Max: r.Size()}) {
		return errors.Errorf("QR image size=%s > area size=%s", img.Bounds().Max.String(), r.Size().String())
	}
	d.Blit(img, r.Min)
	return nil
}

func (d *Display) Flush() error {
	d.flushes++
	if d.fb != nil {
		d.fb.Update(d.img)
		return d.fb.Flush()
	}
	return nil
}

// Image is current frame, do not modify.
func (d *Display) Image() *image.RGBA { return d.img }

// Texts lists strings drawn since last Fill, for tests and debug dumps.
func (d *Display) Texts() []string {
	out := make([]string, len(d.texts))
	copy(out, d.texts)
	return out
}

func (d *Display) Flushes() uint32 { return d.flushes }

func (d *Display) At(x, y int) color.RGBA { return d.img.RGBAAt(x, y) }

// String2 is ASCII art of rectangle r, dark pixels blank.
func (d *Display) String2(r image.Rectangle) string {
	b := strings.Builder{}
	b.Grow((r.Dx()*2 + 1) * r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := d.img.RGBAAt(x, y)
			if c.R < 0x80 && c.G < 0x80 && c.B < 0x80 {
				b.WriteString("  ")
			} else {
				b.WriteString("██")
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func minInt(i1, i2 int) int {
	if i1 <= i2 {
		return i1
	}
	return i2
}
