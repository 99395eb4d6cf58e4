package display

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQR(t *testing.T) {
	t.Parallel()
	d := NewMock(image.Point{X: 37, Y: 37})
	require.NoError(t, d.Clear())
	blank := strings.Repeat(strings.Repeat("  ", d.size.X)+"\n", d.size.Y)
	assert.Equal(t, blank, d.String2(d.Bounds()))

	qrText := "t=20200211T1825&s=23.00&fn=9998887776665555&i=15&fp=0000000000&n=1"
	require.NoError(t, d.QR(qrText, d.Bounds(), qrcode.High))
	qr, err := qrcode.New(qrText, qrcode.High)
	require.NoError(t, err)
	qr.DisableBorder = true
	assert.Equal(t, qr.ToString(false), d.String2(d.Bounds()))

	require.NoError(t, d.Clear())
	assert.Equal(t, blank, d.String2(d.Bounds()))
	assert.Equal(t, uint32(2), d.Flushes())
}

func TestQRTooSmall(t *testing.T) {
	t.Parallel()
	d := NewMock(image.Point{X: 100, Y: 100})
	err := d.QR(strings.Repeat("receipt", 20), image.Rect(0, 0, 10, 10), qrcode.Medium)
	assert.Error(t, err)
}

func TestFillText(t *testing.T) {
	t.Parallel()
	d := NewMock(image.Point{X: 320, Y: 240})
	d.Fill(White)
	assert.Equal(t, White, d.At(0, 0))
	assert.Equal(t, White, d.At(319, 239))

	d.Text(10, 6, "hello", TextNormal, Black)
	d.TextCentered(100, "total", TextLarge, Red)
	assert.Equal(t, []string{"hello", "total"}, d.Texts())
	assert.Greater(t, d.TextWidth("hello", TextNormal), 0)
	assert.Greater(t, d.TextHeight(TextSmall), 0)

	dark := 0
	for y := 6; y < 6+d.TextHeight(TextNormal); y++ {
		for x := 10; x < 10+d.TextWidth("hello", TextNormal); x++ {
			if d.At(x, y) == Black {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 0, "glyph pixels drawn")

	d.Fill(Black)
	assert.Empty(t, d.Texts())
}

func TestShapes(t *testing.T) {
	t.Parallel()
	d := NewMock(image.Point{X: 40, Y: 30})
	d.Fill(Black)

	r := image.Rect(5, 5, 25, 20)
	d.FillRoundRect(r, 4, Red)
	assert.Equal(t, Black, d.At(5, 5), "corner cut")
	assert.Equal(t, Red, d.At(15, 5), "edge middle")
	assert.Equal(t, Red, d.At(5, 12))
	assert.Equal(t, Red, d.At(15, 12))
	assert.Equal(t, Black, d.At(24, 19))
	assert.Equal(t, Black, d.At(25, 12), "outside")

	d.Fill(Black)
	d.DrawRect(image.Rect(0, 0, 10, 10), 2, White)
	assert.Equal(t, White, d.At(1, 5))
	assert.Equal(t, White, d.At(8, 8))
	assert.Equal(t, Black, d.At(2, 2))
	assert.Equal(t, Black, d.At(5, 5))

	d.HLine(0, 40, 29, LightGrey)
	assert.Equal(t, LightGrey, d.At(39, 29))
	assert.Equal(t, Black, d.At(39, 28))
}

func TestBlit(t *testing.T) {
	t.Parallel()
	d := NewMock(image.Point{X: 10, Y: 10})
	d.Fill(Black)
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(1, 1, color.RGBA{1, 2, 3, 0xff})
	d.Blit(src, image.Pt(4, 4))
	assert.Equal(t, color.RGBA{1, 2, 3, 0xff}, d.At(5, 5))
	assert.Equal(t, color.RGBA{}, d.At(4, 4), "draw.Src copies transparent pixels")
}

func TestEllipsize(t *testing.T) {
	t.Parallel()
	d := NewMock(image.Point{X: 320, Y: 240})
	short := "onigiri"
	assert.Equal(t, short, d.Ellipsize(short, TextNormal, 200))

	long := strings.Repeat("x", 60)
	width := d.TextWidth(long, TextNormal) / 3
	cut := d.Ellipsize(long, TextNormal, width)
	assert.True(t, strings.HasSuffix(cut, Ellipsis))
	assert.LessOrEqual(t, d.TextWidth(cut, TextNormal), width)
	assert.Less(t, utf8.RuneCountInString(cut), 60)
}
