package framebuffer

//go:generate sh -ec "go tool cgo -godefs _defs.go >defs_linux.go && go fmt ."

import (
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

type Framebuffer struct {
	buf   []byte
	dev   *os.File
	order binary.ByteOrder
	finfo fixedScreenInfo
	vinfo variableScreenInfo
}

// New opens fbdev. bigEndian selects 565 word byte order, most SPI panels are little endian.
func New(dev string, bigEndian bool) (*Framebuffer, error) {
	devFile, err := os.OpenFile(dev, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, errors.Annotate(err, "open")
	}
	fb := &Framebuffer{dev: devFile, order: binary.LittleEndian}
	if bigEndian {
		fb.order = binary.BigEndian
	}
	fd := fb.dev.Fd()

	if err = ioctl(fd, getFixedScreenInfo, uintptr(unsafe.Pointer(&fb.finfo))); err != nil {
		fb.dev.Close()
		return nil, errors.Annotate(err, "getFixedScreenInfo")
	}

	if err = ioctl(fd, getVariableScreenInfo, uintptr(unsafe.Pointer(&fb.vinfo))); err != nil {
		fb.dev.Close()
		return nil, errors.Annotate(err, "getVariableScreenInfo")
	}
	if !fb.is565() {
		fb.dev.Close()
		return nil, errors.NotSupportedf("color model bpp=%d", fb.vinfo.Bits_per_pixel)
	}

	fb.buf = make([]byte, fb.stride()*fb.vinfo.Yres)
	return fb, nil
}

func (fb *Framebuffer) Close() error {
	return fb.dev.Close()
}

func (fb *Framebuffer) Flush() error {
	_, err := fb.dev.WriteAt(fb.buf, 0)
	return err
}

func (fb *Framebuffer) Size() image.Point {
	return image.Point{X: int(fb.vinfo.Xres), Y: int(fb.vinfo.Yres)}
}

// Update converts whole image into internal buffer, call Flush() to write to hardware.
func (fb *Framebuffer) Update(img *image.RGBA) {
	Encode565(fb.buf, int(fb.stride()), img, fb.order)
}

func (fb *Framebuffer) stride() uint32 {
	if fb.finfo.Line_length != 0 {
		return fb.finfo.Line_length
	}
	return fb.vinfo.Xres * 2
}

func (fb *Framebuffer) is565() bool {
	return fb.vinfo.Bits_per_pixel == 16 &&
		fb.vinfo.Red == rgb565.Red && fb.vinfo.Green == rgb565.Green && fb.vinfo.Blue == rgb565.Blue
}

var rgb565 = variableScreenInfo{
	Red:   bitField{Offset: 11, Length: 5},
	Green: bitField{Offset: 5, Length: 6},
	Blue:  bitField{Offset: 0, Length: 5},
}

// Encode565 writes img rows into dst with given line stride in bytes.
func Encode565(dst []byte, stride int, img *image.RGBA, order binary.ByteOrder) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := dst[(y-b.Min.Y)*stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			order.PutUint16(row[(x-b.Min.X)*2:], encode565(img.RGBAAt(x, y)))
		}
	}
}

func encode565(c color.RGBA) uint16 {
	return (uint16(c.R) & 0xf8 << 8) | (uint16(c.G) & 0xfc << 3) | (uint16(c.B) & 0xf8 >> 3)
}

func ioctl(fd uintptr, cmd uintptr, data uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, data); errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}
