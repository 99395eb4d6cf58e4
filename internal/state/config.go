package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/playreg/hardware/barcode"
	"github.com/temoto/playreg/hardware/camera"
	"github.com/temoto/playreg/hardware/display"
	"github.com/temoto/playreg/hardware/input"
	"github.com/temoto/playreg/hardware/sound"
	"github.com/temoto/playreg/helpers"
	"github.com/temoto/playreg/log2"
)

const (
	DefaultCartCap    = 3
	DefaultThankYouMs = 3000
	DefaultWidth      = 320
	DefaultHeight     = 240
	DefaultRfidAddr   = 0x28

	ModeRegister = "register"
	ModeCamera   = "camera"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	// error, info, debug; default info
	LogLevel string `hcl:"log_level"`

	Hardware struct {
		Barcode barcode.Config      `hcl:"barcode"`
		Camera  camera.Config       `hcl:"camera"`
		Debug   input.ConsoleConfig `hcl:"debug"`
		Display display.Config      `hcl:"display"`
		Rfid    RfidConfig          `hcl:"rfid"`
		Speaker sound.Config        `hcl:"speaker"`
		Touch   input.TouchConfig   `hcl:"touch"`
	}

	Catalog struct {
		Names []string `hcl:"names"`
	}

	Register struct {
		CartCap       int  `hcl:"cart_cap"`
		CartUnbounded bool `hcl:"cart_unbounded"`
		ThankYouMs    int  `hcl:"thank_you_ms"`
		ReceiptQR     bool `hcl:"receipt_qr"`
	}

	UI struct {
		Mode      string `hcl:"mode"`
		StatusSec int    `hcl:"status_sec"`
	}

	_copy_guard sync.Mutex //nolint:unused
}

type RfidConfig struct {
	Disable   bool   `hcl:"disable"`
	Bus       string `hcl:"bus"`
	Addr      int    `hcl:"addr"`
	ResetChip string `hcl:"reset_chip"`
	ResetLine int    `hcl:"reset_line"`
	LogDebug  bool   `hcl:"log_debug"`
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

func (c *Config) applyDefaults() error {
	switch {
	case c.Register.CartUnbounded:
		// NewCart(0) keeps every item
		c.Register.CartCap = 0
	case c.Register.CartCap == 0:
		c.Register.CartCap = DefaultCartCap
	case c.Register.CartCap < 0:
		return errors.NotValidf("register.cart_cap=%d", c.Register.CartCap)
	}
	if c.Register.ThankYouMs == 0 {
		c.Register.ThankYouMs = DefaultThankYouMs
	} else if c.Register.ThankYouMs < 0 {
		return errors.NotValidf("register.thank_you_ms=%d", c.Register.ThankYouMs)
	}
	switch c.UI.Mode {
	case "":
		c.UI.Mode = ModeRegister
	case ModeRegister, ModeCamera:
	default:
		return errors.NotValidf("ui.mode=%q valid: %s, %s", c.UI.Mode, ModeRegister, ModeCamera)
	}
	if c.UI.StatusSec < 0 {
		return errors.NotValidf("ui.status_sec=%d", c.UI.StatusSec)
	}
	d := &c.Hardware.Display
	if d.Width == 0 {
		d.Width = DefaultWidth
	}
	if d.Height == 0 {
		d.Height = DefaultHeight
	}
	if c.Hardware.Rfid.Addr == 0 {
		c.Hardware.Rfid.Addr = DefaultRfidAddr
	}
	return nil
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		log.Fatalf("config duplicate source=%s", source.Name)
	} else {
		log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	}
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	if len(errs) == 0 {
		if err := c.applyDefaults(); err != nil {
			errs = append(errs, errors.Annotate(err, "config"))
		}
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
