package register

import (
	"image"
	"strconv"

	"github.com/skip2/go-qrcode"
	"github.com/temoto/playreg/hardware/display"
)

// Screen layout, pixels.
const (
	Caption      = "おうちレジ"
	CaptionY     = 6
	ListStartY   = 57
	RowHeight    = 36
	RowTextY     = 3
	RowRuleY     = 30
	TotalLabel   = "計"
	ClearLabel   = "CLEAR"
	ClearW       = 84
	ClearH       = 34
	ClearMargin  = 8
	ClearInset   = 2
	ClearRadius  = 6
	ThankYou1    = "お買いあげ"
	ThankYou2    = "ありがとうございます"
	ReceiptSide  = 64
	marginX      = 8
	rowPadX      = 12
	summaryBelow = 4
)

func ClearRect(size image.Point) image.Rectangle {
	x := size.X - ClearW - ClearMargin
	y := size.Y - ClearH - ClearMargin
	return image.Rect(x, y, x+ClearW, y+ClearH)
}

// ClearHitRect is button shrunk by inset, at least 1x1.
func ClearHitRect(size image.Point) image.Rectangle {
	r := ClearRect(size)
	w := maxInt(r.Dx()-ClearInset*2, 1)
	h := maxInt(r.Dy()-ClearInset*2, 1)
	min := r.Min.Add(image.Pt(ClearInset, ClearInset))
	return image.Rectangle{Min: min, Max: min.Add(image.Pt(w, h))}
}

func pointIn(x, y int, r image.Rectangle) bool {
	return image.Pt(x, y).In(r)
}

func PriceText(price int) string { return "￥" + strconv.Itoa(price) }

func (self *Register) renderNormal() {
	d := self.display
	size := d.Size()
	d.Fill(display.White)
	d.Text(marginX, CaptionY, Caption, display.TextNormal, display.Black)

	btn := ClearRect(size)
	d.FillRoundRect(btn, ClearRadius, display.Red)
	lw := d.TextWidth(ClearLabel, display.TextSmall)
	lh := d.TextHeight(display.TextSmall)
	d.Text(maxInt(btn.Min.X+(btn.Dx()-lw)/2, 0), maxInt(btn.Min.Y+(btn.Dy()-lh)/2, 0), ClearLabel, display.TextSmall, display.White)

	rows := self.cart.Cap()
	if rows <= 0 {
		rows = self.cart.Count()
	}
	for i := 0; i < rows; i++ {
		d.HLine(marginX, size.X-marginX, ListStartY+i*RowHeight+RowRuleY, display.DarkGrey)
	}

	// newest first
	items := self.cart.Items()
	rowY := ListStartY
	for i := len(items) - 1; i >= 0 && len(items)-1-i < rows; i-- {
		price := PriceText(items[i].Price)
		priceX := maxInt(size.X-rowPadX-d.TextWidth(price, display.TextNormal), rowPadX)
		name := d.Ellipsize(items[i].Name, display.TextNormal, maxInt(priceX-2*rowPadX, 0))
		d.Text(rowPadX, rowY+RowTextY, name, display.TextNormal, display.Black)
		d.Text(priceX, rowY+RowTextY, price, display.TextNormal, display.Black)
		rowY += RowHeight
	}

	amount := PriceText(self.cart.Total())
	amountH := d.TextHeight(display.TextLarge)
	amountY := maxInt(size.Y-amountH-summaryBelow, 0)
	labelH := d.TextHeight(display.TextNormal)
	labelY := maxInt(amountY+maxInt(amountH-labelH, 0)-5, 0)
	d.Text(marginX, labelY, TotalLabel, display.TextNormal, display.Black)
	amountX := marginX + d.TextWidth(TotalLabel, display.TextNormal) + marginX
	d.Text(amountX, amountY, amount, display.TextLarge, display.Black)

	self.flush()
}

func (self *Register) renderThankYou() {
	d := self.display
	size := d.Size()
	centerY := size.Y / 2
	d.Fill(display.White)
	d.TextCentered(centerY-24, ThankYou1, display.TextNormal, display.Black)
	d.TextCentered(centerY+8, ThankYou2, display.TextNormal, display.Black)
	if self.qr && self.lastReceipt != "" {
		r := image.Rect(size.X/2-ReceiptSide/2, size.Y-ReceiptSide-ClearMargin, size.X/2+ReceiptSide/2, size.Y-ClearMargin)
		if err := d.QR(self.lastReceipt, r, qrcode.Low); err != nil {
			self.Log.Debugf("receipt qr: %v", err)
		}
	}
	self.flush()
}

func (self *Register) flush() {
	if err := self.display.Flush(); err != nil {
		self.Log.Debugf("display flush: %v", err)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
