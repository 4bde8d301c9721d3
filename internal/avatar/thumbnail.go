package avatar

import (
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail shrinks src to fit within size x size keeping its aspect ratio.
// Images that already fit are returned unchanged.
func Thumbnail(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return src
	}

	nw, nh := size, size
	if w > h {
		nh = max(1, (h*size+w/2)/w)
	} else {
		nw = max(1, (w*size+h/2)/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
