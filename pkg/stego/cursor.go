package stego

// cursor walks the slots of a grid in carrier order: pixels row-major, and
// within each pixel the channels in R, G, B[, A] order. Embed and Extract
// build identical cursors; the traversal order is the only thing that keeps
// them in sync, so it must never change.
type cursor struct {
	x        int
	y        int
	channel  int
	width    int
	height   int
	channels int
	visited  int
}

func newCursor(width, height, channels int) *cursor {
	return &cursor{
		width:    width,
		height:   height,
		channels: channels,
	}
}

// next returns the Pix offset of the current slot and advances. ok is false
// once every slot has been visited.
func (c *cursor) next() (offset int, ok bool) {
	if c.y >= c.height || c.width == 0 {
		return 0, false
	}
	offset = (c.y*c.width+c.x)*c.channels + c.channel
	c.visited++

	c.channel++
	if c.channel >= c.channels {
		c.channel = 0
		c.x++
		if c.x >= c.width {
			c.x = 0
			c.y++
		}
	}
	return offset, true
}
