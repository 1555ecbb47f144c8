package catalog

// Lightbox is the full-screen image viewer state.
type Lightbox struct {
	Images []ResolvedImage
	index  int
	open   bool
}

func (l *Lightbox) Open(images []ResolvedImage, index int) {
	l.Images = images
	l.open = len(images) > 0
	if index < 0 || index >= len(images) {
		index = 0
	}
	l.index = index
}

func (l *Lightbox) Close() {
	l.open = false
}

func (l *Lightbox) IsOpen() bool {
	return l.open
}

func (l *Lightbox) Current() (ResolvedImage, bool) {
	if !l.open {
		return ResolvedImage{}, false
	}
	return l.Images[l.index], true
}

func (l *Lightbox) Index() int {
	return l.index
}

func (l *Lightbox) Next() {
	if n := len(l.Images); l.open && n > 0 {
		l.index = (l.index + 1) % n
	}
}

func (l *Lightbox) Prev() {
	if n := len(l.Images); l.open && n > 0 {
		l.index = (l.index - 1 + n) % n
	}
}
