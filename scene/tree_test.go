package scene

import (
	"testing"

	"github.com/gogpu/compositor"
)

func newFrameTree(root Layer) *LayerTree {
	return NewLayerTree(root, compositor.Size{Width: 200, Height: 200}, 1)
}

func TestScopedFrameFirstFrameFullDamage(t *testing.T) {
	leaf := newLeafLayer(t, compositor.Point{}, compositor.RectWH(30, 30))
	root := NewContainerLayer()
	root.Add(leaf)

	cc := NewCompositorContext()
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	frame := cc.AcquireFrame(canvas, nil, nil, compositor.Identity(), false)
	damage := frame.Raster(newFrameTree(root), nil)

	if damage.FrameDamage != compositor.RectWH(200, 200) {
		t.Errorf("FrameDamage = %v, want the whole frame", damage.FrameDamage)
	}
	if len(canvas.listPaints) != 1 {
		t.Errorf("replays = %d, want 1", len(canvas.listPaints))
	}
}

func TestScopedFrameIncrementalDamage(t *testing.T) {
	b := compositor.NewBuilder(compositor.RectWH(1000, 1000))
	b.DrawRect(compositor.RectWH(30, 30), compositor.NewPaint())
	dl := b.Build()

	makeTree := func(offset compositor.Point) *LayerTree {
		root := NewContainerLayer()
		root.Add(NewDisplayListLayer(offset, dl, false, false))
		return newFrameTree(root)
	}

	cc := NewCompositorContext()
	tree1 := makeTree(compositor.Point{})
	frame1 := cc.AcquireFrame(newCountingCanvas(compositor.RectWH(200, 200)), nil, nil, compositor.Identity(), false)
	frame1.Raster(tree1, nil)

	// Same content: nothing to repaint.
	tree2 := makeTree(compositor.Point{})
	frame2 := cc.AcquireFrame(newCountingCanvas(compositor.RectWH(200, 200)), nil, nil, compositor.Identity(), false)
	if d := frame2.Raster(tree2, tree1); !d.FrameDamage.IsEmpty() {
		t.Errorf("unchanged tree damaged %v", d.FrameDamage)
	}

	// Moved content damages the old and the new position.
	tree3 := makeTree(compositor.Point{X: 50})
	frame3 := cc.AcquireFrame(newCountingCanvas(compositor.RectWH(200, 200)), nil, nil, compositor.Identity(), false)
	d := frame3.Raster(tree3, tree2)
	want := compositor.RectLTRB(0, 0, 80, 30)
	if d.FrameDamage != want {
		t.Errorf("FrameDamage = %v, want %v", d.FrameDamage, want)
	}
}

func TestScopedFrameRasterCachePromotion(t *testing.T) {
	rc := NewRasterCache(WithAccessThreshold(1))
	cc := NewCompositorContext(WithRasterCache(rc))
	dl := buildCacheableList(t, compositor.RectWH(30, 30))

	makeTree := func() *LayerTree {
		root := NewContainerLayer()
		root.Add(NewDisplayListLayer(compositor.Point{}, dl, false, false))
		return newFrameTree(root)
	}

	tree1 := makeTree()
	canvas1 := newCountingCanvas(compositor.RectWH(200, 200))
	cc.AcquireFrame(canvas1, nil, nil, compositor.Identity(), false).Raster(tree1, nil)
	if len(canvas1.listPaints) != 1 || len(canvas1.pixmapRects) != 0 {
		t.Fatalf("first frame list=%d pixmap=%d, want live painting",
			len(canvas1.listPaints), len(canvas1.pixmapRects))
	}

	// The second visit crosses the access threshold: the list is
	// rasterized before painting and the frame replays the pixels.
	tree2 := makeTree()
	canvas2 := newCountingCanvas(compositor.RectWH(200, 200))
	cc.AcquireFrame(canvas2, nil, nil, compositor.Identity(), false).Raster(tree2, tree1)
	if len(canvas2.pixmapRects) != 1 || len(canvas2.listPaints) != 0 {
		t.Fatalf("second frame list=%d pixmap=%d, want the cached pixels",
			len(canvas2.listPaints), len(canvas2.pixmapRects))
	}
	if got := rc.PictureMetrics().InUseCount; got != 1 {
		t.Errorf("picture InUseCount = %d, want 1", got)
	}
}

func TestScopedFrameIgnoreRasterCachePaintsLive(t *testing.T) {
	rc := NewRasterCache(WithAccessThreshold(1))
	cc := NewCompositorContext(WithRasterCache(rc))
	dl := buildCacheableList(t, compositor.RectWH(30, 30))

	root := NewContainerLayer()
	root.Add(NewDisplayListLayer(compositor.Point{}, dl, false, false))
	canvas := newCountingCanvas(compositor.RectWH(200, 200))
	cc.AcquireFrame(canvas, nil, nil, compositor.Identity(), true).Raster(newFrameTree(root), nil)

	if len(canvas.listPaints) != 1 || len(canvas.pixmapRects) != 0 {
		t.Errorf("list=%d pixmap=%d, want live painting with the cache ignored",
			len(canvas.listPaints), len(canvas.pixmapRects))
	}
	if rc.EntryCount() != 0 {
		t.Errorf("EntryCount = %d, the ignored cache must stay untouched", rc.EntryCount())
	}
}
