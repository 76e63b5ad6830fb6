package canvas

import (
	"image"
	"image/color"
	"testing"
)

func fillLayer(l *Layer, c color.RGBA) {
	l.Pixels.SetAll(c)
}

func TestNewStateHasWhiteBackground(t *testing.T) {
	s := NewState(4, 4)
	if len(s.Layers) != 1 {
		t.Fatalf("new state has %d layers, want 1", len(s.Layers))
	}
	if s.ActiveLayerIndex != 0 {
		t.Fatalf("active index = %d, want 0", s.ActiveLayerIndex)
	}
	if got := s.Composite().RGBAAt(2, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("background composite = %v, want white", got)
	}
}

func TestCompositeLayerStack(t *testing.T) {
	s := NewState(4, 4)
	s.AddLayer("red")
	fillLayer(s.ActiveLayer(), color.RGBA{255, 0, 0, 255})
	s.ActiveLayer().SetOpacity(0.5)

	got := s.Composite().RGBAAt(1, 1)
	want := color.RGBA{255, 128, 128, 255}
	if got != want {
		t.Fatalf("half-opacity red over white = %v, want %v", got, want)
	}

	// Hiding the layer removes its contribution.
	s.ActiveLayer().Visible = false
	if got := s.Composite().RGBAAt(1, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("hidden layer still composited: %v", got)
	}
}

func TestCompositeRegionOffset(t *testing.T) {
	s := NewState(100, 100)
	s.ActiveLayer().Pixels.Set(60, 60, color.RGBA{0, 255, 0, 255})

	r := image.Rect(50, 50, 70, 70)
	out := s.CompositeRegion(r)
	if !out.Bounds().Eq(r) {
		t.Fatalf("region bounds = %v, want %v", out.Bounds(), r)
	}
	if got := out.RGBAAt(60, 60); got != (color.RGBA{0, 255, 0, 255}) {
		t.Fatalf("pixel inside region = %v, want green", got)
	}
}

func TestPreviewModes(t *testing.T) {
	t.Run("normal preview blends over active layer", func(t *testing.T) {
		s := NewState(4, 4)
		s.PreviewLayer = NewTiledImage(4, 4, color.RGBA{})
		s.PreviewLayer.Set(1, 1, color.RGBA{255, 0, 0, 255})

		if got := s.Composite().RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
			t.Fatalf("previewed pixel = %v, want red", got)
		}
		if got := s.Composite().RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
			t.Fatalf("untouched pixel = %v, want white", got)
		}
	})

	t.Run("eraser preview knocks out alpha", func(t *testing.T) {
		s := NewState(4, 4)
		s.PreviewLayer = NewTiledImage(4, 4, color.RGBA{})
		s.PreviewLayer.Set(0, 0, color.RGBA{0, 0, 0, 255})
		s.PreviewIsEraser = true

		if got := s.Composite().RGBAAt(0, 0); got != (color.RGBA{}) {
			t.Fatalf("erased pixel = %v, want transparent", got)
		}
	})

	t.Run("replace preview substitutes the layer", func(t *testing.T) {
		s := NewState(4, 4)
		s.PreviewLayer = NewTiledImage(4, 4, color.RGBA{})
		s.PreviewLayer.Set(2, 2, color.RGBA{0, 0, 255, 255})
		s.PreviewReplacesLayer = true

		comp := s.Composite()
		if got := comp.RGBAAt(2, 2); got != (color.RGBA{0, 0, 255, 255}) {
			t.Fatalf("replaced pixel = %v, want blue", got)
		}
		// Everywhere else the layer is replaced by transparency.
		if got := comp.RGBAAt(0, 0); got != (color.RGBA{}) {
			t.Fatalf("replaced background = %v, want transparent", got)
		}
	})
}

func TestCommitPreview(t *testing.T) {
	s := NewState(4, 4)
	s.PreviewLayer = NewTiledImage(4, 4, color.RGBA{})
	s.PreviewLayer.Set(1, 1, color.RGBA{255, 0, 0, 255})

	s.CommitPreview(s.Bounds())
	if s.PreviewLayer != nil {
		t.Fatalf("preview not cleared after commit")
	}
	if got := s.ActiveLayer().Pixels.At(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("committed pixel = %v, want red", got)
	}
}

func TestDirtyTracking(t *testing.T) {
	s := NewState(100, 100)

	if _, ok := s.TakeDirtyRect(); ok {
		t.Fatalf("fresh state reports dirty")
	}
	gen := s.DirtyGeneration()

	s.MarkDirty(image.Rect(10, 10, 20, 20))
	s.MarkDirty(image.Rect(50, 50, 60, 60))

	if s.DirtyGeneration() <= gen {
		t.Fatalf("generation did not advance")
	}
	r, ok := s.TakeDirtyRect()
	if !ok {
		t.Fatalf("no dirty rect after marking")
	}
	if want := image.Rect(10, 10, 60, 60); !r.Eq(want) {
		t.Fatalf("dirty rect = %v, want union %v", r, want)
	}
	if _, ok := s.TakeDirtyRect(); ok {
		t.Fatalf("dirty rect not cleared by take")
	}
}

func TestLayerStackOperations(t *testing.T) {
	t.Run("add activates new layer above", func(t *testing.T) {
		s := NewState(8, 8)
		idx, _ := s.AddLayer("paint")
		if idx != 1 || s.ActiveLayerIndex != 1 {
			t.Fatalf("add placed layer at %d (active %d), want 1", idx, s.ActiveLayerIndex)
		}
	})

	t.Run("default name numbers the layer", func(t *testing.T) {
		s := NewState(8, 8)
		if _, name := s.AddLayer(""); name != "Layer 2" {
			t.Fatalf("default name = %q, want \"Layer 2\"", name)
		}
	})

	t.Run("remove refuses last layer", func(t *testing.T) {
		s := NewState(8, 8)
		if removed := s.RemoveLayer(0); removed != nil {
			t.Fatalf("removed the only layer")
		}
		if len(s.Layers) != 1 {
			t.Fatalf("stack emptied")
		}
	})

	t.Run("remove fixes active index", func(t *testing.T) {
		s := NewState(8, 8)
		s.AddLayer("a")
		s.AddLayer("b") // active = 2
		s.RemoveLayer(2)
		if s.ActiveLayerIndex != 1 {
			t.Fatalf("active index = %d after removing top, want 1", s.ActiveLayerIndex)
		}
		s.RemoveLayer(0)
		if s.ActiveLayerIndex != 0 {
			t.Fatalf("active index = %d after removing below, want 0", s.ActiveLayerIndex)
		}
	})

	t.Run("move keeps active pointer on same layer", func(t *testing.T) {
		s := NewState(8, 8)
		s.AddLayer("a")
		s.AddLayer("b")
		active := s.ActiveLayer()
		if !s.MoveLayer(2, 0) {
			t.Fatalf("move rejected")
		}
		if s.ActiveLayer() != active {
			t.Fatalf("active pointer moved off the layer")
		}
		if s.Layers[0].Name != "b" {
			t.Fatalf("layer order after move: %q at bottom, want b", s.Layers[0].Name)
		}
	})

	t.Run("duplicate clones above source", func(t *testing.T) {
		s := NewState(8, 8)
		s.ActiveLayer().Pixels.Set(3, 3, color.RGBA{9, 9, 9, 255})
		idx := s.DuplicateLayer(0)
		if idx != 1 {
			t.Fatalf("duplicate index = %d, want 1", idx)
		}
		if s.Layers[1].Name != "Background copy" {
			t.Fatalf("duplicate name = %q", s.Layers[1].Name)
		}
		if got := s.Layers[1].Pixels.At(3, 3); got != (color.RGBA{9, 9, 9, 255}) {
			t.Fatalf("duplicate pixels = %v", got)
		}
		// Deep copy: editing the duplicate leaves the source alone.
		s.Layers[1].Pixels.Set(3, 3, color.RGBA{})
		if got := s.Layers[0].Pixels.At(3, 3); got != (color.RGBA{9, 9, 9, 255}) {
			t.Fatalf("duplicate shares storage with source")
		}
	})

	t.Run("merge down", func(t *testing.T) {
		s := NewState(4, 4)
		s.AddLayer("top")
		fillLayer(s.ActiveLayer(), color.RGBA{255, 0, 0, 255})
		if !s.MergeDown(1) {
			t.Fatalf("merge rejected")
		}
		if len(s.Layers) != 1 {
			t.Fatalf("layer count after merge = %d", len(s.Layers))
		}
		if got := s.Layers[0].Pixels.At(2, 2); got != (color.RGBA{255, 0, 0, 255}) {
			t.Fatalf("merged pixel = %v, want red", got)
		}
	})

	t.Run("merge down rejects bottom layer", func(t *testing.T) {
		s := NewState(4, 4)
		if s.MergeDown(0) {
			t.Fatalf("merged the bottom layer into nothing")
		}
	})

	t.Run("flatten preserves composite", func(t *testing.T) {
		s := NewState(4, 4)
		s.AddLayer("red")
		fillLayer(s.ActiveLayer(), color.RGBA{255, 0, 0, 255})
		s.ActiveLayer().SetOpacity(0.5)
		want := s.Composite().RGBAAt(1, 1)

		s.Flatten()
		if len(s.Layers) != 1 {
			t.Fatalf("flatten left %d layers", len(s.Layers))
		}
		if got := s.Composite().RGBAAt(1, 1); got != want {
			t.Fatalf("flatten changed composite: %v, want %v", got, want)
		}
	})
}

func TestResize(t *testing.T) {
	s := NewState(10, 10)
	s.ActiveLayer().Pixels.Set(2, 2, color.RGBA{1, 2, 3, 255})

	s.Resize(5, 20)
	if s.Width != 5 || s.Height != 20 {
		t.Fatalf("dimensions = %dx%d, want 5x20", s.Width, s.Height)
	}
	if got := s.ActiveLayer().Pixels.At(2, 2); got != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("surviving pixel = %v", got)
	}
	// Extended rows take the layer's fill color.
	if got := s.ActiveLayer().Pixels.At(2, 15); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("extended pixel = %v, want white fill", got)
	}
}

func TestCompositeLOD(t *testing.T) {
	s := NewState(2048, 1024)
	lod := s.CompositeLOD()
	b := lod.Bounds()
	if b.Dx() > LODMaxEdge || b.Dy() > LODMaxEdge {
		t.Fatalf("LOD composite %dx%d exceeds max edge %d", b.Dx(), b.Dy(), LODMaxEdge)
	}
	if b.Dx() != LODMaxEdge {
		t.Fatalf("longest edge = %d, want %d", b.Dx(), LODMaxEdge)
	}
}
