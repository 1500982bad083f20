package voxel

import "testing"

func TestPaletteConstantSectionStaysConstant(t *testing.T) {
	p := NewPalette()
	if !p.IsConstant() {
		t.Fatalf("fresh palette should be constant")
	}
	if got := p.Get(0); got != Air {
		t.Fatalf("expected Air, got %+v", got)
	}
}

func TestPaletteGrowsIndexWidth(t *testing.T) {
	p := NewPalette()
	stone := Cell{Density: -100, Material: MaterialStone}
	p.Set(0, stone)
	if p.IsConstant() {
		t.Fatalf("palette should no longer be constant after a distinct write")
	}
	if got := p.Get(0); got != stone {
		t.Fatalf("expected %+v, got %+v", stone, got)
	}
	if got := p.Get(1); got != Air {
		t.Fatalf("untouched cell should still read Air, got %+v", got)
	}

	// Push past 2, then 4, then 16 entries to exercise every bit-width transition.
	for i := 0; i < 20; i++ {
		c := Cell{Density: int16(-1 - i), Material: uint8(10 + i)}
		p.Set(i+2, c)
	}
	for i := 0; i < 20; i++ {
		want := Cell{Density: int16(-1 - i), Material: uint8(10 + i)}
		if got := p.Get(i + 2); got != want {
			t.Fatalf("offset %d: expected %+v, got %+v", i+2, want, got)
		}
	}
	if got := p.Get(0); got != stone {
		t.Fatalf("original write should survive regrow, expected %+v got %+v", stone, got)
	}
}

func TestPaletteOverwriteSameOffset(t *testing.T) {
	p := NewPalette()
	a := Cell{Density: -5, Material: 1}
	b := Cell{Density: -9, Material: 2}
	p.Set(5, a)
	p.Set(5, b)
	if got := p.Get(5); got != b {
		t.Fatalf("expected overwritten value %+v, got %+v", b, got)
	}
}
