package flow

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSpacing(t *testing.T) {
	tests := []struct {
		name string
		f    Flow
		want float64
	}{
		{"perimeter", New(0.45, 0.2, 0.4), 0.45 - 0.2*(1-math.Pi/4)},
		{"bridge", NewBridge(0.4, 0.4), 0.45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Spacing(); !approx(got, tt.want) {
				t.Errorf("Spacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMM3PerMM(t *testing.T) {
	f := New(0.45, 0.2, 0.4)
	if got, want := f.MM3PerMM(), f.Spacing()*0.2; !approx(got, want) {
		t.Errorf("MM3PerMM() = %v, want %v", got, want)
	}
	b := NewBridge(0.4, 0.4)
	if got, want := b.MM3PerMM(), math.Pi*0.04; !approx(got, want) {
		t.Errorf("bridge MM3PerMM() = %v, want %v", got, want)
	}
}

func TestFromSpacingInvertsSpacing(t *testing.T) {
	f, err := FromSpacing(0.4, 0.2, 0.4)
	if err != nil {
		t.Fatalf("FromSpacing failed: %v", err)
	}
	if got := f.Spacing(); !approx(got, 0.4) {
		t.Errorf("FromSpacing(0.4).Spacing() = %v, want 0.4", got)
	}
	if _, err := FromSpacing(-1, 0.2, 0.4); !errors.Is(err, ErrNegativeSpacing) {
		t.Errorf("FromSpacing(-1) error = %v, want ErrNegativeSpacing", err)
	}
}

func TestSpacingTo(t *testing.T) {
	a := New(0.45, 0.2, 0.4)
	b := New(0.5, 0.2, 0.4)
	if got, want := a.SpacingTo(b), (a.Spacing()+b.Spacing())/2; !approx(got, want) {
		t.Errorf("SpacingTo() = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		f       Flow
		wantErr bool
	}{
		{"ok", New(0.45, 0.2, 0.4), false},
		{"zero width", New(0, 0.2, 0.4), true},
		{"zero height", New(0.45, 0, 0.4), true},
		{"too thin for height", New(0.01, 0.5, 0.4), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.f.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
