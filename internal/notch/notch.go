// Package notch splits a display's top-level nodes between the windows
// flanking a display notch.
package notch

import (
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/tree"
)

// Alignment identifies a window slot on a display.
type Alignment string

const (
	Left   Alignment = "left"
	Center Alignment = "center"
	Right  Alignment = "right"
)

// Alignments lists every alignment in left-to-right order.
func Alignments() []Alignment {
	return []Alignment{Left, Center, Right}
}

// Buckets holds top-level entries split around a notch.
type Buckets struct {
	Left  []int
	Right []int
}

// Classify assigns each root of the forest to the left or right of the
// notch. Only an explicit notch_align of "left" selects the left side.
func Classify(f *tree.Forest) Buckets {
	var b Buckets
	for _, r := range f.Roots {
		if f.Node(r).Style.NotchAlign == model.NotchLeft {
			b.Left = append(b.Left, r)
		} else {
			b.Right = append(b.Right, r)
		}
	}
	return b
}

// Split returns the roots each alignment slot should display. Without a
// notch every root goes to the center slot.
func Split(f *tree.Forest, hasNotch bool) map[Alignment][]int {
	if !hasNotch {
		if len(f.Roots) == 0 {
			return map[Alignment][]int{}
		}
		return map[Alignment][]int{Center: f.Roots}
	}

	b := Classify(f)
	out := make(map[Alignment][]int, 2)
	if len(b.Left) > 0 {
		out[Left] = b.Left
	}
	if len(b.Right) > 0 {
		out[Right] = b.Right
	}
	return out
}
