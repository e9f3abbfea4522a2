package board

import "sort"

type ObjectiveType uint8

const (
	ObjectiveDefault ObjectiveType = iota
	ObjectiveCaptureLabel
	ObjectiveDestroyLabel
	ObjectiveEscortLabel
)

type Objective struct {
	Type   ObjectiveType
	Hidden bool
	Labels []Label
}

// LabelSet is a sorted list of distinct labels.
type LabelSet []Label

func (s LabelSet) Has(l Label) bool {
	if l == 0 {
		return false
	}
	for _, x := range s {
		if x == l {
			return true
		}
	}
	return false
}

// HiddenLabels collects labels belonging to hidden objectives. Only labels
// that no visible objective also references are hidden.
func HiddenLabels(objectives []Objective) LabelSet {
	visible := map[Label]bool{}
	hidden := map[Label]bool{}
	for _, o := range objectives {
		for _, l := range o.Labels {
			if o.Hidden {
				hidden[l] = true
			} else {
				visible[l] = true
			}
		}
	}
	out := make(LabelSet, 0, len(hidden))
	for l := range hidden {
		if !visible[l] {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (u Unit) DropLabel(labels LabelSet) Unit {
	if labels.Has(u.Label) {
		u.Label = 0
	}
	return u
}

func (b Building) DropLabel(labels LabelSet) Building {
	if labels.Has(b.Label) {
		b.Label = 0
	}
	return b
}
