package service

import (
	"sort"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

// Selection maps a bundle's product id to the product ids of its chosen
// optional children. Each child appears at most once per parent.
type Selection map[string]map[string]struct{}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return make(Selection)
}

// Toggle adds or removes child under parent. Adding an existing child or
// removing an absent one leaves the selection unchanged.
func (s Selection) Toggle(parentID, childID string, on bool) {
	children, ok := s[parentID]
	if on {
		if !ok {
			children = make(map[string]struct{})
			s[parentID] = children
		}
		children[childID] = struct{}{}
		return
	}
	if ok {
		delete(children, childID)
	}
}

// Has reports whether child is selected under parent.
func (s Selection) Has(parentID, childID string) bool {
	_, ok := s[parentID][childID]
	return ok
}

// Seed inserts every child flagged SelectedOption under its parent's product.
func (s Selection) Seed(lines []model.Line) {
	for _, parent := range lines {
		for _, child := range parent.Children {
			if child.SelectedOption {
				s.Toggle(parent.ProductID(), child.ProductID(), true)
			}
		}
	}
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for parentID, children := range s {
		c := make(map[string]struct{}, len(children))
		for childID := range children {
			c[childID] = struct{}{}
		}
		out[parentID] = c
	}
	return out
}

// Snapshot renders the selection with sorted child ids. Parents whose set
// became empty are kept so the view reflects explicit deselection.
func (s Selection) Snapshot() map[string][]string {
	out := make(map[string][]string, len(s))
	for parentID, children := range s {
		ids := make([]string, 0, len(children))
		for childID := range children {
			ids = append(ids, childID)
		}
		sort.Strings(ids)
		out[parentID] = ids
	}
	return out
}
