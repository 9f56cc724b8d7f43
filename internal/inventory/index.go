package inventory

import "frontoffice/internal/data"

// Index maps asset names to the deals listing them. Deals reference assets by
// name, so renames and deletes go through the index rather than rescanning every
// deal by string match.
type Index struct {
	byAsset map[string][]int
	ids     []string
}

// NewIndex indexes deals by position. The slice passed to Rename and Remove must
// be the same one the index was built from.
func NewIndex(deals []data.Deal) *Index {
	ix := &Index{byAsset: make(map[string][]int), ids: make([]string, len(deals))}
	for i, d := range deals {
		ix.ids[i] = d.ID
		seen := map[string]bool{}
		for _, a := range d.Assets {
			if !seen[a] {
				seen[a] = true
				ix.byAsset[a] = append(ix.byAsset[a], i)
			}
		}
	}
	return ix
}

// DealIDs returns the ids of deals listing asset.
func (ix *Index) DealIDs(asset string) []string {
	positions := ix.byAsset[asset]
	out := make([]string, 0, len(positions))
	for _, p := range positions {
		out = append(out, ix.ids[p])
	}
	return out
}

// Rename rewrites from to to in every deal listing from and returns how many
// deals changed.
func (ix *Index) Rename(deals []data.Deal, from, to string) int {
	if from == to {
		return 0
	}
	positions := ix.byAsset[from]
	for _, p := range positions {
		assets := make([]string, 0, len(deals[p].Assets))
		for _, a := range deals[p].Assets {
			if a == from {
				a = to
			}
			assets = append(assets, a)
		}
		deals[p].Assets = assets
	}
	delete(ix.byAsset, from)
	if len(positions) > 0 {
		ix.byAsset[to] = mergePositions(ix.byAsset[to], positions)
	}
	return len(positions)
}

// Remove drops name from every deal's asset list. The deals themselves stay.
func (ix *Index) Remove(deals []data.Deal, name string) int {
	positions := ix.byAsset[name]
	for _, p := range positions {
		assets := make([]string, 0, len(deals[p].Assets))
		for _, a := range deals[p].Assets {
			if a != name {
				assets = append(assets, a)
			}
		}
		deals[p].Assets = assets
	}
	delete(ix.byAsset, name)
	return len(positions)
}

func mergePositions(a, b []int) []int {
	seen := make(map[int]bool, len(a))
	for _, p := range a {
		seen[p] = true
	}
	for _, p := range b {
		if !seen[p] {
			a = append(a, p)
		}
	}
	return a
}

// RenameCategory moves every item in category from to category to.
func RenameCategory(items []data.InventoryItem, from, to string) int {
	n := 0
	for i := range items {
		if items[i].Category == from {
			items[i].Category = to
			n++
		}
	}
	return n
}
