// Package photofile reads captured photos from the local capture directory.
package photofile

import "strings"

// CropMarker identifies the cropped variant of a capture
const CropMarker = "_crop"

// PhotoGroup pairs the main image of a capture with its crop
type PhotoGroup struct {
	Main string
	Crop string
}

// Complete reports whether both variants are present
func (g PhotoGroup) Complete() bool {
	return g.Main != "" && g.Crop != ""
}

// Grouping holds photo groups keyed by main filename, in first-seen order
type Grouping struct {
	keys   []string
	groups map[string]PhotoGroup
}

// Group pairs main and crop filenames. A name containing CropMarker fills the
// crop slot of the group keyed by the name without the marker; any other name
// fills the main slot of its own group.
func Group(filenames []string) *Grouping {
	g := &Grouping{groups: make(map[string]PhotoGroup, len(filenames))}

	for _, name := range filenames {
		if strings.Contains(name, CropMarker) {
			key := strings.ReplaceAll(name, CropMarker, "")
			group := g.get(key)
			group.Crop = name
			g.groups[key] = group
			continue
		}
		group := g.get(name)
		group.Main = name
		g.groups[name] = group
	}

	return g
}

func (g *Grouping) get(key string) PhotoGroup {
	group, ok := g.groups[key]
	if !ok {
		g.keys = append(g.keys, key)
	}
	return group
}

// Keys returns group keys in first-seen order
func (g *Grouping) Keys() []string {
	return g.keys
}

// Get returns the group stored under key
func (g *Grouping) Get(key string) (PhotoGroup, bool) {
	group, ok := g.groups[key]
	return group, ok
}

// Len returns the number of groups, complete or not
func (g *Grouping) Len() int {
	return len(g.keys)
}

// Complete returns the groups that have both a main and a crop, in first-seen order
func (g *Grouping) Complete() []PhotoGroup {
	var complete []PhotoGroup
	for _, key := range g.keys {
		if group := g.groups[key]; group.Complete() {
			complete = append(complete, group)
		}
	}
	return complete
}
