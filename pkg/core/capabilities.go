package core

// Capabilities toggles the optional features that differ between app variants.
type Capabilities struct {
	// TagManagement enables CreateTag, RenameTag and DeleteTag.
	TagManagement bool `json:"tag_management"`
	// StandardCatalog ships the standard track list; otherwise the compact one.
	StandardCatalog bool `json:"standard_catalog"`
	// VolumeControl lets the player change its volume.
	VolumeControl bool `json:"volume_control"`
}

var (
	// VariantStandard is the full-featured app.
	VariantStandard = Capabilities{TagManagement: true, StandardCatalog: true, VolumeControl: true}
	// VariantCompact is the reduced app: its own track list, fixed volume, no tag management screen.
	VariantCompact = Capabilities{}
)

// VariantByName resolves "standard" or "compact".
func VariantByName(name string) (Capabilities, bool) {
	switch name {
	case "", "standard":
		return VariantStandard, true
	case "compact":
		return VariantCompact, true
	}
	return Capabilities{}, false
}
