package domain

// Modality collection names. One cosine-metric collection per similarity signal,
// each holding one vector plus the full property payload per listing id.
const (
	CollectionLocation = "location_vectors"
	CollectionFeatures = "features_vectors"
	CollectionVisual   = "visual_vectors"
)

// Vector dimensions, fixed per collection for the lifetime of the index.
const (
	TextDim   = 384
	VisualDim = 512
)

// CollectionDims maps every modality collection to its fixed vector dimension.
func CollectionDims() map[string]int {
	return map[string]int{
		CollectionLocation: TextDim,
		CollectionFeatures: TextDim,
		CollectionVisual:   VisualDim,
	}
}
