package lineage

// Stroke colors. Renderers depend on these exact strings.
const (
	ColorJoin           = "#3b82f6"
	ColorTransformation = "#10b981"
	ColorNeutral        = "#6b7280"
)

// DefaultStyle is applied to reference edges and to any unrecognized kind.
var DefaultStyle = VisualStyle{
	StrokeColor: ColorNeutral,
	StrokeWidth: 1,
}

// StyleFor returns the visual treatment for a relationship kind.
func StyleFor(kind string) VisualStyle {
	switch kind {
	case RelationshipJoin:
		return VisualStyle{StrokeColor: ColorJoin, StrokeWidth: 2}
	case RelationshipTransformation:
		return VisualStyle{StrokeColor: ColorTransformation, StrokeWidth: 2, Dashed: true, Animated: true}
	default:
		return DefaultStyle
	}
}
