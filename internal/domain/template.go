package domain

// PreviewKind enumerates how a template is previewed in the storefront.
type PreviewKind string

const (
	PreviewStatic   PreviewKind = "static"
	PreviewAnimated PreviewKind = "animated"
	PreviewVideo    PreviewKind = "video"
)

// TemplateDescriptor describes one catalog item. Descriptors are owned by
// the catalog and immutable after load; other components reference them by
// key only.
type TemplateDescriptor struct {
	Key          string      `json:"key"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	RequiredTier Tier        `json:"required_tier"`
	Features     []string    `json:"features"`
	PreviewKind  PreviewKind `json:"preview_kind"`
}
