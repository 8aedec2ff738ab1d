package domain

// QAStatus is the lifecycle state of a creative variant with respect
// to validation.
type QAStatus string

const (
	QAPending  QAStatus = "pending"
	QAPassed   QAStatus = "passed"
	QAFailed   QAStatus = "failed"
	QAFallback QAStatus = "fallback"
)

// CreativeVariant is one generated ad creative for a product. Every
// product in the final plan carries at least two variants.
type CreativeVariant struct {
	ID          string   `json:"id"`
	ProductID   string   `json:"product_id"`
	VariantID   string   `json:"variant_id"` // "A", "B", ...
	Platform    string   `json:"platform"`
	PrimaryText string   `json:"primary_text"`
	Headline    string   `json:"headline"`
	ImagePrompt string   `json:"image_prompt,omitempty"`
	ImageRef    string   `json:"image_ref,omitempty"`
	ABGroup     string   `json:"ab_group"` // "control" for A, "variant" otherwise
	QAStatus    QAStatus `json:"qa_status"`
}

// HasImage reports whether the variant carries an image prompt or a
// concrete image reference. QA requires at least one.
func (v CreativeVariant) HasImage() bool {
	return v.ImagePrompt != "" || v.ImageRef != ""
}
