package document

// Document is a unit of extracted text handed to the classifier or the
// training pipeline. The text is plain UTF-8; heading lines are preserved
// by the parsers so section-aware chunking can find them.
type Document struct {
	Title    string // From metadata or filename.
	Text     string // Full extracted text.
	Filename string // Original upload name, if any.
	Label    string // Declared category for training documents ("" otherwise).
}
