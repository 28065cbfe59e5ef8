package notebookmd

import "github.com/spf13/afero"

// DefaultCodeLanguage is the info string of fenced code cells.
const DefaultCodeLanguage = "python"

// ConvertOptions is the per-call conversion record.
type ConvertOptions struct {
	// EmbedImages inlines image and SVG outputs as base64 data URIs instead of
	// writing them to the assets directory.
	EmbedImages bool `json:"embed_images" yaml:"embed_images" mapstructure:"embed_images"`
}

// Option configures a Converter.
type Option func(*Converter)

// WithConvertOptions applies a ConvertOptions record.
func WithConvertOptions(o ConvertOptions) Option {
	return func(c *Converter) {
		c.embedImages = o.EmbedImages
	}
}

// WithEmbedImages configures whether image outputs become data URIs
// (default: false, which writes them to the assets directory).
func WithEmbedImages(embed bool) Option {
	return func(c *Converter) {
		c.embedImages = embed
	}
}

// WithCodeLanguage sets the info string used for code cell fences.
func WithCodeLanguage(lang string) Option {
	return func(c *Converter) {
		if lang != "" {
			c.codeLanguage = lang
		}
	}
}

// WithDetectLanguage uses the notebook's kernel language for code cell fences
// when the notebook declares one.
func WithDetectLanguage(detect bool) Option {
	return func(c *Converter) {
		c.detectLanguage = detect
	}
}

// WithHTMLToMarkdown renders text/html outputs as Markdown instead of a fenced
// html block.
func WithHTMLToMarkdown(convert bool) Option {
	return func(c *Converter) {
		c.htmlToMarkdown = convert
	}
}

// WithTidyOutput normalizes line endings, trailing whitespace and blank lines
// in the final document.
func WithTidyOutput(tidy bool) Option {
	return func(c *Converter) {
		c.tidy = tidy
	}
}

// WithFileSystem sets the file system notebooks are read from and assets are
// written to (default: the OS file system).
func WithFileSystem(fs afero.Fs) Option {
	return func(c *Converter) {
		if fs != nil {
			c.fs = fs
		}
	}
}
