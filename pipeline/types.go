package pipeline

import "io"

// Upload is one inbound media file, alive for the duration of one request.
type Upload struct {
	// Filename is the caller-declared name, used only for admission checks
	// and for its extension.
	Filename string
	// ContentType is the caller-declared media type.
	ContentType string
	// Data is the upload byte stream. Consumed once, during staging.
	Data io.Reader
}

// Result is the final response record for one transcription request.
// RawText is always exactly what the engine returned; PunctuatedText is the
// enrichment output, or the degraded notice wrapping RawText.
type Result struct {
	Language       string  `json:"language"`
	Duration       float64 `json:"duration"`
	RawText        string  `json:"raw_text"`
	PunctuatedText string  `json:"punctuated_text"`

	degraded bool
}

// Degraded reports whether PunctuatedText is the raw-text fallback. The flag
// never reaches the response body; enrichment failure is not a transport
// error.
func (r *Result) Degraded() bool { return r.degraded }
