package transcription

import "fmt"

// Task selects the engine's operating mode.
type Task string

const (
	// TaskTranscribe keeps the speech in its original language.
	TaskTranscribe Task = "transcribe"
	// TaskTranslate converts the speech to English.
	TaskTranslate Task = "translate"
)

// ParseTask validates a task-mode string. An empty value defaults to
// TaskTranscribe; anything outside the closed set is rejected.
func ParseTask(s string) (Task, error) {
	switch Task(s) {
	case "":
		return TaskTranscribe, nil
	case TaskTranscribe, TaskTranslate:
		return Task(s), nil
	default:
		return "", fmt.Errorf("invalid task %q: must be %q or %q", s, TaskTranscribe, TaskTranslate)
	}
}

// Result holds the normalized result of a transcription call.
type Result struct {
	// Language is the detected language code. May be empty if the engine
	// could not identify one.
	Language string `json:"language"`
	// Duration is the total recognized speech coverage in seconds: the sum
	// of per-segment spans, not the container's duration metadata.
	Duration float64 `json:"duration"`
	// Text is the raw transcript. May be an empty string.
	Text string `json:"text"`
	// Segments contains the time-aligned transcript segments.
	Segments []Segment `json:"segments,omitempty"`
}

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
}

// SpanSum returns the summed end-minus-start spans of segments.
// Zero segments yield zero.
func SpanSum(segments []Segment) float64 {
	var total float64
	for _, seg := range segments {
		total += seg.End - seg.Start
	}
	return total
}
