package relay

const (
	TypeTranscription = "TRANSCRIPTION"
	TypePartial       = "PARTIAL"
)

// Transcription is the text frame sent once per final utterance. An empty
// Translation means no translation was available.
type Transcription struct {
	Type        string `json:"type"`
	Original    string `json:"original"`
	Translation string `json:"translation"`
	IsFinal     bool   `json:"isFinal"`
}

func NewTranscription(original, translation string) Transcription {
	return Transcription{
		Type:        TypeTranscription,
		Original:    original,
		Translation: translation,
		IsFinal:     true,
	}
}

// Partial carries an interim recognition result for live captions.
type Partial struct {
	Type     string `json:"type"`
	Original string `json:"original"`
	IsFinal  bool   `json:"isFinal"`
}

func NewPartial(original string) Partial {
	return Partial{Type: TypePartial, Original: original}
}
