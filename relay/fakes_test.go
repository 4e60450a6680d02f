package relay

import (
	"context"
	"errors"
	"sync"

	"node.town/relay/stt"
)

type fakeRecognizer struct {
	mu      sync.Mutex
	results chan stt.Result
	closed  bool
	audio   [][]byte
	stops   int
	// onAudio turns inbound audio into recognition results.
	onAudio func(data []byte) []stt.Result
}

func newFakeRecognizer(onAudio func([]byte) []stt.Result) *fakeRecognizer {
	return &fakeRecognizer{
		results: make(chan stt.Result, 16),
		onAudio: onAudio,
	}
}

func (r *fakeRecognizer) SendAudio(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return stt.ErrClosed
	}
	r.audio = append(r.audio, data)
	if r.onAudio != nil {
		for _, result := range r.onAudio(data) {
			r.results <- result
		}
	}
	return nil
}

func (r *fakeRecognizer) emit(results ...stt.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, result := range results {
		r.results <- result
	}
}

func (r *fakeRecognizer) Receive() <-chan stt.Result {
	return r.results
}

func (r *fakeRecognizer) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

func (r *fakeRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	if !r.closed {
		r.closed = true
		close(r.results)
	}
	return nil
}

func (r *fakeRecognizer) chunks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.audio)
}

type fakeRecognition struct {
	mu          sync.Mutex
	err         error
	onAudio     func([]byte) []stt.Result
	recognizers []*fakeRecognizer
}

func (f *fakeRecognition) Start(ctx context.Context) (stt.SpeechRecognizer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r := newFakeRecognizer(f.onAudio)
	f.recognizers = append(f.recognizers, r)
	return r, nil
}

func (f *fakeRecognition) started() []*fakeRecognizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeRecognizer(nil), f.recognizers...)
}

type fakeTranslator struct {
	mu           sync.Mutex
	translations map[string]string
	calls        []string
	// gate, when set, holds every translation until it is closed.
	gate chan struct{}
}

func (f *fakeTranslator) Translate(ctx context.Context, text string) string {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	return f.translations[text]
}

func (f *fakeTranslator) translated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSpeech struct {
	mu    sync.Mutex
	audio []byte
	err   error
	calls []string
}

func (f *fakeSpeech) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func (f *fakeSpeech) spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

var errUpstream = errors.New("upstream unavailable")

func sttResult(text string, final bool) stt.Result {
	return stt.Result{Text: text, IsFinal: final}
}
