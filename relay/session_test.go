package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
)

func testPipeline(translator Translator, speech *fakeSpeech, members ...*fakeMember) *Pipeline {
	registry := NewRegistry()
	for _, m := range members {
		registry.Add(m)
	}
	return &Pipeline{
		translator: translator,
		speech:     speech,
		dispatcher: NewDispatcher(registry, testLogger()),
		logger:     testLogger(),
	}
}

func decodeTranscription(t *testing.T, f frame) Transcription {
	t.Helper()
	if f.messageType != websocket.TextMessage {
		t.Fatalf("frame type = %d, want text", f.messageType)
	}
	var msg Transcription
	if err := json.Unmarshal(f.data, &msg); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return msg
}

func TestProcessTextThenAudio(t *testing.T) {
	listener := newFakeMember("listener")
	translator := &fakeTranslator{translations: map[string]string{
		"Dios es bueno todo el tiempo.": "God is good all the time.",
	}}
	speech := &fakeSpeech{audio: []byte("RIFF\x00\x01wav")}

	p := testPipeline(translator, speech, listener)
	p.Process(context.Background(), "Dios es bueno todo el tiempo.")

	frames := listener.received()
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}

	msg := decodeTranscription(t, frames[0])
	want := NewTranscription("Dios es bueno todo el tiempo.", "God is good all the time.")
	if msg != want {
		t.Errorf("text frame = %+v, want %+v", msg, want)
	}

	if frames[1].messageType != websocket.BinaryMessage {
		t.Errorf("second frame type = %d, want binary", frames[1].messageType)
	}
	if !bytes.Equal(frames[1].data, speech.audio) {
		t.Error("audio frame differs from synthesized bytes")
	}
	if got := speech.spoken(); len(got) != 1 || got[0] != "God is good all the time." {
		t.Errorf("synthesized %v", got)
	}
}

func TestProcessWithoutTranslation(t *testing.T) {
	listener := newFakeMember("listener")
	speech := &fakeSpeech{audio: []byte{1}}

	p := testPipeline(&fakeTranslator{}, speech, listener)
	p.Process(context.Background(), "Hermanos, abran sus biblias.")

	frames := listener.received()
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want only the text frame", len(frames))
	}
	msg := decodeTranscription(t, frames[0])
	if msg.Translation != "" || !msg.IsFinal {
		t.Errorf("text frame = %+v", msg)
	}
	if len(speech.spoken()) != 0 {
		t.Error("speech synthesis called without a translation")
	}
}

func TestProcessSynthesisFailure(t *testing.T) {
	listener := newFakeMember("listener")
	translator := &fakeTranslator{translations: map[string]string{"hola": "hello"}}
	speech := &fakeSpeech{err: errUpstream}

	p := testPipeline(translator, speech, listener)
	p.Process(context.Background(), "hola")

	frames := listener.received()
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want only the text frame", len(frames))
	}
	if msg := decodeTranscription(t, frames[0]); msg.Translation != "hello" {
		t.Errorf("translation = %q", msg.Translation)
	}
}

func TestPartialFrames(t *testing.T) {
	tests := []struct {
		name     string
		partials bool
		want     int
	}{
		{"disabled", false, 0},
		{"enabled", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listener := newFakeMember("listener")
			p := testPipeline(&fakeTranslator{}, &fakeSpeech{}, listener)
			p.partials = tt.partials

			p.partial("Dios es")

			frames := listener.received()
			if len(frames) != tt.want {
				t.Fatalf("got %d frames, want %d", len(frames), tt.want)
			}
			if tt.want == 0 {
				return
			}
			var msg Partial
			if err := json.Unmarshal(frames[0].data, &msg); err != nil {
				t.Fatal(err)
			}
			if msg.Type != TypePartial || msg.IsFinal || msg.Original != "Dios es" {
				t.Errorf("partial = %+v", msg)
			}
		})
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	recognizer := newFakeRecognizer(nil)
	p := testPipeline(&fakeTranslator{}, &fakeSpeech{})
	s := newSession(context.Background(), &Peer{id: "p"}, recognizer, p, false, testLogger())
	s.start()

	s.Close()
	s.Close()
	<-s.done

	if recognizer.stops != 1 {
		t.Errorf("recognizer stopped %d times, want 1", recognizer.stops)
	}
	// Audio after close is dropped without error.
	s.HandleAudio([]byte{1, 2})
	if recognizer.chunks() != 0 {
		t.Error("audio forwarded to a stopped recognizer")
	}
}

func TestSessionIgnoresInterimForTranslation(t *testing.T) {
	listener := newFakeMember("listener")
	translator := &fakeTranslator{translations: map[string]string{"hola a todos": "hello everyone"}}
	recognizer := newFakeRecognizer(nil)
	p := testPipeline(translator, &fakeSpeech{audio: []byte{9}}, listener)

	s := newSession(context.Background(), &Peer{id: "p"}, recognizer, p, false, testLogger())
	s.start()

	recognizer.emit(
		sttResult("hola", false),
		sttResult("hola a todos", true),
	)
	s.Close()
	s.wait()

	if len(translator.calls) != 1 || translator.calls[0] != "hola a todos" {
		t.Errorf("translated %v, want only the final", translator.calls)
	}
	if got := len(listener.received()); got != 2 {
		t.Errorf("got %d frames, want 2", got)
	}
}

func TestSequentialSessionKeepsOrder(t *testing.T) {
	listener := newFakeMember("listener")
	translator := &fakeTranslator{translations: map[string]string{
		"uno": "one", "dos": "two", "tres": "three",
	}}
	recognizer := newFakeRecognizer(nil)
	p := testPipeline(translator, &fakeSpeech{audio: []byte{9}}, listener)

	s := newSession(context.Background(), &Peer{id: "p"}, recognizer, p, true, testLogger())
	s.start()

	recognizer.emit(
		sttResult("uno", true),
		sttResult("dos", true),
		sttResult("tres", true),
	)
	s.Close()
	s.wait()

	var order []string
	for _, f := range listener.received() {
		if f.messageType == websocket.TextMessage {
			order = append(order, decodeTranscription(t, f).Original)
		}
	}
	want := []string{"uno", "dos", "tres"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
