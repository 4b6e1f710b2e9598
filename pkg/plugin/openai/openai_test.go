package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chriscow/musickly/pkg/ai"
	"github.com/chriscow/musickly/pkg/ai/image"
	"github.com/chriscow/musickly/pkg/ai/llm"
	"github.com/chriscow/musickly/pkg/ai/stt"
	"github.com/chriscow/musickly/pkg/ai/tts"
	"github.com/chriscow/musickly/pkg/audio/wav"
	"github.com/matryer/is"
)

func newTestServer(t *testing.T, h http.HandlerFunc) Config {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestConfig_MissingKey(t *testing.T) {
	is := is.New(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewOpenAILLM(Config{})
	is.True(err != nil)
	_, err = newOpenAITTS(map[string]any{})
	is.True(err != nil)
}

func TestConfig_FromMap(t *testing.T) {
	is := is.New(t)
	t.Setenv("OPENAI_API_KEY", "env-key")

	c := configFromMap(map[string]any{"model": "gpt-4o", "voice": "nova"})
	is.Equal(c.APIKey, "env-key")
	is.Equal(c.Model, "gpt-4o")
	is.Equal(c.Voice, "nova")

	c = configFromMap(map[string]any{"api_key": "explicit"})
	is.Equal(c.APIKey, "explicit")
}

func TestOpenAILLM_Chat(t *testing.T) {
	is := is.New(t)

	var got map[string]any
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"title\":\"Night Drive\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 7, "total_tokens": 12}
		}`)
	})

	p, err := NewOpenAILLM(cfg)
	is.NoErr(err)

	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{
			llm.SystemMessage("you write songs"),
			llm.UserMessage("a song about driving"),
		},
		JSON: true,
	})
	is.NoErr(err)
	is.Equal(resp.Message.Content, `{"title":"Night Drive"}`)
	is.Equal(resp.TokensUsed, 12)
	is.Equal(resp.FinishReason, "stop")

	is.Equal(got["model"], defaultChatModel)
	format, _ := got["response_format"].(map[string]any)
	is.Equal(format["type"], "json_object")
}

func TestOpenAILLM_Vision(t *testing.T) {
	is := is.New(t)

	var got struct {
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, `{"choices": [{"message": {"role": "assistant", "content": "rainy street"}, "finish_reason": "stop"}]}`)
	})

	p, err := NewOpenAILLM(cfg)
	is.NoErr(err)

	_, err = p.Chat(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.UserMessage("describe", "data:image/png;base64,AAAA")},
	})
	is.NoErr(err)
	is.Equal(len(got.Messages), 1)

	var parts []map[string]any
	is.NoErr(json.Unmarshal(got.Messages[0].Content, &parts))
	is.Equal(len(parts), 2)
	is.Equal(parts[0]["type"], "text")
	is.Equal(parts[1]["type"], "image_url")
	url, _ := parts[1]["image_url"].(map[string]any)
	is.Equal(url["url"], "data:image/png;base64,AAAA")
}

func TestOpenAILLM_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		recoverable bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusBadGateway, true},
		{"bad key", http.StatusUnauthorized, false},
		{"bad request", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, `{"error": {"message": "nope", "type": "test_error"}}`)
			})
			p, err := NewOpenAILLM(cfg)
			is.NoErr(err)

			_, err = p.Chat(context.Background(), llm.ChatRequest{Messages: []llm.Message{llm.UserMessage("hi")}})
			is.True(err != nil)
			is.Equal(ai.IsRecoverable(err), tt.recoverable)
			is.Equal(ai.IsFatal(err), !tt.recoverable)
		})
	}
}

func TestOpenAILLM_NoChoices(t *testing.T) {
	is := is.New(t)
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"choices": []}`)
	})
	p, err := NewOpenAILLM(cfg)
	is.NoErr(err)

	_, err = p.Chat(context.Background(), llm.ChatRequest{Messages: []llm.Message{llm.UserMessage("hi")}})
	is.True(ai.IsFatal(err))
}

func TestOpenAITTS_Synthesize(t *testing.T) {
	is := is.New(t)

	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	var got map[string]any
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/v1/audio/speech")
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/pcm")
		w.Write(pcm)
	})

	p, err := NewOpenAITTS(cfg)
	is.NoErr(err)

	speech, err := p.Synthesize(context.Background(), tts.SynthesizeRequest{Text: "breathe in", Voice: "nova"})
	is.NoErr(err)
	is.Equal(speech.PCM, pcm)
	is.Equal(speech.Params, wav.DefaultParams)

	is.Equal(got["response_format"], "pcm")
	is.Equal(got["voice"], "nova")
	is.Equal(got["input"], "breathe in")
}

func TestOpenAITTS_EmptyAudio(t *testing.T) {
	is := is.New(t)
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	p, err := NewOpenAITTS(cfg)
	is.NoErr(err)

	_, err = p.Synthesize(context.Background(), tts.SynthesizeRequest{Text: "hello"})
	is.True(ai.IsFatal(err))
}

func TestWhisperSTT_Transcribe(t *testing.T) {
	is := is.New(t)

	var fileName, model string
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/v1/audio/transcriptions")
		is.NoErr(r.ParseMultipartForm(1 << 20))
		model = r.FormValue("model")
		_, hdr, err := r.FormFile("file")
		is.NoErr(err)
		fileName = hdr.Filename
		writeJSON(w, http.StatusOK, `{"task": "transcribe", "language": "english", "duration": 1.5, "text": "  la la la  "}`)
	})

	p, err := NewWhisperSTT(cfg)
	is.NoErr(err)

	tr, err := p.Transcribe(context.Background(), stt.TranscribeRequest{
		Audio:     []byte("fake webm bytes"),
		MediaType: "audio/webm;codecs=opus",
	})
	is.NoErr(err)
	is.Equal(tr.Text, "la la la")
	is.Equal(tr.Language, "english")
	is.Equal(fileName, "recording.webm")
	is.Equal(model, "whisper-1")
}

func TestWhisperSTT_RejectsEmpty(t *testing.T) {
	is := is.New(t)
	p, err := NewWhisperSTT(Config{APIKey: "test-key"})
	is.NoErr(err)

	_, err = p.Transcribe(context.Background(), stt.TranscribeRequest{})
	is.True(ai.IsInvalidInput(err))
}

func TestUploadName(t *testing.T) {
	is := is.New(t)
	is.Equal(uploadName("audio/wav"), "recording.wav")
	is.Equal(uploadName("audio/x-wav"), "recording.wav")
	is.Equal(uploadName("audio/mpeg"), "recording.mp3")
	is.Equal(uploadName("audio/ogg"), "recording.ogg")
	is.Equal(uploadName("audio/mp4"), "recording.m4a")
	is.Equal(uploadName(""), "recording.webm")
}

func TestWhisperSTT_Capabilities(t *testing.T) {
	is := is.New(t)
	p, err := NewWhisperSTT(Config{APIKey: "test-key"})
	is.NoErr(err)

	caps := p.Capabilities()
	is.True(len(caps.SupportedLanguages) > 50)
	is.Equal(caps.MaxUploadBytes, maxWhisperUpload)
}

func TestOpenAIImage_Generate(t *testing.T) {
	is := is.New(t)

	png := []byte("\x89PNG\r\n\x1a\nfake")
	var got map[string]any
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/v1/images/generations")
		json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, `{"created": 1, "data": [{"b64_json": "`+
			base64.StdEncoding.EncodeToString(png)+`", "revised_prompt": "a neon skyline"}]}`)
	})

	p, err := NewOpenAIImage(cfg)
	is.NoErr(err)

	img, err := p.Generate(context.Background(), image.GenerateRequest{Prompt: "album cover for Night Drive"})
	is.NoErr(err)
	is.Equal(img.Data, png)
	is.Equal(img.MediaType, "image/png")
	is.Equal(img.RevisedPrompt, "a neon skyline")

	is.Equal(got["response_format"], "b64_json")
	is.Equal(got["size"], "1024x1024")
	is.True(strings.Contains(got["prompt"].(string), "Night Drive"))
}

func TestOpenAIImage_EmptyData(t *testing.T) {
	is := is.New(t)
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"created": 1, "data": []}`)
	})
	p, err := NewOpenAIImage(cfg)
	is.NoErr(err)

	_, err = p.Generate(context.Background(), image.GenerateRequest{Prompt: "x"})
	is.True(ai.IsFatal(err))
}
