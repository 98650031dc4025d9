// Package piper implements tts.Engine using a Piper Wyoming protocol server.
//
// Piper is a fast, local neural text-to-speech system. The linuxserver/piper
// container exposes the Wyoming protocol on TCP port 10200. Each engine opens
// its own connection per call, so engines stay request-scoped.
//
// Wyoming protocol format (per event):
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
package piper

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/nadzzz/kannadavoice/internal/config"
	"github.com/nadzzz/kannadavoice/internal/tts"
)

// defaultVoices maps ISO-639-1 language codes to Piper voice model names.
// Piper has no Kannada model upstream; kn falls back to the engine default
// unless the operator configures one.
var defaultVoices = map[string]string{
	"en": "en_US-lessac-medium",
}

// Engine implements tts.Engine over the Wyoming protocol.
type Engine struct {
	endpoint string
	voices   map[string]string
	language string
	voice    string
	rate     int
	fs       afero.Fs
}

// New creates a Piper engine for language. Audio is written through fs.
func New(cfg config.PiperConfig, language string, fs afero.Fs) (*Engine, error) {
	endpoint := strings.TrimPrefix(cfg.Endpoint, "tcp://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	if endpoint == "" {
		return nil, fmt.Errorf("no piper endpoint configured")
	}

	voices := make(map[string]string, len(defaultVoices)+len(cfg.Voices))
	for k, v := range defaultVoices {
		voices[k] = v
	}
	for k, v := range cfg.Voices {
		voices[k] = v
	}

	return &Engine{
		endpoint: endpoint,
		voices:   voices,
		language: language,
		fs:       fs,
	}, nil
}

// NewFactory returns a tts.Factory producing a fresh Engine per call.
func NewFactory(cfg config.PiperConfig, language string, fs afero.Fs) tts.Factory {
	return func(ctx context.Context) (tts.Engine, error) {
		return New(cfg, language, fs)
	}
}

// Name returns the backend identifier.
func (e *Engine) Name() string { return "piper" }

// SetRate records the requested rate. Wyoming's synthesize event has no rate
// field, so Piper speaks at the model's native speed.
func (e *Engine) SetRate(wpm int) { e.rate = wpm }

// SetVoice overrides language-based voice selection.
func (e *Engine) SetVoice(id string) { e.voice = id }

// Voices asks the server to describe itself and returns the voices of every
// TTS program it reports.
func (e *Engine) Voices(ctx context.Context) ([]tts.Voice, error) {
	conn, err := e.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := writeEvent(conn, wyomingEvent{Type: "describe"}, nil); err != nil {
		return nil, fmt.Errorf("sending describe event: %w", err)
	}

	for {
		evt, _, err := readEvent(conn)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}
		if evt.Type != "info" {
			slog.Debug("piper unknown event", "type", evt.Type)
			continue
		}
		return parseInfo(evt.Data)
	}
}

// SaveToFile synthesizes text and writes it to path as a WAV file.
func (e *Engine) SaveToFile(ctx context.Context, text, path string) error {
	if text == "" {
		return fmt.Errorf("empty text for synthesis")
	}

	voice := e.voice
	if voice == "" {
		voice = e.voices[e.language]
	}

	slog.Debug("piper synthesize", "text_length", len(text), "voice", voice, "language", e.language, "rate", e.rate, "endpoint", e.endpoint)

	conn, err := e.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	data := map[string]any{"text": text}
	if voice != "" {
		data["voice"] = map[string]any{"name": voice}
	}
	if err := writeEvent(conn, wyomingEvent{Type: "synthesize", Data: data}, nil); err != nil {
		return fmt.Errorf("sending synthesize event: %w", err)
	}

	wav, err := readAudio(conn)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(e.fs, path, wav, 0o600); err != nil {
		return fmt.Errorf("writing audio: %w", err)
	}
	return nil
}

func (e *Engine) dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", e.endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}
	return conn, nil
}

// readAudio consumes audio-start → audio-chunk* → audio-stop and returns WAV.
func readAudio(r io.Reader) ([]byte, error) {
	var (
		pcmBuf     bytes.Buffer
		sampleRate = 22050
		channels   = 1
		width      = 2
	)

	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			if rate, ok := evt.Data["rate"].(float64); ok {
				sampleRate = int(rate)
			}
			if ch, ok := evt.Data["channels"].(float64); ok {
				channels = int(ch)
			}
			if w, ok := evt.Data["width"].(float64); ok {
				width = int(w)
			}

		case "audio-chunk":
			pcmBuf.Write(payload)

		case "audio-stop":
			if pcmBuf.Len() == 0 {
				return nil, fmt.Errorf("piper returned no audio")
			}
			return pcmToWAV(pcmBuf.Bytes(), sampleRate, channels, width), nil

		case "error":
			msg := "unknown error"
			if text, ok := evt.Data["text"].(string); ok {
				msg = text
			}
			return nil, fmt.Errorf("piper error: %s", msg)

		default:
			slog.Debug("piper unknown event", "type", evt.Type)
		}
	}
}

// parseInfo extracts voices from an info event's data:
//
//	{"tts": [{"name": "piper", "voices": [{"name": "...", "languages": ["en_US"]}]}]}
func parseInfo(data map[string]any) ([]tts.Voice, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("re-encoding info: %w", err)
	}
	var info struct {
		TTS []struct {
			Voices []struct {
				Name      string   `json:"name"`
				Languages []string `json:"languages"`
			} `json:"voices"`
		} `json:"tts"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decoding info: %w", err)
	}

	var voices []tts.Voice
	for _, program := range info.TTS {
		for _, v := range program.Voices {
			voices = append(voices, tts.Voice{ID: v.Name, Name: v.Name, Languages: v.Languages})
		}
	}
	return voices, nil
}

// --- Wyoming protocol helpers ---

type wyomingEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// writeEvent sends a Wyoming event over the connection.
func writeEvent(w io.Writer, evt wyomingEvent, payload []byte) error {
	jsonBytes, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	header := fmt.Sprintf("%d %d\n", len(jsonBytes), len(payload))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	if _, err := w.Write(jsonBytes); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// readEvent reads a Wyoming event from the connection.
func readEvent(r io.Reader) (*wyomingEvent, []byte, error) {
	headerBuf := make([]byte, 0, 64)
	oneByte := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, oneByte); err != nil {
			return nil, nil, fmt.Errorf("reading header: %w", err)
		}
		if oneByte[0] == '\n' {
			break
		}
		headerBuf = append(headerBuf, oneByte[0])
	}

	parts := strings.SplitN(string(headerBuf), " ", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid wyoming header: %q", string(headerBuf))
	}

	jsonLen, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing json_length: %w", err)
	}
	payloadLen, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing payload_length: %w", err)
	}

	jsonBuf := make([]byte, jsonLen+1) // +1 for the \n
	if _, err := io.ReadFull(r, jsonBuf); err != nil {
		return nil, nil, fmt.Errorf("reading json: %w", err)
	}

	var evt wyomingEvent
	if err := json.Unmarshal(jsonBuf[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}

	return &evt, payload, nil
}

// pcmToWAV wraps raw PCM data in a WAV container.
func pcmToWAV(pcm []byte, sampleRate, channels, bytesPerSample int) []byte {
	dataLen := len(pcm)

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataLen)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample*8))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm)

	return buf.Bytes()
}
