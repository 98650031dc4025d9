// Package http implements the browser-facing HTTP transport for kannadavoice.
//
// It serves the landing page, the JSON translate endpoint and the two audio
// endpoints, plus the generated OpenAPI docs under /swagger/.
package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/kannadavoice/internal/apperr"
	_ "github.com/nadzzz/kannadavoice/internal/docs" // registers the OpenAPI spec
	"github.com/nadzzz/kannadavoice/internal/message"
	"github.com/nadzzz/kannadavoice/internal/speech"
)

// AttachmentName is the download filename used by POST /speak.
const AttachmentName = "kannada_audio.wav"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Translator produces a translation result for a request.
type Translator interface {
	Translate(ctx context.Context, req message.TranslationRequest) (*message.TranslationResult, error)
}

// Speaker renders a speech request to WAV bytes.
type Speaker interface {
	Render(ctx context.Context, req message.SpeechRequest) ([]byte, error)
}

// Options configures the HTTP transport.
type Options struct {
	Port              int
	ReadHeaderTimeout time.Duration
	CORSOrigins       []string
}

// Transport serves the HTTP API.
type Transport struct {
	opts       Options
	translator Translator
	speaker    Speaker
	server     *http.Server
}

// New creates a new HTTP transport.
func New(opts Options, translator Translator, speaker Speaker) *Transport {
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = 10 * time.Second
	}
	return &Transport{opts: opts, translator: translator, speaker: speaker}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the router with all routes and middleware installed.
func (t *Transport) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverJSON)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: t.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/", t.handleIndex)
	r.Post("/translate", t.handleTranslate)
	r.Post("/speak", t.handleSpeak)
	r.Post("/speak-stream", t.handleSpeakStream)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// Listen starts the HTTP server and blocks until ctx is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.opts.Port),
		Handler:           t.Handler(),
		ReadHeaderTimeout: t.opts.ReadHeaderTimeout,
	}

	slog.Info("http transport listening", "port", t.opts.Port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

func (t *Transport) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, nil); err != nil {
		slog.Error("rendering index", "error", err)
	}
}

// handleTranslate processes a POST /translate request.
//
// @Summary     Translate English text to Kannada
// @Description Forwards the trimmed text to the translation provider. When the
// @Description provider fails or returns the input unchanged the request fails with 503.
// @Tags        translate
// @Accept      json
// @Produce     json
// @Param       request  body      message.TranslationRequest  true  "Text to translate"
// @Success     200  {object}  message.TranslationResult
// @Failure     400  {object}  message.ErrorResponse  "Empty text or invalid JSON"
// @Failure     503  {object}  message.ErrorResponse  "Translation unavailable"
// @Failure     500  {object}  message.ErrorResponse  "Unexpected error"
// @Router      /translate [post]
func (t *Transport) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req message.TranslationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := t.translator.Translate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSpeak processes a POST /speak request.
//
// @Summary     Synthesize speech as a downloadable WAV file
// @Tags        speech
// @Accept      json
// @Produce     audio/wav
// @Param       request  body      message.SpeechRequest  true  "Text to speak"
// @Success     200  {file}    file  "WAV audio, attachment kannada_audio.wav"
// @Failure     400  {object}  message.ErrorResponse  "Empty text or invalid JSON"
// @Failure     500  {object}  message.ErrorResponse  "Synthesis failed"
// @Router      /speak [post]
func (t *Transport) handleSpeak(w http.ResponseWriter, r *http.Request) {
	t.serveAudio(w, r, true)
}

// handleSpeakStream processes a POST /speak-stream request.
//
// @Summary     Synthesize speech for inline playback
// @Description The audio is fully buffered before the response is written.
// @Tags        speech
// @Accept      json
// @Produce     audio/wav
// @Param       request  body      message.SpeechRequest  true  "Text to speak"
// @Success     200  {file}    file  "WAV audio"
// @Failure     400  {object}  message.ErrorResponse  "Empty text or invalid JSON"
// @Failure     500  {object}  message.ErrorResponse  "Synthesis failed"
// @Router      /speak-stream [post]
func (t *Transport) handleSpeakStream(w http.ResponseWriter, r *http.Request) {
	t.serveAudio(w, r, false)
}

func (t *Transport) serveAudio(w http.ResponseWriter, r *http.Request, attachment bool) {
	var req message.SpeechRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	audio, err := t.speaker.Render(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", speech.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	if attachment {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": AttachmentName,
		}))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst zero so the
// blank-text validation applies; malformed JSON is a validation error.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	default:
		return apperr.NewValidation("invalid json: " + err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusCode(err)
	logger := slog.With("path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "kind", apperr.KindOf(err).String())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Info("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, message.ErrorResponse{Error: apperr.Message(err)})
}
