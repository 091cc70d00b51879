package transform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/infra"
	"studio/internal/raster"
)

// Options controls how the Gemini transform client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Gemini implements Service against the Gemini generateContent API. When no
// API key is configured every operation falls back to a deterministic local
// edit, which keeps the whole editing pipeline operational in local and CI
// environments while preserving the extension points for real API calls.
type Gemini struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewGemini constructs a Gemini transform client with sane defaults. Callers
// may provide a nil HTTP client; a reusable one with a generous timeout will
// be created, since image edits routinely take tens of seconds.
func NewGemini(opts Options) *Gemini {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-image-preview"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Gemini{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}
}

// Model returns the configured Gemini model identifier.
func (g *Gemini) Model() string {
	return g.model
}

func (g *Gemini) EditByHotspot(ctx context.Context, req Request) (raster.Asset, error) {
	return g.edit(ctx, "retouch", BuildHotspotPrompt(req), req)
}

func (g *Gemini) Filter(ctx context.Context, req Request) (raster.Asset, error) {
	return g.edit(ctx, "filter", BuildFilterPrompt(req), req)
}

func (g *Gemini) Adjust(ctx context.Context, req Request) (raster.Asset, error) {
	return g.edit(ctx, "adjust", BuildAdjustPrompt(req), req)
}

func (g *Gemini) FaceSwap(ctx context.Context, req Request) (raster.Asset, error) {
	return g.edit(ctx, "face-swap", BuildFaceSwapPrompt(req), req)
}

func (g *Gemini) RemoveBackground(ctx context.Context, req Request) (raster.Asset, error) {
	return g.edit(ctx, "background-remove", BuildRemoveBackgroundPrompt(req), req)
}

func (g *Gemini) edit(ctx context.Context, op, prompt string, req Request) (raster.Asset, error) {
	if err := ctx.Err(); err != nil {
		return raster.Asset{}, err
	}
	if len(req.Image.Data) == 0 {
		return raster.Asset{}, fmt.Errorf("transform: no source image")
	}

	if g.apiKey == "" {
		return syntheticEdit(op, prompt, req)
	}

	asset, err := g.remoteEdit(ctx, prompt, req)
	if err != nil {
		return raster.Asset{}, err
	}

	g.logger.Debug().
		Str("op", op).
		Str("model", g.model).
		Int("width", asset.Width).
		Int("height", asset.Height).
		Msg("transform: remote edit complete")

	return asset, nil
}

func (g *Gemini) remoteEdit(ctx context.Context, prompt string, req Request) (raster.Asset, error) {
	parts := []geminiPart{{
		InlineData: &geminiInlineData{
			MimeType: req.Image.MIME,
			Data:     base64.StdEncoding.EncodeToString(req.Image.Data),
		},
	}}
	if req.Reference != nil && len(req.Reference.Data) > 0 {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: req.Reference.MIME,
				Data:     base64.StdEncoding.EncodeToString(req.Reference.Data),
			},
		})
	}
	parts = append(parts, geminiPart{Text: prompt})

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(g.model))
	if err := g.invoke(ctx, path, payload, &response); err != nil {
		return raster.Asset{}, err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return raster.Asset{}, fmt.Errorf("decode inline data: %w", err)
			}
			asset, err := raster.NewAsset(data)
			if err != nil {
				return raster.Asset{}, err
			}
			return asset, nil
		}
	}

	// A text-only answer means the model refused or misunderstood; surface
	// whatever it said so the user sees more than a generic failure.
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return raster.Asset{}, fmt.Errorf("gemini returned no image: %s", text)
			}
		}
	}
	return raster.Asset{}, fmt.Errorf("gemini returned no image")
}

func (g *Gemini) invoke(ctx context.Context, path string, payload any, out any) error {
	endpoint := strings.TrimRight(g.baseURL, "/") + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	if g.apiKey != "" {
		q.Set("key", g.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

var _ Service = (*Gemini)(nil)
