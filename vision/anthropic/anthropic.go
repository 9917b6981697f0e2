// Package anthropic provides a Vision implementation using the Anthropic
// Messages API with image input.
package anthropic

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/roverkit/seeker/core"
	"github.com/roverkit/seeker/vision"
)

// Options configure the Anthropic vision adapter.
type Options struct {
	// APIKey overrides the ANTHROPIC_API_KEY environment variable.
	APIKey    string
	Model     anthropic.Model
	MaxTokens int64
}

// Vision wraps the Anthropic Messages API behind the core.Vision port.
type Vision struct {
	client *anthropic.Client
	camera core.Camera
	opts   Options
}

var _ core.Vision = (*Vision)(nil)

// NewVision creates a new Anthropic vision provider. Frames come from the
// given camera.
func NewVision(camera core.Camera, optFns ...func(o *Options)) *Vision {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 1000,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Vision{client: &client, camera: camera, opts: opts}
}

// CaptureImage delegates to the wired camera.
func (v *Vision) CaptureImage(ctx context.Context) (*core.Image, error) {
	return v.camera.CaptureImage(ctx)
}

// Detect asks the model to locate the target in the frame.
func (v *Vision) Detect(ctx context.Context, img *core.Image, target string) ([]core.Detection, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, core.NewRobotError(core.ErrorKindSensorRead, "anthropic detect", fmt.Errorf("empty frame"))
	}
	mime := img.MIME
	if mime == "" {
		mime = "image/jpeg"
	}

	params := anthropic.MessageNewParams{
		Model:     v.opts.Model,
		MaxTokens: v.opts.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: vision.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(vision.DetectionPrompt(target)),
				anthropic.NewImageBlockBase64(mime, base64.StdEncoding.EncodeToString(img.Data)),
			),
		},
	}

	resp, err := v.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			sb.WriteString(block.AsText().Text)
		}
	}
	return vision.ParseDetections(sb.String(), target)
}
