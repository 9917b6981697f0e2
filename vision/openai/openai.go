// Package openai provides a Vision implementation using the OpenAI Chat
// Completions API with image input. It sends captured frames as base64
// data URLs and parses the structured detection reply.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/roverkit/seeker/core"
	"github.com/roverkit/seeker/vision"
)

// Options configure the OpenAI vision adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	MaxCompletionTokens int64
}

// Vision wraps the OpenAI Chat Completions API behind the core.Vision port.
type Vision struct {
	client *openai.Client
	camera core.Camera
	opts   Options
}

var _ core.Vision = (*Vision)(nil)

// NewVision creates a new OpenAI vision provider using the official client.
// Frames come from the given camera.
func NewVision(camera core.Camera, optFns ...func(o *Options)) *Vision {
	client := openai.NewClient()
	return NewVisionFromClient(&client, camera, optFns...)
}

// NewVisionFromClient creates a new OpenAI vision provider from an existing client.
func NewVisionFromClient(client *openai.Client, camera core.Camera, optFns ...func(o *Options)) *Vision {
	opts := Options{
		Model:               openai.ChatModelGPT4o,
		MaxCompletionTokens: 1000,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Vision{client: client, camera: camera, opts: opts}
}

// CaptureImage delegates to the wired camera.
func (v *Vision) CaptureImage(ctx context.Context) (*core.Image, error) {
	return v.camera.CaptureImage(ctx)
}

// Detect asks the model to locate the target in the frame.
func (v *Vision) Detect(ctx context.Context, img *core.Image, target string) ([]core.Detection, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, core.NewRobotError(core.ErrorKindSensorRead, "openai detect", fmt.Errorf("empty frame"))
	}
	mime := img.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.Data))

	params := openai.ChatCompletionNewParams{
		Model:               v.opts.Model,
		MaxCompletionTokens: openai.Int(v.opts.MaxCompletionTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(vision.SystemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(vision.DetectionPrompt(target)),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
	}

	resp, err := v.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}
	return vision.ParseDetections(resp.Choices[0].Message.Content, target)
}
