package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ChatInstructions is the assistant persona; the bot answers in Thai.
const ChatInstructions = "คุณเป็นผู้ช่วย AI ที่เป็นมิตรและช่วยเหลือผู้ใช้ ตอบคำถามเป็นภาษาไทย กระชับและตรงประเด็น"

type LLMClient struct {
	client      *openai.Client
	model       string
	visionModel string
	imageModel  string
}

func NewLLMClient(url, model, visionModel, imageModel string) *LLMClient {
	options := []option.RequestOption{}
	if url != "" {
		options = append(options, option.WithBaseURL(url))
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Info("OPENAI_API_KEY environment variable is not set, will try unauthenticated access")
	} else {
		options = append(options, option.WithAPIKey(apiKey))
	}

	client := openai.NewClient(options...)
	return &LLMClient{
		client:      &client,
		model:       model,
		visionModel: visionModel,
		imageModel:  imageModel,
	}
}

func (llm *LLMClient) Chat(ctx context.Context, instructions, data string) (string, error) {
	resp, err := llm.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instructions),
			openai.UserMessage(data),
		},
		Model: llm.model,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("client didn't return any content choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// DescribeImage asks the vision model about an image supplied as raw bytes.
// hint may carry the user's accompanying question; empty means "describe it".
func (llm *LLMClient) DescribeImage(ctx context.Context, data []byte, mimeType, hint string) (string, error) {
	if hint == "" {
		hint = "อธิบายภาพนี้ให้หน่อย"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := llm.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ChatInstructions),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(hint),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		Model: llm.visionModel,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("client didn't return any content choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type Image struct {
	Bytes    []byte
	MimeType string
}

// GenerateImage renders a prompt into a PNG.
func (llm *LLMClient) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	resp, err := llm.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          llm.imageModel,
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return Image{}, err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return Image{}, errors.New("image model returned no data")
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return Image{}, errors.Wrap(err, "decoding generated image")
	}
	return Image{Bytes: raw, MimeType: "image/png"}, nil
}
