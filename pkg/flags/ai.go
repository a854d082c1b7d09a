package flags

import (
	"github.com/spf13/pflag"

	"github.com/neezs/neezspilot/pkg/ai"
)

// AIFlags contains flags related to the bot's use of generative AI.
type AIFlags struct {
	Endpoint    string
	Model       string
	VisionModel string
	ImageModel  string
}

func NewAIFlags() *AIFlags {
	return &AIFlags{}
}

func (f *AIFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Endpoint, "ai-endpoint", "", "URL for an OpenAI-compatible endpoint. Set OPENAI_API_KEY to specify an API key.")
	fs.StringVar(&f.Model, "ai-model", "gpt-4o-mini", "The model used for chat completion replies")
	fs.StringVar(&f.VisionModel, "ai-vision-model", "gpt-4o-mini", "The model used to describe inbound images")
	fs.StringVar(&f.ImageModel, "ai-image-model", "dall-e-3", "The model used by /image generation")
}

func (f *AIFlags) GetLLMClient() *ai.LLMClient {
	return ai.NewLLMClient(f.Endpoint, f.Model, f.VisionModel, f.ImageModel)
}
