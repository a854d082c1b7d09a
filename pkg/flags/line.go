// Package flags groups the command line options per concern; each Flags
// struct binds itself to a pflag set and builds its clients.
package flags

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/neezs/neezspilot/pkg/line"
)

// LineFlags configure the LINE Messaging API channel.
type LineFlags struct {
	ChannelSecret      string
	ChannelAccessToken string
	LIFFID             string
}

func NewLineFlags() *LineFlags {
	return &LineFlags{
		ChannelSecret:      os.Getenv("LINE_CHANNEL_SECRET"),
		ChannelAccessToken: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		LIFFID:             os.Getenv("LINE_LIFF_ID"),
	}
}

func (f *LineFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ChannelSecret, "line-channel-secret", f.ChannelSecret,
		"LINE channel secret used to verify webhook signatures (env LINE_CHANNEL_SECRET)")
	fs.StringVar(&f.ChannelAccessToken, "line-channel-access-token", f.ChannelAccessToken,
		"LINE channel access token for the Messaging API (env LINE_CHANNEL_ACCESS_TOKEN)")
	fs.StringVar(&f.LIFFID, "line-liff-id", f.LIFFID,
		"LIFF app id used to build the todo management deep link (env LINE_LIFF_ID)")
}

func (f *LineFlags) GetClient() *line.Client {
	return line.NewClient(f.ChannelAccessToken)
}
