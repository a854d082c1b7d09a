package flags

import (
	"os"

	"github.com/spf13/pflag"
)

// APIFlags configure the HTTP listener and public URLs.
type APIFlags struct {
	ListenAddr    string
	PublicBaseURL string
	StaticDir     string
}

func NewAPIFlags() *APIFlags {
	listen := os.Getenv("LISTEN_ADDR")
	if listen == "" {
		if port := os.Getenv("PORT"); port != "" {
			listen = ":" + port
		} else {
			listen = ":3000"
		}
	}
	return &APIFlags{
		ListenAddr:    listen,
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
		StaticDir:     os.Getenv("LIFF_STATIC_DIR"),
	}
}

func (f *APIFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ListenAddr, "listen", f.ListenAddr,
		"address the HTTP server binds to (env LISTEN_ADDR, PORT)")
	fs.StringVar(&f.PublicBaseURL, "public-base-url", f.PublicBaseURL,
		"externally reachable base URL, used to build generated image links (env PUBLIC_BASE_URL)")
	fs.StringVar(&f.StaticDir, "liff-static-dir", f.StaticDir,
		"directory with the LIFF front-end served under /liff/; empty disables it (env LIFF_STATIC_DIR)")
}
