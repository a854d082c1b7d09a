package flags

import (
	"context"
	"os"

	"github.com/spf13/pflag"

	"github.com/neezs/neezspilot/pkg/sheets"
)

// GoogleCloudFlags contain configuration for Google Sheets access.
type GoogleCloudFlags struct {
	ServiceAccountCredentialFile string
	ServiceAccountKeyJSON        string
}

func NewGoogleCloudFlags() *GoogleCloudFlags {
	return &GoogleCloudFlags{
		ServiceAccountCredentialFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		ServiceAccountKeyJSON:        os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY"),
	}
}

func (f *GoogleCloudFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ServiceAccountCredentialFile,
		"google-service-account-credential-file",
		f.ServiceAccountCredentialFile,
		"location of a credential file described by https://cloud.google.com/docs/authentication/production")
}

func (f *GoogleCloudFlags) GetSheetsService(ctx context.Context) (*sheets.Service, error) {
	return sheets.NewService(ctx, sheets.Credentials{
		KeyFile: f.ServiceAccountCredentialFile,
		KeyJSON: f.ServiceAccountKeyJSON,
	})
}
