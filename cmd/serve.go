package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/neezs/neezspilot/pkg/assetcache"
	"github.com/neezs/neezspilot/pkg/chat"
	"github.com/neezs/neezspilot/pkg/flags"
	"github.com/neezs/neezspilot/pkg/server"
	"github.com/neezs/neezspilot/pkg/sheets"
)

type ServerFlags struct {
	LineFlags    *flags.LineFlags
	AIFlags      *flags.AIFlags
	TodoFlags    *flags.TodoFlags
	MCPFlags     *flags.MCPFlags
	GoogleFlags  *flags.GoogleCloudFlags
	FinanceFlags *flags.FinanceFlags
	APIFlags     *flags.APIFlags
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{
		LineFlags:    flags.NewLineFlags(),
		AIFlags:      flags.NewAIFlags(),
		TodoFlags:    flags.NewTodoFlags(),
		MCPFlags:     flags.NewMCPFlags(),
		GoogleFlags:  flags.NewGoogleCloudFlags(),
		FinanceFlags: flags.NewFinanceFlags(),
		APIFlags:     flags.NewAPIFlags(),
	}
}

func (f *ServerFlags) BindFlags(fs *pflag.FlagSet) {
	f.LineFlags.BindFlags(fs)
	f.AIFlags.BindFlags(fs)
	f.TodoFlags.BindFlags(fs)
	f.MCPFlags.BindFlags(fs)
	f.GoogleFlags.BindFlags(fs)
	f.FinanceFlags.BindFlags(fs)
	f.APIFlags.BindFlags(fs)
}

func init() {
	f := NewServerFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		Run: func(cmd *cobra.Command, args []string) {
			if f.LineFlags.ChannelSecret == "" || f.LineFlags.ChannelAccessToken == "" {
				log.Fatal("the LINE channel secret and access token are required")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// The sheets backends need direct spreadsheet access.
			var sheetsAPI sheets.API
			if f.TodoFlags.Backend == flags.TodoBackendSheets || f.TodoFlags.Backend == flags.TodoBackendSheetsTemplate {
				svc, err := f.GoogleFlags.GetSheetsService(ctx)
				if err != nil {
					log.WithError(err).Fatal("could not build the Google Sheets client")
				}
				sheetsAPI = svc
			}

			store, err := f.TodoFlags.GetStore(sheetsAPI)
			if err != nil {
				log.WithError(err).Fatal("could not build the todo store")
			}
			log.WithField("backend", store.Name()).Info("todo store ready")

			searchClient, err := f.MCPFlags.GetSearchClient()
			if err != nil {
				log.WithError(err).Fatal("could not build the search MCP client")
			}
			sheetsToolClient, err := f.MCPFlags.GetSheetsToolClient(f.GoogleFlags)
			if err != nil {
				log.WithError(err).Fatal("could not build the sheets MCP client")
			}

			lineClient := f.LineFlags.GetClient()
			assets := assetcache.New(assetcache.DefaultTTL)

			deps := chat.Dependencies{
				Store:   store,
				LLM:     f.AIFlags.GetLLMClient(),
				Assets:  assets,
				Content: lineClient,
				Config: chat.Config{
					LIFFID:               f.LineFlags.LIFFID,
					PublicBaseURL:        f.APIFlags.PublicBaseURL,
					SpreadsheetID:        f.TodoFlags.SpreadsheetID,
					SheetName:            f.TodoFlags.SheetName,
					DataFile:             f.TodoFlags.DataFile,
					FinanceSpreadsheetID: f.FinanceFlags.SpreadsheetID,
					FinanceSheetName:     f.FinanceFlags.SheetName,
				},
			}
			// A typed nil must not end up in the interface fields.
			if searchClient != nil {
				deps.Search = searchClient
				defer searchClient.Close()
			}
			if sheetsToolClient != nil {
				deps.SheetsTools = sheetsToolClient
				defer sheetsToolClient.Close()
			}

			srv := server.NewServer(
				server.Config{
					ListenAddr:    f.APIFlags.ListenAddr,
					ChannelSecret: f.LineFlags.ChannelSecret,
					StaticDir:     f.APIFlags.StaticDir,
				},
				chat.NewRouter(deps),
				lineClient,
				store,
				assets,
			)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.WithError(err).Error("server shutdown failed")
				}
			}()

			if err := srv.Serve(); err != nil {
				log.WithError(err).Fatal("server exited")
			}
		},
	}

	f.BindFlags(cmd.Flags())
	rootCmd.AddCommand(cmd)
}
