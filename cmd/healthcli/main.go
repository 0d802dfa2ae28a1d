package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/chat"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/config"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/nav"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/session"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/store"
)

var (
	cfgPath   string
	verbose   bool
	assumeYes bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "healthcli",
	Short: "Terminal client for the AI health assistant",
	Long: `healthcli is the terminal surface of the AI health assistant.

It talks to the external advisory backend, keeps your login and selected
role across runs, and mirrors the mini-app screens as subcommands:

  healthcli login -u name -p pass     # log in
  healthcli role student              # pick a role
  healthcli chat                      # interactive conversation
  healthcli history list              # stored conversations
  healthcli history export 7 -f md    # export a transcript`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// app bundles the wired client core for one command invocation.
type app struct {
	cfg      *config.Config
	st       store.Store
	sessions *session.Manager
	client   *backend.Client
	machine  *nav.Machine
	chat     *chat.Controller
	log      *zap.Logger
}

// newApp builds the core: store, session manager, backend adapter,
// navigation machine, and conversation controller, then restores persisted
// state. Callers must Close it.
func newApp(cmd *cobra.Command) (*app, error) {
	_ = godotenv.Load()

	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	if verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	path := cfgPath
	if path == "" {
		path = os.Getenv("HEALTH_ASSISTANT_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sessions := session.NewManager(st, logger)
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), sessions, logger)
	sessions.Bind(client)
	if err := sessions.Restore(cmd.Context()); err != nil {
		st.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	machine := nav.NewMachine(sessions, logger)
	machine.Restore()
	machine.OnRedirect(func(reason string) {
		fmt.Fprintln(cmd.ErrOrStderr(), noticeStyle.Render(reason))
	})
	sessions.OnExpired(machine.HandleAuthExpired)

	controller := chat.NewController(client, sessions, logger)

	return &app{
		cfg:      cfg,
		st:       st,
		sessions: sessions,
		client:   client,
		machine:  machine,
		chat:     controller,
		log:      logger,
	}, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
	_ = a.st.Close()
}

func main() {
	Execute()
}
