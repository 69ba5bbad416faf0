// internal/cli/root.go
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"typings-worker/internal/config"
	"typings-worker/internal/installer"
	"typings-worker/internal/ipc"
	"typings-worker/internal/logging"
	"typings-worker/internal/status"
)

var buildVersion = "dev"

var (
	flagLogFile       string
	flagCacheDir      string
	flagNpmLocation   string
	flagSafeList      string
	flagTypesMap      string
	flagThrottleLimit int
	flagStatusAddr    string
)

var rootCmd = &cobra.Command{
	Use:   "typings-worker",
	Short: "Installs typing packages on behalf of an editor tooling host",
	Long: `typings-worker is a long-running helper process spawned by an editor
tooling host. It keeps a local cache of the types registry, accepts requests
over stdin/stdout and installs typing packages by invoking npm.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagLogFile, "log-file", "", "diagnostic log file visible to the host (disabled when empty)")
	flags.StringVar(&flagCacheDir, "global-cache-dir", "", "global typings cache directory")
	flags.StringVar(&flagNpmLocation, "npm-location", "", "path to the npm executable (derived from the runtime when empty)")
	flags.StringVar(&flagSafeList, "safe-list", "", "path to the typing safe list file")
	flags.StringVar(&flagTypesMap, "types-map", "", "path to the typing alias map file")
	flags.IntVar(&flagThrottleLimit, "throttle-limit", 0, "maximum typings per npm invocation during discovery")
	flags.StringVar(&flagStatusAddr, "status-addr", "", "listen address of the local status endpoint (disabled when empty)")
}

// Execute lance la commande racine avec la version injectée par ldflags
func Execute(version string) error {
	buildVersion = version
	rootCmd.Version = version
	return rootCmd.Execute()
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyFlags(cmd, cfg)
	cfg.Version = config.NormalizeVersion(buildVersion)

	diag := logging.NewLog(cfg.LogFile)
	defer diag.Close()

	channel := ipc.NewChannel(os.Stdin, os.Stdout, diag)
	proc := installer.NewProcess(cfg, diag, channel, nil)
	proc.Bootstrap()

	if cfg.StatusAddr != "" {
		go status.Serve(proc, cfg.StatusAddr)
	}

	// Retourne nil à la déconnexion du host: sortie avec statut de succès
	return proc.Run(context.Background())
}

// applyFlags fait primer les drapeaux explicites sur l'environnement
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}
	if flags.Changed("global-cache-dir") {
		cfg.GlobalCacheDir = flagCacheDir
	}
	if flags.Changed("npm-location") {
		cfg.NpmLocation = flagNpmLocation
	}
	if flags.Changed("safe-list") {
		cfg.SafeListPath = flagSafeList
	}
	if flags.Changed("types-map") {
		cfg.TypesMapPath = flagTypesMap
	}
	if flags.Changed("throttle-limit") {
		cfg.ThrottleLimit = flagThrottleLimit
	}
	if flags.Changed("status-addr") {
		cfg.StatusAddr = flagStatusAddr
	}
}
