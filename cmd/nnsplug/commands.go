package nnsplug

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dataignite-io/nnstreamer/internal/version"
	"github.com/dataignite-io/nnstreamer/pkg/conf"
	"github.com/dataignite-io/nnstreamer/pkg/errors"
	"github.com/dataignite-io/nnstreamer/pkg/logging"
	"github.com/dataignite-io/nnstreamer/pkg/subplugin"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		verbosity int
		confPath  string
	)

	rootCmd := &cobra.Command{
		Use:     "nnsplug",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand given
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&confPath, "config", "", MsgFlagConfig)

	rootCmd.AddCommand(newListCmd(&confPath))
	rootCmd.AddCommand(newResolveCmd(&confPath))
	rootCmd.AddCommand(newLoadCmd(&confPath))
	rootCmd.AddCommand(newConfigCmd(&confPath))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// newResolver loads the effective configuration and builds a Resolver on it
func newResolver(confPath string) (conf.Config, *conf.Resolver, error) {
	cfg, err := conf.Load(confPath)
	if err != nil {
		return conf.Config{}, nil, err
	}
	return cfg, conf.NewResolver(cfg), nil
}

// parseKindArg maps a CLI argument to a Kind with a usage-friendly error
func parseKindArg(arg string) (subplugin.Kind, error) {
	kind, err := subplugin.ParseKind(arg)
	if err != nil {
		return kind, errors.Newf(errors.ErrInvalidInput,
			"unknown kind %q (expected one of: filter, decoder, custom-filter, converter)", arg)
	}
	return kind, nil
}

func newListCmd(confPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list [kind]",
		Short: MsgListShort,
		Long:  MsgListLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resolver, err := newResolver(*confPath)
			if err != nil {
				return err
			}

			kinds := subplugin.Kinds()
			if len(args) == 1 {
				kind, err := parseKindArg(args[0])
				if err != nil {
					return err
				}
				kinds = []subplugin.Kind{kind}
			}

			out := cmd.OutOrStdout()
			for _, kind := range kinds {
				fmt.Fprintf(out, "%s (%s)\n", formatBoldUpper(kind.String()), kind.Strategy())

				paths := resolver.ResolveAll(kind)
				if len(paths) == 0 {
					fmt.Fprintln(out, "  (none)")
					continue
				}
				for _, path := range paths {
					fmt.Fprintf(out, "  %-24s %s\n", resolver.NameOf(kind, path), path)
				}
			}
			return nil
		},
	}
}

func newResolveCmd(confPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <kind> <name>",
		Short: MsgResolveShort,
		Long:  MsgResolveLong,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}

			_, resolver, err := newResolver(*confPath)
			if err != nil {
				return err
			}

			name := args[1]
			path, ok := resolver.ResolveOne(kind, name)
			if !ok {
				return errors.Newf(errors.ErrNotFound,
					"no module file for %s subplugin %q in %v", kind, name, resolver.Dirs(kind))
			}

			verdict := "valid"
			if !resolver.Validate(kind, path) {
				verdict = "INVALID"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", path, verdict)
			return nil
		},
	}
}

func newLoadCmd(confPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load <kind> <name>...",
		Short: MsgLoadShort,
		Long:  MsgLoadLong,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}

			_, resolver, err := newResolver(*confPath)
			if err != nil {
				return err
			}

			// Modules self-register through the package-level Register while
			// plugin.Open runs their init, so the lookups must go through the
			// same process-wide registry.
			subplugin.Init(subplugin.WithResolver(resolver))
			defer subplugin.Fini()

			out := cmd.OutOrStdout()
			failed := 0
			for _, name := range args[1:] {
				payload, err := subplugin.Lookup(kind, name)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%-24s FAILED: %v\n", name, err)
					continue
				}
				fmt.Fprintf(out, "%-24s OK (payload %T)\n", name, payload)
			}

			if failed > 0 {
				return errors.Newf(errors.ErrLoadFailure, "%d of %d subplugins failed to load",
					failed, len(args)-1)
			}
			return nil
		},
	}
}

func newConfigCmd(confPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Long:  MsgConfigLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := conf.Load(*confPath)
			if err != nil {
				return err
			}

			rendered, err := toml.Marshal(cfg)
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
			}

			fmt.Fprint(cmd.OutOrStdout(), string(rendered))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nnsplug version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion script",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
					log.Error().Err(err).Msg("Failed to generate bash completion")
				}
			case "zsh":
				if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
					log.Error().Err(err).Msg("Failed to generate zsh completion")
				}
			case "fish":
				if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
					log.Error().Err(err).Msg("Failed to generate fish completion")
				}
			case "powershell":
				if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
					log.Error().Err(err).Msg("Failed to generate powershell completion")
				}
			}
		},
	}
}
