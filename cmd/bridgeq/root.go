package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"pkt.systems/pslog"

	"github.com/kyle-williams-1/solrbridge/internal/loggingutil"
	"github.com/kyle-williams-1/solrbridge/language/placeholder"
)

const envPrefix = "BRIDGEQ"

type app struct {
	v      *viper.Viper
	logger pslog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "bridgeq",
		Short:         "bridgeq compiles bridge qualifications into Solr queries and runs them",
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `
  # Compile a raw qualification
  bridgeq compile "name:<%= parameter['product name'] %>" --param "product name=ipod"

  # Count matching documents in the techproducts core
  BRIDGEQ_URL=http://localhost:8983/solr bridgeq count techproducts "name:ipod"`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.readConfig(); err != nil {
				return err
			}
			logger, err := loggingutil.New(cmd.ErrOrStderr(), envPrefix+"_LOG_", a.v.GetString("log-level"))
			if err != nil {
				return err
			}
			a.logger = logger.With("app", "bridgeq")
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to a YAML config file with flag values")
	flags.String("log-level", "none", "log level (trace, debug, info, warn, error, none)")
	flags.StringArray("param", nil, "qualification parameter as name=value (repeatable)")
	flags.String("params-file", "", "YAML file mapping parameter names to values")

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	a.bindFlags(flags, "config", "log-level", "params-file")

	cmd.AddCommand(
		newCompileCommand(a),
		newQueryCommand(a, "count", "Count documents matching a qualification"),
		newQueryCommand(a, "search", "Search documents matching a qualification"),
		newQueryCommand(a, "retrieve", "Retrieve the single document matching a qualification"),
	)
	return cmd
}

func (a *app) bindFlags(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		flag := flags.Lookup(name)
		if flag == nil {
			panic(fmt.Sprintf("flag %q not found", name))
		}
		if err := a.v.BindPFlag(name, flag); err != nil {
			panic(err)
		}
	}
}

func (a *app) readConfig() error {
	path := strings.TrimSpace(a.v.GetString("config"))
	if path == "" {
		return nil
	}
	a.v.SetConfigFile(path)
	if err := a.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	return nil
}

// parameters merges --params-file with --param; --param wins on conflicts.
func (a *app) parameters(cmd *cobra.Command) (placeholder.Parameters, error) {
	var params placeholder.Parameters

	if path := strings.TrimSpace(a.v.GetString("params-file")); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open params file: %w", err)
		}
		defer f.Close()
		params = placeholder.Parameters{}
		if err := yaml.NewDecoder(f).Decode(&params); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode params file %q: %w", path, err)
		}
	}

	pairs, err := cmd.Flags().GetStringArray("param")
	if err != nil {
		return nil, err
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q, expected name=value", pair)
		}
		if params == nil {
			params = placeholder.Parameters{}
		}
		params[name] = value
	}
	return params, nil
}

// qualificationArg returns arg, reading stdin when it is "-".
func qualificationArg(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read qualification from stdin: %w", err)
	}
	return string(raw), nil
}
