package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kyle-williams-1/solrbridge"
	"github.com/kyle-williams-1/solrbridge/adapter/solr"
	"github.com/kyle-williams-1/solrbridge/config"
	"github.com/kyle-williams-1/solrbridge/qualification"
)

func newCompileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile QUALIFICATION",
		Short: "Compile a qualification and print the query and result root path",
		Long:  "Compile a qualification and print the query and result root path. Pass - to read the qualification from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := qualificationArg(cmd, args[0])
			if err != nil {
				return err
			}
			params, err := a.parameters(cmd)
			if err != nil {
				return err
			}

			cfg := config.Default()
			if op := a.v.GetString("concat-operator"); op != "" {
				cfg.WithConcatOperator(op)
			}
			translator := solrbridge.NewWithConfig(cfg).WithLogger(a.logger)
			q := qualification.New(raw)

			root, err := translator.ResultRootPath(q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.v.GetBool("filter") {
				filter, err := translator.TranslateFilter(q, params)
				if err != nil {
					return err
				}
				encoded, err := json.MarshalIndent(filter, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "filter: %s\nroot: %s\n", encoded, root)
				return err
			}

			query, err := translator.Translate(q, params)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "query: %s\nroot: %s\n", query, root)
			return err
		},
	}

	flags := cmd.Flags()
	flags.Bool("filter", false, "print the MongoDB filter of a Kinetic DSL qualification instead of the Solr query")
	flags.String("concat-operator", "", "default operator joining Kinetic DSL clauses")
	a.bindFlags(flags, "filter", "concat-operator")
	return cmd
}

func newQueryCommand(a *app, method, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   method + " STRUCTURE QUALIFICATION",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// count, search and retrieve share flag names, so bind the running command's flags.
			a.bindFlags(cmd.Flags(), "url", "username", "password", "properties", "fields", "page-size", "offset", "order")

			raw, err := qualificationArg(cmd, args[1])
			if err != nil {
				return err
			}
			params, err := a.parameters(cmd)
			if err != nil {
				return err
			}
			props, err := a.properties()
			if err != nil {
				return err
			}
			if props.Endpoint() == "" {
				return fmt.Errorf("a Solr URL is required (--url or %s_URL)", envPrefix)
			}

			adapter := solr.New(props, solr.WithLogger(a.logger))
			if err := adapter.Initialize(cmd.Context()); err != nil {
				return err
			}

			req := &solr.Request{
				Structure:  args[0],
				Query:      raw,
				Parameters: params,
				Fields:     a.v.GetStringSlice("fields"),
				Metadata:   map[string]string{},
			}
			for _, key := range []string{"page-size", "offset", "order"} {
				if value := a.v.GetString(key); value != "" {
					req.Metadata[metadataKey(key)] = value
				}
			}

			var result any
			switch method {
			case "count":
				count, err := adapter.Count(cmd.Context(), req)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), count)
				return err
			case "search":
				result, err = adapter.Search(cmd.Context(), req)
			default:
				result, err = adapter.Retrieve(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	flags := cmd.Flags()
	flags.String("url", "", "Solr base URL, e.g. http://localhost:8983/solr")
	flags.String("username", "", "Solr username")
	flags.String("password", "", "Solr password")
	flags.String("properties", "", "YAML file with the adapter properties (Username, Password, Solr URL)")
	flags.StringSlice("fields", nil, "fields to return")
	flags.String("page-size", "", "page size (default 1000)")
	flags.String("offset", "", "result offset")
	flags.String("order", "", `sort order, e.g. <%=field["price"]%>:DESC`)
	return cmd
}

// properties loads --properties and overlays the connection flags.
func (a *app) properties() (solr.Properties, error) {
	var props solr.Properties
	if path := strings.TrimSpace(a.v.GetString("properties")); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return props, fmt.Errorf("open properties file: %w", err)
		}
		defer f.Close()
		if props, err = solr.LoadProperties(f); err != nil {
			return props, err
		}
	}
	if v := a.v.GetString("url"); v != "" {
		props.URL = v
	}
	if v := a.v.GetString("username"); v != "" {
		props.Username = v
	}
	if v := a.v.GetString("password"); v != "" {
		props.Password = v
	}
	return props, nil
}

func metadataKey(flag string) string {
	if flag == "page-size" {
		return "pageSize"
	}
	return flag
}
