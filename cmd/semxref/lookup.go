package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func curieCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curie",
		Short: "Convert between URIs and CURIEs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "to-curie <uri>...",
		Short: "Contract URIs to CURIEs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.setup(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, uri := range args {
				id, ok := app.curies.ToCURIE(uri)
				if !ok {
					return fmt.Errorf("no prefix for %s", uri)
				}
				fmt.Fprintln(out, id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "to-uri <curie>...",
		Short: "Expand CURIEs to URIs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.setup(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range args {
				uri, err := app.curies.ToURI(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, uri)
			}
			return nil
		},
	})

	return cmd
}

func mapCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:       "map <relation|evidence|prefix> <code>...",
		Short:     "Map controlled vocabulary codes to ontology terms",
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: []string{"relation", "evidence", "prefix"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.setup(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, code := range args[1:] {
				term, err := app.lookup(args[0], code)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\n", code, term)
			}
			return nil
		},
	}
}

// lookup maps one code through the named table. Prefix types with no
// namespace yield an empty term.
func (a *App) lookup(table, code string) (string, error) {
	switch table {
	case "relation":
		return a.mapper.MapRelation(code), nil
	case "evidence":
		return a.mapper.MapEvidence(code), nil
	case "prefix":
		prefix, _ := a.mapper.MapPrefix(code)
		return prefix, nil
	default:
		return "", fmt.Errorf("unknown table %q: want relation, evidence or prefix", table)
	}
}
