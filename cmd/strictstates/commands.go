package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/atlekbai/strictstates"
	"github.com/atlekbai/strictstates/graph"
	"github.com/atlekbai/strictstates/internal/hclspec"
	"github.com/atlekbai/strictstates/internal/logging"
)

// loadCatalog loads the declaration files and builds every namespace into a
// fresh catalog. The catalog is sealed before it is returned.
func loadCatalog(cCtx *cli.Context) (*strictstates.Catalog, *slog.Logger, error) {
	logger := logging.Setup(cCtx.App.ErrWriter, logOptions(cCtx))

	paths := cCtx.StringSlice(fileFlag.Name)
	if len(paths) == 0 {
		return nil, nil, errors.New("no declaration files given, use --file")
	}

	decls, err := hclspec.NewLoader(logger).Load(paths...)
	if err != nil {
		return nil, nil, err
	}
	if len(decls) == 0 {
		return nil, nil, fmt.Errorf("no namespace declared in %s", strings.Join(paths, ", "))
	}

	catalog := strictstates.NewCatalog(strictstates.WithLogger(logger))
	for _, d := range decls {
		if _, err := d.Build(catalog); err != nil {
			return nil, nil, err
		}
	}
	catalog.Seal()

	logger.Debug("Declarations built.", "namespaces", len(decls))
	return catalog, logger, nil
}

func checkAction(cCtx *cli.Context) error {
	catalog, logger, err := loadCatalog(cCtx)
	if err != nil {
		return err
	}

	out := cCtx.App.Writer
	for _, ns := range catalog.Namespaces() {
		reg, _ := catalog.Get(ns)
		for _, name := range reg.Machines() {
			m, err := reg.Machine(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s %d\n", ns, name, m.Len())
		}
	}
	logger.Info("Declarations are valid.", "namespaces", len(catalog.Namespaces()))
	return nil
}

func lookupAction(cCtx *cli.Context) error {
	if cCtx.NArg() == 0 {
		return errors.New("lookup needs at least one KEY")
	}

	reg, err := queryRegistry(cCtx)
	if err != nil {
		return err
	}

	values, err := reg.LookupMany(cCtx.String(machineFlag.Name), cCtx.Args().Slice()...)
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Fprintln(cCtx.App.Writer, v)
	}
	return nil
}

func valuesAction(cCtx *cli.Context) error {
	reg, err := queryRegistry(cCtx)
	if err != nil {
		return err
	}

	values, err := reg.AllValues(cCtx.String(machineFlag.Name))
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Fprintln(cCtx.App.Writer, v)
	}
	return nil
}

func graphAction(cCtx *cli.Context) error {
	reg, err := queryRegistry(cCtx)
	if err != nil {
		return err
	}

	var out string
	switch strings.ToLower(cCtx.String(formatFlag.Name)) {
	case "mermaid":
		var direction *graph.MermaidGraphDirection
		if code := cCtx.String(directionFlag.Name); code != "" {
			d, err := graph.ParseDirection(code)
			if err != nil {
				return err
			}
			direction = &d
		}
		out = graph.MermaidGraph(reg, direction)
	case "dot":
		out = graph.DotGraph(reg)
	default:
		return fmt.Errorf("invalid format %q: must be 'mermaid' or 'dot'", cCtx.String(formatFlag.Name))
	}

	fmt.Fprintln(cCtx.App.Writer, out)
	return nil
}

func queryRegistry(cCtx *cli.Context) (*strictstates.Registry, error) {
	catalog, _, err := loadCatalog(cCtx)
	if err != nil {
		return nil, err
	}
	return catalog.Lookup(cCtx.String(namespaceFlag.Name))
}
