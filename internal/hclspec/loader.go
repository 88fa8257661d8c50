package hclspec

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/atlekbai/strictstates"
)

// fileRoot decodes the top-level blocks of a declaration file.
type fileRoot struct {
	Namespaces []*namespaceBlock `hcl:"namespace,block"`
}

type namespaceBlock struct {
	Name     string          `hcl:"name,label"`
	Machines []*machineBlock `hcl:"machine,block"`
}

type machineBlock struct {
	Name   string         `hcl:"name,label"`
	Engine *string        `hcl:"engine,optional"`
	States hcl.Expression `hcl:"states"`
}

// Declaration is one namespace read from a file, ready to be built.
type Declaration struct {
	Namespace string
	Host      *Host
	Specs     []strictstates.MachineSpec
	File      string
}

// Build builds the declaration into c.
func (d *Declaration) Build(c *strictstates.Catalog) (*strictstates.Registry, error) {
	reg, err := c.Build(d.Namespace, d.Host, d.Specs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.File, err)
	}
	return reg, nil
}

// Loader reads declarations from HCL files.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new HCL declaration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads every .hcl file found in paths. Directories are walked
// recursively. A namespace may be declared only once across all files.
func (l *Loader) Load(paths ...string) ([]*Declaration, error) {
	l.logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var decls []*Declaration
	seen := make(map[string]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		fileDecls, err := l.decode(file, hclFile.Body)
		if err != nil {
			return nil, err
		}
		for _, d := range fileDecls {
			if prev, dup := seen[d.Namespace]; dup {
				return nil, fmt.Errorf("namespace %q declared in both %s and %s", d.Namespace, prev, file)
			}
			seen[d.Namespace] = file
			decls = append(decls, d)
		}
	}

	l.logger.Debug("HCL loading complete.", "namespaces", len(decls))
	return decls, nil
}

// Parse reads declarations from src. filename is used in diagnostics only.
func (l *Loader) Parse(src []byte, filename string) ([]*Declaration, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return l.decode(filename, hclFile.Body)
}

func (l *Loader) decode(file string, body hcl.Body) ([]*Declaration, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	decls := make([]*Declaration, 0, len(root.Namespaces))
	seen := make(map[string]bool)
	for _, nb := range root.Namespaces {
		if seen[nb.Name] {
			return nil, fmt.Errorf("%s: namespace %q declared more than once", file, nb.Name)
		}
		seen[nb.Name] = true

		d, err := translateNamespace(file, nb)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Namespace declared.", "file", file, "namespace", d.Namespace, "machines", len(d.Specs))
		decls = append(decls, d)
	}
	return decls, nil
}

func translateNamespace(file string, nb *namespaceBlock) (*Declaration, error) {
	d := &Declaration{
		Namespace: nb.Name,
		Host:      newHost(),
		Specs:     make([]strictstates.MachineSpec, 0, len(nb.Machines)),
		File:      file,
	}

	for _, mb := range nb.Machines {
		if _, dup := d.Host.machines[mb.Name]; dup {
			return nil, fmt.Errorf("%s: machine %q declared more than once in namespace %q", file, mb.Name, nb.Name)
		}

		states, diags := evalStates(mb.States)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		d.Host.machines[mb.Name] = states

		engine := strictstates.EngineMachines
		if mb.Engine != nil {
			engine = *mb.Engine
		}
		d.Specs = append(d.Specs, strictstates.MachineSpec{
			Name:    mb.Name,
			Adapter: strictstates.Engine(engine),
		})
	}
	return d, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}

		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}
