package interpreter

import (
	"os"
	"path/filepath"
	"strings"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

// ProgramExt is the canonical extension of serialized Graphite programs.
const ProgramExt = ".grf.json"

// resolveProgramPath resolves an import/load path relative to the file
// currently executing, appending the canonical extension when absent.
func (i *Interpreter) resolveProgramPath(path string) string {
	if !strings.HasSuffix(path, ProgramExt) {
		path += ProgramExt
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	base := "."
	if i.currentFile != "" {
		base = filepath.Dir(i.currentFile)
	}
	return filepath.Clean(filepath.Join(base, path))
}

func (i *Interpreter) readProgram(path string, pos ast.Position) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, i.errorf(ErrModuleNotFound, pos, "module '%s' not found", path)
		}
		return nil, i.errorf(ErrIO, pos, "cannot read module '%s': %v", path, err)
	}
	program, err := ast.DecodeProgram(data)
	if err != nil {
		return nil, i.errorf(ErrSyntax, pos, "invalid module '%s': %v", path, err)
	}
	return program, nil
}

// evalImportStatement resolves and memoizes an isolated module: each
// file is executed at most once per process, and in-progress loads are
// tracked so circular imports fail instead of recursing forever.
func (i *Interpreter) evalImportStatement(n *ast.ImportStatement, env *runtime.Environment) (runtime.Value, flow, error) {
	resolved := i.resolveProgramPath(n.Path)

	module, cached := i.modules[resolved]
	if !cached {
		if i.loading[resolved] {
			return nil, normalFlow, i.errorf(ErrCircularDependency, n.Position(), "circular import of '%s'", resolved)
		}
		var err error
		module, err = i.loadModule(resolved, n.Position())
		if err != nil {
			return nil, normalFlow, err
		}
		i.modules[resolved] = module
	}

	name := module.Name
	if n.Alias != nil {
		name = n.Alias.Name
	}
	env.Define(name, module)
	return module, normalFlow, nil
}

func (i *Interpreter) loadModule(resolved string, pos ast.Position) (*runtime.ModuleValue, error) {
	program, err := i.readProgram(resolved, pos)
	if err != nil {
		return nil, err
	}

	i.loading[resolved] = true
	defer delete(i.loading, resolved)

	prevFile := i.currentFile
	i.currentFile = resolved
	defer func() { i.currentFile = prevFile }()

	moduleEnv := runtime.NewEnvironment(i.global)
	for _, stmt := range program.Body {
		_, fl, err := i.evalStatement(stmt, moduleEnv)
		if err != nil {
			return nil, err
		}
		if !fl.isNormal() {
			return nil, i.runtimeErrorf(pos, "control flow escaped module '%s'", resolved)
		}
	}

	members := make(map[string]runtime.Value)
	for name, value := range moduleEnv.Snapshot() {
		if strings.HasPrefix(name, "_") {
			continue
		}
		members[name] = value
	}
	return &runtime.ModuleValue{
		Name:    moduleNameFromPath(resolved),
		Path:    resolved,
		Members: members,
	}, nil
}

// evalLoadStatement re-executes a file unmemoized and merges its
// non-internal bindings into the caller's current scope.
func (i *Interpreter) evalLoadStatement(n *ast.LoadStatement, env *runtime.Environment) (runtime.Value, flow, error) {
	resolved := i.resolveProgramPath(n.Path)
	if i.loading[resolved] {
		return nil, normalFlow, i.errorf(ErrCircularDependency, n.Position(), "circular load of '%s'", resolved)
	}
	program, err := i.readProgram(resolved, n.Position())
	if err != nil {
		return nil, normalFlow, err
	}

	i.loading[resolved] = true
	defer delete(i.loading, resolved)

	prevFile := i.currentFile
	i.currentFile = resolved
	defer func() { i.currentFile = prevFile }()

	loadEnv := runtime.NewEnvironment(i.global)
	for _, stmt := range program.Body {
		_, fl, err := i.evalStatement(stmt, loadEnv)
		if err != nil {
			return nil, normalFlow, err
		}
		if !fl.isNormal() {
			return nil, normalFlow, i.runtimeErrorf(n.Position(), "control flow escaped loaded file '%s'", resolved)
		}
	}
	for name, value := range loadEnv.Snapshot() {
		if strings.HasPrefix(name, "_") {
			continue
		}
		env.Define(name, value)
	}
	return runtime.NoneValue{}, normalFlow, nil
}

// runSubprogram executes another program as a subroutine with its print
// output captured, returning the captured text.
func (i *Interpreter) runSubprogram(path string, pos ast.Position) (runtime.Value, error) {
	resolved := i.resolveProgramPath(path)
	program, err := i.readProgram(resolved, pos)
	if err != nil {
		return nil, err
	}

	prevFile := i.currentFile
	i.currentFile = resolved
	i.BeginCapture()
	defer func() { i.currentFile = prevFile }()

	subEnv := runtime.NewEnvironment(i.global)
	for _, stmt := range program.Body {
		_, fl, err := i.evalStatement(stmt, subEnv)
		if err != nil {
			i.EndCapture()
			return nil, err
		}
		if !fl.isNormal() {
			i.EndCapture()
			return nil, i.runtimeErrorf(pos, "control flow escaped program '%s'", resolved)
		}
	}
	return runtime.StringValue{Val: i.EndCapture()}, nil
}

func moduleNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, ProgramExt)
}
