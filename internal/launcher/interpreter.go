package launcher

import (
	"fmt"
	"strings"
)

// InterpreterSpec configures an interpreter-launcher variant: a script
// that gives recipes "an interpreter with only these eggs on sys.path"
// without having to hand-roll one, per spec.md §4.I.
type InterpreterSpec struct {
	Name         string
	Executable   string
	DestDir      string
	SearchPaths  []string
	RelativeRoot string
}

// GenerateInterpreter writes the interpreter launcher, a variant that
// recognizes a subset of the host interpreter's flags (-i, -c, -S, -V)
// and either evaluates a command string, runs a file, or drops into an
// interactive loop with the preset search path.
func GenerateInterpreter(spec InterpreterSpec) (string, error) {
	s := Spec{
		Executable:   spec.Executable,
		DestDir:      spec.DestDir,
		SearchPaths:  spec.SearchPaths,
		RelativeRoot: spec.RelativeRoot,
	}

	path, err := Generate(Spec{
		EntryPoints: []EntryPoint{{DisplayName: spec.Name, Module: "__interpreter__", Attr: "main"}},
		Executable:  s.Executable,
		DestDir:     s.DestDir,
		SearchPaths: s.SearchPaths,
	})
	if err != nil {
		return "", err
	}
	if len(path) != 1 {
		return "", fmt.Errorf("expected exactly one interpreter launcher, got %d", len(path))
	}

	content := renderInterpreter(spec)
	if err := writeIfChanged(path[0], content, 0755); err != nil {
		return "", err
	}
	return path[0], nil
}

func renderInterpreter(spec InterpreterSpec) string {
	var b strings.Builder

	fmt.Fprintf(&b, "#!%s\n", spec.Executable)
	b.WriteString("# generated by partforge; interpreter launcher, do not edit\n\n")
	writePathSetup(&b, Spec{SearchPaths: spec.SearchPaths, RelativeRoot: spec.RelativeRoot})

	b.WriteString(`import sys

def main():
    args = sys.argv[1:]
    interactive = False
    command = None
    script = None

    i = 0
    while i < len(args):
        arg = args[i]
        if arg == '-i':
            interactive = True
        elif arg == '-c':
            i += 1
            command = args[i]
        elif arg == '-S':
            pass  # site initialization is already skipped by construction
        elif arg == '-V':
            print('partforge interpreter launcher')
            return
        else:
            script = arg
            break
        i += 1

    if command is not None:
        exec(command)
        return
    if script is not None:
        with open(script) as f:
            exec(compile(f.read(), script, 'exec'))
        return
    if interactive or (command is None and script is None):
        import code
        code.interact(local=dict(globals()))

main()
`)

	return b.String()
}
