package workflow

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// runShell parses and executes one `run:` block with the builtin shell.
// The script always runs with -e, so the first failing command fails the
// whole block. It returns the exit code of the failing command, zero on
// success.
func runShell(ctx context.Context, script, label, dir string, env []string, stdout, stderr io.Writer, dry bool) (int, error) {
	parser := syntax.NewParser()
	file, err := parser.Parse(strings.NewReader(script), label)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to parse shell block %s", label)
	}

	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, stdout, stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return 0, errors.Wrap(err, "unable to initialise shell")
	}

	printer := syntax.NewPrinter(syntax.Minify(true))
	buf := strings.Builder{}

	for _, stmt := range file.Stmts {
		buf.Reset()
		err = printer.Print(&buf, stmt)
		if err != nil {
			return 0, errors.Wrap(err, "unable to print statement")
		}
		log(ctx).Info().
			Str("step", label).
			Bool("command", true).
			Msg(buf.String())

		if dry {
			continue
		}

		err = runner.Run(ctx, stmt)
		if err != nil {
			if status, ok := interp.IsExitStatus(err); ok {
				return int(status), errors.Wrapf(err, "command %s", buf.String())
			}

			return 1, errors.Wrapf(err, "command %s", buf.String())
		}

		if runner.Exited() {
			break
		}
	}

	return 0, nil
}
