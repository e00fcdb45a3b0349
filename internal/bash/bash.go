package bash

import (
	"context"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

func RunScriptFromReader(ctx context.Context, runner *interp.Runner, reader io.Reader, name string) error {
	content, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(string(content)), name)
	if err != nil {
		return err
	}
	return runner.Run(ctx, prog)
}

func RunScriptFromFile(ctx context.Context, runner *interp.Runner, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return RunScriptFromReader(ctx, runner, f, filePath)
}

// RunFunction calls the shell function name with args passed verbatim as
// positional parameters. It reports false when no such function is defined.
func RunFunction(ctx context.Context, runner *interp.Runner, name string, args ...string) (bool, error) {
	if runner.Funcs[name] == nil {
		return false, nil
	}

	words := make([]*syntax.Word, 0, len(args)+1)
	words = append(words, &syntax.Word{Parts: []syntax.WordPart{&syntax.Lit{Value: name}}})
	for _, arg := range args {
		words = append(words, &syntax.Word{Parts: []syntax.WordPart{&syntax.SglQuoted{Value: arg}}})
	}

	call := &syntax.Stmt{Cmd: &syntax.CallExpr{Args: words}}
	return true, runner.Run(ctx, call)
}
