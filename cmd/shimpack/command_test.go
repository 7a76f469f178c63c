package main

import (
	"bytes"
	"errors"
	"flag"
	"go/parser"
	"go/token"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"shimpack.app/boot"
	"shimpack.app/command"
	"shimpack.app/feature"
	"shimpack.app/message"
	"shimpack.app/shimgen"
)

func newTestCommand(out io.Writer) command.Command {
	return buildCommand(message.New(log.New(io.Discard, "test: ", 0)), out)
}

func TestHelp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{
			"main", []string{}, `
Usage:	shimpack [-h | --help] [-v] COMMAND [OPTIONS]

Commands:
    resolve     Resolve capabilities into bootstrap mechanisms
    generate    Generate bootstrap source for an interpreter
    pack        Append a payload to a copy of a host binary
    inspect     Locate the payload of a packed binary
    template    Print the default bootstrap template
    help        Show this help message

`, command.ErrHelp,
		},
		{
			"help", []string{"help"}, `
Usage:	shimpack [-h | --help] [-v] COMMAND [OPTIONS]

Commands:
    resolve     Resolve capabilities into bootstrap mechanisms
    generate    Generate bootstrap source for an interpreter
    pack        Append a payload to a copy of a host binary
    inspect     Locate the payload of a packed binary
    template    Print the default bootstrap template
    help        Show this help message

`, errSuccess,
		},
		{
			"inspect", []string{"inspect", "-h"}, `
Usage:	shimpack inspect [-h | --help] [--offset <int>] COMMAND [OPTIONS]

Flags:
  -offset int
    	Payload offset from the end of the binary

`, flag.ErrHelp,
		},
		{
			"pack", []string{"pack", "-h"}, `
Usage:	shimpack pack [-h | --help] [--host <value>] [-o <value>] [--script <value>] [--archive <value>] COMMAND [OPTIONS]

Flags:
  -archive string
    	Directory or zip archive appended to the host binary
  -host string
    	Host interpreter binary built with the generated bootstrap
  -o string
    	Output executable
  -script string
    	Script appended to the host binary

`, flag.ErrHelp,
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := new(bytes.Buffer)
			c := newTestCommand(out)
			if err := c.Parse(tc.args); !errors.Is(err, tc.wantErr) {
				t.Errorf("Parse: error = %v, want %v", err, tc.wantErr)
			}
			if got := out.String(); got != tc.want {
				t.Errorf("Parse: %s want %s", got, tc.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		want    string
		wantMsg string
	}{
		{"none", []string{"resolve"},
			"capabilities: none\nmechanisms:   none\n", ""},
		{"script", []string{"resolve", "-f", "embed-script"},
			"capabilities: embed-script\nmechanisms:   boot-hook,trust-gate,payload-channel,preamble\n", ""},
		{"archive arguments", []string{"resolve", "-f", "embed-archive", "archive-contains-script,rewrite-arguments"},
			"capabilities: rewrite-arguments,embed-archive,archive-contains-script\n" +
				"mechanisms:   boot-hook,trust-gate,payload-channel,preamble,search-path\n", ""},

		{"unknown", []string{"resolve", "-f", "embed-everything"},
			"", "capability embed-everything is not supported"},
		{"preprocess", []string{"resolve", "-f", "embed-script,preprocessing"},
			"", "cannot build with embed-script and preprocessing: source preprocessing cannot see an embedded payload"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := new(bytes.Buffer)
			err := newTestCommand(out).Parse(tc.args)
			if tc.wantMsg != "" {
				if m, ok := message.GetMessage(err); !ok || m != tc.wantMsg {
					t.Errorf("Parse: error = %v, want %q", err, tc.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: error = %v", err)
			}
			if got := out.String(); got != tc.want {
				t.Errorf("Parse: %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("stdout", func(t *testing.T) {
		t.Parallel()

		out := new(bytes.Buffer)
		if err := newTestCommand(out).Parse([]string{"generate",
			"-f", "embed-archive,rewrite-arguments",
			"--offset", "4096", "--entry", "script.pl",
			"--arg", "-w", "--arg", "--", "--taint", "parse",
		}); err != nil {
			t.Fatalf("Parse: error = %v", err)
		}

		want, err := shimgen.Generate(feature.EmbedArchive|feature.RewriteArguments,
			boot.Payload{OffsetFromEnd: 4096, Entry: "script.pl"},
			shimgen.Options{Package: "main", Args: []string{"-w", "--"}, Taint: boot.TaintClearAfterParse})
		if err != nil {
			t.Fatalf("Generate: error = %v", err)
		}
		if got := out.String(); got != string(want) {
			t.Errorf("Parse: %s, want %s", got, string(want))
		}
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		name := filepath.Join(t.TempDir(), "shim.go")
		out := new(bytes.Buffer)
		if err := newTestCommand(out).Parse([]string{"generate",
			"-f", "embed-script", "--offset", "128", "--package", "interp", "-o", name,
		}); err != nil {
			t.Fatalf("Parse: error = %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("Parse: %q", out.String())
		}

		f, err := parser.ParseFile(token.NewFileSet(), name, nil, parser.PackageClauseOnly)
		if err != nil {
			t.Fatalf("ParseFile: error = %v", err)
		}
		if f.Name.Name != "interp" {
			t.Errorf("ParseFile: package %s, want %s", f.Name.Name, "interp")
		}
	})

	t.Run("template", func(t *testing.T) {
		t.Parallel()

		d := t.TempDir()
		tmpl := filepath.Join(d, "shim.go.tmpl")
		if err := os.WriteFile(tmpl, []byte("package $(package) // $(capability-names)\n"), 0600); err != nil {
			t.Fatalf("WriteFile: error = %v", err)
		}

		out := new(bytes.Buffer)
		if err := newTestCommand(out).Parse([]string{"generate",
			"-f", "embed-script", "--offset", "1", "--template", tmpl,
		}); err != nil {
			t.Fatalf("Parse: error = %v", err)
		}
		if want := "package main // embed-script\n"; out.String() != want {
			t.Errorf("Parse: %q, want %q", out.String(), want)
		}
	})

	t.Run("default template", func(t *testing.T) {
		t.Parallel()

		out := new(bytes.Buffer)
		if err := newTestCommand(out).Parse([]string{"template"}); err != nil {
			t.Fatalf("Parse: error = %v", err)
		}
		if out.String() != shimgen.DefaultTemplate() {
			t.Errorf("Parse: %q", out.String())
		}
	})

	errCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"arguments", []string{"generate", "extra"}, "generate takes no arguments"},
		{"taint", []string{"generate", "--taint", "never"}, "invalid taint policy never"},
		{"identity", []string{"generate", "-f", "redirect-interpreter-identity"},
			"cannot build with rewrite-arguments and redirect-interpreter-identity: " +
				"program identity can only be redirected by rewriting arguments"},
	}
	for _, tc := range errCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := newTestCommand(io.Discard).Parse(tc.args)
			if m, ok := message.GetMessage(err); !ok || m != tc.wantMsg {
				t.Errorf("Parse: error = %v, want %q", err, tc.wantMsg)
			}
		})
	}
}

const hostData = "\x7fELF host"

func TestPackInspect(t *testing.T) {
	t.Parallel()

	d := t.TempDir()
	host := filepath.Join(d, "host")
	if err := os.WriteFile(host, []byte(hostData), 0700); err != nil {
		t.Fatalf("WriteFile: error = %v", err)
	}

	t.Run("script", func(t *testing.T) {
		t.Parallel()

		script := filepath.Join(d, "main.script")
		if err := os.WriteFile(script, []byte("print('hello')\n"), 0600); err != nil {
			t.Fatalf("WriteFile: error = %v", err)
		}
		app := filepath.Join(d, "app")

		out := new(bytes.Buffer)
		if err := newTestCommand(out).Parse([]string{"pack",
			"--host", host, "-o", app, "--script", script,
		}); err != nil {
			t.Fatalf("Parse: error = %v", err)
		}
		if want := "15\n"; out.String() != want {
			t.Errorf("Parse: %q, want %q", out.String(), want)
		}

		out.Reset()
		if err := newTestCommand(out).Parse([]string{"inspect", "--offset", "15", app}); err != nil {
			t.Fatalf("Parse: error = %v", err)
		}
		if want := "size:    24\npayload: [9, 24)\n"; out.String() != want {
			t.Errorf("Parse: %q, want %q", out.String(), want)
		}
	})

	t.Run("archive", func(t *testing.T) {
		t.Parallel()

		src := filepath.Join(d, "tree")
		if err := os.MkdirAll(filepath.Join(src, "lib"), 0700); err != nil {
			t.Fatalf("MkdirAll: error = %v", err)
		}
		for name, data := range map[string]string{
			"script.pl":   "use util;\n",
			"lib/util.pm": "1;\n",
		} {
			if err := os.WriteFile(filepath.Join(src, name), []byte(data), 0600); err != nil {
				t.Fatalf("WriteFile: error = %v", err)
			}
		}
		app := filepath.Join(d, "app.zip")

		out := new(bytes.Buffer)
		if err := newTestCommand(out).Parse([]string{"pack",
			"--host", host, "-o", app, "--archive", src,
		}); err != nil {
			t.Fatalf("Parse: error = %v", err)
		}
		offset, err := strconv.ParseInt(strings.TrimSpace(out.String()), 10, 64)
		if err != nil {
			t.Fatalf("ParseInt: error = %v", err)
		}
		size := offset + int64(len(hostData))

		out.Reset()
		if err = newTestCommand(out).Parse([]string{"inspect", "--offset", strconv.FormatInt(offset, 10), app}); err != nil {
			t.Fatalf("Parse: error = %v", err)
		}
		want := "size:    " + strconv.FormatInt(size, 10) + "\n" +
			"payload: [9, " + strconv.FormatInt(size, 10) + ")\n" +
			"entries:\n" +
			"    lib/util.pm\n" +
			"    script.pl\n"
		if out.String() != want {
			t.Errorf("Parse: %q, want %q", out.String(), want)
		}
	})

	errCases := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"pack arguments", []string{"pack", "extra"}, usageError("pack takes no arguments")},
		{"pack output", []string{"pack", "--host", host}, usageError("output file not specified")},
		{"pack payload", []string{"pack", "--host", host, "-o", filepath.Join(d, "none")}, usageError("payload not specified")},
		{"pack both", []string{"pack", "--host", host, "-o", filepath.Join(d, "none"), "--script", host, "--archive", d},
			usageError("a host binary carries a single payload")},
		{"inspect arguments", []string{"inspect"}, usageError("inspect requires exactly 1 argument")},
		{"inspect offset", []string{"inspect", host},
			&boot.StartupError{Step: "seek to payload", Err: boot.ErrOffsetRange}},
	}
	for _, tc := range errCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := newTestCommand(io.Discard).Parse(tc.args)
			if err == nil || err.Error() != tc.wantErr.Error() {
				t.Errorf("Parse: error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
