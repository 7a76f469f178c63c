package main

import (
	"fmt"
	"io"
	"os"

	"github.com/xyproto/env/v2"

	"shimpack.app/boot"
	"shimpack.app/command"
	"shimpack.app/feature"
	"shimpack.app/internal/pack"
	"shimpack.app/message"
	"shimpack.app/shimgen"
)

func buildCommand(msg message.Msg, out io.Writer) command.Command {
	var flagVerbose bool
	c := command.New(out, msg.GetLogger().Printf, "shimpack", func([]string) error {
		if flagVerbose {
			msg.SwapVerbose(true)
		}
		return nil
	}).
		Flag(&flagVerbose, "v", command.BoolFlag(false), "Increase log verbosity")

	{
		var flagCaps string
		c.NewCommand("resolve", "Resolve capabilities into bootstrap mechanisms", func(args []string) error {
			s, err := feature.Parse(append([]string{flagCaps}, args...)...)
			if err != nil {
				return err
			}
			config, err := feature.Resolve(s)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "capabilities: %s\nmechanisms:   %s\n", config.Capabilities, config.Mechanisms)
			return err
		}).
			Flag(&flagCaps, "f", command.StringFlag(""),
				"Comma-separated capabilities")
	}

	{
		var (
			flagCaps     string
			flagOffset   int64
			flagEntry    string
			flagArgs     command.RepeatableFlag
			flagIdentity string
			flagPackage  string
			flagPreamble string
			flagTaint    string
			flagTemplate string
			flagOutput   string
		)

		c.NewCommand("generate", "Generate bootstrap source for an interpreter", func(args []string) error {
			if len(args) != 0 {
				return usageError("generate takes no arguments")
			}

			s, err := feature.Parse(flagCaps)
			if err != nil {
				return err
			}
			policy, ok := boot.ParseTaintPolicy(flagTaint)
			if !ok {
				return usageError("invalid taint policy " + flagTaint)
			}

			o := shimgen.Options{
				Package:  flagPackage,
				Identity: flagIdentity,
				Args:     flagArgs,
				Preamble: flagPreamble,
				Taint:    policy,
			}
			if flagTemplate == "" {
				flagTemplate = env.Str("SHIMPACK_TEMPLATE")
			}
			if flagTemplate != "" {
				var data []byte
				if data, err = os.ReadFile(flagTemplate); err != nil {
					return err
				}
				o.Template = string(data)
				msg.Verbosef("using template %s", flagTemplate)
			}

			src, err := shimgen.Generate(s, boot.Payload{OffsetFromEnd: flagOffset, Entry: flagEntry}, o)
			if err != nil {
				return err
			}
			if flagOutput == "" {
				_, err = out.Write(src)
				return err
			}
			if err = os.WriteFile(flagOutput, src, 0644); err != nil {
				return err
			}
			msg.Verbosef("wrote %d bytes to %s", len(src), flagOutput)
			return nil
		}).
			Flag(&flagCaps, "f", command.StringFlag(""),
				"Comma-separated capabilities").
			Flag(&flagOffset, "offset", command.Int64Flag(0),
				"Payload offset from the end of the host binary").
			Flag(&flagEntry, "entry", command.StringFlag(""),
				"Archive entry read as the script, implies archive-contains-script").
			Flag(nil, "arg", &flagArgs,
				"Synthetic argument following the program identity").
			Flag(&flagIdentity, "identity", command.StringFlag(""),
				"Program identity presented to the interpreter").
			Flag(&flagPackage, "package", command.StringFlag("main"),
				"Package clause of the generated file").
			Flag(&flagPreamble, "preamble", command.StringFlag(""),
				"Startup code invoking "+boot.NativeName+", overrides the default").
			Flag(&flagTaint, "taint", command.StringFlag("observe"),
				"Taint clearing policy, observe or parse").
			Flag(&flagTemplate, "template", command.StringFlag(""),
				"Template file overriding the default bootstrap template").
			Flag(&flagOutput, "o", command.StringFlag(""),
				"Output file, standard output if empty")
	}

	{
		var (
			flagHost    string
			flagOutput  string
			flagScript  string
			flagArchive string
		)

		c.NewCommand("pack", "Append a payload to a copy of a host binary", func(args []string) error {
			if len(args) != 0 {
				return usageError("pack takes no arguments")
			}
			if flagHost == "" {
				flagHost = env.Str("SHIMPACK_HOST")
			}
			if flagHost == "" {
				return usageError("host binary not specified")
			}
			if flagOutput == "" {
				return usageError("output file not specified")
			}

			var (
				offset int64
				err    error
			)
			switch {
			case flagScript != "" && flagArchive != "":
				return usageError("a host binary carries a single payload")
			case flagScript != "":
				offset, err = pack.Script(flagOutput, flagHost, flagScript)
			case flagArchive != "":
				offset, err = pack.Archive(flagOutput, flagHost, flagArchive)
			default:
				return usageError("payload not specified")
			}
			if err != nil {
				return err
			}

			msg.Verbosef("packed %s into %s", flagHost, flagOutput)
			_, err = fmt.Fprintln(out, offset)
			return err
		}).
			Flag(&flagHost, "host", command.StringFlag(""),
				"Host interpreter binary built with the generated bootstrap").
			Flag(&flagOutput, "o", command.StringFlag(""),
				"Output executable").
			Flag(&flagScript, "script", command.StringFlag(""),
				"Script appended to the host binary").
			Flag(&flagArchive, "archive", command.StringFlag(""),
				"Directory or zip archive appended to the host binary")
	}

	{
		var flagOffset int64
		c.NewCommand("inspect", "Locate the payload of a packed binary", func(args []string) error {
			if len(args) != 1 {
				return usageError("inspect requires exactly 1 argument")
			}

			info, err := pack.Inspect(args[0], flagOffset)
			if err != nil {
				return err
			}
			if _, err = fmt.Fprintf(out, "size:    %d\npayload: [%d, %d)\n", info.Size, info.Start, info.Size); err != nil {
				return err
			}
			if info.Entries == nil {
				return nil
			}
			if _, err = fmt.Fprintln(out, "entries:"); err != nil {
				return err
			}
			for _, name := range info.Entries {
				if _, err = fmt.Fprintln(out, "    "+name); err != nil {
					return err
				}
			}
			return nil
		}).
			Flag(&flagOffset, "offset", command.Int64Flag(0),
				"Payload offset from the end of the binary")
	}

	c.Command("template", "Print the default bootstrap template", func([]string) error {
		_, err := io.WriteString(out, shimgen.DefaultTemplate())
		return err
	})
	c.Command("help", "Show this help message", func([]string) error { c.PrintHelp(); return errSuccess })

	return c
}
