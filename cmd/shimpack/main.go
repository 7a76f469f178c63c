// The shimpack command builds self-contained interpreter executables.
package main

import (
	"errors"
	"log"
	"os"

	"github.com/xyproto/env/v2"

	"shimpack.app/message"
)

var errSuccess = errors.New("success")

// usageError is returned for an invalid combination of arguments.
type usageError string

func (e usageError) Error() string   { return string(e) }
func (e usageError) Message() string { return string(e) }

func main() {
	log.SetPrefix("shimpack: ")
	log.SetFlags(0)
	msg := message.New(log.Default())
	msg.SwapVerbose(env.Bool("SHIMPACK_VERBOSE"))

	buildCommand(msg, os.Stdout).MustParse(os.Args[1:], func(err error) {
		msg.Verbosef("command returned %v", err)
		if errors.Is(err, errSuccess) {
			msg.BeforeExit()
			os.Exit(0)
		}

		if m, ok := message.GetMessage(err); ok {
			log.Print(m)
		} else {
			log.Println(err)
		}
		msg.BeforeExit()
	})
	msg.BeforeExit()
}
