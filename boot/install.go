package boot

import (
	"log"
	"os"
	"sync/atomic"

	"github.com/xyproto/env/v2"

	"shimpack.app/message"
)

// installed holds the [Context] created by Install.
var installed atomic.Pointer[Context]

// Install creates the process-wide [Context] from a generated [Config] and
// splices [os.Args]. Install is called from the init function of the generated bootstrap.
func Install(cfg *Config) {
	msg := message.New(log.New(log.Writer(), "shimpack: ", 0))
	msg.SwapVerbose(env.Bool("SHIMPACK_VERBOSE"))
	os.Args = install(direct{}, msg, cfg, os.Args)
}

func install(k syscallDispatcher, msg message.Msg, cfg *Config, argv []string) []string {
	c := newContext(k, msg, cfg)
	if !installed.CompareAndSwap(nil, c) {
		c.fatal(&StartupError{"install bootstrap", ErrReentrant})
		return argv
	}
	return c.Splice(argv)
}

// Installed returns the [Context] created by Install, or nil if Install was never called.
func Installed() *Context { return installed.Load() }
