package util

import (
	"runtime"
	"strconv"
	"strings"
)

// skippedFramePrefixes are function name prefixes hidden from handler panic
// traces. They belong to the runtime and to the dispatch machinery rather
// than to user code.
var skippedFramePrefixes = []string{
	"runtime.",
	"reflect.",
	"github.com/hupe1980/hops/component.(*Handler)",
	"github.com/hupe1980/hops/solve.(*Engine)",
	"github.com/hupe1980/hops/internal/util.TrimmedStack",
}

// TrimmedStack returns the calling goroutine's stack as "function\n\tfile:line"
// pairs, skipping frames of the runtime and the dispatcher. Walking stops at
// the first frame whose function name has the prefix boundary, so frames of
// the caller's caller are not reported. An empty boundary walks the whole
// stack. It is meant to be called from a deferred recover.
func TrimmedStack(skip int, boundary string) string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		f, more := frames.Next()
		if boundary != "" && strings.HasPrefix(f.Function, boundary) {
			break
		}
		if !skipFrame(f.Function) {
			b.WriteString(f.Function)
			b.WriteString("\n\t")
			b.WriteString(f.File)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(f.Line))
			b.WriteByte('\n')
		}
		if !more {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func skipFrame(fn string) bool {
	if fn == "" {
		return true
	}
	for _, p := range skippedFramePrefixes {
		if strings.HasPrefix(fn, p) {
			return true
		}
	}
	return false
}
