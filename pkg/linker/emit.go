package linker

import (
	"strings"

	"github.com/coldog/jsbld/pkg/compiler"
)

// Emit generates the bundle program for c. The program evaluates to the
// entry module's exports. Output depends only on the chunk's contents.
func Emit(c *Chunk) string {
	var w strings.Builder
	w.WriteString(header)
	writeFiles(&w, c.Modules)
	w.WriteString(runtime)
	writeStart(&w, c.Entry.ID)
	w.WriteString(footer)
	return w.String()
}

func writeFiles(w *strings.Builder, modules []*compiler.Module) {
	for _, m := range modules {
		w.WriteString(compiler.Quote(m.ID))
		w.WriteString(factoryHead)
		w.WriteString(m.Source)
		w.WriteString(factoryTail)
	}
}

// writeStart runs the entry through the loader so it is cached like any
// other module and executes inside its own function scope.
func writeStart(w *strings.Builder, entry string) {
	w.WriteString("return " + loaderName + "(" + compiler.Quote(entry) + ");\n")
}
