package driver

import (
	"sort"

	"ember/internal/ir"
	"ember/internal/symbols"
)

// Collect gathers the finalized symbols of reg into a Program sorted by
// name. Poisoned and unfinished entries are left out.
func Collect(reg *symbols.Registry) *ir.Program {
	prog := &ir.Program{}
	for _, ent := range reg.Entries() {
		switch sym := ent.Symbol().(type) {
		case *symbols.FinalizedFunction:
			prog.Functions = append(prog.Functions, sym.Fn)
		case *symbols.FinalizedStructure:
			prog.Structures = append(prog.Structures, sym.St)
		case *symbols.Implementation:
			prog.Implementations = append(prog.Implementations, sym.Impl)
		}
	}
	sort.Slice(prog.Functions, func(i, j int) bool { return prog.Functions[i].Name < prog.Functions[j].Name })
	sort.Slice(prog.Structures, func(i, j int) bool { return prog.Structures[i].Name < prog.Structures[j].Name })
	sort.Slice(prog.Implementations, func(i, j int) bool {
		return prog.Implementations[i].Name < prog.Implementations[j].Name
	})
	return prog
}
