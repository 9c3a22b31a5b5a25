package display

import (
	"fmt"
	"strings"

	"github.com/gookit/color"

	"github.com/dbsmedya/intersync/internal/registry"
)

// Plan prints the computed processing and deletion orders with each
// type's dependencies, so operators can inspect ordering before a run.
func (r *Renderer) Plan(reg *registry.Registry) error {
	order, err := reg.ProcessingOrder()
	if err != nil {
		return err
	}
	reverse, err := reg.ReverseOrder()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%s\n", color.Bold.Sprint("Processing order (create/update):"))
	for i, id := range order {
		desc, _ := reg.Get(id)
		deps := desc.Dependencies()
		if len(deps) == 0 {
			fmt.Fprintf(r.out, "  %2d. %s\n", i+1, id)
			continue
		}
		fmt.Fprintf(r.out, "  %2d. %s  (after %s)\n", i+1, id, strings.Join(deps, ", "))
	}

	fmt.Fprintf(r.out, "\n%s\n", color.Bold.Sprint("Deletion order:"))
	for i, id := range reverse {
		fmt.Fprintf(r.out, "  %2d. %s\n", i+1, id)
	}

	return nil
}
