package decomp_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/decomp"
	"github.com/aretw0/decomp/pkg/adapters/inproc"
	"github.com/aretw0/decomp/pkg/adapters/yamlgraph"
	"github.com/aretw0/decomp/pkg/rules"
)

func Example() {
	root, err := yamlgraph.Load("family.yaml", []byte(`
cont:
  - $type: Family
    name: Smith
    sons:
      - {$type: Member, name: Abel}
      - {$type: Member, name: Cain}
`))
	if err != nil {
		panic(err)
	}

	rs, err := rules.LoadYAML("family.rules.yaml", []byte(`
decompositions:
  - function: Family.f
    links:
      - sons -> Member.name
      - name
`))
	if err != nil {
		panic(err)
	}

	leaves := inproc.New().
		Register("Family_f", []string{"sons", "name"}, func(_ context.Context, args []any) (any, error) {
			var names []string
			for _, n := range args[0].([]any) {
				names = append(names, n.(string))
			}
			return fmt.Sprintf("%s: %s", args[1], strings.Join(names, ", ")), nil
		})

	eng, err := decomp.New(leaves)
	if err != nil {
		panic(err)
	}
	defer eng.Close()

	out, err := eng.Transform(context.Background(), rs, root)
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: Smith: Abel, Cain
}
