/*
Package decomp is a declarative transformation engine for object graphs.

A transformation is a set of decompositions. Each one names a function Type.name and the
inputs (links) it needs: sibling rules or attributes of the same object (local links), every
object of a type in the graph (global links), the objects a reference points to (forward
links) or the objects pointing at this one (reverse links). The engine walks the subject
graph, computes the links and hands them to a leaf function implemented outside the engine,
in Go or in a worker process speaking the wire protocol.

# Concept

Decompositions are looked up by (type, name). A reference typed with the wildcard
"Object" is resolved on the runtime type of the object it reaches, so a rule set can
dispatch over an open set of types without the engine knowing them. When nothing
matches, the engine falls back to a zero-argument leaf function and finally to the raw
attribute of the same name.

Failures never lose context: the engine keeps an explicit stack of the rules, links and
subject objects being evaluated, and a failing leaf function adds its own frames, even
across a process boundary.

# Usage

	leaves := inproc.New().
		Register("Family_f", []string{"sons"}, func(_ context.Context, args []any) (any, error) {
			return args[0], nil
		})

	eng, err := decomp.New(leaves)
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	rs, _ := rules.NewBuilder("family").
		Decomp("Family", "f").Forward("sons", "Member", "name").
		Build()
	root, _ := yamlgraph.LoadFile("family.yaml")

	names, err := eng.Transform(context.Background(), rs, root)

Transformation failures are *diag.TransformError values; print them to get the full trace.

# Adapters

  - inproc: leaf functions registered as Go functions.
  - process: leaf functions served by a worker process (see package worker).
  - memory, yamlgraph: subject graphs built in code, from native values, or from YAML/JSON text.
  - http: a small HTTP front end for transformations.
*/
package decomp
