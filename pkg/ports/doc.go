/*
Package ports defines the driven ports (interfaces) of the decomp engine.

These interfaces decouple the evaluation engine from where leaf functions actually run,
allowing the same rule set to be evaluated against Go functions registered in-process or
against functions hosted by a worker process in another runtime.

# Key Interfaces

  - Runner: executes leaf (external) functions and reports their failures as stack frames.
  - SessionScoped: optional capability of runners that keep per-transformation state.

The package also holds the error taxonomy shared by engine and runners.
*/
package ports
