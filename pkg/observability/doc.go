/*
Package observability provides lifecycle hooks and Prometheus metrics for transformations.

The engine never logs or prints on its own. Hosts that want visibility register
LifecycleHooks, and Metrics offers ready-made hooks plus a Runner decorator that records
leaf-function calls.
*/
package observability
