/*
Package model defines the subject graph a transformation is evaluated against.

ObjectModel is the capability interface every loader implements. CenteredModel pairs a node
with the graph it belongs to and provides the relative queries the engine needs: forward
navigation (Successors), reverse navigation (Predecessors) and whole-graph traversal
(Reachable).

Identity is carried by ObjectModel.ID. Loaders must hand out the same node value for the same
underlying datum, and every traversal here deduplicates by ID, never by value.
*/
package model
