/*
Package diag defines the diagnostic stack recorded while a transformation is evaluated.

Every evaluation step (a decomposition, or one of its links) pushes a StackFrame before it
runs and pops it only when it returns normally. When a step fails the frames are left in
place, so the stack captured at that moment, outermost first, is the trace handed back to
the caller inside a TransformError.

Frames produced by leaf functions running in another runtime are ordinary frames of kind
FrameExternal. They carry the language that produced them and the locations reported by
that runtime, so one uniform trace can be rendered regardless of where each frame came from.
*/
package diag
