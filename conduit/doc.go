// Package conduit provides composable, resource-safe streaming pipeline
// stages. A stage consumes a sequence of inputs, produces a sequence of
// outputs, may suspend on effects, and releases acquired resources exactly
// once no matter how the pipeline terminates (exhaustion, early downstream
// termination, or failure).
//
// A stage is a Step: a value with exactly one of five shapes (Emit, Await,
// Done, Suspend, Leftover; see Step). Drivers pull a step forward one shape
// at a time; there is no implicit parallelism and a continuation is never
// invoked twice for the same step.
//
// Build stages from plain functions:
//
//   - Stateful turns a (state, input) push function plus a close finalizer
//     into a conduit, threading state across inputs.
//   - WithResource is Stateful plus an owned resource: acquired lazily on
//     first input, released exactly once on every exit path via the scope
//     package.
//   - Sequence expresses "run a sink, inspect its result, decide what
//     happens next" loops as a single conduit.
//   - StatefulSource, ResourceSource, and StatefulSink build the pipeline
//     ends the same way.
//
// A stage may hand back an input it has not consumed; PushBack redelivers it
// as the next input through arbitrarily nested continuations. HasInput uses
// this to peek at upstream without consuming.
//
// Compose stages with Fuse and drive them with Run or Collect against an
// Iterator. Run installs a scope.Scope in the context so resource releases
// registered by WithResource and ResourceSource fire even when the consumer
// stops early or an effect fails:
//
//	lines := conduit.SliceIterator([]string{"a", "b"})
//	outs, _, err := conduit.Collect(ctx, lines, conduit.Map(parse), nil)
//
// Runs can be observed (structured logging, in-memory records) by passing
// RunOptions with an Observer; see the observer package.
package conduit
