// Package observer provides conduit.Observer implementations for pipeline
// runs.
//
//   - LogObserver: structured logging of run lifecycle and emitted outputs
//     via zerolog.
//   - MemoryRunStore: keeps a record per run (output count, outcome,
//     timestamps) in memory, for monitoring and tests.
//
// Combine several with conduit.MultiObserver:
//
//	store := observer.NewMemoryRunStore()
//	opts := &conduit.RunOptions{
//	    Name:     "ingest",
//	    Observer: conduit.MultiObserver(observer.NewLogObserver(log), store),
//	}
package observer
