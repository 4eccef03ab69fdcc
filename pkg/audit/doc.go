// Package audit keeps a trail of dispatched requests.
//
// Every request that reaches the dispatcher produces one Record: route, status,
// sizes, engine and duration, plus a SHA-256 of the prompt. Prompt and response
// text are never stored.
//
// Records flow through a Recorder, which queues them on a bounded channel and
// stores them from a single background goroutine:
//
//	store, err := storage.New(&cfg.Audit)
//	if err != nil {
//	    return err
//	}
//	rec := audit.NewRecorder(store, &cfg.Audit, collector)
//	defer store.Close()
//	defer rec.Close()
//
// Storage backends live in the storage subpackage; age and count based pruning
// lives in retention.
package audit
