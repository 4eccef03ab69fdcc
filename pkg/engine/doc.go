// Package engine provides the completion backends behind POST /completion.
//
// The default Placeholder engine answers instantly with a fixed prefix followed
// by the prompt. LlamaCpp runs a local llama.cpp binary per request. Wrappers
// add behavior without changing the Engine contract:
//
//	e, err := engine.New(cfg.Engine, logger) // backend + Serialized + Timeout
//	if err != nil {
//	    return err
//	}
//	live := engine.NewSwappable(e)
//	// later, on configuration reload:
//	live.Swap(newEngine)
package engine
