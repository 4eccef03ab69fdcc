// Package config loads, validates and serves the phi3 service configuration.
//
// Configuration is layered; later sources override earlier ones:
//
//  1. Defaults (see defaults.go)
//  2. An optional YAML file
//  3. PHI3_SECTION_FIELD environment variables (e.g. PHI3_SERVER_PORT)
//  4. The positional port argument of the phi3 command
//
// Validation runs after every layer and reports all problems at once:
//
//	configuration validation failed with 2 errors:
//	  - server.port: port 70000 out of range 0-65535
//	  - engine.backend: invalid backend "gpt" (must be 'placeholder' or 'llamacpp')
//
// A minimal file selecting the llama.cpp backend:
//
//	server:
//	  port: 11434
//	engine:
//	  backend: llamacpp
//	  serialize: true
//	  llamacpp:
//	    model_path: /models/Phi-3-mini-128k-instruct-Q4_K_M.gguf
//
// The process-wide configuration is held behind Initialize and GetConfig.
// Watcher reloads it when the file changes; only the engine section is
// applied live, listener settings need a restart.
package config
