// phi3 serves text completions over a minimal HTTP/1.1 subset.
//
// It answers exactly two routes on raw TCP connections, one request per
// connection:
//
//	GET  /health      -> {"status":"healthy"}
//	POST /completion  -> {"response":"..."} for the "prompt" field of the body
//
// Usage:
//
//	# Listen on the default port 11434
//	phi3
//
//	# Listen on port 8080
//	phi3 8080
//
//	# Load a configuration file
//	phi3 --config /etc/phi3/config.yaml
//
//	# Inspect the audit trail
//	phi3 audit list --limit 20 --output json
package main

func main() {
	Execute()
}
