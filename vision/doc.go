// Package vision contains concrete Vision implementations and the shared
// detection response parsing. The Vision port itself lives in the core
// package. Import github.com/roverkit/seeker/core and depend on
// core.Vision in your code; select a provider (an LLM backend under
// vision/openai or vision/anthropic, or the simulator below) at wiring
// time, optionally hardened by the breaker/rate-limit Service.
package vision
