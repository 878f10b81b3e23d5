// Package config loads the newsroom settings from YAML, overlays environment
// variables and validates the result. It also turns a Config into the model
// generators and search tool a newsroom needs.
//
// A minimal file:
//
//	provider: ollama
//	model: llama3.1
//	step_budget: 10
//	retry:
//	  max_attempts: 3
//	  pause: 1s
//	search:
//	  enabled: true
package config
