// Package config provides a stage registry and human-readable pipeline
// configuration.
//
// Register conduits by name, then define pipelines in YAML (or structs) that
// reference those names and optional modifiers (timeout, retry):
//
//	name: my-pipeline
//	stages:
//	  - fetch
//	  - name: parse
//	    timeout: 60s
//	    retry: fixed
//	    initial: 5s
//	    max_attempts: 5
//	  - validate
//
// Registered stages are type-erased (conduit.Erase) so any chain of them can
// be fused in config order. Build a pipeline with BuildPipeline(registry,
// config) and run it with Pipeline.Run, or drive the fused conduit yourself
// with the conduit package's Run/Collect.
package config
