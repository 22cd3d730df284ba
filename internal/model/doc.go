package model

// Package model defines the domain data structures shared by the conversion
// pipeline: requests, resolved sources, artifacts, progress state and the
// pipeline state enum. Errors that cross package boundaries live here too so
// that stages and the orchestrator agree on one taxonomy.
