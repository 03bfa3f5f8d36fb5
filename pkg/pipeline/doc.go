// Package pipeline assembles independently authored, typed steps into a
// validated pipeline exposed as a single callable.
//
// A Step owns a callable, a frozen signature and bookkeeping metadata
// (authors, dependencies, referenced models). Building a Pipeline verifies
// at construction time that each step's declared output can legally feed the
// next step's declared input, derives the delivery mode for every adjacent
// pair, and builds the composite callable that threads one invocation
// through all steps in order. Construction is all-or-nothing: any signature
// or composability failure aborts it and no partial pipeline is ever
// produced.
//
// A second, lighter pass reconciles the steps' declared third-party
// dependencies and interpreter-version hints into one pipeline-level
// dependency manifest. Conflicts there are never fatal; they surface as
// warnings attached to the manifest.
package pipeline
