// Package compose implements the type-directed step composition engine.
//
// A step declares a signature: an ordered list of required parameters and a
// return type, each described by a TypeDescriptor. Given two adjacent
// signatures, Check decides whether the producer's result can legally feed
// the consumer and, if so, how it is delivered: either passed unchanged as
// the consumer's sole argument (whole-value), or unpacked positionally into
// the consumer's required arguments (splat). Compose then builds a single
// callable that threads one invocation through an ordered list of steps,
// applying the delivery mode recorded for each adjacent pair.
//
// Everything in this package is a pure function of its inputs: composability
// is decided once, at construction time, from declared descriptors only.
// No runtime value is ever inspected beyond the tuple unpacking that splat
// delivery requires.
package compose
