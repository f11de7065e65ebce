// Package memory holds per-chat conversation memory and its primitive form.
//
// A Conversation is an append-only list of human and assistant turns plus the
// two slot names ("history" and "question" by default) that prompts use to
// address it. ToPrimitive and FromPrimitive convert a Conversation to and from
// a tree built only of maps, slices and strings so that it can be stored by
// systems that cannot decode arbitrary object graphs.
//
// The primitive form is an explicit tagged schema. Every message carries a
// "classname" and a "type" tag ("human" or "ai"). Unknown tags are rejected
// with ErrUnknownMessageType instead of being skipped.
package memory
