// Package rag implements the answer chain of the bot.
//
// A Pipeline retrieves the most relevant knowledge-base chunks for a
// question, renders them together with the conversation history into a
// system prompt, calls the chat model and records the exchange in memory.
//
// A Router sits in front of one or more chains. It asks a classifier model
// which destination suits the question and falls back to a default chain when
// the answer names nothing it knows.
//
// Every failure of a chain wraps ErrPipelineFailure:
//
//	answer, err := chain.Answer(ctx, question, mem)
//	if errors.Is(err, rag.ErrPipelineFailure) {
//		// retry or report
//	}
package rag
