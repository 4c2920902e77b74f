// Package answer turns retrieved passages into a synthesized reply.
//
// The Synthesizer sends the passages and the question to a chat model under
// a persona system prompt and returns a core.Answer whose text is always
// displayable, including when the call fails.
package answer
