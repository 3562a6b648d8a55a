package types

// Receiver consumes the streamed answer of one question. Implementations
// bridge the answer stream onto a transport such as SSE.
type Receiver interface {
	// OnDelta is called for every streamed answer fragment. Returning an
	// error aborts the stream.
	OnDelta(delta string) error
	// OnDone is called once after the final fragment with the assembled
	// answer and its token accounting.
	OnDone(answer string, promptTokens, answerTokens int)
	// OnError terminates the stream. OnDone is not called afterwards.
	OnError(err error)
}
