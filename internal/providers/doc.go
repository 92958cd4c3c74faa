// Package providers is the model invocation gateway.
//
// A [Gateway] maps the prefix of a "provider/model" name to an [Invoker]
// and performs exactly one request per [Gateway.Invoke], bounded by a
// timeout. Built-in invokers cover OpenAI, Anthropic, Gemini and Ollama;
// others are added with [Gateway.Register].
//
// Every failure surfaces as a [*ProviderError]. The caller's API key is
// passed per call, never stored on an invoker, and scrubbed from messages.
package providers
