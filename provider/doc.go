// Package provider holds the language-model fallback chain.
//
// A Registry lists providers sorted by priority. Each provider is enabled when
// its credential is present, and availability is re-evaluated on every call.
// The Orchestrator tries enabled providers in order. Quota errors are retried
// with linear backoff for providers configured with QuotaRetries. Any other
// failure moves on to the next provider. When nothing answers, the result
// names MockName and carries no text, and the caller produces the fallback
// response itself.
//
// Credentials come from the environment, a YAML file that can be watched for
// changes, or a chain of both.
package provider
