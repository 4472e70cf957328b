package core

import "time"

// Chat outcomes
const (
	ChatAnswered   = "answered"
	ChatRedirected = "redirected"
	ChatNoAnswer   = "no_answer"
	ChatFailed     = "failed"
)

// Metrics records application counters.
type Metrics interface {
	ObserveProviderCall(provider string, took time.Duration, err error)
	IncChatOutcome(outcome string)
	IncDocumentProcessed(kind string, aiProcessed bool)
}

type nopMetrics struct{}

func NewNopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) ObserveProviderCall(string, time.Duration, error) {}
func (nopMetrics) IncChatOutcome(string)                            {}
func (nopMetrics) IncDocumentProcessed(string, bool)                {}
