// Package session owns the search session lifecycle: a monotonic
// state machine from Created through Planning, Searching, Evaluating,
// and Ranked to a terminal Completed, Failed, or Cancelled state. The
// Runner drives sessions through the pipeline capabilities; the
// Registry tracks live sessions for observers.
package session
