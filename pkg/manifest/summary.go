package manifest

import "github.com/agentstation/mavroute/pkg/errors"

// Entry statuses used in summaries.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
)

// Outcome is the reportable form of an Entry.
type Outcome struct {
	Index  int    `json:"index" yaml:"index"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Status string `json:"status" yaml:"status"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Summary is the reportable form of a Result.
type Summary struct {
	Source   string    `json:"source" yaml:"source"`
	Accepted int       `json:"accepted" yaml:"accepted"`
	Rejected int       `json:"rejected" yaml:"rejected"`
	Entries  []Outcome `json:"entries" yaml:"entries"`

	result *Result
}

// Summarize reports every entry of r with its key or rejection reason.
func (r *Result) Summarize() Summary {
	s := Summary{Source: r.Source, Entries: make([]Outcome, 0, len(r.Entries)), result: r}
	for _, e := range r.Entries {
		o := Outcome{Index: e.Index, Name: e.Name}
		if e.OK() {
			o.Status = StatusOK
			o.Key = e.Endpoint.Key()
			s.Accepted++
		} else {
			o.Status = StatusRejected
			o.Reason = errors.Reason(e.Err)
			o.Detail = e.Err.Error()
			s.Rejected++
		}
		s.Entries = append(s.Entries, o)
	}
	return s
}

// Result returns the Result s was built from. It is nil for a decoded Summary.
func (s Summary) Result() *Result { return s.result }
