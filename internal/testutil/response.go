package testutil

import (
	"encoding/json"
	"strconv"
	"sync/atomic"
)

// Envelope is the decoded shape of a solve response.
type Envelope struct {
	Values []struct {
		ParamName string `json:"ParamName"`
		InnerTree map[string][]struct {
			Type string `json:"type"`
			Data string `json:"data"`
		} `json:"InnerTree"`
	} `json:"values"`
	Errors []string `json:"errors"`
}

// DecodeEnvelope parses a solve response body.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(body, &env)
	return env, err
}

// Data returns the data strings of the first branch of every output value, in order.
func (e Envelope) Data() [][]string {
	out := make([][]string, 0, len(e.Values))
	for _, v := range e.Values {
		var data []string
		for _, item := range v.InnerTree["{0}"] {
			data = append(data, item.Data)
		}
		out = append(out, data)
	}
	return out
}

// Numbers returns the first number of every output value, in order.
// Missing or unparsable values yield 0 and ok=false.
func (e Envelope) Numbers() ([]float64, bool) {
	ok := true
	out := make([]float64, 0, len(e.Values))
	for _, data := range e.Data() {
		if len(data) == 0 {
			out = append(out, 0)
			ok = false
			continue
		}
		f, err := strconv.ParseFloat(data[0], 64)
		if err != nil {
			ok = false
		}
		out = append(out, f)
	}
	return out, ok
}

// Counter counts handler invocations. It is safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

// Inc records one invocation.
func (c *Counter) Inc() { c.n.Add(1) }

// Count returns the number of recorded invocations.
func (c *Counter) Count() int { return int(c.n.Load()) }
