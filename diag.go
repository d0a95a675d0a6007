package assetbook

import "time"

// Step statuses reported in the payload diagnostics.
const (
	StepSuccess  = "success"
	StepDegraded = "degraded"
	StepFailed   = "failed"
)

// Step records one pipeline stage's outcome and duration.
type Step struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Elapsed int64  `json:"elapsed_ms"`
}

// Diagnostics collects the per-stage outcomes of a run, in pipeline order.
// The published payload always carries the complete list so an operator
// can see which stage underperformed without the run itself failing.
type Diagnostics struct {
	steps []Step
}

// Track starts timing a stage and returns the function that records its
// outcome. Typical use:
//
//	done := diags.Track("fetch")
//	...
//	done(StepDegraded, "2 symbols missed")
func (d *Diagnostics) Track(name string) func(status, detail string) {
	start := time.Now()
	return func(status, detail string) {
		d.steps = append(d.steps, Step{
			Name:    name,
			Status:  status,
			Detail:  detail,
			Elapsed: time.Since(start).Milliseconds(),
		})
	}
}

// Add records a stage outcome directly, with no timing.
func (d *Diagnostics) Add(name, status, detail string) {
	d.steps = append(d.steps, Step{Name: name, Status: status, Detail: detail})
}

// Steps returns the recorded steps in pipeline order.
func (d *Diagnostics) Steps() []Step {
	out := make([]Step, len(d.steps))
	copy(out, d.steps)
	return out
}

// Degraded reports whether any stage fell short of full success.
func (d *Diagnostics) Degraded() bool {
	for _, s := range d.steps {
		if s.Status != StepSuccess {
			return true
		}
	}
	return false
}

func (d *Diagnostics) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	steps := d.steps
	if steps == nil {
		steps = []Step{}
	}
	w.Append("steps", steps)
	return w.MarshalJSON()
}
