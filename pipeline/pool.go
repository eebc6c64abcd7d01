package pipeline

import (
	"fmt"
	"time"

	"github.com/intel/hexl-fpga-sub001/rlwe"
	"github.com/intel/hexl-fpga-sub001/utils/concurrency"
)

// Instance is a slot of a [Pool]: it runs one pipeline at a time on the
// tables of the shared [Context] and records the duration of each run.
type Instance struct {
	*Context
	ID        int
	Durations []time.Duration
}

// Pool runs independent pipelines concurrently on the same read-only [Context],
// with at most one pipeline per [Instance] at a time.
type Pool struct {
	ctx       *Context
	instances []*Instance
	rm        *concurrency.ResourceManager[*Instance]
}

// NewPool creates a [Pool] of n instances sharing ctx.
func NewPool(ctx *Context, n int) (*Pool, error) {

	if n < 1 {
		return nil, fmt.Errorf("cannot NewPool: invalid number of instances %d", n)
	}

	instances := make([]*Instance, n)
	for i := range instances {
		instances[i] = &Instance{Context: ctx, ID: i}
	}

	return &Pool{
		ctx:       ctx,
		instances: instances,
		rm:        concurrency.NewResourceManager(instances),
	}, nil
}

// Size returns the number of instances of the pool.
func (p *Pool) Size() int {
	return len(p.instances)
}

// Instances returns the instances of the pool.
func (p *Pool) Instances() []*Instance {
	return p.instances
}

// Run runs task on the first available instance and records its duration.
func (p *Pool) Run(task func(inst *Instance) error) {
	p.rm.Run(func(inst *Instance) (err error) {
		start := time.Now()
		err = task(inst)
		inst.Durations = append(inst.Durations, time.Since(start))
		return
	})
}

// Wait waits until all the tasks have returned and returns the first error encountered.
func (p *Pool) Wait() error {
	return p.rm.Wait()
}

// KeySwitch evaluates [Context.KeySwitch] on every input concurrently.
func (p *Pool) KeySwitch(inputs []HostPoly, key *rlwe.SwitchingKey) (out [][2]HostPoly, err error) {

	out = make([][2]HostPoly, len(inputs))

	for i := range inputs {
		p.Run(func(inst *Instance) (err error) {
			out[i], err = inst.KeySwitch(inputs[i], key)
			return
		})
	}

	if err = p.Wait(); err != nil {
		return nil, fmt.Errorf("cannot KeySwitch: %w", err)
	}

	return
}

// Tensor evaluates [Context.Tensor] on every pair of inputs concurrently.
func (p *Pool) Tensor(a, b [][2]HostPoly) (out [][3]HostPoly, err error) {

	if len(a) != len(b) {
		return nil, fmt.Errorf("cannot Tensor: len(a)=%d != len(b)=%d", len(a), len(b))
	}

	out = make([][3]HostPoly, len(a))

	for i := range a {
		p.Run(func(inst *Instance) (err error) {
			out[i], err = inst.Tensor(a[i], b[i])
			return
		})
	}

	if err = p.Wait(); err != nil {
		return nil, fmt.Errorf("cannot Tensor: %w", err)
	}

	return
}

// Durations returns the durations recorded by all the instances, in seconds.
// It must not be called while tasks are running.
func (p *Pool) Durations() (d []float64) {
	for _, inst := range p.instances {
		for _, x := range inst.Durations {
			d = append(d, x.Seconds())
		}
	}
	return
}
