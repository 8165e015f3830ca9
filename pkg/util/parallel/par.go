package parallel

import (
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Par runs functions on a bounded number of goroutines and collects every
// error they return.
type Par struct {
	slots chan struct{}
	group sync.WaitGroup

	lk   sync.Mutex
	errs *multierror.Error
}

// NewPar creates a Par running at most maxParCount functions at a time.
// A non-positive count selects DefaultWorkers.
func NewPar(maxParCount int) *Par {
	if maxParCount <= 0 {
		maxParCount = DefaultWorkers()
	}
	return &Par{
		slots: make(chan struct{}, maxParCount),
	}
}

// Go schedules f, blocking while all slots are busy.
func (p *Par) Go(f func() error) {
	p.group.Add(1)
	p.slots <- struct{}{}

	go func() {
		defer func() {
			<-p.slots
			p.group.Done()
		}()

		if err := f(); err != nil {
			p.lk.Lock()
			p.errs = multierror.Append(p.errs, err)
			p.lk.Unlock()
		}
	}()
}

// Wait blocks until every scheduled function returned. The result is nil
// when none of them failed.
func (p *Par) Wait() error {
	p.group.Wait()

	p.lk.Lock()
	defer p.lk.Unlock()
	return p.errs.ErrorOrNil()
}

// DefaultWorkers is the pool size used when callers do not pick one.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}
