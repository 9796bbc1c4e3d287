package progress

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerDrawsBar(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, false)

	p.SetTotal(4)
	p.Increment()
	p.Increment()
	p.Finish()

	assert.Equal(t, 0.5, p.fraction())
	assert.Contains(t, out.String(), "2/4 articles")
}

func TestQuietTrackerOnlyCounts(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, true)

	p.StartPhase("collecting")
	p.UpdatePhase("정치")
	p.StopPhase()
	p.SetTotal(2)
	p.Increment()
	p.Finish()

	assert.Empty(t, out.String())
	assert.Zero(t, Quiet().fraction())
	assert.Equal(t, 0.5, p.fraction())
}

func TestTrackerConcurrentIncrement(t *testing.T) {
	p := Quiet()
	p.SetTotal(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1.0, p.fraction())
}
