package atomicfloat

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFloat64Add(t *testing.T) {
	Convey("When Add is called", t, func() {
		Convey("When multiple writers add to the float value concurrently", func() {
			f := NewFloat64(0)
			numOps := 3000
			numWriters := 200

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(numWriters)
			adder := func() {
				<-start
				for i := 0; i < numOps; i++ {
					for succeeded := false; !succeeded; _, succeeded = f.Add(1.0) {
					}
				}
				wg.Done()
			}

			for i := 0; i < numWriters; i++ {
				go adder()
			}

			time.Sleep(time.Millisecond * 10)
			close(start)
			wg.Wait()
			So(f.Load(), ShouldEqual, float64(numOps*numWriters))
		})
	})
}

func TestPeakTracker(t *testing.T) {
	Convey("Given a PeakTracker", t, func() {
		pt := NewPeakTracker()

		Convey("It tracks the largest magnitude observed, ignoring sign", func() {
			pt.Observe(3.5)
			pt.Observe(-7.2)
			pt.Observe(1.0)
			So(pt.Peak(), ShouldEqual, 7.2)
		})

		Convey("Concurrent observers never lose the true maximum", func() {
			wg := sync.WaitGroup{}
			for i := 1; i <= 500; i++ {
				i := i
				wg.Add(1)
				go func() {
					defer wg.Done()
					pt.Observe(float64(i))
				}()
			}
			wg.Wait()
			So(pt.Peak(), ShouldEqual, float64(500))
		})
	})
}
