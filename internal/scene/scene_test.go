package scene_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/partext/internal/config"
	"github.com/san-kum/partext/internal/glyph"
	"github.com/san-kum/partext/internal/scene"
)

// stripes lights a 4x4 block per rune so point counts track text length.
// A non-nil hold blocks every pass until it is closed.
type stripes struct {
	calls atomic.Int32
	fail  atomic.Bool
	hold  chan struct{}
}

func (s *stripes) Rasterize(text, family string, sizePx float64) (*glyph.Coverage, error) {
	s.calls.Add(1)
	if s.hold != nil {
		<-s.hold
	}
	if s.fail.Load() {
		return nil, errors.New("rasterizer offline")
	}
	w := 4 * len([]rune(text))
	cov := &glyph.Coverage{Width: w, Height: 4, Alpha: make([]uint8, w*4)}
	for i := range cov.Alpha {
		cov.Alpha[i] = 255
	}
	return cov, nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Capacity = 2000
	cfg.Seed = 11
	cfg.ApplyDefaults()
	return cfg
}

var _ = Describe("Element", func() {
	var (
		raster *stripes
		elem   *scene.Element
	)

	BeforeEach(func() {
		raster = &stripes{}
		var err error
		elem, err = scene.NewElement(config.ElementConfig{
			Name: "label", Text: "AB", Density: 6, Color: "#ff8000", SpeedFactor: 3,
		}, raster, scene.Options{Capacity: 500, Seed: 3}, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("applies element defaults", func() {
		Expect(elem.Style().Size).To(Equal(config.DefaultSize))
		Expect(elem.Style().FontFamily).To(Equal("Tenor Sans"))
		Expect(elem.Profile().HighSpeed()).To(BeTrue())
		Expect(elem.Pool().Capacity()).To(Equal(500))
	})

	It("rejects invalid configs", func() {
		_, err := scene.NewElement(config.ElementConfig{Color: "orange"}, raster, scene.Options{Capacity: 10}, 0)
		Expect(err).To(MatchError(config.ErrInvalid))
	})

	It("does not advance before the first pass", func() {
		Expect(elem.Dirty()).To(BeTrue())
		Expect(elem.Tick(0)).To(BeFalse())
		Expect(elem.Targets()).To(BeNil())
	})

	It("publishes a sampled buffer", func() {
		Expect(elem.Resample()).To(Succeed())
		Expect(elem.Dirty()).To(BeFalse())
		Expect(elem.Tick(0)).To(BeTrue())

		// 8x4 lit cells at stride 1, five points each
		Expect(elem.LastResult().Count).To(Equal(8 * 4 * 5))
		Expect(elem.Targets().Count).To(Equal(8 * 4 * 5))
	})

	It("only marks real text changes dirty", func() {
		Expect(elem.Resample()).To(Succeed())
		elem.SetText("AB")
		Expect(elem.Dirty()).To(BeFalse())
		elem.SetText("ABC")
		Expect(elem.Dirty()).To(BeTrue())
		Expect(elem.Text()).To(Equal("ABC"))
	})

	It("keeps previous targets when sampling fails", func() {
		Expect(elem.Resample()).To(Succeed())
		elem.Tick(0)
		before := elem.Targets()

		raster.fail.Store(true)
		elem.SetText("XYZ")
		Expect(elem.Resample()).NotTo(Succeed())
		Expect(elem.Dirty()).To(BeTrue())

		elem.Tick(1.0 / 60)
		Expect(elem.Targets()).To(BeIdenticalTo(before))
		Expect(elem.Targets().Count).To(Equal(8 * 4 * 5))
	})

	It("converges toward its targets", func() {
		Expect(elem.Resample()).To(Succeed())
		for i := 0; i < 120; i++ {
			elem.Tick(float64(i) / 60)
		}
		pool, targets := elem.Pool(), elem.Targets()
		for i := 0; i < targets.Count; i++ {
			pos, _ := targets.Target(i)
			x, y, z := pool.Position(i)
			Expect(math.Abs(float64(x - pos[0]))).To(BeNumerically("<", 0.01))
			Expect(math.Abs(float64(y - pos[1]))).To(BeNumerically("<", 0.01))
			Expect(math.Abs(float64(z - pos[2]))).To(BeNumerically("<", 0.01))
		}
		Expect(pool.ParkedCount()).To(Equal(500 - targets.Count))
	})
})

var _ = Describe("Scene", func() {
	var (
		raster *stripes
		board  *scene.Scene
	)

	BeforeEach(func() {
		raster = &stripes{}
		var err error
		board, err = scene.New(testConfig(), raster)
		Expect(err).NotTo(HaveOccurred())
	})

	It("binds the timer to the countdown", func() {
		timer := board.Element("timer")
		Expect(timer).NotTo(BeNil())
		Expect(timer.Text()).To(Equal("05:00"))
		Expect(board.Element("missing")).To(BeNil())
	})

	It("samples every element on the first tick", func() {
		board.Tick(0)
		for _, e := range board.Elements {
			Expect(e.Dirty()).To(BeFalse(), e.Name())
			Expect(e.Targets()).NotTo(BeNil(), e.Name())
		}
		Expect(raster.calls.Load()).To(BeEquivalentTo(3))
	})

	It("resamples only the timer when a second passes", func() {
		Expect(board.Prime()).To(Succeed())
		board.Tick(0.5)
		Expect(raster.calls.Load()).To(BeEquivalentTo(3))

		board.Tick(1.2)
		Expect(board.Element("timer").Text()).To(Equal("04:59"))
		Expect(raster.calls.Load()).To(BeEquivalentTo(4))
		Expect(board.Element("title").Text()).To(Equal("NEXT SHOW"))
	})

	It("holds at zero once the countdown finishes", func() {
		board.Tick(301)
		Expect(board.Countdown.Finished()).To(BeTrue())
		Expect(board.Element("timer").Text()).To(Equal("00:00"))
		calls := raster.calls.Load()
		board.Tick(400)
		Expect(raster.calls.Load()).To(Equal(calls))
	})

	It("samples in the background when a resampler is attached", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rs := scene.NewResampler()
		rs.Start(ctx)
		defer rs.Close()
		board.AttachResampler(rs)

		board.Tick(0)
		Eventually(func() bool {
			for _, e := range board.Elements {
				if e.Dirty() {
					return false
				}
			}
			return true
		}).WithTimeout(2 * time.Second).Should(BeTrue())

		board.Tick(1.0 / 60)
		for _, e := range board.Elements {
			Expect(e.Targets()).NotTo(BeNil(), e.Name())
		}
	})

	It("requests one pass per text change while a pass is running", func() {
		Expect(board.Prime()).To(Succeed())
		raster.hold = make(chan struct{})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rs := scene.NewResampler()
		rs.Start(ctx)
		defer rs.Close()
		board.AttachResampler(rs)

		board.Tick(1.2)
		Eventually(raster.calls.Load).WithTimeout(2 * time.Second).Should(BeEquivalentTo(4))
		for i := 1; i <= 30; i++ {
			board.Tick(1.2 + float64(i)/60)
		}
		close(raster.hold)

		timer := board.Element("timer")
		Eventually(timer.Dirty).WithTimeout(2 * time.Second).Should(BeFalse())
		Consistently(raster.calls.Load).WithDuration(100 * time.Millisecond).Should(BeEquivalentTo(4))
		Expect(timer.Targets()).NotTo(BeNil())
	})
})

var _ = Describe("Resampler", func() {
	It("coalesces repeated requests", func() {
		raster := &stripes{}
		elem, err := scene.NewElement(config.ElementConfig{Name: "x", Text: "A"}, raster, scene.Options{Capacity: 100, Seed: 1}, 0)
		Expect(err).NotTo(HaveOccurred())

		rs := scene.NewResampler()
		rs.Request(elem)
		rs.Request(elem)
		rs.Request(elem)
		Expect(rs.Pending()).To(Equal(1))

		rs.Start(context.Background())
		Eventually(elem.Dirty).WithTimeout(2 * time.Second).Should(BeFalse())
		Expect(raster.calls.Load()).To(BeEquivalentTo(1))

		rs.Close()
		rs.Close()
	})

	It("does not block readers during a pass", func() {
		raster := &stripes{}
		elem, err := scene.NewElement(config.ElementConfig{Name: "x", Text: "A"}, raster, scene.Options{Capacity: 100, Seed: 1}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(elem.Resample()).To(Succeed())
		first := elem.LastResult()

		raster.hold = make(chan struct{})
		rs := scene.NewResampler()
		rs.Start(context.Background())
		defer rs.Close()

		elem.SetText("AB")
		rs.Request(elem)
		Eventually(raster.calls.Load).WithTimeout(2 * time.Second).Should(BeEquivalentTo(2))

		read := make(chan glyph.Result, 1)
		go func() { read <- elem.LastResult() }()
		Eventually(read).WithTimeout(100 * time.Millisecond).Should(Receive(Equal(first)))
		Expect(elem.Text()).To(Equal("AB"))
		Expect(elem.Dirty()).To(BeTrue())

		close(raster.hold)
		Eventually(elem.Dirty).WithTimeout(2 * time.Second).Should(BeFalse())
		Expect(elem.LastResult().Count).To(BeNumerically(">", first.Count))
	})

	It("stops with its context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		rs := scene.NewResampler()
		rs.Start(ctx)
		cancel()
		done := make(chan struct{})
		go func() {
			rs.Close()
			close(done)
		}()
		Eventually(done).WithTimeout(time.Second).Should(BeClosed())
	})
})

var _ = Describe("Motion", func() {
	It("sways the board", func() {
		rx, ry := scene.Sway(0)
		Expect(rx).To(BeNumerically("~", 0.08, 1e-12))
		Expect(ry).To(BeNumerically("~", 0, 1e-12))

		rx, ry = scene.Sway(10)
		Expect(math.Abs(rx)).To(BeNumerically("<=", 0.08))
		Expect(math.Abs(ry)).To(BeNumerically("<=", 0.15))
	})

	It("orbits the camera in front of the board", func() {
		cam := config.DefaultCamera()
		x, y, z := scene.CameraRig(cam, 0)
		Expect(x).To(BeNumerically("~", 0, 1e-12))
		Expect(y).To(BeNumerically("~", 0, 1e-12))
		Expect(z).To(BeNumerically("~", 55, 1e-12))

		for _, t := range []float64{1, 7.5, 60, 600} {
			x, y, z = scene.CameraRig(cam, t)
			Expect(math.Abs(x)).To(BeNumerically("<=", 20))
			Expect(math.Abs(y)).To(BeNumerically("<=", 5))
			Expect(z).To(BeNumerically(">=", 45))
			Expect(z).To(BeNumerically("<=", 55))
		}
	})
})
