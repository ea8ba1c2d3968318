package motor_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hybridsim/internal/combustion"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/motor"
	"github.com/san-kum/hybridsim/internal/nitrous"
)

var _ = Describe("Firing scenarios", func() {
	var (
		table  *combustion.Table
		ztable *nitrous.CompressibilityTable
		cfg    motor.Config
	)

	BeforeEach(func() {
		var err error
		table, err = combustion.LoadDefaultTable()
		Expect(err).NotTo(HaveOccurred())
		ztable, err = nitrous.LoadDefaultCompressibility()
		Expect(err).NotTo(HaveOccurred())
		cfg = motor.DefaultConfig()
	})

	fire := func() *motor.Result {
		sim, err := motor.New(cfg, table, ztable)
		Expect(err).NotTo(HaveOccurred())
		result, err := sim.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	firstVapourRecord := func(r *motor.Result) (hybrid.StepRecord, bool) {
		for _, rec := range r.Records {
			if rec.Phase == hybrid.PhaseVapor {
				return rec, true
			}
		}
		return hybrid.StepRecord{}, false
	}

	Context("with the nominal Pulsar motor", func() {
		var result *motor.Result

		BeforeEach(func() {
			result = fire()
		})

		It("starts from ambient chamber pressure", func() {
			Expect(result.Records[0].ChamberPressure).To(Equal(101325.0))
			Expect(result.Records[0].Thrust).To(BeZero())
		})

		It("passes through liquid depletion into vapour blowdown", func() {
			rec, ok := firstVapourRecord(result)
			Expect(ok).To(BeTrue())
			Expect(rec.Time).To(BeNumerically("~", 4.16, 0.3))
			Expect(rec.LiquidMass).To(BeZero())
			Expect(result.Snapshot).NotTo(BeNil())
			Expect(result.Snapshot.Gamma).To(Equal(nitrous.VaporGamma))
		})

		It("ends normally when the vapour is spent", func() {
			Expect(result.Outcome).To(Equal(hybrid.OutcomeVaporDepleted))
			Expect(errors.Is(result.Cause, hybrid.ErrConvergence)).To(BeTrue())
			Expect(result.Time).To(BeNumerically("~", 8.5, 0.4))
		})

		It("produces a plausible thrust curve", func() {
			peak := 0.0
			for _, rec := range result.Records {
				peak = max(peak, rec.Thrust)
			}
			Expect(peak).To(BeNumerically("~", 2224, 150))
		})

		It("keeps thrust non-negative while the chamber is above ambient", func() {
			for _, rec := range result.Records {
				if rec.ChamberPressure > cfg.ExternalPressure {
					Expect(rec.Thrust).To(BeNumerically(">=", 0), "t=%.2f", rec.Time)
				}
			}
		})

		It("flags the startup flux excursion without stopping", func() {
			Expect(result.FluxWarnings).To(BeNumerically(">=", 1))
			Expect(result.Records[1].OxidizerFlux).To(BeNumerically(">", cfg.MaxFlux))
		})
	})

	Context("with a Kv valve model", func() {
		It("still blows down to vapour depletion", func() {
			cfg.Valve = hybrid.ValveKv
			result := fire()
			Expect(result.Outcome).To(Equal(hybrid.OutcomeVaporDepleted))
			Expect(result.Time).To(BeNumerically("~", 8.5, 0.4))
		})
	})

	Context("when the throat is too small for the injector", func() {
		It("stops with a flow reversal after startup", func() {
			cfg.ThroatDiameter = 0.016
			result := fire()

			Expect(result.Outcome).To(Equal(hybrid.OutcomeFlowReversed))
			var fre *hybrid.FlowReversalError
			Expect(errors.As(result.Cause, &fre)).To(BeTrue())
			Expect(fre.Time).To(BeNumerically("~", 0.52, 1e-9))
			Expect(result.Records).To(HaveLen(52))
			Expect(fre.Drop()).To(BeNumerically("<", fre.MinDropRatio*fre.ChamberPressure))
		})
	})

	Context("when the port starts at the grain outer diameter", func() {
		It("burns out on the first tick", func() {
			cfg.PortDiameter = cfg.OuterDiameter
			result := fire()

			Expect(result.Outcome).To(Equal(hybrid.OutcomeFuelDepleted))
			Expect(result.Records).To(HaveLen(1))
			Expect(result.Step).To(BeZero())
		})
	})

	Context("with a short thin grain", func() {
		It("runs out of fuel before the oxidizer", func() {
			cfg.PortLength = 0.6
			cfg.OuterDiameter = 0.05
			result := fire()

			Expect(result.Outcome).To(Equal(hybrid.OutcomeFuelDepleted))
			Expect(result.Time).To(BeNumerically("~", 7.0, 0.3))
			Expect(result.Last().FuelMass).To(BeNumerically("<", 0.05))
		})
	})

	Context("with the flux limit as a hard stop", func() {
		BeforeEach(func() {
			cfg.StopOnExcessiveFlux = true
		})

		It("rides through the ignition excursion", func() {
			result := fire()

			Expect(len(result.Records)).To(BeNumerically(">", 1))
			Expect(result.Records[1].OxidizerFlux).To(BeNumerically(">", cfg.MaxFlux))
			Expect(result.FluxWarnings).To(BeNumerically(">=", 1))
			if result.Outcome == hybrid.OutcomeMaxFluxExceeded {
				var w *hybrid.ExcessiveFluxWarning
				Expect(errors.As(result.Cause, &w)).To(BeTrue())
				Expect(w.Time).To(BeNumerically(">", cfg.StartupTime))
			}
		})

		It("stops on the first excursion after startup", func() {
			cfg.MaxFlux = 1
			result := fire()

			Expect(result.Outcome).To(Equal(hybrid.OutcomeMaxFluxExceeded))
			// ticks 0 through 50 land inside the 0.5 s startup window
			Expect(result.Records).To(HaveLen(51))
			Expect(result.FluxWarnings).To(Equal(1))
		})
	})

	It("reproduces identical records on repeated runs", func() {
		a := fire()
		b := fire()
		Expect(a.Records).To(Equal(b.Records))
	})
})
