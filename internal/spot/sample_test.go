package spot_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ironsheep/spotsize/internal/aerosol"
	"github.com/ironsheep/spotsize/internal/spot"
)

var _ = Describe("Sample", func() {
	Context("when the filename is well formed", func() {
		var s *spot.Sample

		BeforeEach(func() {
			var err error
			s, err = spot.New("/scans/dd50_T12_06152023.tif", 2.5)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the location and scale", func() {
			Expect(s.FilePath).To(Equal("/scans/dd50_T12_06152023.tif"))
			Expect(s.ScaleMicronsPerPixel).To(Equal(2.5))
		})

		It("starts without sizes", func() {
			Expect(s.Sizes).To(BeNil())
			Expect(s.Sized()).To(BeFalse())
			Expect(s.AerodynamicSizes(aerosol.DefaultSaltConcentration)).To(BeNil())
		})

		It("formats one field per placeholder", func() {
			Expect(s.String()).To(Equal("SPOT Image with droplet diameter: 50, Trial-Location number: 1-2 (2023-06-15)"))
		})

		It("exposes the filename metadata", func() {
			md := s.Metadata()
			Expect(md.DropletDiameterMicrons).To(Equal(50))
			Expect(md.TrialNumber).To(Equal(1))
			Expect(md.LocationNumber).To(Equal(2))
		})

		It("converts sizes to aerodynamic diameters", func() {
			s.Sizes = []float64{10, 20}
			Expect(s.Sized()).To(BeTrue())
			aero := s.AerodynamicSizes(0.09)
			Expect(aero).To(HaveLen(2))
			Expect(aero[0]).To(BeNumerically("~", 1.32575, 1e-4))
			Expect(aero[1]).To(BeNumerically("~", 2*aero[0], 1e-12))
		})
	})

	Context("when construction fails", func() {
		It("rejects a malformed filename", func() {
			s, err := spot.New("bad_name.tif", 1)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, spot.ErrStructure)).To(BeTrue())
			Expect(s).To(BeNil())
		})

		It("rejects a non-positive scale", func() {
			for _, scale := range []float64{0, -1} {
				s, err := spot.New("dd50_T12_06152023.tif", scale)
				Expect(errors.Is(err, spot.ErrInvalidScale)).To(BeTrue())
				Expect(s).To(BeNil())
			}
		})
	})
})
