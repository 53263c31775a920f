package spot_test

import (
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ironsheep/spotsize/internal/spot"
)

var _ = Describe("ParseFilename", func() {
	DescribeTable("well-formed filenames",
		func(location string, diameter, trial, loc int, date time.Time) {
			md, err := spot.ParseFilename(location)
			Expect(err).NotTo(HaveOccurred())
			Expect(md.DropletDiameterMicrons).To(Equal(diameter))
			Expect(md.TrialNumber).To(Equal(trial))
			Expect(md.LocationNumber).To(Equal(loc))
			Expect(md.DateCollected.Equal(date)).To(BeTrue(), "got %s", md.DateCollected)
		},
		Entry("reference example", "dd50_T12_06152023.tif", 50, 1, 2, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)),
		Entry("with directory", "/data/scans/dd200_T34_01022024.tif", 200, 3, 4, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		Entry("s3 location", "s3://spots/2023/dd75_T90_12312023.png", 75, 9, 0, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
		Entry("zero digits", "dd1_T00_02292024.bmp", 1, 0, 0, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)),
		Entry("longer trial token", "dd50_T12x_06152023.tif", 50, 1, 2, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)),
	)

	It("reconstructs every field from a generated name", func() {
		for d := 1; d <= 500; d += 83 {
			for trial := 0; trial <= 9; trial += 3 {
				for loc := 0; loc <= 9; loc += 4 {
					date := time.Date(2022, time.Month(1+trial), 1+loc, 0, 0, 0, 0, time.UTC)
					name := fmt.Sprintf("dd%d_T%d%d_%s.tif", d, trial, loc, date.Format("01022006"))

					md, err := spot.ParseFilename(name)
					Expect(err).NotTo(HaveOccurred(), name)
					Expect(md).To(Equal(spot.Metadata{
						DropletDiameterMicrons: d,
						TrialNumber:            trial,
						LocationNumber:         loc,
						DateCollected:          date,
					}), name)
				}
			}
		}
	})

	DescribeTable("malformed filenames",
		func(location string, kind error) {
			md, err := spot.ParseFilename(location)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, kind)).To(BeTrue(), "got %v", err)

			var perr *spot.MetadataParseError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Location).To(Equal(location))
			Expect(err.Error()).To(HavePrefix("metadata: "))
			Expect(md).To(Equal(spot.Metadata{}))
		},
		Entry("too few tokens", "bad_name.tif", spot.ErrStructure),
		Entry("too many tokens", "dd50_T12_06152023_extra.tif", spot.ErrStructure),
		Entry("no extension room", "abc", spot.ErrStructure),
		Entry("empty diameter", "dd_T12_99999999.tif", spot.ErrValue),
		Entry("non-numeric diameter", "ddxx_T12_06152023.tif", spot.ErrValue),
		Entry("missing prefix", "50_T12_06152023.tif", spot.ErrValue),
		Entry("zero diameter", "dd0_T12_06152023.tif", spot.ErrValue),
		Entry("trial token too short", "dd50_T1_06152023.tif", spot.ErrIndex),
		Entry("non-digit trial", "dd50_TA2_06152023.tif", spot.ErrValue),
		Entry("non-digit location", "dd50_T1B_06152023.tif", spot.ErrValue),
		Entry("impossible date", "dd50_T12_99999999.tif", spot.ErrDate),
		Entry("separated date", "dd50_T12_06-15-23.tif", spot.ErrDate),
		Entry("year first", "dd50_T12_20230615.tif", spot.ErrDate),
	)
})
