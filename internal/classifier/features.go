package classifier

import (
	"gonum.org/v1/gonum/stat"
)

// ColorFeatures is the compact color summary the rule cascade operates on.
type ColorFeatures struct {
	AvgRed       float64 `json:"avg_red"`
	AvgGreen     float64 `json:"avg_green"`
	AvgBlue      float64 `json:"avg_blue"`
	RedVariance  float64 `json:"red_var"`
	RedDominance float64 `json:"red_dominance"`
}

// ExtractFeatures computes per-channel means, the population variance of the
// red channel and red dominance over every pixel of raw. A raster without
// pixels yields the zero vector.
func ExtractFeatures(raw RawImage) ColorFeatures {
	n := raw.PixelCount()
	if n == 0 {
		return ColorFeatures{}
	}

	reds := make([]float64, n)
	var sumGreen, sumBlue float64
	for i := 0; i < n; i++ {
		reds[i] = float64(raw.Pix[3*i])
		sumGreen += float64(raw.Pix[3*i+1])
		sumBlue += float64(raw.Pix[3*i+2])
	}

	avgRed := stat.Mean(reds, nil)
	avgGreen := sumGreen / float64(n)
	avgBlue := sumBlue / float64(n)

	// Divisor is n, not n-1; the cascade thresholds assume it.
	redVariance := stat.MomentAbout(2, reds, avgRed, nil)

	return ColorFeatures{
		AvgRed:       avgRed,
		AvgGreen:     avgGreen,
		AvgBlue:      avgBlue,
		RedVariance:  redVariance,
		RedDominance: avgRed - (avgGreen+avgBlue)/2,
	}
}
