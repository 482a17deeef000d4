package screening

import (
	"fmt"
	"math"
)

const (
	metersPerInch    = 0.0254
	kilogramsPerLb   = 0.453592
	inchesPerFoot    = 12
	overweightBMI    = 27.0
	obesityBMI       = 30.0
	obesityClass2BMI = 35.0
	obesityClass3BMI = 40.0
)

// ComputeBMI converts imperial measurements to a BMI rounded to two decimal
// places, half away from zero.
func ComputeBMI(heightFeet, heightInches int, weightPounds float64) (float64, error) {
	if heightFeet < 0 {
		return 0, fmt.Errorf("%w: height feet %d is negative", ErrInvalidMeasurement, heightFeet)
	}
	if heightInches < 0 || heightInches > 11 {
		return 0, fmt.Errorf("%w: height inches %d outside 0-11", ErrInvalidMeasurement, heightInches)
	}
	if math.IsNaN(weightPounds) || math.IsInf(weightPounds, 0) || weightPounds <= 0 {
		return 0, fmt.Errorf("%w: weight %v lb must be positive", ErrInvalidMeasurement, weightPounds)
	}

	totalInches := heightFeet*inchesPerFoot + heightInches
	if totalInches <= 0 {
		return 0, fmt.Errorf("%w: height must be positive", ErrInvalidMeasurement)
	}

	meters := float64(totalInches) * metersPerInch
	kg := weightPounds * kilogramsPerLb
	return roundHundredths(kg / (meters * meters)), nil
}

func roundHundredths(v float64) float64 {
	return math.Round(v*100) / 100
}

// ClassifyBMI returns the category label for a BMI value.
func ClassifyBMI(bmi float64) string {
	switch {
	case bmi < overweightBMI:
		return "Below threshold"
	case bmi < obesityBMI:
		return "Overweight"
	case bmi < obesityClass2BMI:
		return "Class 1 Obesity"
	case bmi < obesityClass3BMI:
		return "Class 2 Obesity"
	default:
		return "Class 3 Obesity"
	}
}

func bmiLabel(bmi float64) string {
	return fmt.Sprintf("BMI %.2f (%s)", bmi, ClassifyBMI(bmi))
}
