package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/hniuh721/aom-screening-app/internal/screening"
)

// questionnaire is the submitted form. Field names follow the patient
// questionnaire so stored submissions can be replayed unchanged.
type questionnaire struct {
	Age                    int               `json:"age" binding:"gte=0,lte=130"`
	Gender                 string            `json:"gender"`
	IsChildbearingAgeWoman *bool             `json:"is_childbearing_age_woman"`
	HeightFt               int               `json:"height_ft" binding:"gte=0,lte=9"`
	HeightIn               int               `json:"height_in" binding:"gte=0,lte=11"`
	WeightLb               float64           `json:"weight_lb" binding:"gt=0"`
	Comorbidities          []string          `json:"comorbidities"`
	Symptoms               []string          `json:"symptoms"`
	EatingHabits           []string          `json:"eating_habits"`
	HealthConditions       []string          `json:"health_conditions"`
	ConditionControlStatus map[string]string `json:"condition_control_status"`
}

func (q questionnaire) snapshot() screening.Snapshot {
	return screening.Snapshot{
		Age:                   q.Age,
		Sex:                   q.Gender,
		ChildbearingPotential: q.IsChildbearingAgeWoman != nil && *q.IsChildbearingAgeWoman,
		HeightFeet:            q.HeightFt,
		HeightInches:          q.HeightIn,
		WeightPounds:          q.WeightLb,
		Conditions:            q.HealthConditions,
		ControlStatus:         q.ConditionControlStatus,
		Behaviors:             q.EatingHabits,
		Symptoms:              q.Symptoms,
		Comorbidities:         q.Comorbidities,
	}
}

func (h *handler) runScreening(c *gin.Context) {
	var payload questionnaire
	if err := c.ShouldBindJSON(&payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation_failed",
				"details": describeValidation(verrs),
			})
			return
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	outcome, err := h.screener.Screen(payload.snapshot())
	if err != nil {
		if errors.Is(err, screening.ErrInvalidMeasurement) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation_failed",
				"details": []string{err.Error()},
			})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "screening failed"})
		return
	}

	h.log.Info().
		Str("request_id", c.GetString(requestIDKey)).
		Str("rules", outcome.RuleTableVersion).
		Bool("eligible", outcome.Eligible).
		Float64("bmi", outcome.BMI).
		Int("excluded", len(outcome.AbsoluteExclusions)).
		Int("cautions", len(outcome.RelativeWarnings)).
		Int("recommended", len(outcome.Recommendations)).
		Msg("screening completed")

	c.JSON(http.StatusOK, outcome)
}

func describeValidation(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Field() {
		case "HeightFt", "HeightIn":
			field = "height"
		case "WeightLb":
			field = "weight"
		}
		out = append(out, fmt.Sprintf("%s fails %s %s", field, fe.Tag(), fe.Param()))
	}
	return out
}
